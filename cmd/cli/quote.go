package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/montroyal/quote-service/internal/cart"
	"github.com/montroyal/quote-service/internal/catalog"
	"github.com/montroyal/quote-service/internal/export"
	"github.com/montroyal/quote-service/internal/pricing"
	"github.com/montroyal/quote-service/internal/types"
)

var (
	quoteKeys             string
	quoteClient           string
	quoteOutput           string
	quoteDiscountBasis    string
	quoteGrossMarginBasis string
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote <catalog-file>",
	Short: "Generate a proposal workbook from a catalog file",
	Long: `Load a catalog file, select articles by EDI code and write the proposal
workbook to disk. Every selected article keeps its catalog defaults; use the
HTTP service for per-line overrides.`,
	Example: `  quote-service quote ./catalogue.xlsx --keys EDI-1001,EDI-2001 --client "Optique Martin"
  quote-service quote ./catalogue.csv --keys EDI-1001 --out proposition.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteKeys, "keys", "", "Comma-separated EDI codes to include (required)")
	quoteCmd.Flags().StringVar(&quoteClient, "client", "", "Client name printed on the proposal")
	quoteCmd.Flags().StringVar(&quoteOutput, "out", "", "Output path (default <proposal-number>.xlsx)")
	quoteCmd.Flags().StringVar(&quoteDiscountBasis, "discount-basis", "gross_price", "Base price for percentage discounts: gross_price or net_price")
	quoteCmd.Flags().StringVar(&quoteGrossMarginBasis, "gross-margin-basis", "gross_price", "Base price for the gross margin: gross_price or net_price")
	quoteCmd.MarkFlagRequired("keys")
}

func runQuote(cmd *cobra.Command, args []string) error {
	discountBasis, err := pricing.ParseBasis(quoteDiscountBasis)
	if err != nil {
		return fmt.Errorf("--discount-basis: %w", err)
	}
	grossMarginBasis, err := pricing.ParseBasis(quoteGrossMarginBasis)
	if err != nil {
		return fmt.Errorf("--gross-margin-basis: %w", err)
	}
	engine := pricing.NewEngine(discountBasis, grossMarginBasis)

	result, err := parseCatalogFile(args[0])
	if err != nil {
		return err
	}
	if result.Failed() {
		for _, e := range result.Errors {
			logger.Error().Str("file", args[0]).Msg(e.Message)
		}
		return fmt.Errorf("catalog file rejected")
	}

	store := catalog.NewStore()
	store.Load(result.Articles)
	logger.Info().
		Str("file", args[0]).
		Int("articles", store.Len()).
		Int("warnings", len(result.Warnings)).
		Msg("Catalog loaded")

	selection := cart.New()
	for _, key := range strings.Split(quoteKeys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		a, ok := store.Lookup(key)
		if !ok {
			return fmt.Errorf("unknown article: %s", key)
		}
		selection.Add([]types.Article{a})
	}
	if selection.IsEmpty() {
		return fmt.Errorf("no articles selected")
	}
	selection.RecalculateAll(engine)

	now := time.Now()
	proposal := export.BuildProposal(selection.Items(), quoteClient, now)

	f, err := export.Workbook(proposal)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	outPath := quoteOutput
	if outPath == "" {
		outPath = proposal.Number + ".xlsx"
	}
	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	logger.Info().
		Str("proposal", proposal.Number).
		Str("out", outPath).
		Int("articles", proposal.Summary.ArticleCount).
		Str("totalNetNet", proposal.Summary.TotalNetNet.StringFixed(2)).
		Msg("Proposal written")

	fmt.Fprintf(os.Stdout, "%s\n", outPath)
	return nil
}
