package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/montroyal/quote-service/internal/parsers/csv"
	"github.com/montroyal/quote-service/internal/parsers/xlsx"
	"github.com/montroyal/quote-service/internal/types"
)

var (
	validateOutput      string
	validateConcurrency int
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate catalog files without loading them",
	Long: `Parse one or more catalog files (XLSX or CSV) and report row counts,
coercion warnings and file-level errors. A file missing a required column is
rejected as a whole. Files are validated concurrently.`,
	Example: `  quote-service validate ./catalogue.xlsx
  quote-service validate ./montures.csv ./verres.xlsx --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateOutput, "output", "table", "Output format: table or json")
	validateCmd.Flags().IntVar(&validateConcurrency, "concurrency", 4, "Number of files validated in parallel")
}

type validationReport struct {
	File   string             `json:"file"`
	Result *types.ParseResult `json:"result,omitempty"`
	Err    string             `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	reports := make([]validationReport, len(args))

	var g errgroup.Group
	g.SetLimit(validateConcurrency)

	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			result, err := parseCatalogFile(path)
			report := validationReport{File: path, Result: result}
			if err != nil {
				report.Err = err.Error()
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	switch strings.ToLower(validateOutput) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reports); err != nil {
			return err
		}
	case "table":
		outputValidationTable(reports)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", validateOutput)
	}

	for _, r := range reports {
		if r.Err != "" || (r.Result != nil && r.Result.Failed()) {
			return fmt.Errorf("validation failed for one or more files")
		}
	}
	return nil
}

func parseCatalogFile(path string) (*types.ParseResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsx.NewParser(xlsx.ParserOptions{}).Parse(content)
	case ".csv", ".txt":
		return csv.NewParser().Parse(content)
	}
	return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
}

func outputValidationTable(reports []validationReport) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "File\tRows\tValid\tWarnings\tErrors\tStatus\n")
	fmt.Fprintf(w, "----\t----\t-----\t--------\t------\t------\n")
	for _, r := range reports {
		if r.Err != "" {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%s\n", r.File, r.Err)
			continue
		}
		status := "ok"
		if r.Result.Failed() {
			status = "rejected"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\n",
			r.File, r.Result.TotalRows, r.Result.ValidRows,
			len(r.Result.Warnings), len(r.Result.Errors), status)
	}
	w.Flush()

	for _, r := range reports {
		if r.Result == nil {
			continue
		}
		for _, e := range r.Result.Errors {
			fmt.Printf("%s: %s\n", r.File, e.Message)
		}
		for i, warn := range r.Result.Warnings {
			if i >= 10 {
				fmt.Printf("%s: ... and %d more warnings\n", r.File, len(r.Result.Warnings)-10)
				break
			}
			rowNum := "-"
			if warn.RowNumber != nil {
				rowNum = fmt.Sprintf("%d", *warn.RowNumber)
			}
			field := "-"
			if warn.Field != nil {
				field = *warn.Field
			}
			fmt.Printf("%s: row %s, field '%s': %s\n", r.File, rowNum, field, warn.Message)
		}
	}
}
