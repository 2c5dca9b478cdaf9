package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/montroyal/quote-service/internal/types"
)

const proposalSheet = "Proposition"

var tableHeader = []interface{}{
	"Libellé article", "Version", "Code EDI", "Remise (%)", "Remise (€)",
	"Prix Net HT", "Prix après remise", "PPGC TTC", "Marge nette", "RFA", "Prix Net Net",
}

// Workbook renders a proposal to an XLSX workbook, one table per category.
// Within a table only the authoritative discount column is filled per item;
// the inactive one shows a dash.
func Workbook(p Proposal) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", proposalSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	row := 1
	writeRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(proposalSheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	header := [][]interface{}{
		{"Proposition Commerciale"},
		{"N° de proposition", p.Number},
		{"Date", p.CreatedAt.Format("02/01/2006 15:04")},
	}
	if p.Client != "" {
		header = append(header, []interface{}{"Client", p.Client})
	}
	header = append(header, []interface{}{})

	for _, h := range header {
		if err := writeRow(h); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, group := range p.Groups {
		rows := [][]interface{}{
			{fmt.Sprintf("Catégorie : %s", group.Category)},
			tableHeader,
		}
		for _, r := range group.Records {
			rows = append(rows, recordRow(r))
		}
		rows = append(rows, []interface{}{})

		for _, values := range rows {
			if err := writeRow(values); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write category %s: %w", group.Category, err)
			}
		}
	}

	summary := [][]interface{}{
		{"Nombre d'articles", p.Summary.ArticleCount},
		{"Remise totale", p.Summary.TotalDiscount.StringFixed(2) + " €"},
		{"Total PPGC TTC", p.Summary.TotalPublicTTC.StringFixed(2) + " €"},
		{"Total Prix Net Net", p.Summary.TotalNetNet.StringFixed(2) + " €"},
	}
	for _, values := range summary {
		if err := writeRow(values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	return f, nil
}

// recordRow renders one item line. The discount column that is not
// authoritative for the item is suppressed with a dash.
func recordRow(r types.ExportRecord) []interface{} {
	discountPct := "-"
	discountAmt := "-"
	if r.DiscountMode == types.DiscountModePercent {
		discountPct = r.DiscountPercent.StringFixed(1) + " %"
	} else {
		discountAmt = r.DiscountAmount.StringFixed(2) + " €"
	}

	rebate := "-"
	if !r.RebatePercent.IsZero() {
		rebate = r.RebatePercent.StringFixed(0) + " %"
	}

	return []interface{}{
		r.Label,
		r.Version,
		r.BusinessKey,
		discountPct,
		discountAmt,
		r.NetPrice.StringFixed(2) + " €",
		r.NetAfterDiscount.StringFixed(2) + " €",
		r.PublicPriceTTC.StringFixed(2) + " €",
		r.NetMargin.StringFixed(2) + " €",
		rebate,
		r.FinalNetNet.StringFixed(2) + " €",
	}
}
