// Package xlsx parses catalog workbooks into articles. A workbook missing any
// required column is rejected as a whole; unparseable numeric cells coerce to
// zero so a mostly well-formed spreadsheet still loads.
package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/montroyal/quote-service/internal/types"
)

// Parser is an XLSX catalog parser.
type Parser struct {
	options ParserOptions
}

// NewParser creates a new XLSX parser. A nil column mapping falls back to the
// standard French catalog headers.
func NewParser(options ParserOptions) *Parser {
	if options.ColumnMapping == nil {
		m := DefaultColumnMapping()
		options.ColumnMapping = &m
	}
	return &Parser{options: options}
}

// Parse parses workbook content into catalog articles.
func (p *Parser) Parse(content []byte) (*types.ParseResult, error) {
	result := &types.ParseResult{
		Articles: make([]types.Article, 0),
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		result.Errors = append(result.Errors, types.ParseError{
			Message: fmt.Sprintf("failed to open workbook: %v", err),
		})
		return result, nil
	}
	defer f.Close()

	sheetName, err := p.selectSheet(f)
	if err != nil {
		result.Errors = append(result.Errors, types.ParseError{Message: err.Error()})
		return result, nil
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		result.Errors = append(result.Errors, types.ParseError{
			Message: fmt.Sprintf("failed to read worksheet: %v", err),
		})
		return result, nil
	}

	if len(rows) == 0 {
		result.Warnings = append(result.Warnings, types.ParseWarning{
			Message: "workbook is empty",
		})
		return result, nil
	}

	headers := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		headers[i] = strings.TrimSpace(cell)
	}

	indices, missing := resolveColumns(headers, p.options.ColumnMapping)
	if len(missing) > 0 {
		// Required columns are a file-level contract; the whole load fails.
		result.Errors = append(result.Errors, types.ParseError{
			Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		})
		return result, nil
	}

	result.TotalRows = len(rows) - 1
	for i := 1; i < len(rows); i++ {
		rawRow := rows[i]
		if isEmptyRow(rawRow) {
			continue
		}
		article, warnings := mapRow(rawRow, i+1, indices)
		result.Warnings = append(result.Warnings, warnings...)
		result.Articles = append(result.Articles, article)
	}

	result.ValidRows = len(result.Articles)
	return result, nil
}

func (p *Parser) selectSheet(f *excelize.File) (string, error) {
	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if p.options.SheetName == "" {
		return sheetList[0], nil
	}
	for _, name := range sheetList {
		if name == p.options.SheetName {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found, available: %s",
		p.options.SheetName, strings.Join(sheetList, ", "))
}

// resolveColumns resolves header names to column positions and reports the
// required columns that could not be found.
func resolveColumns(headers []string, mapping *ColumnMapping) (columnIndices, []string) {
	find := func(header string) int {
		needle := strings.ToLower(strings.TrimSpace(header))
		for i, h := range headers {
			if strings.ToLower(h) == needle {
				return i
			}
		}
		return InvalidIndex
	}

	indices := columnIndices{
		Category:            find(mapping.Category),
		Label:               find(mapping.Label),
		Version:             find(mapping.Version),
		BusinessKey:         find(mapping.BusinessKey),
		GrossPrice:          find(mapping.GrossPrice),
		NetPrice:            find(mapping.NetPrice),
		DiscountAmount:      find(mapping.DiscountAmount),
		DiscountPercent:     find(mapping.DiscountPercent),
		OtherDiscountAmount: find(mapping.OtherDiscountAmount),
		Coefficient:         find(mapping.Coefficient),
		RebatePercent:       find(mapping.RebatePercent),
	}

	var missing []string
	required := []struct {
		name string
		idx  int
	}{
		{mapping.Category, indices.Category},
		{mapping.Label, indices.Label},
		{mapping.Version, indices.Version},
		{mapping.BusinessKey, indices.BusinessKey},
		{mapping.GrossPrice, indices.GrossPrice},
		{mapping.NetPrice, indices.NetPrice},
	}
	for _, r := range required {
		if r.idx == InvalidIndex {
			missing = append(missing, r.name)
		}
	}
	return indices, missing
}

// mapRow maps a worksheet row to an article. Numeric cells that fail to parse
// coerce to zero with a warning; an entirely absent coefficient column means
// pass-through pricing and defaults to one.
func mapRow(rawRow []string, rowNumber int, indices columnIndices) (types.Article, []types.ParseWarning) {
	var warnings []types.ParseWarning

	getValue := func(idx int) string {
		if idx == InvalidIndex || idx >= len(rawRow) {
			return ""
		}
		return strings.TrimSpace(rawRow[idx])
	}

	getDecimal := func(idx int, field string) decimal.Decimal {
		raw := getValue(idx)
		if raw == "" {
			return decimal.Zero
		}
		d, err := ParseDecimal(raw)
		if err != nil {
			warnings = append(warnings, types.ParseWarning{
				RowNumber: types.IntPtr(rowNumber),
				Field:     types.StringPtr(field),
				Message:   fmt.Sprintf("unparseable numeric value %q, using 0", raw),
			})
			return decimal.Zero
		}
		return d
	}

	coefficient := decimal.NewFromInt(1)
	if indices.Coefficient != InvalidIndex {
		coefficient = getDecimal(indices.Coefficient, "coefficient")
	}

	return types.Article{
		Category:            getValue(indices.Category),
		Label:               getValue(indices.Label),
		Version:             getValue(indices.Version),
		BusinessKey:         getValue(indices.BusinessKey),
		GrossPrice:          getDecimal(indices.GrossPrice, "grossPrice"),
		NetPrice:            getDecimal(indices.NetPrice, "netPrice"),
		DiscountAmount:      getDecimal(indices.DiscountAmount, "discountAmount"),
		DiscountPercent:     getDecimal(indices.DiscountPercent, "discountPercent"),
		OtherDiscountAmount: getDecimal(indices.OtherDiscountAmount, "otherDiscountAmount"),
		Coefficient:         coefficient,
		RebatePercent:       getDecimal(indices.RebatePercent, "rebatePercent"),
	}, warnings
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseDecimal parses a numeric cell. Handles "12.5", "12,5", "1 299,00" and
// trailing currency or percent markers. The csv parser shares this helper so
// both file types coerce numbers identically.
func ParseDecimal(value string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		// Strip currency/percent markers and spaces (including non-breaking
		// thousands separators).
		switch r {
		case '€', '$', '%', ' ', '\t', ' ':
			return -1
		}
		return r
	}, value)

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	if lastComma > lastDot {
		// European format: comma is the decimal separator.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else if lastDot > lastComma {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	return decimal.NewFromString(cleaned)
}
