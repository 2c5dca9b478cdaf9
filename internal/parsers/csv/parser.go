// Package csv parses catalog exports in delimited-text form. Column layout
// and coercion rules match the xlsx parser: the header row is mapped by name,
// missing required columns reject the file, bad numeric cells coerce to zero.
package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/montroyal/quote-service/internal/parsers/charset"
	"github.com/montroyal/quote-service/internal/parsers/xlsx"
	"github.com/montroyal/quote-service/internal/types"
)

// Parser is a CSV catalog parser.
type Parser struct {
	mapping xlsx.ColumnMapping
}

// NewParser creates a CSV parser using the standard catalog column mapping.
func NewParser() *Parser {
	return &Parser{mapping: xlsx.DefaultColumnMapping()}
}

// Parse parses delimited-text content into catalog articles. The encoding is
// normalized to UTF-8 first and the delimiter detected from the header line.
func (p *Parser) Parse(content []byte) (*types.ParseResult, error) {
	result := &types.ParseResult{
		Articles: make([]types.Article, 0),
	}

	content, err := charset.Decode(content, charset.DetectEncoding(content))
	if err != nil {
		result.Errors = append(result.Errors, types.ParseError{
			Message: fmt.Sprintf("failed to decode file: %v", err),
		})
		return result, nil
	}

	reader := stdcsv.NewReader(bytes.NewReader(content))
	reader.Comma = rune(DetectDelimiter(content))
	reader.FieldsPerRecord = -1 // ragged rows handled per-cell

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, types.ParseError{
			Message: fmt.Sprintf("failed to read csv: %v", err),
		})
		return result, nil
	}
	if len(records) == 0 {
		result.Warnings = append(result.Warnings, types.ParseWarning{
			Message: "csv file is empty",
		})
		return result, nil
	}

	headers := make([]string, len(records[0]))
	for i, cell := range records[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
	}

	indices, missing := resolveColumns(headers, p.mapping)
	if len(missing) > 0 {
		result.Errors = append(result.Errors, types.ParseError{
			Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		})
		return result, nil
	}

	result.TotalRows = len(records) - 1
	for i := 1; i < len(records); i++ {
		row := records[i]
		if isEmptyRow(row) {
			continue
		}
		article, warnings := mapRow(row, i+1, indices)
		result.Warnings = append(result.Warnings, warnings...)
		result.Articles = append(result.Articles, article)
	}

	result.ValidRows = len(result.Articles)
	return result, nil
}

type columnIndices struct {
	category            int
	label               int
	version             int
	businessKey         int
	grossPrice          int
	netPrice            int
	discountAmount      int
	discountPercent     int
	otherDiscountAmount int
	coefficient         int
	rebatePercent       int
}

func resolveColumns(headers []string, m xlsx.ColumnMapping) (columnIndices, []string) {
	find := func(header string) int {
		needle := strings.ToLower(strings.TrimSpace(header))
		for i, h := range headers {
			if strings.ToLower(h) == needle {
				return i
			}
		}
		return xlsx.InvalidIndex
	}

	indices := columnIndices{
		category:            find(m.Category),
		label:               find(m.Label),
		version:             find(m.Version),
		businessKey:         find(m.BusinessKey),
		grossPrice:          find(m.GrossPrice),
		netPrice:            find(m.NetPrice),
		discountAmount:      find(m.DiscountAmount),
		discountPercent:     find(m.DiscountPercent),
		otherDiscountAmount: find(m.OtherDiscountAmount),
		coefficient:         find(m.Coefficient),
		rebatePercent:       find(m.RebatePercent),
	}

	var missing []string
	required := []struct {
		name string
		idx  int
	}{
		{m.Category, indices.category},
		{m.Label, indices.label},
		{m.Version, indices.version},
		{m.BusinessKey, indices.businessKey},
		{m.GrossPrice, indices.grossPrice},
		{m.NetPrice, indices.netPrice},
	}
	for _, r := range required {
		if r.idx == xlsx.InvalidIndex {
			missing = append(missing, r.name)
		}
	}
	return indices, missing
}

func mapRow(row []string, rowNumber int, indices columnIndices) (types.Article, []types.ParseWarning) {
	var warnings []types.ParseWarning

	getValue := func(idx int) string {
		if idx == xlsx.InvalidIndex || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	getDecimal := func(idx int, field string) decimal.Decimal {
		raw := getValue(idx)
		if raw == "" {
			return decimal.Zero
		}
		d, err := xlsx.ParseDecimal(raw)
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
	if indices.coefficient != xlsx.InvalidIndex {
		coefficient = getDecimal(indices.coefficient, "coefficient")
	}

	return types.Article{
		Category:            getValue(indices.category),
		Label:               getValue(indices.label),
		Version:             getValue(indices.version),
		BusinessKey:         getValue(indices.businessKey),
		GrossPrice:          getDecimal(indices.grossPrice, "grossPrice"),
		NetPrice:            getDecimal(indices.netPrice, "netPrice"),
		DiscountAmount:      getDecimal(indices.discountAmount, "discountAmount"),
		DiscountPercent:     getDecimal(indices.discountPercent, "discountPercent"),
		OtherDiscountAmount: getDecimal(indices.otherDiscountAmount, "otherDiscountAmount"),
		Coefficient:         coefficient,
		RebatePercent:       getDecimal(indices.rebatePercent, "rebatePercent"),
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
