package xlsx

// ColumnMapping maps catalog fields to worksheet header names. Headers are
// matched case-insensitively after trimming.
type ColumnMapping struct {
	Category            string
	Label               string
	Version             string
	BusinessKey         string
	GrossPrice          string
	NetPrice            string
	DiscountAmount      string
	DiscountPercent     string
	OtherDiscountAmount string
	Coefficient         string
	RebatePercent       string
}

// DefaultColumnMapping returns the header names of the standard catalog
// workbook (French commercial headers, as exported by the sales team).
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		Category:            "Catégorie produit",
		Label:               "Libellé article",
		Version:             "Version",
		BusinessKey:         "Code EDI",
		GrossPrice:          "Prix Brut HT",
		NetPrice:            "Prix Net HT",
		DiscountAmount:      "Remise (€)",
		DiscountPercent:     "Remise (%)",
		OtherDiscountAmount: "Remise autre (€)",
		Coefficient:         "Coeff",
		RebatePercent:       "RFA",
	}
}

// InvalidIndex marks a column that is not present in the worksheet.
const InvalidIndex = -1

// columnIndices holds resolved worksheet column positions.
type columnIndices struct {
	Category            int
	Label               int
	Version             int
	BusinessKey         int
	GrossPrice          int
	NetPrice            int
	DiscountAmount      int
	DiscountPercent     int
	OtherDiscountAmount int
	Coefficient         int
	RebatePercent       int
}

// ParserOptions configures the XLSX catalog parser.
type ParserOptions struct {
	ColumnMapping *ColumnMapping
	SheetName     string // empty selects the first sheet
}
