package types

// FileType represents supported catalog file types
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// ParseError represents a catalog parsing error
type ParseError struct {
	RowNumber     *int    `json:"rowNumber,omitempty"`
	Field         *string `json:"field,omitempty"`
	Message       string  `json:"message"`
	OriginalValue *string `json:"originalValue,omitempty"`
}

// ParseWarning represents a catalog parsing warning
type ParseWarning struct {
	RowNumber *int    `json:"rowNumber,omitempty"`
	Field     *string `json:"field,omitempty"`
	Message   string  `json:"message"`
}

// ParseResult represents the outcome of parsing one catalog file.
// A file-level failure (missing required column, unreadable workbook) is
// reported through Errors with zero Articles; the caller must leave any
// previously loaded catalog untouched in that case.
type ParseResult struct {
	Articles  []Article      `json:"articles"`
	Errors    []ParseError   `json:"errors,omitempty"`
	Warnings  []ParseWarning `json:"warnings,omitempty"`
	TotalRows int            `json:"totalRows"`
	ValidRows int            `json:"validRows"`
}

// Failed reports whether the file as a whole was rejected.
func (r *ParseResult) Failed() bool {
	return len(r.Errors) > 0
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}
