package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Delimiter
	}{
		{"comma", "a,b,c\n1,2,3", DelimiterComma},
		{"semicolon", "a;b;c\n1;2;3", DelimiterSemicolon},
		{"tab", "a\tb\tc\n1\t2\t3", DelimiterTab},
		{"majority separator wins", "a;b;c,d\n", DelimiterSemicolon},
		{"empty defaults to comma", "", DelimiterComma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDelimiter([]byte(tt.content)))
		})
	}
}

func TestParseSemicolonCatalog(t *testing.T) {
	content := "Catégorie produit;Libellé article;Version;Code EDI;Prix Brut HT;Prix Net HT;Remise (%);Coeff;RFA\n" +
		"Montures;Monture acier;V1;EDI-1001;100;90;10;2;5\n" +
		"Verres;Verre progressif;V2;EDI-2001;55,50;48,20;;1,8;\n"

	result, err := NewParser().Parse([]byte(content))
	require.NoError(t, err)
	require.False(t, result.Failed(), "errors: %v", result.Errors)
	require.Len(t, result.Articles, 2)

	a := result.Articles[0]
	assert.Equal(t, "EDI-1001", a.BusinessKey)
	assert.Equal(t, "100", a.GrossPrice.String())
	assert.Equal(t, "10", a.DiscountPercent.String())

	b := result.Articles[1]
	assert.Equal(t, "55.5", b.GrossPrice.String())
	assert.Equal(t, "1.8", b.Coefficient.String())
}

func TestParseMissingRequiredColumn(t *testing.T) {
	content := "Libellé article;Version;Code EDI;Prix Brut HT;Prix Net HT\n" +
		"Monture acier;V1;EDI-1001;100;90\n"

	result, err := NewParser().Parse([]byte(content))
	require.NoError(t, err)
	require.True(t, result.Failed())
	assert.Contains(t, result.Errors[0].Message, "Catégorie produit")
}

func TestParseBOMHeader(t *testing.T) {
	content := "\ufeffCatégorie produit,Libellé article,Version,Code EDI,Prix Brut HT,Prix Net HT\n" +
		"Montures,Monture acier,V1,EDI-1001,100,90\n"

	result, err := NewParser().Parse([]byte(content))
	require.NoError(t, err)
	require.False(t, result.Failed(), "errors: %v", result.Errors)
	require.Len(t, result.Articles, 1)
	// Coeff column absent entirely: pass-through pricing.
	assert.Equal(t, "1", result.Articles[0].Coefficient.String())
}

func TestParseWindows1252Catalog(t *testing.T) {
	// Legacy export: é and è are single Windows-1252 bytes, not UTF-8.
	content := "Cat\xE9gorie produit;Libell\xE9 article;Version;Code EDI;Prix Brut HT;Prix Net HT\n" +
		"Montures;Monture l\xE9g\xE8re;V1;EDI-1001;100;90\n"

	result, err := NewParser().Parse([]byte(content))
	require.NoError(t, err)
	require.False(t, result.Failed(), "errors: %v", result.Errors)
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "Monture légère", result.Articles[0].Label)
}

func TestParseCoercionWarning(t *testing.T) {
	content := "Catégorie produit,Libellé article,Version,Code EDI,Prix Brut HT,Prix Net HT\n" +
		"Montures,Monture acier,V1,EDI-1001,abc,90\n"

	result, err := NewParser().Parse([]byte(content))
	require.NoError(t, err)
	require.False(t, result.Failed())
	require.Len(t, result.Articles, 1)
	assert.True(t, result.Articles[0].GrossPrice.IsZero())
	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, "grossPrice", *result.Warnings[0].Field)
}
