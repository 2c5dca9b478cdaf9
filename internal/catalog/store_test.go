package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montroyal/quote-service/internal/types"
)

func sampleArticles() []types.Article {
	mk := func(category, label, version, key string) types.Article {
		return types.Article{
			Category:    category,
			Label:       label,
			Version:     version,
			BusinessKey: key,
			GrossPrice:  decimal.NewFromInt(100),
			NetPrice:    decimal.NewFromInt(90),
			Coefficient: decimal.NewFromInt(1),
		}
	}
	return []types.Article{
		mk("Montures", "Monture acier brossé", "V1", "EDI-1001"),
		mk("Montures", "Monture été titane", "V2", "EDI-1002"),
		mk("Verres", "Verre progressif", "V1", "EDI-2001"),
		mk("Verres", "Verre unifocal", "V3", "EDI-2002"),
	}
}

func TestFilterEmptyCriteriaReturnsAll(t *testing.T) {
	s := NewStore()
	s.Load(sampleArticles())

	got := s.Filter(Criteria{})
	require.Len(t, got, 4)
	// Ingestion order preserved.
	assert.Equal(t, "EDI-1001", got[0].BusinessKey)
	assert.Equal(t, "EDI-2002", got[3].BusinessKey)
}

func TestFilterLabelCaseAndAccentInsensitive(t *testing.T) {
	s := NewStore()
	s.Load(sampleArticles())

	tests := []struct {
		name     string
		label    string
		expected []string
	}{
		{"lowercase", "monture", []string{"EDI-1001", "EDI-1002"}},
		{"uppercase", "VERRE", []string{"EDI-2001", "EDI-2002"}},
		{"accent stripped in query", "ete", []string{"EDI-1002"}},
		{"accent kept in query", "brossé", []string{"EDI-1001"}},
		{"no match", "lentille", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Filter(Criteria{Label: tt.label})
			var keys []string
			for _, a := range got {
				keys = append(keys, a.BusinessKey)
			}
			assert.Equal(t, tt.expected, keys)
		})
	}
}

func TestFilterCriteriaComposeWithAnd(t *testing.T) {
	s := NewStore()
	s.Load(sampleArticles())

	got := s.Filter(Criteria{Label: "verre", Version: "V1"})
	require.Len(t, got, 1)
	assert.Equal(t, "EDI-2001", got[0].BusinessKey)

	got = s.Filter(Criteria{Label: "verre", BusinessKey: "2002"})
	require.Len(t, got, 1)
	assert.Equal(t, "EDI-2002", got[0].BusinessKey)

	got = s.Filter(Criteria{Label: "verre", Version: "V2"})
	assert.Empty(t, got)
}

func TestLoadReplacesWholeCollection(t *testing.T) {
	s := NewStore()
	s.Load(sampleArticles())
	require.Equal(t, 4, s.Len())

	s.Load(sampleArticles()[:1])
	assert.Equal(t, 1, s.Len())
}

func TestLookup(t *testing.T) {
	s := NewStore()
	s.Load(sampleArticles())

	a, ok := s.Lookup("EDI-2001")
	require.True(t, ok)
	assert.Equal(t, "Verre progressif", a.Label)

	_, ok = s.Lookup("EDI-9999")
	assert.False(t, ok)
}

func TestCategoryCounts(t *testing.T) {
	s := NewStore()
	s.Load(sampleArticles())

	counts := s.CategoryCounts()
	require.Len(t, counts, 2)
	assert.Equal(t, CategoryCount{Category: "Montures", Count: 2}, counts[0])
	assert.Equal(t, CategoryCount{Category: "Verres", Count: 2}, counts[1])
}

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Monture été", "monture ete"},
		{"BROSSÉ", "brosse"},
		{"Cœur", "cœur"}, // ligature is not a combining mark, left as-is
		{"déjà-vu", "deja-vu"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}
