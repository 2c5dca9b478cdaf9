// Package catalog holds the ingested article collection and its filtered
// views. The store is owned by exactly one workflow session; ingestion is the
// only mutation and always replaces the collection wholesale.
package catalog

import (
	"github.com/montroyal/quote-service/internal/types"
)

// Criteria are the free-text filters over the catalog. All non-empty fields
// must match (logical AND). Label matching is case- and accent-insensitive;
// version and business key match on plain case-insensitive substrings.
type Criteria struct {
	Label       string `json:"label"`
	Version     string `json:"version"`
	BusinessKey string `json:"businessKey"`
}

// IsEmpty reports whether no filter is set.
func (c Criteria) IsEmpty() bool {
	return c.Label == "" && c.Version == "" && c.BusinessKey == ""
}

// Store holds the full article collection in ingestion order.
type Store struct {
	articles []types.Article
}

// NewStore returns an empty catalog store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the whole collection. Validation happens upstream in the
// parsers; a failed parse never reaches Load, so prior state survives a bad
// file untouched.
func (s *Store) Load(articles []types.Article) {
	s.articles = make([]types.Article, len(articles))
	copy(s.articles, articles)
}

// Len returns the number of articles in the catalog.
func (s *Store) Len() int {
	return len(s.articles)
}

// Articles returns the full collection in ingestion order.
func (s *Store) Articles() []types.Article {
	out := make([]types.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

// Filter returns the articles matching the criteria, preserving ingestion
// order. Empty criteria return the full collection.
func (s *Store) Filter(c Criteria) []types.Article {
	if c.IsEmpty() {
		return s.Articles()
	}

	var out []types.Article
	for _, a := range s.articles {
		if !containsFolded(a.Label, c.Label) {
			continue
		}
		if !containsFolded(a.Version, c.Version) {
			continue
		}
		if !containsFolded(a.BusinessKey, c.BusinessKey) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Lookup returns the article with the given business key.
func (s *Store) Lookup(businessKey string) (types.Article, bool) {
	for _, a := range s.articles {
		if a.BusinessKey == businessKey {
			return a, true
		}
	}
	return types.Article{}, false
}

// CategoryCount pairs a category with its article count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryCounts returns per-category article counts in first-seen order.
func (s *Store) CategoryCounts() []CategoryCount {
	index := make(map[string]int)
	var out []CategoryCount
	for _, a := range s.articles {
		if i, ok := index[a.Category]; ok {
			out[i].Count++
			continue
		}
		index[a.Category] = len(out)
		out = append(out, CategoryCount{Category: a.Category, Count: 1})
	}
	return out
}
