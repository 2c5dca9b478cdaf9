package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases a string and strips diacritics so that filter matching is
// insensitive to case and accents. French catalog labels carry accents the
// user rarely types ("Monture été" must match "ete").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}

// containsFolded reports whether needle is a substring of haystack after
// folding both sides. An empty needle always matches.
func containsFolded(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}
