package csv

import (
	"bufio"
	"bytes"
	"strings"
)

// Delimiter is a CSV field separator
type Delimiter rune

const (
	DelimiterComma     Delimiter = ','
	DelimiterSemicolon Delimiter = ';'
	DelimiterTab       Delimiter = '\t'
)

// DetectDelimiter guesses the field separator from the first non-empty line
// by counting candidate occurrences. French spreadsheet exports usually use
// semicolons; comma wins ties.
func DetectDelimiter(content []byte) Delimiter {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		counts := map[Delimiter]int{
			DelimiterComma:     strings.Count(line, ","),
			DelimiterSemicolon: strings.Count(line, ";"),
			DelimiterTab:       strings.Count(line, "\t"),
		}

		best := DelimiterComma
		for _, d := range []Delimiter{DelimiterSemicolon, DelimiterTab} {
			if counts[d] > counts[best] {
				best = d
			}
		}
		return best
	}
	return DelimiterComma
}
