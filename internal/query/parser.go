// Package query splits raw search input into independent terms.
package query

import (
	"strings"
)

// Separator words split a query the same way a comma does. They only count as
// whole words, so "Kinawataka" or "Mbarara" are never cut.
var separatorWords = map[string]bool{
	"in": true,
	"at": true,
}

// Parse splits raw on commas, semicolons and the standalone words "in" and
// "at" (any case). Terms are trimmed, inner whitespace is collapsed and empty
// terms are dropped. The order of terms follows the input: by convention the
// most specific unit comes first and its ancestors after it.
func Parse(raw string) []string {
	var terms []string
	for _, segment := range strings.FieldsFunc(raw, isSeparatorRune) {
		var current []string
		for _, word := range strings.Fields(segment) {
			if separatorWords[strings.ToLower(word)] {
				terms = appendTerm(terms, current)
				current = current[:0]
				continue
			}
			current = append(current, word)
		}
		terms = appendTerm(terms, current)
	}
	return terms
}

func isSeparatorRune(r rune) bool {
	return r == ',' || r == ';'
}

func appendTerm(terms, words []string) []string {
	if len(words) == 0 {
		return terms
	}
	return append(terms, strings.Join(words, " "))
}
