package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPrefixRunes is the shortest final word matched as a word prefix.
// Shorter words only match whole words, so "cto" does not match "director"
// and "java" does not match "javascript".
const MinPrefixRunes = 5

// Tokens splits s into lower-cased words of letters and digits.
func Tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// MatchTerm reports whether term occurs in value on word boundaries: its
// words must appear consecutively in value, every word but the last whole,
// and the last whole or, when at least MinPrefixRunes long, as a prefix.
func MatchTerm(value, term string) bool {
	return matchTokens(Tokens(value), Tokens(term))
}

func matchTokens(have, want []string) bool {
	if len(want) == 0 || len(want) > len(have) {
		return false
	}
	last := len(want) - 1
	prefixOK := utf8.RuneCountInString(want[last]) >= MinPrefixRunes
	for i := 0; i+len(want) <= len(have); i++ {
		ok := true
		for j := 0; j < last; j++ {
			if have[i+j] != want[j] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		h := have[i+last]
		if h == want[last] || (prefixOK && strings.HasPrefix(h, want[last])) {
			return true
		}
	}
	return false
}
