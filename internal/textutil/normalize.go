package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns text with compatibility forms normalized, diacritics removed,
// and case folded, so "Café Crème" and "cafe creme" compare equal.
func Fold(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	folded, _, err := transform.String(t, text)
	if err != nil {
		return strings.ToLower(text)
	}
	return folded
}

// Words folds text and splits it on any rune that is not a letter or digit.
func Words(text string) []string {
	return strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Tokenize splits text into folded tokens, filtering tokens shorter than 3 characters.
func Tokenize(text string) []string {
	raw := Words(text)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len([]rune(token)) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// NormalizePhrase folds a phrase and collapses every run of separators to a single space.
func NormalizePhrase(text string) string {
	return strings.Join(Words(text), " ")
}
