// Package keyword defines the candidate topic model shared by scoring,
// scheduling, and history.
package keyword

import (
	"strings"
	"time"

	"pressroom/internal/signals"
	"pressroom/internal/textutil"
)

// Keyword is a candidate topic keyed by its normalized phrase.
type Keyword struct {
	Phrase        string
	Category      string
	Series        []signals.Point
	Metadata      signals.Metadata
	LastPublished *time.Time
	// IntentTerms are the commercial-intent terms matched during scoring.
	IntentTerms []string
}

// Normalize folds a raw phrase into the canonical keyword key.
func Normalize(phrase string) string {
	return textutil.NormalizePhrase(phrase)
}

// FromSignal builds a keyword from a fetched signal. The category falls back
// to the signal's category hint when the seed did not name one.
func FromSignal(sig signals.Signal, category string) Keyword {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = strings.ToLower(strings.TrimSpace(sig.Metadata.CategoryHint))
	}
	return Keyword{
		Phrase:   Normalize(sig.Phrase),
		Category: category,
		Series:   sig.Series,
		Metadata: sig.Metadata,
	}
}

// Tokens returns the keyword's words with stopwords removed. Unlike
// textutil.Tokenize it keeps short product words such as "tv" or "4k".
func (k Keyword) Tokens() []string {
	return Tokens(k.Phrase)
}

// Tokens splits a phrase into folded, stopword-free words.
func Tokens(phrase string) []string {
	words := textutil.Words(phrase)
	out := make([]string, 0, len(words))
	for _, word := range words {
		if _, skip := stopwords[word]; skip {
			continue
		}
		out = append(out, word)
	}
	return out
}

// Words returns every folded word in the phrase, stopwords included. Angle
// and intent detection rely on words like "for" and "to".
func (k Keyword) Words() []string {
	return textutil.Words(k.Phrase)
}

// Key returns the normalized phrase used as the keyword's identity.
func (k Keyword) Key() string {
	return Normalize(k.Phrase)
}

// PublishedWithin reports whether the keyword was published less than window before now.
func (k Keyword) PublishedWithin(now time.Time, window time.Duration) bool {
	if k.LastPublished == nil {
		return false
	}
	return now.Sub(*k.LastPublished) < window
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "to": {}, "in": {}, "on": {},
	"for": {}, "with": {}, "my": {}, "your": {}, "is": {}, "are": {}, "or": {}, "at": {},
	"by": {}, "from": {}, "how": {}, "what": {}, "which": {}, "do": {}, "does": {},
}
