package textutil

import (
	"math"
	"sort"
)

// Fingerprint represents a term-frequency vector for text similarity comparison.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a fingerprint from the provided text.
// Returns nil if the text produces no valid tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return FingerprintFromCounts(counts)
}

// FingerprintFromCounts rebuilds a fingerprint from persisted term counts.
// Returns nil when no term has a positive count.
func FingerprintFromCounts(counts map[string]float64) *Fingerprint {
	tokens := make(map[string]float64, len(counts))
	for token, count := range counts {
		if count <= 0 {
			continue
		}
		tokens[token] = count
	}
	if len(tokens) == 0 {
		return nil
	}
	return &Fingerprint{
		tokens: tokens,
		norm:   vectorNorm(tokens),
	}
}

// vectorNorm sums squares in key order so equal vectors get identical norms.
func vectorNorm(tokens map[string]float64) float64 {
	keys := make([]string, 0, len(tokens))
	for token := range tokens {
		keys = append(keys, token)
	}
	sort.Strings(keys)
	var sum float64
	for _, key := range keys {
		sum += tokens[key] * tokens[key]
	}
	return math.Sqrt(sum)
}

// Counts returns a copy of the term weights for persistence.
func (f *Fingerprint) Counts() map[string]float64 {
	if f == nil {
		return nil
	}
	out := make(map[string]float64, len(f.tokens))
	for token, count := range f.tokens {
		out[token] = count
	}
	return out
}

// WithIDF returns a new Fingerprint with TF-IDF weights applied.
// Each term's count is multiplied by its IDF weight. The norm is recomputed.
// Terms absent from the IDF map retain their original weight.
func (f *Fingerprint) WithIDF(idf map[string]float64) *Fingerprint {
	if f == nil || len(idf) == 0 {
		return f
	}
	weighted := make(map[string]float64, len(f.tokens))
	for token, count := range f.tokens {
		w := count
		if idfVal, ok := idf[token]; ok {
			w *= idfVal
		}
		if w == 0 {
			continue
		}
		weighted[token] = w
	}
	if len(weighted) == 0 {
		return nil
	}
	return &Fingerprint{
		tokens: weighted,
		norm:   vectorNorm(weighted),
	}
}

// Corpus collects document frequency statistics for IDF computation.
type Corpus struct {
	docCount int
	docFreq  map[string]int
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{docFreq: make(map[string]int)}
}

// Add registers a fingerprint's unique terms in the corpus.
func (c *Corpus) Add(fp *Fingerprint) {
	if c == nil || fp == nil {
		return
	}
	c.docCount++
	for token := range fp.tokens {
		c.docFreq[token]++
	}
}

// Len returns the number of documents registered in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return c.docCount
}

// IDF computes smoothed inverse document frequency weights:
// log((N+1)/(1+df)) + 1 for each term. The +1 keeps terms shared by every
// document from vanishing, which matters for the small corpora a rolling
// publication window produces.
func (c *Corpus) IDF() map[string]float64 {
	if c == nil || c.docCount == 0 {
		return nil
	}
	idf := make(map[string]float64, len(c.docFreq))
	n := float64(c.docCount)
	for term, df := range c.docFreq {
		idf[term] = math.Log((n+1)/(1+float64(df))) + 1
	}
	return idf
}
