// Package textutil provides text processing utilities for fingerprinting,
// similarity, and slug generation.
//
// The primary use cases are:
//   - Folding text (case, width, diacritics) and splitting it into word tokens
//   - Term-frequency fingerprints with optional TF-IDF weighting and cosine similarity
//   - 64-bit SimHash fingerprints compared by Hamming distance
//   - Word n-gram shingle sets compared by Jaccard similarity
//   - Filesystem-safe slugs for keywords and article identifiers
//
// Term-frequency tokenization drops tokens shorter than 3 characters; shingles
// and SimHash features are built from the same folded word stream so that two
// texts differing only in case or accents fingerprint identically.
package textutil
