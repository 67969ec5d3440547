package textutil

import (
	"slices"
	"strings"
)

// Shingles returns the sorted, de-duplicated hashes of every n-word window
// in text. Text shorter than n words yields a single shingle of all words.
func Shingles(text string, n int) []uint64 {
	if n < 1 {
		n = 1
	}
	words := Words(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) < n {
		return []uint64{hashString(strings.Join(words, " "))}
	}
	out := make([]uint64, 0, len(words)-n+1)
	for i := 0; i+n <= len(words); i++ {
		out = append(out, hashString(strings.Join(words[i:i+n], " ")))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Jaccard returns |a ∩ b| / |a ∪ b| for two sorted, de-duplicated shingle sets.
// Two empty sets compare as 0.
func Jaccard(a, b []uint64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var shared int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			shared++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}
