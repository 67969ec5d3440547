package textutil

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/bits"
	"strconv"
)

// SimHash is a 64-bit locality-sensitive document fingerprint. Documents
// sharing most of their vocabulary land a small Hamming distance apart.
type SimHash uint64

// NewSimHash builds a SimHash over the term frequencies of text.
func NewSimHash(text string) SimHash {
	counts := make(map[string]int)
	for _, token := range Tokenize(text) {
		counts[token]++
	}
	if len(counts) == 0 {
		return 0
	}
	var vector [64]int
	for token, weight := range counts {
		h := hashString(token)
		for bit := 0; bit < 64; bit++ {
			if h&(1<<uint(bit)) != 0 {
				vector[bit] += weight
			} else {
				vector[bit] -= weight
			}
		}
	}
	var out uint64
	for bit := 0; bit < 64; bit++ {
		if vector[bit] > 0 {
			out |= 1 << uint(bit)
		}
	}
	return SimHash(out)
}

// Hamming returns the number of differing bits between two hashes.
func Hamming(a, b SimHash) int {
	return bits.OnesCount64(uint64(a) ^ uint64(b))
}

// String renders the hash as 16 lowercase hex digits.
func (s SimHash) String() string {
	return fmt.Sprintf("%016x", uint64(s))
}

// MarshalJSON encodes the hash as a hex string so it survives JSON number handling.
func (s SimHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the hex form written by MarshalJSON.
func (s *SimHash) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("simhash: %w", err)
	}
	value, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return fmt.Errorf("simhash: parse %q: %w", raw, err)
	}
	*s = SimHash(value)
	return nil
}

func hashString(value string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(value))
	return h.Sum64()
}
