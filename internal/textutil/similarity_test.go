package textutil

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, NewFingerprint("hello world"), 0},
		{"b nil", NewFingerprint("hello world"), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog"
	got := CosineSimilarity(NewFingerprint(text), NewFingerprint(text))
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityCompleteDifferent(t *testing.T) {
	a := NewFingerprint("apple banana cherry")
	b := NewFingerprint("dog elephant frog")

	if got := CosineSimilarity(a, b); got != 0 {
		t.Errorf("CosineSimilarity(different) = %v, want 0", got)
	}
}

func TestCosineSimilarityPartialOverlapIsSymmetric(t *testing.T) {
	a := NewFingerprint("the quick brown fox sleeps")
	b := NewFingerprint("the slow brown cat")

	ab := CosineSimilarity(a, b)
	ba := CosineSimilarity(b, a)
	if ab <= 0 || ab >= 1 {
		t.Errorf("CosineSimilarity(partial) = %v, want between 0 and 1", ab)
	}
	if ab != ba {
		t.Errorf("CosineSimilarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestTokenizeFoldsAndFilters(t *testing.T) {
	got := Tokenize("Café CRÈME vs. an Espresso-machine!")
	want := []string{"cafe", "creme", "espresso", "machine"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if phrase := NormalizePhrase("  Best   WiFi-6 Routers "); phrase != "best wifi 6 routers" {
		t.Fatalf("NormalizePhrase() = %q", phrase)
	}
}

func TestCorpusIDFSmoothing(t *testing.T) {
	corpus := NewCorpus()
	corpus.Add(NewFingerprint("router mesh wifi"))
	corpus.Add(NewFingerprint("router modem cable"))

	idf := corpus.IDF()
	if corpus.Len() != 2 {
		t.Fatalf("expected 2 documents, got %d", corpus.Len())
	}
	if got := idf["router"]; math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("shared term idf = %v, want 1.0", got)
	}
	want := math.Log(3.0/2.0) + 1
	if got := idf["mesh"]; math.Abs(got-want) > 1e-9 {
		t.Fatalf("rare term idf = %v, want %v", got, want)
	}
	weighted := NewFingerprint("router mesh").WithIDF(idf)
	if weighted.Counts()["mesh"] <= weighted.Counts()["router"] {
		t.Fatalf("expected rare term to outweigh shared term: %v", weighted.Counts())
	}
}

func TestFingerprintFromCountsRoundTrip(t *testing.T) {
	original := NewFingerprint("smart plug smart hub smart lock")
	rebuilt := FingerprintFromCounts(original.Counts())
	if got := CosineSimilarity(original, rebuilt); math.Abs(got-1) > 1e-9 {
		t.Fatalf("rebuilt fingerprint similarity = %v, want 1", got)
	}
	if FingerprintFromCounts(map[string]float64{"x": 0}) != nil {
		t.Fatal("expected nil fingerprint for zero counts")
	}
}

func TestSimHashIdenticalAndDistinct(t *testing.T) {
	text := "Mesh routers spread coverage across large homes while single routers struggle with thick walls and long hallways."
	if d := Hamming(NewSimHash(text), NewSimHash(text)); d != 0 {
		t.Fatalf("identical texts hamming = %d, want 0", d)
	}
	other := "Espresso grinders need burr alignment, consistent dosing, and regular cleaning to pull balanced shots every morning."
	if d := Hamming(NewSimHash(text), NewSimHash(other)); d == 0 {
		t.Fatal("unrelated texts should not share a simhash")
	}
	if NewSimHash("") != 0 {
		t.Fatal("empty text should hash to zero")
	}
}

func TestSimHashJSON(t *testing.T) {
	hash := SimHash(0xdeadbeefcafef00d)
	data, err := json.Marshal(hash)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"deadbeefcafef00d"` {
		t.Fatalf("unexpected encoding %s", data)
	}
	var decoded SimHash
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != hash {
		t.Fatalf("decoded %v, want %v", decoded, hash)
	}
	if err := json.Unmarshal([]byte(`"not-hex"`), &decoded); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

func TestShinglesAndJaccard(t *testing.T) {
	a := Shingles("the cat sat on the mat", 3)
	if len(a) != 4 {
		t.Fatalf("expected 4 shingles, got %d", len(a))
	}
	for i := 1; i < len(a); i++ {
		if a[i-1] >= a[i] {
			t.Fatal("shingles must be sorted and unique")
		}
	}
	b := Shingles("the cat sat on a rug", 3)
	ab, ba := Jaccard(a, b), Jaccard(b, a)
	if ab != ba {
		t.Fatalf("Jaccard not symmetric: %v vs %v", ab, ba)
	}
	// shared: "the cat sat", "cat sat on" → 2 / (4 + 4 - 2)
	if math.Abs(ab-2.0/6.0) > 1e-9 {
		t.Fatalf("Jaccard = %v, want %v", ab, 2.0/6.0)
	}
	if got := Jaccard(a, a); got != 1 {
		t.Fatalf("self Jaccard = %v, want 1", got)
	}
	if got := Jaccard(a, Shingles("completely different words here", 3)); got != 0 {
		t.Fatalf("disjoint Jaccard = %v, want 0", got)
	}
	if got := Jaccard(nil, nil); got != 0 {
		t.Fatalf("empty Jaccard = %v, want 0", got)
	}
	if short := Shingles("two words", 3); len(short) != 1 {
		t.Fatalf("short text should yield one shingle, got %d", len(short))
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Best Mesh Routers 2026": "best-mesh-routers-2026",
		"  Sonos vs. Bose ":      "sonos-vs-bose",
		"Crème brûlée torch":     "creme-brulee-torch",
		"???":                    "untitled",
	}
	for input, want := range tests {
		if got := Slug(input); got != want {
			t.Errorf("Slug(%q) = %q, want %q", input, got, want)
		}
	}
}
