package scoring

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"pressroom/internal/keyword"
	"pressroom/internal/signals"
)

// features is the token view of a keyword shared by the sub-scores.
type features struct {
	phrase string
	words  map[string]struct{}
	tokens []string
}

func newFeatures(kw keyword.Keyword, meta signals.Metadata) features {
	f := features{phrase: " " + kw.Key() + " ", words: make(map[string]struct{})}
	f.tokens = kw.Tokens()
	for _, word := range kw.Words() {
		f.words[word] = struct{}{}
	}
	for _, tag := range meta.Tags {
		normalized := keyword.Normalize(tag)
		if normalized == "" {
			continue
		}
		f.phrase += normalized + " "
		for _, word := range strings.Fields(normalized) {
			f.words[word] = struct{}{}
		}
	}
	return f
}

// has reports whether a single- or multi-word term appears in the phrase or tags.
func (f features) has(term string) bool {
	if !strings.Contains(term, " ") {
		_, ok := f.words[term]
		return ok
	}
	return strings.Contains(f.phrase, " "+term+" ")
}

func (s *Scorer) trend(series []signals.Point) (float64, string, bool) {
	if len(series) == 0 {
		return 0.5, "degraded: empty series, neutral 0.5", true
	}
	points := slices.Clone(series)
	sort.SliceStable(points, func(i, j int) bool { return points[i].At.Before(points[j].At) })

	var total float64
	for _, p := range points {
		if math.IsNaN(p.Magnitude) || math.IsInf(p.Magnitude, 0) || p.Magnitude < 0 {
			return 0.5, "degraded: malformed magnitude, neutral 0.5", true
		}
		total += p.Magnitude
	}
	baseline := total / float64(len(points))
	if baseline == 0 {
		return 0.5, "degraded: zero baseline, neutral 0.5", true
	}

	recentCount := int(math.Ceil(float64(len(points))*s.recentFraction - 1e-9))
	recentCount = max(1, min(recentCount, len(points)))
	var recent float64
	for _, p := range points[len(points)-recentCount:] {
		recent += p.Magnitude
	}
	recentMean := recent / float64(recentCount)

	lift := recentMean/baseline - 1
	value := 1 / (1 + math.Exp(-s.steepness*lift))

	days := int(points[len(points)-1].At.Sub(points[0].At).Hours()/24) + 1
	return value, fmt.Sprintf("%+.0f%% vs %d-day baseline", lift*100, days), false
}

func (s *Scorer) intent(f features) (float64, []string, string) {
	var matches []string
	for _, term := range s.intentTerms {
		if f.has(term) {
			matches = append(matches, term)
		}
	}
	value := math.Min(1, float64(len(matches))/float64(s.intentSaturation))
	if len(matches) == 0 {
		return 0, nil, "no commercial-intent terms"
	}
	return value, matches, fmt.Sprintf("matched %s", strings.Join(matches, ", "))
}

func (s *Scorer) fit(f features, category string) (float64, string, string) {
	category = strings.ToLower(strings.TrimSpace(category))
	if _, ok := s.categories[category]; ok {
		return 1, category, fmt.Sprintf("category %s is covered", category)
	}
	if len(f.tokens) == 0 {
		return 0, category, "no tokens to match"
	}

	best, bestName := 0.0, ""
	for _, name := range s.categoryOrder {
		vocab := s.categories[name]
		if len(vocab) == 0 {
			continue
		}
		var shared int
		for _, token := range f.tokens {
			if _, ok := vocab[token]; ok {
				shared++
			}
		}
		// Overlap coefficient: a short keyword fully inside one vocabulary fits completely.
		overlap := float64(shared) / float64(min(len(f.tokens), len(vocab)))
		if overlap > best {
			best, bestName = overlap, name
		}
	}
	if bestName == "" {
		return 0, category, "out of domain"
	}
	if category == "" {
		category = bestName
	}
	return math.Min(1, best), category, fmt.Sprintf("%.0f%% token overlap with %s", best*100, bestName)
}

var genericModifiers = []string{"best", "top", "cheap", "review", "reviews"}

func (s *Scorer) difficulty(f features, meta signals.Metadata) (float64, string) {
	if meta.Difficulty != nil && !math.IsNaN(*meta.Difficulty) {
		value := clamp01(*meta.Difficulty)
		return value, fmt.Sprintf("source hint %.2f", value)
	}
	n := len(f.tokens)
	if n == 0 {
		n = 1
	}
	// Head terms saturate; each extra word narrows the competition.
	value := 0.2 + 0.65/float64(n)
	note := fmt.Sprintf("heuristic: %d-word phrase", n)
	for _, modifier := range genericModifiers {
		if _, ok := f.words[modifier]; ok {
			value += 0.1
			note += ", generic modifier"
			break
		}
	}
	return clamp01(value), note
}
