package scoring

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/keyword"
	"pressroom/internal/signals"
)

var evalDay = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	cfg := config.Default()
	s, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	return s
}

func series(values ...float64) []signals.Point {
	start := evalDay.AddDate(0, 0, -len(values)+1)
	out := make([]signals.Point, len(values))
	for i, v := range values {
		out[i] = signals.Point{At: start.AddDate(0, 0, i), Magnitude: v}
	}
	return out
}

func TestCompositeScenario(t *testing.T) {
	sub := SubScores{Trend: 0.9, Intent: 0.8, Seasonality: 0.5, Fit: 1.0}
	got := Composite(sub, 0.1, DefaultWeights())
	// 100 × 0.83 × 0.94
	if math.Abs(got-78.02) > 1e-9 {
		t.Fatalf("Composite = %v, want 78.02", got)
	}
	if again := Composite(sub, 0.1, DefaultWeights()); again != got {
		t.Fatalf("Composite not reproducible: %v vs %v", got, again)
	}
}

func TestCompositeDifficultyMonotonic(t *testing.T) {
	sub := SubScores{Trend: 0.6, Intent: 0.4, Seasonality: 0.3, Fit: 0.8}
	prev := Composite(sub, 0, DefaultWeights())
	for d := 0.1; d <= 1.0001; d += 0.1 {
		cur := Composite(sub, d, DefaultWeights())
		if cur >= prev {
			t.Fatalf("difficulty %.1f: score %v not below %v", d, cur, prev)
		}
		prev = cur
	}
}

func TestCompositeClampsInputs(t *testing.T) {
	got := Composite(SubScores{Trend: 2, Intent: -1, Seasonality: math.NaN(), Fit: 1}, 5, DefaultWeights())
	want := 100 * (0.35 + 0.20) * 0.4
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Composite = %v, want %v", got, want)
	}
}

func TestTrend(t *testing.T) {
	s := newTestScorer(t)
	tests := []struct {
		name     string
		series   []signals.Point
		check    func(float64) bool
		degraded bool
		note     string
	}{
		{"rising", series(10, 10, 10, 10, 10, 10, 10, 30, 30, 30), func(v float64) bool { return v > 0.8 }, false, "vs 10-day baseline"},
		{"falling", series(30, 30, 30, 30, 30, 30, 30, 5, 5, 5), func(v float64) bool { return v < 0.2 }, false, "-"},
		{"flat", series(10, 10, 10, 10, 10, 10, 10, 10, 10, 10), func(v float64) bool { return v == 0.5 }, false, "+0%"},
		{"empty", nil, func(v float64) bool { return v == 0.5 }, true, "empty series"},
		{"nan", series(1, math.NaN(), 3), func(v float64) bool { return v == 0.5 }, true, "malformed"},
		{"negative", series(1, -2, 3), func(v float64) bool { return v == 0.5 }, true, "malformed"},
		{"zero baseline", series(0, 0, 0), func(v float64) bool { return v == 0.5 }, true, "zero baseline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, note, degraded := s.trend(tt.series)
			if !tt.check(value) {
				t.Fatalf("trend = %v", value)
			}
			if degraded != tt.degraded {
				t.Fatalf("degraded = %v, want %v", degraded, tt.degraded)
			}
			if !strings.Contains(note, tt.note) {
				t.Fatalf("note %q missing %q", note, tt.note)
			}
		})
	}
}

func TestScoreFlagsDegradedInput(t *testing.T) {
	s := newTestScorer(t)
	res := s.Score(keyword.Keyword{Phrase: "best mesh wifi", Category: "networking"}, nil, signals.Metadata{}, evalDay)
	if !res.Degraded {
		t.Fatal("expected degraded flag for empty series")
	}
	if res.SubScores.Trend != 0.5 {
		t.Fatalf("trend = %v, want 0.5", res.SubScores.Trend)
	}
	if !strings.HasPrefix(res.Rationale[FactorTrend], "degraded") {
		t.Fatalf("rationale = %q", res.Rationale[FactorTrend])
	}
}

func TestIntent(t *testing.T) {
	s := newTestScorer(t)
	tests := []struct {
		phrase string
		tags   []string
		want   float64
	}{
		{"best sonos arc vs bose", nil, 1},
		{"sonos arc review", nil, 0.5},
		{"sonos arc", []string{"deal"}, 0.5},
		{"sonos arc", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			value, matches, _ := s.intent(newFeatures(keyword.Keyword{Phrase: tt.phrase}, signals.Metadata{Tags: tt.tags}))
			if value != tt.want {
				t.Fatalf("intent = %v (matches %v), want %v", value, matches, tt.want)
			}
		})
	}
}

func TestSeasonality(t *testing.T) {
	s := newTestScorer(t)
	kw := keyword.Keyword{Phrase: "black friday tv deals"}
	feat := newFeatures(kw, signals.Metadata{})

	tests := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"inside", time.Date(2026, 11, 25, 0, 0, 0, 0, time.UTC), 1},
		{"lead", time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC), 1 - 10.0/21.0},
		{"tail", time.Date(2026, 12, 4, 0, 0, 0, 0, time.UTC), 1 - 2.0/5.0},
		{"off season", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := s.seasonality(feat, tt.at)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("seasonality = %v, want %v", got, tt.want)
			}
		})
	}

	evergreen, note := s.seasonality(newFeatures(keyword.Keyword{Phrase: "usb c hub"}, signals.Metadata{}), evalDay)
	if evergreen != 0.3 || !strings.Contains(note, "evergreen") {
		t.Fatalf("evergreen = %v (%s), want 0.3", evergreen, note)
	}
}

func TestSeasonWrapsYearEnd(t *testing.T) {
	cfg := config.Default()
	cfg.Scoring.Seasons = []config.Season{{Name: "winter-sale", Start: "12-20", End: "01-05", LeadDays: 5, Terms: []string{"sale"}}}
	s, err := New(cfg.Scoring, cfg.Revenue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	feat := newFeatures(keyword.Keyword{Phrase: "router sale"}, signals.Metadata{})
	if got, _ := s.seasonality(feat, time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)); got != 1 {
		t.Fatalf("wrapped season = %v, want 1", got)
	}
	if got, _ := s.seasonality(feat, time.Date(2026, 12, 17, 0, 0, 0, 0, time.UTC)); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("lead into wrapped season = %v, want 0.4", got)
	}
}

func TestFit(t *testing.T) {
	s := newTestScorer(t)
	tests := []struct {
		name         string
		kw           keyword.Keyword
		want         float64
		wantCategory string
	}{
		{"exact category", keyword.Keyword{Phrase: "anything at all", Category: "audio"}, 1, "audio"},
		{"inferred", keyword.Keyword{Phrase: "mesh router"}, 1, "networking"},
		{"partial", keyword.Keyword{Phrase: "router for gaming consoles"}, 1.0 / 3.0, "networking"},
		{"out of domain", keyword.Keyword{Phrase: "knitting yarn patterns"}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, category, _ := s.fit(newFeatures(tt.kw, signals.Metadata{}), tt.kw.Category)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("fit = %v, want %v", got, tt.want)
			}
			if category != tt.wantCategory {
				t.Fatalf("category = %q, want %q", category, tt.wantCategory)
			}
		})
	}
}

func TestDifficulty(t *testing.T) {
	s := newTestScorer(t)
	hint := 0.72
	got, note := s.difficulty(newFeatures(keyword.Keyword{Phrase: "router"}, signals.Metadata{}), signals.Metadata{Difficulty: &hint})
	if got != 0.72 || !strings.Contains(note, "hint") {
		t.Fatalf("hinted difficulty = %v (%s)", got, note)
	}

	head, _ := s.difficulty(newFeatures(keyword.Keyword{Phrase: "router"}, signals.Metadata{}), signals.Metadata{})
	tail, _ := s.difficulty(newFeatures(keyword.Keyword{Phrase: "wifi 6e router small apartment"}, signals.Metadata{}), signals.Metadata{})
	if head <= tail {
		t.Fatalf("head term difficulty %v should exceed long tail %v", head, tail)
	}
	generic, _ := s.difficulty(newFeatures(keyword.Keyword{Phrase: "best router"}, signals.Metadata{}), signals.Metadata{})
	plain, _ := s.difficulty(newFeatures(keyword.Keyword{Phrase: "mesh router"}, signals.Metadata{}), signals.Metadata{})
	if generic <= plain {
		t.Fatalf("generic modifier should raise difficulty: %v vs %v", generic, plain)
	}
}

func TestEstimateValue(t *testing.T) {
	cfg := config.Default()
	cfg.Revenue.CategoryPageviews = map[string]float64{"audio": 10000}
	cfg.Revenue.CategoryCommissions = map[string]float64{"audio": 0.08}
	s, err := New(cfg.Scoring, cfg.Revenue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v := s.EstimateValue(100, "networking")
	if v.Pageviews != 3000 || v.Ad != 54 || v.Affiliate != 46.08 || v.Total != 100.08 {
		t.Fatalf("unexpected default value %+v", v)
	}
	audio := s.EstimateValue(50, "audio")
	if audio.Pageviews != 5000 || audio.Ad != 90 || audio.Affiliate != 153.6 {
		t.Fatalf("unexpected audio value %+v", audio)
	}
	if zero := s.EstimateValue(0, "audio"); zero.Total != 0 {
		t.Fatalf("zero score should project zero value, got %+v", zero)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := newTestScorer(t)
	kw := keyword.Keyword{Phrase: "Best Mesh WiFi vs Router", Category: "networking"}
	pts := series(5, 6, 7, 8, 9, 10, 12, 14, 16, 18)
	a := s.Score(kw, pts, signals.Metadata{Tags: []string{"review"}}, evalDay)
	b := s.Score(kw, pts, signals.Metadata{Tags: []string{"review"}}, evalDay)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Score not deterministic:\n%+v\n%+v", a, b)
	}
	if a.Keyword != "best mesh wifi vs router" {
		t.Fatalf("keyword not normalized: %q", a.Keyword)
	}
	want := Composite(a.SubScores, a.Difficulty, s.Weights())
	if a.OpportunityScore != want {
		t.Fatalf("score %v not derivable from sub-scores (%v)", a.OpportunityScore, want)
	}
	for _, key := range []string{FactorTrend, FactorIntent, FactorSeasonality, FactorFit, FactorDifficulty} {
		if a.Rationale[key] == "" {
			t.Fatalf("missing rationale for %s", key)
		}
	}
}
