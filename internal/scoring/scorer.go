// Package scoring turns a keyword's signal series and metadata into a 0-100
// opportunity score, an estimated monthly value, and a per-sub-score rationale.
//
// A Scorer is immutable after construction and safe for concurrent use. The
// composite score depends only on the four sub-scores, the difficulty
// penalty, and the configured weights; see Composite.
package scoring

import (
	"fmt"
	"math"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/keyword"
	"pressroom/internal/signals"
)

// Rationale keys.
const (
	FactorTrend       = "trend"
	FactorIntent      = "intent"
	FactorSeasonality = "seasonality"
	FactorFit         = "fit"
	FactorDifficulty  = "difficulty"
)

// SubScores holds the four normalized inputs to the composite, each in [0,1].
type SubScores struct {
	Trend       float64 `json:"trend"`
	Intent      float64 `json:"intent"`
	Seasonality float64 `json:"seasonality"`
	Fit         float64 `json:"fit"`
}

// Weights are the composite weights. The first four sum to 1.
type Weights struct {
	Trend       float64
	Intent      float64
	Seasonality float64
	Fit         float64
	Difficulty  float64
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{Trend: 0.35, Intent: 0.30, Seasonality: 0.15, Fit: 0.20, Difficulty: 0.6}
}

// Result is one keyword's evaluation at one point in time.
type Result struct {
	Keyword          string            `json:"keyword"`
	Category         string            `json:"category"`
	SubScores        SubScores         `json:"sub_scores"`
	Difficulty       float64           `json:"difficulty"`
	OpportunityScore float64           `json:"opportunity_score"`
	Value            Value             `json:"estimated_value"`
	IntentMatches    []string          `json:"intent_matches,omitempty"`
	Rationale        map[string]string `json:"rationale"`
	Degraded         bool              `json:"degraded"`
	EvaluatedAt      time.Time         `json:"evaluated_at"`
}

// EstimatedValue returns the total projected monthly value.
func (r Result) EstimatedValue() float64 {
	return r.Value.Total
}

// Composite computes 100 × weighted sub-score sum × (1 − w_d·difficulty).
// Inputs are clamped to [0,1].
func Composite(sub SubScores, difficulty float64, w Weights) float64 {
	base := w.Trend*clamp01(sub.Trend) +
		w.Intent*clamp01(sub.Intent) +
		w.Seasonality*clamp01(sub.Seasonality) +
		w.Fit*clamp01(sub.Fit)
	penalty := 1 - w.Difficulty*clamp01(difficulty)
	return 100 * base * penalty
}

// Scorer evaluates keywords against the configured vocabularies and weights.
type Scorer struct {
	weights          Weights
	recentFraction   float64
	steepness        float64
	intentTerms      []string
	intentSaturation int
	evergreen        float64
	categories       map[string]map[string]struct{}
	categoryOrder    []string
	seasons          []season
	revenue          config.Revenue
}

// New builds a Scorer. The scoring section must already be validated.
func New(scoring config.Scoring, revenue config.Revenue) (*Scorer, error) {
	seasons, err := parseSeasons(scoring.Seasons)
	if err != nil {
		return nil, err
	}
	s := &Scorer{
		weights: Weights{
			Trend:       scoring.TrendWeight,
			Intent:      scoring.IntentWeight,
			Seasonality: scoring.SeasonalityWeight,
			Fit:         scoring.FitWeight,
			Difficulty:  scoring.DifficultyMultiplier,
		},
		recentFraction:   scoring.RecentFraction,
		steepness:        scoring.TrendSteepness,
		intentTerms:      append([]string(nil), scoring.IntentTerms...),
		intentSaturation: scoring.IntentSaturation,
		evergreen:        scoring.EvergreenSeasonality,
		categories:       make(map[string]map[string]struct{}, len(scoring.Categories)),
		seasons:          seasons,
		revenue:          revenue,
	}
	if s.recentFraction <= 0 || s.recentFraction >= 1 {
		s.recentFraction = 0.3
	}
	if s.steepness <= 0 {
		s.steepness = 4
	}
	if s.intentSaturation <= 0 {
		s.intentSaturation = 1
	}
	for _, cat := range scoring.Categories {
		vocab := make(map[string]struct{}, len(cat.Terms)+1)
		for _, term := range cat.Terms {
			for _, token := range keyword.Tokens(term) {
				vocab[token] = struct{}{}
			}
		}
		s.categories[cat.Name] = vocab
		s.categoryOrder = append(s.categoryOrder, cat.Name)
	}
	return s, nil
}

// NewFromConfig is a convenience wrapper around New.
func NewFromConfig(cfg *config.Config) (*Scorer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("scoring: config is required")
	}
	return New(cfg.Scoring, cfg.Revenue)
}

// Weights returns the scorer's composite weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// ScoreKeyword scores kw using the series and metadata it carries.
func (s *Scorer) ScoreKeyword(kw keyword.Keyword, at time.Time) Result {
	return s.Score(kw, kw.Series, kw.Metadata, at)
}

// Score evaluates one keyword. It never fails: malformed series degrade the
// trend sub-score to 0.5 and set Degraded.
func (s *Scorer) Score(kw keyword.Keyword, series []signals.Point, meta signals.Metadata, at time.Time) Result {
	rationale := make(map[string]string, 5)
	features := newFeatures(kw, meta)

	trend, trendNote, degraded := s.trend(series)
	rationale[FactorTrend] = trendNote

	intent, matches, intentNote := s.intent(features)
	rationale[FactorIntent] = intentNote

	seasonality, seasonNote := s.seasonality(features, at)
	rationale[FactorSeasonality] = seasonNote

	category := kw.Category
	if category == "" {
		category = meta.CategoryHint
	}
	fit, resolved, fitNote := s.fit(features, category)
	rationale[FactorFit] = fitNote

	difficulty, diffNote := s.difficulty(features, meta)
	rationale[FactorDifficulty] = diffNote

	sub := SubScores{Trend: trend, Intent: intent, Seasonality: seasonality, Fit: fit}
	score := Composite(sub, difficulty, s.weights)

	return Result{
		Keyword:          kw.Key(),
		Category:         resolved,
		SubScores:        sub,
		Difficulty:       difficulty,
		OpportunityScore: score,
		Value:            s.EstimateValue(score, resolved),
		IntentMatches:    matches,
		Rationale:        rationale,
		Degraded:         degraded,
		EvaluatedAt:      at,
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
