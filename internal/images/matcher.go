// Package images ranks pool images for an article and tracks overuse.
package images

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"pressroom/internal/config"
	"pressroom/internal/keyword"
	"pressroom/internal/logging"
)

// Tier records which fallback level produced a selection.
type Tier string

const (
	TierPrimary Tier = "primary"
	TierGeneral Tier = "category_general"
	TierScene   Tier = "scene"
	TierDefault Tier = "default"
)

// Usage is the image usage store as the matcher sees it.
type Usage interface {
	Count(id string) int
	Increment(id string)
}

// Request describes the article needing an image.
type Request struct {
	Tokens   []string
	Category string
}

// NewRequest builds a request from a keyword phrase and category.
func NewRequest(phrase, category string) Request {
	return Request{Tokens: keyword.Tokens(phrase), Category: strings.ToLower(strings.TrimSpace(category))}
}

// Scored is one candidate's evaluation.
type Scored struct {
	Candidate Candidate `json:"candidate"`
	Overlap   float64   `json:"overlap"`
	Penalty   float64   `json:"penalty"`
	Score     float64   `json:"score"`
	Usage     int       `json:"usage"`
}

// Selection is the matcher's result. Default selections carry no candidate.
type Selection struct {
	Tier      Tier    `json:"tier"`
	ID        string  `json:"id"`
	Path      string  `json:"path"`
	Score     float64 `json:"score"`
	Candidate *Scored `json:"candidate,omitempty"`
}

// IsDefault reports whether the designated default image was used.
func (s Selection) IsDefault() bool {
	return s.Tier == TierDefault
}

// Options holds the scoring weights and limits.
type Options struct {
	FloorWidth        int
	FloorHeight       int
	QualityWidth      int
	QualityHeight     int
	RelevanceMinimum  float64
	OverlapWeight     float64
	CategoryBonus     float64
	SceneBonus        float64
	QualityBonus      float64
	OveruseGrowthRate float64
	OveruseScale      float64
	SceneVocabulary   []string
	DefaultImage      string
}

// OptionsFromConfig maps the images config section and default image path.
func OptionsFromConfig(cfg *config.Config) Options {
	i := cfg.Images
	return Options{
		FloorWidth:        i.FloorWidth,
		FloorHeight:       i.FloorHeight,
		QualityWidth:      i.QualityWidth,
		QualityHeight:     i.QualityHeight,
		RelevanceMinimum:  i.RelevanceMinimum,
		OverlapWeight:     i.OverlapWeight,
		CategoryBonus:     i.CategoryBonus,
		SceneBonus:        i.SceneBonus,
		QualityBonus:      i.QualityBonus,
		OveruseGrowthRate: i.OveruseGrowthRate,
		OveruseScale:      i.OveruseScale,
		SceneVocabulary:   i.SceneVocabulary,
		DefaultImage:      cfg.Paths.DefaultImage,
	}
}

// Matcher selects images. It holds no mutable state of its own.
type Matcher struct {
	opts   Options
	scenes map[string]struct{}
	logger *slog.Logger
}

// NewMatcher returns a matcher.
func NewMatcher(opts Options, logger *slog.Logger) *Matcher {
	if opts.OveruseScale <= 0 {
		opts.OveruseScale = 10
	}
	scenes := make(map[string]struct{}, len(opts.SceneVocabulary))
	for _, s := range opts.SceneVocabulary {
		scenes[strings.ToLower(s)] = struct{}{}
	}
	return &Matcher{opts: opts, scenes: scenes, logger: logging.NewComponentLogger(logger, "images")}
}

// OverusePenalty is rate × ln(1 + usage/scale). It strictly increases and has
// no ceiling, so any score gap between two candidates closes after enough picks.
func (m *Matcher) OverusePenalty(usage int) float64 {
	if usage <= 0 {
		return 0
	}
	return m.opts.OveruseGrowthRate * math.Log1p(float64(usage)/m.opts.OveruseScale)
}

// tier pairs a fallback level with the candidates it may draw from.
type tier struct {
	name  Tier
	admit func(Candidate, Request) bool
}

var tiers = []tier{
	{TierPrimary, func(c Candidate, _ Request) bool { return true }},
	{TierGeneral, func(c Candidate, r Request) bool { return c.Pool == PoolGeneral && c.Category == r.Category }},
	{TierScene, func(c Candidate, _ Request) bool { return c.Pool == PoolScene }},
}

// Select ranks the pool and returns the best candidate clearing the relevance
// minimum. When none does, it tries the category-general pool, then the
// scene pool, each ranked the same way without the minimum, and finally the
// default image. Usage is incremented exactly once for a non-default pick.
func (m *Matcher) Select(req Request, pool []Candidate, usage Usage) Selection {
	eligible := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if c.Width < m.opts.FloorWidth || c.Height < m.opts.FloorHeight {
			continue
		}
		eligible = append(eligible, c)
	}

	for _, t := range tiers {
		var ranked []Scored
		for _, c := range eligible {
			if t.admit(c, req) {
				ranked = append(ranked, m.Score(req, c, usage))
			}
		}
		if len(ranked) == 0 {
			continue
		}
		Rank(ranked)
		best := ranked[0]
		if t.name == TierPrimary && best.Score < m.opts.RelevanceMinimum {
			continue
		}
		if usage != nil {
			usage.Increment(best.Candidate.ID)
		}
		m.logger.Debug("image selected",
			logging.Args(append(logging.DecisionAttrs("image_select", string(t.name), "ranked"),
				logging.String("image_id", best.Candidate.ID),
				logging.Float64("score", best.Score),
				logging.Int("usage", best.Usage))...)...)
		return Selection{Tier: t.name, ID: best.Candidate.ID, Path: best.Candidate.Path, Score: best.Score, Candidate: &best}
	}

	m.logger.Info("default image used",
		logging.Args(append(logging.DecisionAttrs("image_select", string(TierDefault), "fallback chain exhausted"),
			logging.String("category", req.Category))...)...)
	return Selection{Tier: TierDefault, ID: defaultID, Path: m.opts.DefaultImage}
}

const defaultID = "default"

// Score evaluates one candidate for req.
func (m *Matcher) Score(req Request, c Candidate, usage Usage) Scored {
	overlap := tokenOverlap(req.Tokens, c.Tokens)
	score := m.opts.OverlapWeight * overlap
	if req.Category != "" && c.Category == req.Category {
		score += m.opts.CategoryBonus
	}
	if m.hasScene(c) {
		score += m.opts.SceneBonus
	}
	if c.Width >= m.opts.QualityWidth && c.Height >= m.opts.QualityHeight {
		score += m.opts.QualityBonus
	}
	count := 0
	if usage != nil {
		count = usage.Count(c.ID)
	}
	penalty := m.OverusePenalty(count)
	return Scored{Candidate: c, Overlap: overlap, Penalty: penalty, Score: score - penalty, Usage: count}
}

func (m *Matcher) hasScene(c Candidate) bool {
	if c.Scene != "" {
		if _, ok := m.scenes[c.Scene]; ok {
			return true
		}
	}
	for _, token := range c.Tokens {
		if _, ok := m.scenes[token]; ok {
			return true
		}
	}
	return false
}

// Rank orders by score desc, usage asc, newest first, then ID.
func Rank(scored []Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Usage != b.Usage {
			return a.Usage < b.Usage
		}
		if !a.Candidate.AddedAt.Equal(b.Candidate.AddedAt) {
			return a.Candidate.AddedAt.After(b.Candidate.AddedAt)
		}
		return a.Candidate.ID < b.Candidate.ID
	})
}

// tokenOverlap is the share of request tokens found in the candidate's tokens.
func tokenOverlap(want, have []string) float64 {
	if len(want) == 0 || len(have) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(want))
	var hits int
	for _, t := range want {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(seen))
}
