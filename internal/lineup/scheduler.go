// Package lineup selects the day's keywords and assigns each a content angle.
package lineup

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/keyword"
	"pressroom/internal/logging"
	"pressroom/internal/scoring"
)

// Candidate is a keyword paired with its score for this cycle.
type Candidate struct {
	Keyword keyword.Keyword
	Result  scoring.Result
}

// Entry is one selected keyword for the day.
type Entry struct {
	Keyword          string  `json:"keyword"`
	Category         string  `json:"category"`
	Angle            Angle   `json:"angle"`
	OpportunityScore float64 `json:"opportunity_score"`
	EstimatedValue   float64 `json:"estimated_value"`
}

// History answers when a keyword was last published.
type History interface {
	LastPublished(keyword string) (time.Time, bool)
}

// MapHistory is an in-memory History keyed by normalized phrase.
type MapHistory map[string]time.Time

// LastPublished implements History.
func (m MapHistory) LastPublished(kw string) (time.Time, bool) {
	at, ok := m[keyword.Normalize(kw)]
	return at, ok
}

// Scheduler picks a bounded, category-diverse lineup.
type Scheduler struct {
	minTarget int
	maxTarget int
	cooldown  time.Duration
	logger    *slog.Logger
}

// NewScheduler builds a scheduler from the lineup config section.
func NewScheduler(cfg config.Lineup, logger *slog.Logger) *Scheduler {
	minTarget, maxTarget := cfg.MinTarget, cfg.MaxTarget
	if minTarget < 1 {
		minTarget = 1
	}
	if maxTarget < minTarget {
		maxTarget = minTarget
	}
	return &Scheduler{
		minTarget: minTarget,
		maxTarget: maxTarget,
		cooldown:  time.Duration(cfg.CooldownDays) * 24 * time.Hour,
		logger:    logging.NewComponentLogger(logger, "lineup"),
	}
}

// ClampTarget bounds a requested lineup size to the configured range.
func (s *Scheduler) ClampTarget(target int) int {
	return min(max(target, s.minTarget), s.maxTarget)
}

// Select filters keywords still in cooldown, ranks the rest by score, value,
// then phrase, and greedily fills up to targetCount slots while honoring
// perCategoryCap. The cap grows by one only after a full pass leaves slots
// open and every remaining keyword belongs to a capped category. Cooldown is
// never relaxed; a short lineup is returned instead.
func (s *Scheduler) Select(pool []Candidate, history History, targetCount, perCategoryCap int, now time.Time) []Entry {
	target := s.ClampTarget(targetCount)
	categoryCap := max(1, perCategoryCap)

	eligible := s.eligible(pool, history, now)
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i].Result, eligible[j].Result
		if a.OpportunityScore != b.OpportunityScore {
			return a.OpportunityScore > b.OpportunityScore
		}
		if a.EstimatedValue() != b.EstimatedValue() {
			return a.EstimatedValue() > b.EstimatedValue()
		}
		return eligible[i].Keyword.Key() < eligible[j].Keyword.Key()
	})

	picked := make([]bool, len(eligible))
	perCategory := make(map[string]int)
	selected := make([]Candidate, 0, target)
	for len(selected) < target {
		for i, cand := range eligible {
			if len(selected) == target {
				break
			}
			if picked[i] {
				continue
			}
			cat := categoryOf(cand)
			if perCategory[cat] >= categoryCap {
				continue
			}
			picked[i] = true
			perCategory[cat]++
			selected = append(selected, cand)
		}
		if len(selected) == target || len(selected) == len(eligible) {
			break
		}
		// Everything left sits in a capped category.
		categoryCap++
		s.logger.Info("category cap relaxed",
			logging.Args(append(logging.DecisionAttrs("category_cap", "relaxed", "uncapped inventory exhausted"),
				logging.Int("cap", categoryCap))...)...)
	}

	assigner := newAngleAssigner(now.YearDay())
	entries := make([]Entry, 0, len(selected))
	for _, cand := range selected {
		angle, how := assigner.next(cand.Keyword.Phrase)
		entries = append(entries, Entry{
			Keyword:          cand.Keyword.Key(),
			Category:         categoryOf(cand),
			Angle:            angle,
			OpportunityScore: cand.Result.OpportunityScore,
			EstimatedValue:   cand.Result.EstimatedValue(),
		})
		s.logger.Debug("keyword selected",
			logging.Args(append(logging.DecisionAttrs("lineup_select", "selected", how),
				logging.String(logging.FieldKeyword, cand.Keyword.Key()),
				logging.String("angle", string(angle)),
				logging.String("intent_terms", strings.Join(cand.Keyword.IntentTerms, ",")),
				logging.Float64("opportunity_score", cand.Result.OpportunityScore))...)...)
	}
	if len(entries) < target {
		s.logger.Info("short lineup",
			logging.Int("selected", len(entries)),
			logging.Int("target", target),
			logging.Int("eligible", len(eligible)),
		)
	}
	return entries
}

func (s *Scheduler) eligible(pool []Candidate, history History, now time.Time) []Candidate {
	seen := make(map[string]struct{}, len(pool))
	out := make([]Candidate, 0, len(pool))
	for _, cand := range pool {
		key := cand.Keyword.Key()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cand.Keyword = withHistory(cand.Keyword, history)
		if cand.Keyword.PublishedWithin(now, s.cooldown) {
			s.logger.Debug("keyword in cooldown",
				logging.Args(append(logging.DecisionAttrs("lineup_select", "skipped", "cooldown"),
					logging.String(logging.FieldKeyword, key),
					logging.String("last_published", cand.Keyword.LastPublished.Format(time.RFC3339)))...)...)
			continue
		}
		out = append(out, cand)
	}
	return out
}

// withHistory sets LastPublished to the later of the keyword's own value and
// the history record.
func withHistory(kw keyword.Keyword, history History) keyword.Keyword {
	if history == nil {
		return kw
	}
	at, ok := history.LastPublished(kw.Key())
	if !ok || (kw.LastPublished != nil && !at.After(*kw.LastPublished)) {
		return kw
	}
	kw.LastPublished = &at
	return kw
}

func categoryOf(c Candidate) string {
	cat := strings.TrimSpace(c.Result.Category)
	if cat == "" {
		cat = strings.TrimSpace(c.Keyword.Category)
	}
	if cat == "" {
		return "uncategorized"
	}
	return cat
}
