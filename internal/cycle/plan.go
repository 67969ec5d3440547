package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pressroom/internal/fileutil"
	"pressroom/internal/keyword"
	"pressroom/internal/lineup"
	"pressroom/internal/logging"
	"pressroom/internal/metrics"
	"pressroom/internal/scoring"
	"pressroom/internal/signals"
)

// PlanOptions overrides the configured lineup bounds for one run. Zero
// values use the configuration.
type PlanOptions struct {
	TargetCount    int
	PerCategoryCap int
	DryRun         bool
}

// PlanResult describes one planning cycle.
type PlanResult struct {
	CycleID     string           `json:"cycle_id"`
	Date        string           `json:"date"`
	Entries     []lineup.Entry   `json:"entries"`
	Scored      []scoring.Result `json:"scored"`
	Degraded    int              `json:"degraded"`
	DryRun      bool             `json:"dry_run"`
	MetricsPath string           `json:"metrics_path,omitempty"`
}

// Planner scores the seed keywords and writes the day's lineup.
type Planner struct {
	env *Env
}

// NewPlanner returns a planner over env.
func NewPlanner(env *Env) *Planner {
	return &Planner{env: env}
}

// Plan runs one planning cycle. A fetch failure for a keyword degrades that
// keyword to an empty series; only store failures abort the cycle.
func (p *Planner) Plan(ctx context.Context, opts PlanOptions) (*PlanResult, error) {
	env := p.env
	cfg := env.Config
	start := env.now()
	cycleID := uuid.NewString()
	ctx = logging.WithCycleID(ctx, cycleID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(env.Logger, "planner"))

	lock, err := env.lock()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release cycle lock", logging.Error(err))
		}
	}()

	seeds, err := signals.LoadSeeds(cfg.Paths.SeedsFile)
	if err != nil {
		return nil, err
	}
	logger.Info("plan cycle started",
		logging.String(logging.FieldEventType, "plan_start"),
		logging.Int("seeds", len(seeds)),
		logging.String("source", env.Source.Name()),
	)

	m := metrics.NewCycle("plan", cycleID, start)
	keywords := p.fetch(ctx, logger, seeds)

	candidates := make([]lineup.Candidate, 0, len(keywords))
	scored := make([]scoring.Result, 0, len(keywords))
	degraded := 0
	for _, kw := range keywords {
		result := env.Scorer.ScoreKeyword(kw, start)
		m.KeywordsScored.Inc()
		if result.Degraded {
			degraded++
			m.DegradedSignals.Inc()
		}
		kw.IntentTerms = result.IntentMatches
		candidates = append(candidates, lineup.Candidate{Keyword: kw, Result: result})
		scored = append(scored, result)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].OpportunityScore != scored[j].OpportunityScore {
			return scored[i].OpportunityScore > scored[j].OpportunityScore
		}
		return scored[i].Keyword < scored[j].Keyword
	})

	published, err := env.History.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	target := cfg.Lineup.TargetCount
	if opts.TargetCount > 0 {
		target = opts.TargetCount
	}
	categoryCap := cfg.Lineup.PerCategoryCap
	if opts.PerCategoryCap > 0 {
		categoryCap = opts.PerCategoryCap
	}
	entries := env.Scheduler.Select(candidates, published, target, categoryCap, start)
	m.LineupSize.Set(float64(len(entries)))

	result := &PlanResult{
		CycleID:  cycleID,
		Date:     lineup.DateKey(start),
		Entries:  entries,
		Scored:   scored,
		Degraded: degraded,
		DryRun:   opts.DryRun,
	}
	if opts.DryRun {
		logger.Info("plan cycle finished (dry run)", logging.Int("lineup_size", len(entries)))
		return result, nil
	}

	if err := p.commit(ctx, cycleID, start, scored, entries); err != nil {
		logging.ErrorWithContext(logger, "plan commit failed", "plan_commit_failed",
			logging.String(logging.FieldErrorHint, "lineup and history were left unchanged; rerun plan"),
			logging.Error(err),
		)
		return nil, err
	}

	m.Finish(env.now())
	path, err := m.WriteTextfile(cfg.Paths.MetricsFile, "plan")
	if err != nil {
		logging.WarnWithContext(logger, "metrics not written", "metrics_write_failed",
			logging.String(logging.FieldErrorHint, "check paths.metrics_file permissions"),
			logging.String(logging.FieldImpact, "textfile collector shows the previous cycle"),
			logging.Error(err),
		)
	}
	result.MetricsPath = path

	logger.Info("plan cycle finished",
		logging.String(logging.FieldEventType, "plan_complete"),
		logging.String("date", result.Date),
		logging.Int("lineup_size", len(entries)),
		logging.Int("degraded", degraded),
		logging.Duration("duration", env.now().Sub(start)),
	)
	return result, nil
}

// fetch pulls every seed's signal with bounded concurrency. Results keep
// seed order.
func (p *Planner) fetch(ctx context.Context, logger *slog.Logger, seeds []signals.Seed) []keyword.Keyword {
	limit := p.env.Config.Signals.FetchConcurrency
	if limit < 1 {
		limit = 1
	}
	out := make([]keyword.Keyword, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, seed := range seeds {
		g.Go(func() error {
			sig, err := p.env.Source.Fetch(gctx, seed)
			if err != nil {
				logging.WarnWithContext(logger, "signal fetch failed; scoring with neutral trend", "signal_degraded",
					logging.String(logging.FieldKeyword, seed.Phrase),
					logging.String(logging.FieldErrorHint, "check the signal source"),
					logging.String(logging.FieldImpact, "trend sub-score defaults to 0.5"),
					logging.Error(err),
				)
				sig = signals.Empty(seed)
			}
			out[i] = keyword.FromSignal(sig, seed.Category)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// commit records scores and the lineup audit in one history transaction and
// swaps in the lineup file. The file is staged before the transaction so a
// staging failure leaves history untouched.
func (p *Planner) commit(ctx context.Context, cycleID string, at time.Time, scored []scoring.Result, entries []lineup.Entry) error {
	env := p.env
	var batch fileutil.Batch
	if err := env.Lineups.Stage(&batch, at, entries); err != nil {
		_ = batch.Abort()
		return fmt.Errorf("stage lineup: %w", err)
	}

	tx, err := env.History.Begin(ctx)
	if err != nil {
		_ = batch.Abort()
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range scored {
		if err := tx.RecordScore(ctx, r.Keyword, r.Category, r.OpportunityScore, at); err != nil {
			_ = batch.Abort()
			return err
		}
	}
	if err := tx.RecordLineup(ctx, cycleID, at, entries); err != nil {
		_ = batch.Abort()
		return err
	}
	if err := tx.Commit(); err != nil {
		_ = batch.Abort()
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("write lineup: %w", err)
	}
	return nil
}
