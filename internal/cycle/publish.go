package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"pressroom/internal/fileutil"
	"pressroom/internal/history"
	"pressroom/internal/images"
	"pressroom/internal/lineup"
	"pressroom/internal/logging"
	"pressroom/internal/metrics"
	"pressroom/internal/state"
	"pressroom/internal/textutil"
	"pressroom/internal/uniqueness"
)

// Status is the result of publishing one entry.
type Status string

const (
	StatusPublished Status = "published"
	StatusSkipped   Status = "skipped"
)

// Attempt records one draft evaluated for an entry.
type Attempt struct {
	Angle   lineup.Angle        `json:"angle"`
	Verdict *uniqueness.Verdict `json:"verdict,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Outcome describes what happened to one lineup entry.
type Outcome struct {
	CycleID   string            `json:"cycle_id"`
	Keyword   string            `json:"keyword"`
	Status    Status            `json:"status"`
	Angle     lineup.Angle      `json:"angle,omitempty"`
	ArticleID string            `json:"article_id,omitempty"`
	Image     *images.Selection `json:"image,omitempty"`
	Attempts  []Attempt         `json:"attempts"`
}

// Skipped reports whether every attempt was rejected or missing.
func (o Outcome) Skipped() bool {
	return o.Status == StatusSkipped
}

// Publisher runs drafts through the uniqueness guard and attaches an image.
type Publisher struct {
	env *Env
}

// NewPublisher returns a publisher over env.
func NewPublisher(env *Env) *Publisher {
	return &Publisher{env: env}
}

// Publish evaluates one entry under its own cycle.
func (p *Publisher) Publish(ctx context.Context, entry lineup.Entry, gen Generator) (Outcome, error) {
	outcomes, err := p.run(ctx, []lineup.Entry{entry}, gen)
	if err != nil {
		return Outcome{}, err
	}
	return outcomes[0], nil
}

// PublishDay evaluates every entry of date's lineup under one cycle. A day
// without a lineup is an error.
func (p *Publisher) PublishDay(ctx context.Context, date time.Time, gen Generator) ([]Outcome, error) {
	entries, ok, err := p.env.Lineups.Day(date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no lineup for %s", lineup.DateKey(date))
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return p.run(ctx, entries, gen)
}

// run holds the cycle lock, evaluates entries in order against one snapshot,
// and commits the snapshot and history together. Accepted articles join the
// window immediately, so later entries in the same cycle are checked
// against them.
func (p *Publisher) run(ctx context.Context, entries []lineup.Entry, gen Generator) ([]Outcome, error) {
	env := p.env
	start := env.now()
	cycleID := uuid.NewString()
	ctx = logging.WithCycleID(ctx, cycleID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(env.Logger, "publisher"))

	lock, err := env.lock()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release cycle lock", logging.Error(err))
		}
	}()

	snap, err := env.State.Load()
	if err != nil {
		return nil, err
	}
	pool := p.scanPool(logger)
	m := metrics.NewCycle("publish", cycleID, start)

	tx, err := env.History.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	outcomes := make([]Outcome, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome := p.evaluate(ctx, logger, m, entry, gen, snap, start)
		outcome.CycleID = cycleID
		if outcome.Status == StatusPublished {
			sel := env.Matcher.Select(images.NewRequest(entry.Keyword, entry.Category), pool, snap.Usage)
			outcome.Image = &sel
			m.Image(string(sel.Tier))
			if err := tx.MarkPublished(ctx, entry.Keyword, entry.Category, start); err != nil {
				return nil, err
			}
		}
		m.Outcome(string(outcome.Status))
		outcomes = append(outcomes, outcome)
	}
	snap.ReplaceRecords(env.Guard.Prune(snap.Records(), start))

	if err := p.commit(tx, snap); err != nil {
		logging.ErrorWithContext(logger, "publish commit failed", "publish_commit_failed",
			logging.String(logging.FieldErrorHint, "state files were left unchanged; rerun publish"),
			logging.Error(err),
		)
		return nil, err
	}

	m.Finish(env.now())
	if _, err := m.WriteTextfile(env.Config.Paths.MetricsFile, "publish"); err != nil {
		logging.WarnWithContext(logger, "metrics not written", "metrics_write_failed",
			logging.String(logging.FieldErrorHint, "check paths.metrics_file permissions"),
			logging.Error(err),
		)
	}
	logger.Info("publish cycle finished",
		logging.String(logging.FieldEventType, "publish_complete"),
		logging.Int("entries", len(entries)),
		logging.Int("window", len(snap.Articles)),
		logging.Duration("duration", env.now().Sub(start)),
	)
	return outcomes, nil
}

// evaluate tries the entry's assigned angle, then the alternates, up to
// uniqueness.max_attempts drafts. The first accepted draft is fingerprinted
// into snap.
func (p *Publisher) evaluate(ctx context.Context, logger *slog.Logger, m *metrics.Cycle, entry lineup.Entry, gen Generator, snap *state.Snapshot, now time.Time) Outcome {
	env := p.env
	outcome := Outcome{Keyword: entry.Keyword, Status: StatusSkipped}
	angles := append([]lineup.Angle{entry.Angle}, lineup.AlternateAngles(entry)...)
	if !entry.Angle.Valid() {
		angles = append([]lineup.Angle(nil), lineup.Angles...)
	}
	maxAttempts := max(1, env.Config.Uniqueness.MaxAttempts)
	if len(angles) > maxAttempts {
		angles = angles[:maxAttempts]
	}

	window := snap.Records()
	for i, angle := range angles {
		attempt := Attempt{Angle: angle}
		draft, err := gen.Generate(ctx, DraftRequest{Entry: entry, Angle: angle, Attempt: i + 1})
		if err != nil {
			attempt.Error = err.Error()
			outcome.Attempts = append(outcome.Attempts, attempt)
			if !errors.Is(err, ErrNoDraft) {
				logging.WarnWithContext(logger, "draft generation failed", "draft_failed",
					logging.String(logging.FieldKeyword, entry.Keyword),
					logging.String("angle", string(angle)),
					logging.Error(err),
				)
			}
			continue
		}

		verdict := env.Guard.Check(draft, window, now)
		attempt.Verdict = &verdict
		outcome.Attempts = append(outcome.Attempts, attempt)
		m.Verdict(string(verdict.Reason))
		if !verdict.Accepted {
			logger.Info("draft rejected",
				logging.Args(append(logging.DecisionAttrs("uniqueness", "rejected", string(verdict.Reason)),
					logging.String(logging.FieldKeyword, entry.Keyword),
					logging.String("angle", string(angle)),
					logging.String("prior_id", verdict.PriorID),
					logging.Float64("similarity", verdict.Similarity),
				)...)...)
			continue
		}

		id := ArticleID(entry.Keyword, angle, now)
		snap.AddRecord(env.Guard.NewRecord(id, entry.Keyword, draft, now))
		outcome.Status = StatusPublished
		outcome.Angle = angle
		outcome.ArticleID = id
		logger.Info("draft accepted",
			logging.Args(append(logging.DecisionAttrs("uniqueness", "accepted", "no near-duplicate in window"),
				logging.String(logging.FieldKeyword, entry.Keyword),
				logging.String("angle", string(angle)),
				logging.String("article_id", id),
				logging.Int("attempt", i+1),
			)...)...)
		return outcome
	}

	logging.WarnWithContext(logger, "entry skipped after exhausting angles", "entry_skipped",
		logging.String(logging.FieldKeyword, entry.Keyword),
		logging.Int("attempts", len(outcome.Attempts)),
		logging.String(logging.FieldImpact, "keyword not published this cycle"),
	)
	return outcome
}

// ArticleID identifies an accepted article in the fingerprint window.
func ArticleID(phrase string, angle lineup.Angle, at time.Time) string {
	return path.Join(lineup.DateKey(at), textutil.Slug(phrase)+"--"+string(angle))
}

func (p *Publisher) scanPool(logger *slog.Logger) []images.Candidate {
	pool, err := images.Scan(p.env.Config.Paths.ImageDir)
	if err != nil {
		logging.WarnWithContext(logger, "image pool unavailable", "image_pool_unreadable",
			logging.String(logging.FieldErrorHint, "check paths.image_dir"),
			logging.String(logging.FieldImpact, "articles get the default image"),
			logging.Error(err),
		)
		return nil
	}
	return pool
}

// commit stages the snapshot, commits the history transaction, then swaps
// the state files in.
func (p *Publisher) commit(tx *history.Tx, snap *state.Snapshot) error {
	var batch fileutil.Batch
	if err := p.env.State.Stage(&batch, snap); err != nil {
		_ = batch.Abort()
		return err
	}
	if err := tx.Commit(); err != nil {
		_ = batch.Abort()
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	snap.Advance()
	return nil
}
