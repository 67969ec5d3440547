package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"pressroom/internal/keyword"
	"pressroom/internal/lineup"
)

// Tx groups one cycle's registry writes.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a registry transaction. Callers must Commit or Rollback.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	ctx = ensureContext(ctx)
	var tx *sql.Tx
	err := retryOnBusy(ctx, func() error {
		var beginErr error
		tx, beginErr = s.db.BeginTx(ctx, nil)
		return beginErr
	})
	if err != nil {
		return nil, fmt.Errorf("begin history tx: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit makes the transaction's writes durable.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit history tx: %w", err)
	}
	return nil
}

// Rollback discards the transaction. Calling it after Commit is a no-op.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback history tx: %w", err)
	}
	return nil
}

// RecordScore registers phrase if new and stores its latest score.
func (t *Tx) RecordScore(ctx context.Context, phrase, category string, score float64, at time.Time) error {
	phrase = keyword.Normalize(phrase)
	stamp := formatTime(at)
	return t.exec(ctx, psql.Insert("keywords").
		Columns("phrase", "category", "first_seen", "last_scored", "last_score").
		Values(phrase, category, stamp, stamp, score).
		Suffix("ON CONFLICT(phrase) DO UPDATE SET category = excluded.category, last_scored = excluded.last_scored, last_score = excluded.last_score"))
}

// MarkPublished sets phrase's last-published time and bumps its publish count.
func (t *Tx) MarkPublished(ctx context.Context, phrase, category string, at time.Time) error {
	phrase = keyword.Normalize(phrase)
	stamp := formatTime(at)
	return t.exec(ctx, psql.Insert("keywords").
		Columns("phrase", "category", "first_seen", "last_published", "publish_count").
		Values(phrase, category, stamp, stamp, 1).
		Suffix("ON CONFLICT(phrase) DO UPDATE SET last_published = excluded.last_published, publish_count = keywords.publish_count + 1"))
}

// RecordLineup appends the day's selected entries to the audit table. Every
// entry's keyword must already be registered through RecordScore.
func (t *Tx) RecordLineup(ctx context.Context, cycleID string, at time.Time, entries []lineup.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	now := formatTime(at)
	insert := psql.Insert("lineup_entries").
		Columns("cycle_id", "lineup_date", "position", "phrase", "category", "angle", "opportunity_score", "estimated_value", "created_at")
	for i, e := range entries {
		insert = insert.Values(cycleID, lineup.DateKey(at), i, e.Keyword, e.Category, string(e.Angle), e.OpportunityScore, e.EstimatedValue, now)
	}
	return t.exec(ctx, insert)
}

func (t *Tx) exec(ctx context.Context, builder sq.Sqlizer) error {
	ctx = ensureContext(ctx)
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	return retryOnBusy(ctx, func() error {
		_, execErr := t.tx.ExecContext(ctx, query, args...)
		return execErr
	})
}
