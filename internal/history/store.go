package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"pressroom/internal/config"
	"pressroom/internal/keyword"
	"pressroom/internal/lineup"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Record is one row of the keyword registry.
type Record struct {
	Phrase        string     `json:"phrase"`
	Category      string     `json:"category"`
	FirstSeen     time.Time  `json:"first_seen"`
	LastScored    *time.Time `json:"last_scored,omitempty"`
	LastScore     float64    `json:"last_score"`
	LastPublished *time.Time `json:"last_published,omitempty"`
	PublishCount  int        `json:"publish_count"`
}

// AuditEntry is one lineup row as recorded by a planning cycle.
type AuditEntry struct {
	CycleID string       `json:"cycle_id"`
	Date    string       `json:"date"`
	Entry   lineup.Entry `json:"entry"`
}

// Store is the SQLite-backed keyword registry.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the registry database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenFromConfig opens the registry at the configured state location.
func OpenFromConfig(cfg *config.Config) (*Store, error) {
	return Open(cfg.HistoryDBPath())
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LastPublished returns when phrase was last published.
func (s *Store) LastPublished(ctx context.Context, phrase string) (time.Time, bool, error) {
	query, args, err := psql.Select("last_published").
		From("keywords").
		Where(sq.Eq{"phrase": keyword.Normalize(phrase)}).
		Where(sq.NotEq{"last_published": nil}).
		ToSql()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build query: %w", err)
	}
	var raw string
	err = s.db.QueryRowContext(ensureContext(ctx), query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last published: %w", err)
	}
	at, err := parseTime(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last published for %q: %w", phrase, err)
	}
	return at, true, nil
}

// Snapshot loads every keyword's last-published time into a lineup.History.
func (s *Store) Snapshot(ctx context.Context) (lineup.MapHistory, error) {
	query, args, err := psql.Select("phrase", "last_published").
		From("keywords").
		Where(sq.NotEq{"last_published": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query published keywords: %w", err)
	}
	defer rows.Close()

	out := lineup.MapHistory{}
	for rows.Next() {
		var phrase, raw string
		if err := rows.Scan(&phrase, &raw); err != nil {
			return nil, fmt.Errorf("scan published keyword: %w", err)
		}
		at, err := parseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("parse last published for %q: %w", phrase, err)
		}
		out[phrase] = at
	}
	return out, rows.Err()
}

// Keywords lists the registry, most recently published first.
func (s *Store) Keywords(ctx context.Context) ([]Record, error) {
	query, args, err := psql.Select("phrase", "category", "first_seen", "last_scored", "last_score", "last_published", "publish_count").
		From("keywords").
		OrderBy("last_published IS NULL", "last_published DESC", "phrase ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec           Record
			firstSeen     string
			lastScored    sql.NullString
			lastScore     sql.NullFloat64
			lastPublished sql.NullString
		)
		if err := rows.Scan(&rec.Phrase, &rec.Category, &firstSeen, &lastScored, &lastScore, &lastPublished, &rec.PublishCount); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		if rec.FirstSeen, err = parseTime(firstSeen); err != nil {
			return nil, fmt.Errorf("parse first seen for %q: %w", rec.Phrase, err)
		}
		if rec.LastScored, err = parseNullTime(lastScored); err != nil {
			return nil, fmt.Errorf("parse last scored for %q: %w", rec.Phrase, err)
		}
		if rec.LastPublished, err = parseNullTime(lastPublished); err != nil {
			return nil, fmt.Errorf("parse last published for %q: %w", rec.Phrase, err)
		}
		rec.LastScore = lastScore.Float64
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LineupFor returns the audited lineup rows for a date key, in selection order.
func (s *Store) LineupFor(ctx context.Context, date string) ([]AuditEntry, error) {
	query, args, err := psql.Select("cycle_id", "lineup_date", "phrase", "category", "angle", "opportunity_score", "estimated_value").
		From("lineup_entries").
		Where(sq.Eq{"lineup_date": date}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lineup entries: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var (
			a     AuditEntry
			angle string
		)
		if err := rows.Scan(&a.CycleID, &a.Date, &a.Entry.Keyword, &a.Entry.Category, &angle,
			&a.Entry.OpportunityScore, &a.Entry.EstimatedValue); err != nil {
			return nil, fmt.Errorf("scan lineup entry: %w", err)
		}
		a.Entry.Angle = lineup.Angle(angle)
		out = append(out, a)
	}
	return out, rows.Err()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func parseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
