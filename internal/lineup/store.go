package lineup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"pressroom/internal/fileutil"
	"pressroom/internal/keyword"
)

// DateLayout keys the lineup file.
const DateLayout = "2006-01-02"

// DateKey returns the lineup file key for t.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Store reads and writes the lineup file: a JSON object mapping a date to
// that day's entries. The generator treats the file as the sole source of
// what to write.
type Store struct {
	path       string
	retainDays int
}

// NewStore returns a store for path that keeps retainDays of history.
func NewStore(path string, retainDays int) *Store {
	if retainDays < 1 {
		retainDays = 1
	}
	return &Store{path: path, retainDays: retainDays}
}

// Path returns the lineup file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads every stored day. A missing file is an empty lineup; an
// unreadable or corrupt file is an error.
func (s *Store) Load() (map[string][]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string][]Entry{}, nil
		}
		return nil, fmt.Errorf("read lineup file: %w", err)
	}
	days := map[string][]Entry{}
	if len(data) == 0 {
		return days, nil
	}
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("parse lineup file: %w", err)
	}
	return days, nil
}

// Day returns the entries stored for date.
func (s *Store) Day(date time.Time) ([]Entry, bool, error) {
	days, err := s.Load()
	if err != nil {
		return nil, false, err
	}
	entries, ok := days[DateKey(date)]
	return entries, ok, nil
}

// Find returns the date's entry for kw. Both sides are normalized, so
// "Best Mesh WiFi" finds the stored "best mesh wifi".
func (s *Store) Find(date time.Time, kw string) (Entry, bool, error) {
	entries, _, err := s.Day(date)
	if err != nil {
		return Entry{}, false, err
	}
	want := keyword.Normalize(kw)
	for _, entry := range entries {
		if keyword.Normalize(entry.Keyword) == want {
			return entry, true, nil
		}
	}
	return Entry{}, false, nil
}

// Dates returns the stored dates, newest first.
func (s *Store) Dates() ([]string, error) {
	days, err := s.Load()
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// Stage writes the lineup for date, replacing any earlier lineup for the same
// day and dropping days older than the retention window, into batch. Nothing
// is visible until the batch commits.
func (s *Store) Stage(batch *fileutil.Batch, date time.Time, entries []Entry) error {
	days, err := s.Load()
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}
	days[DateKey(date)] = entries
	cutoff := DateKey(date.AddDate(0, 0, -s.retainDays))
	for key := range days {
		if key < cutoff {
			delete(days, key)
		}
	}
	return batch.StageJSON(s.path, days)
}

// Save stages and commits the lineup for date in one step.
func (s *Store) Save(date time.Time, entries []Entry) error {
	var batch fileutil.Batch
	if err := s.Stage(&batch, date, entries); err != nil {
		_ = batch.Abort()
		return err
	}
	return batch.Commit()
}
