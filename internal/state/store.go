package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pressroom/internal/fileutil"
	"pressroom/internal/images"
	"pressroom/internal/uniqueness"
)

const (
	FingerprintsFile = "fingerprints.json"
	ImageUsageFile   = "image_usage.json"
)

// ErrStaleSnapshot reports that a store changed on disk after the snapshot
// was loaded.
var ErrStaleSnapshot = errors.New("state changed since snapshot was loaded")

type fingerprintsDoc struct {
	Version  int64                        `json:"version"`
	Articles map[string]uniqueness.Record `json:"articles"`
}

type usageDoc struct {
	Version int64          `json:"version"`
	Usage   map[string]int `json:"usage"`
}

// Snapshot is an in-memory copy of every store, taken at one point in time.
type Snapshot struct {
	FingerprintsVersion int64
	UsageVersion        int64
	Articles            map[string]uniqueness.Record
	Usage               images.UsageCounts
}

// Records returns the fingerprint window ordered by publish time, then ID.
func (s *Snapshot) Records() []uniqueness.Record {
	out := make([]uniqueness.Record, 0, len(s.Articles))
	for _, rec := range s.Articles {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.Before(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AddRecord stores an accepted article's fingerprint.
func (s *Snapshot) AddRecord(rec uniqueness.Record) {
	s.Articles[rec.ID] = rec
}

// ReplaceRecords swaps the fingerprint window for records.
func (s *Snapshot) ReplaceRecords(records []uniqueness.Record) {
	s.Articles = make(map[string]uniqueness.Record, len(records))
	for _, rec := range records {
		s.Articles[rec.ID] = rec
	}
}

// Store reads and writes the state files under one directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) fingerprintsPath() string { return filepath.Join(s.dir, FingerprintsFile) }
func (s *Store) usagePath() string { return filepath.Join(s.dir, ImageUsageFile) }

// Load reads every store. Missing files are empty stores at version 0; an
// unreadable or corrupt file is an error.
func (s *Store) Load() (*Snapshot, error) {
	var fp fingerprintsDoc
	if err := readJSON(s.fingerprintsPath(), &fp); err != nil {
		return nil, err
	}
	var usage usageDoc
	if err := readJSON(s.usagePath(), &usage); err != nil {
		return nil, err
	}
	snap := &Snapshot{
		FingerprintsVersion: fp.Version,
		UsageVersion:        usage.Version,
		Articles:            fp.Articles,
		Usage:               images.UsageCounts(usage.Usage),
	}
	if snap.Articles == nil {
		snap.Articles = map[string]uniqueness.Record{}
	}
	if snap.Usage == nil {
		snap.Usage = images.UsageCounts{}
	}
	return snap, nil
}

// Stage checks snap against disk and writes every store to its temp file in
// batch. Nothing becomes visible until the batch commits.
func (s *Store) Stage(batch *fileutil.Batch, snap *Snapshot) error {
	current, err := s.versions()
	if err != nil {
		return err
	}
	if current.fingerprints != snap.FingerprintsVersion || current.usage != snap.UsageVersion {
		return fmt.Errorf("%w (fingerprints %d→%d, usage %d→%d)", ErrStaleSnapshot,
			snap.FingerprintsVersion, current.fingerprints, snap.UsageVersion, current.usage)
	}
	if err := batch.StageJSON(s.fingerprintsPath(), fingerprintsDoc{
		Version:  snap.FingerprintsVersion + 1,
		Articles: snap.Articles,
	}); err != nil {
		return fmt.Errorf("stage fingerprints: %w", err)
	}
	if err := batch.StageJSON(s.usagePath(), usageDoc{
		Version: snap.UsageVersion + 1,
		Usage:   snap.Usage,
	}); err != nil {
		return fmt.Errorf("stage image usage: %w", err)
	}
	return nil
}

// Commit stages and swaps in snap. On success the snapshot's versions advance
// so it can be committed again.
func (s *Store) Commit(snap *Snapshot) error {
	var batch fileutil.Batch
	if err := s.Stage(&batch, snap); err != nil {
		_ = batch.Abort()
		return err
	}
	if err := batch.Commit(); err != nil {
		return err
	}
	snap.Advance()
	return nil
}

// Advance moves the snapshot to the versions a successful commit wrote.
func (s *Snapshot) Advance() {
	s.FingerprintsVersion++
	s.UsageVersion++
}

// Prune drops fingerprint records outside the guard window and commits the
// result.
// It returns the number of records removed.
func (s *Store) Prune(guard *uniqueness.Guard, now time.Time) (int, error) {
	snap, err := s.Load()
	if err != nil {
		return 0, err
	}
	before := len(snap.Articles)
	snap.ReplaceRecords(guard.Prune(snap.Records(), now))
	removed := before - len(snap.Articles)
	if removed == 0 {
		return 0, nil
	}
	if err := s.Commit(snap); err != nil {
		return 0, err
	}
	return removed, nil
}

type versions struct {
	fingerprints int64
	usage        int64
}

func (s *Store) versions() (versions, error) {
	var fp struct {
		Version int64 `json:"version"`
	}
	if err := readJSON(s.fingerprintsPath(), &fp); err != nil {
		return versions{}, err
	}
	var usage struct {
		Version int64 `json:"version"`
	}
	if err := readJSON(s.usagePath(), &usage); err != nil {
		return versions{}, err
	}
	return versions{fingerprints: fp.Version, usage: usage.Version}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
