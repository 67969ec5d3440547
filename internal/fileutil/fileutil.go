// Package fileutil provides atomic file replacement helpers.
package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const tempSuffix = ".tmp"

// WriteFileAtomic writes data to a sibling temp file and renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	var batch Batch
	if err := batch.Stage(path, data, perm); err != nil {
		return err
	}
	return batch.Commit()
}

// WriteJSONAtomic marshals v with indentation and writes it atomically.
func WriteJSONAtomic(path string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0o644)
}

// MarshalJSON renders v the way every pressroom state file is stored.
func MarshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(data, '\n'), nil
}

// Batch stages several file replacements so they become visible together.
// Every Stage writes a temp file; nothing at a target path changes until
// Commit. Abort removes the temp files.
type Batch struct {
	staged []string
}

// Stage writes data to path's temp sibling, creating the parent directory.
func (b *Batch) Stage(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	tmp := path + tempSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	b.staged = append(b.staged, path)
	return nil
}

// StageJSON marshals v and stages it for path.
func (b *Batch) StageJSON(path string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return b.Stage(path, data, 0o644)
}

// Len returns the number of staged files.
func (b *Batch) Len() int {
	return len(b.staged)
}

// Commit renames every staged temp file over its target in staging order.
// A rename failure stops the commit and removes the remaining temp files.
func (b *Batch) Commit() error {
	for i, path := range b.staged {
		if err := os.Rename(path+tempSuffix, path); err != nil {
			for _, rest := range b.staged[i:] {
				os.Remove(rest + tempSuffix)
			}
			b.staged = nil
			return fmt.Errorf("rename temp file: %w", err)
		}
	}
	b.staged = nil
	return nil
}

// Abort discards every staged temp file.
func (b *Batch) Abort() error {
	var errs []error
	for _, path := range b.staged {
		if err := os.Remove(path + tempSuffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	b.staged = nil
	return errors.Join(errs...)
}
