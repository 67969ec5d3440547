package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the cycle lock inside the state directory.
const LockFileName = "cycle.lock"

// ErrLocked reports that another cycle holds the lock.
var ErrLocked = errors.New("another cycle is active")

// CycleLock is a held cycle lock.
type CycleLock struct {
	lock *flock.Flock
}

// Lock acquires the cycle lock without blocking.
func Lock(dir string) (*CycleLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cycle lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock: %s)", ErrLocked, path)
	}
	return &CycleLock{lock: lock}, nil
}

// Path returns the lock file location.
func (l *CycleLock) Path() string {
	return l.lock.Path()
}

// Unlock releases the lock. It is safe to call more than once.
func (l *CycleLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release cycle lock: %w", err)
	}
	return nil
}
