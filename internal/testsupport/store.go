package testsupport

import (
	"testing"

	"pressroom/internal/config"
	"pressroom/internal/history"
)

// MustOpenHistory opens the keyword history store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.OpenFromConfig(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
