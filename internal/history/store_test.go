package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pressroom/internal/lineup"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMarkPublishedCommit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.RecordScore(ctx, "Best Mesh WiFi", "networking", 71.2, at.Add(-time.Hour)); err != nil {
		t.Fatalf("RecordScore: %v", err)
	}
	if err := tx.MarkPublished(ctx, "best mesh wifi", "networking", at); err != nil {
		t.Fatalf("MarkPublished: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback after commit should be a no-op: %v", err)
	}

	got, ok, err := store.LastPublished(ctx, "BEST mesh wifi")
	if err != nil || !ok {
		t.Fatalf("LastPublished: ok=%v err=%v", ok, err)
	}
	if !got.Equal(at) {
		t.Fatalf("LastPublished = %v, want %v", got, at)
	}

	records, err := store.Keywords(ctx)
	if err != nil {
		t.Fatalf("Keywords: %v", err)
	}
	if len(records) != 1 || records[0].PublishCount != 1 || records[0].LastScore != 71.2 {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.MarkPublished(ctx, "usb c dock", "computing", time.Now()); err != nil {
		t.Fatalf("MarkPublished: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if _, ok, err := store.LastPublished(ctx, "usb c dock"); err != nil || ok {
		t.Fatalf("rolled back publish visible: ok=%v err=%v", ok, err)
	}
}

func TestPublishCountIncrements(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	first := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 20)

	for _, at := range []time.Time{first, second} {
		tx, err := store.Begin(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if err := tx.MarkPublished(ctx, "espresso grinder", "kitchen", at); err != nil {
			t.Fatal(err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatal(err)
		}
	}

	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	at, ok := snapshot.LastPublished("Espresso Grinder")
	if !ok || !at.Equal(second) {
		t.Fatalf("snapshot last published = %v, %v", at, ok)
	}
	records, err := store.Keywords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].PublishCount != 2 || !records[0].FirstSeen.Equal(first) {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestRecordLineupAudit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	at := time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)
	entries := []lineup.Entry{
		{Keyword: "mesh router", Category: "networking", Angle: lineup.AngleSetupGuide, OpportunityScore: 70, EstimatedValue: 30},
		{Keyword: "sonos vs bose", Category: "audio", Angle: lineup.AngleComparison, OpportunityScore: 65, EstimatedValue: 25},
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if err := tx.RecordScore(ctx, e.Keyword, e.Category, e.OpportunityScore, at); err != nil {
			t.Fatal(err)
		}
	}
	if err := tx.RecordLineup(ctx, "cycle-1", at, entries); err != nil {
		t.Fatalf("RecordLineup: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	audit, err := store.LineupFor(ctx, "2026-10-16")
	if err != nil {
		t.Fatalf("LineupFor: %v", err)
	}
	if len(audit) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(audit))
	}
	if audit[0].Entry != entries[0] || audit[1].CycleID != "cycle-1" {
		t.Fatalf("unexpected audit rows %+v", audit)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if second.Path() != path {
		t.Fatalf("Path = %q", second.Path())
	}
}
