package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"pressroom/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "seeds.yaml")
	if err := os.WriteFile(f, []byte("seeds: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckFileReadable("seeds", f); !r.Passed {
		t.Fatalf("expected pass, got: %s", r.Detail)
	}
	if r := CheckFileReadable("seeds", dir); r.Passed {
		t.Fatal("expected failure for directory")
	}
	if r := CheckFileReadable("seeds", ""); r.Passed || r.Detail != "not configured" {
		t.Fatalf("expected not configured, got %+v", r)
	}
}

func TestCheckFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if r := CheckFeed(context.Background(), srv.Client(), srv.URL+"/rss"); !r.Passed {
		t.Fatalf("expected pass, got: %s", r.Detail)
	}
	if r := CheckFeed(context.Background(), srv.Client(), srv.URL+"/missing"); r.Passed {
		t.Fatal("expected failure for 404")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func minimalConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(dir, "state")
	cfg.Paths.ImageDir = filepath.Join(dir, "images")
	cfg.Paths.DraftsDir = ""
	cfg.Paths.SeedsFile = filepath.Join(dir, "seeds.yaml")
	cfg.Paths.DefaultImage = filepath.Join(cfg.Paths.ImageDir, "default.jpg")
	for _, d := range []string{cfg.Paths.StateDir, cfg.Paths.ImageDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range []string{cfg.Paths.SeedsFile, cfg.Paths.DefaultImage} {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := minimalConfig(t)

	results := RunAll(context.Background(), &cfg)
	// state, seeds, image pool, default image
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_IncludesFeedsWhenEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := minimalConfig(t)
	cfg.Signals.Source = "feeds"
	cfg.Paths.FeedsFile = filepath.Join(t.TempDir(), "feeds.yaml")
	if err := os.WriteFile(cfg.Paths.FeedsFile, []byte("feeds:\n  - "+srv.URL+"/rss\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Feed "+srv.URL+"/rss" {
			found = true
			if !r.Passed {
				t.Errorf("feed check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected feed check in results")
	}
}

func TestRunAll_ReportsMissingImagePool(t *testing.T) {
	cfg := minimalConfig(t)
	cfg.Paths.ImageDir = filepath.Join(t.TempDir(), "missing")

	failed := Failed(RunAll(context.Background(), &cfg))
	if len(failed) != 1 || failed[0].Name != "Image pool" {
		t.Fatalf("expected only the image pool to fail, got %+v", failed)
	}
}
