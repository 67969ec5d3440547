package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"pressroom/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "pressroom", "state")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	wantDefaultImage := filepath.Join(tempHome, ".local", "share", "pressroom", "images", "default.jpg")
	if cfg.Paths.DefaultImage != wantDefaultImage {
		t.Fatalf("unexpected default image: got %q want %q", cfg.Paths.DefaultImage, wantDefaultImage)
	}
	if cfg.Signals.Source != "synthetic" {
		t.Fatalf("expected synthetic signal source by default, got %q", cfg.Signals.Source)
	}
	if cfg.Lineup.CooldownDays != 14 {
		t.Fatalf("expected 14 day cooldown, got %d", cfg.Lineup.CooldownDays)
	}
	if cfg.Uniqueness.HammingThreshold != 12 {
		t.Fatalf("expected hamming threshold 12, got %d", cfg.Uniqueness.HammingThreshold)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.LineupFile)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "pressroom.toml")

	type payload struct {
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
		Lineup struct {
			TargetCount    int `toml:"target_count"`
			PerCategoryCap int `toml:"per_category_cap"`
		} `toml:"lineup"`
		Uniqueness struct {
			ExcludedHeadings []string `toml:"excluded_headings"`
		} `toml:"uniqueness"`
	}
	custom := payload{}
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Lineup.TargetCount = 4
	custom.Lineup.PerCategoryCap = 2
	custom.Uniqueness.ExcludedHeadings = []string{"  Conclusion ", "FAQ", "faq"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.StateDir != filepath.Join(tempDir, "state") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if cfg.Lineup.TargetCount != 4 || cfg.Lineup.PerCategoryCap != 2 {
		t.Fatalf("expected lineup overrides, got %+v", cfg.Lineup)
	}
	seen := map[string]int{}
	for _, heading := range cfg.Uniqueness.ExcludedHeadings {
		seen[heading]++
	}
	if seen["conclusion"] != 1 || seen["faq"] != 1 {
		t.Fatalf("expected normalized, deduplicated headings, got %v", cfg.Uniqueness.ExcludedHeadings)
	}
}

func TestEnvOverridesStateDir(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), "env-state")
	t.Setenv("PRESSROOM_STATE_DIR", stateDir)
	t.Setenv("PRESSROOM_SIGNAL_SOURCE", "Feeds")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.StateDir != stateDir {
		t.Fatalf("expected state dir from env, got %q", cfg.Paths.StateDir)
	}
	if cfg.Signals.Source != "feeds" {
		t.Fatalf("expected feeds source from env, got %q", cfg.Signals.Source)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"weights do not sum", func(c *config.Config) { c.Scoring.TrendWeight = 0.5 }, "sum to 1.0"},
		{"target above max", func(c *config.Config) { c.Lineup.TargetCount = 5 }, "lineup.target_count"},
		{"max target too large", func(c *config.Config) { c.Lineup.MaxTarget = 11 }, "lineup.min_target"},
		{"zero category cap", func(c *config.Config) { c.Lineup.PerCategoryCap = 0 }, "per_category_cap"},
		{"hamming out of range", func(c *config.Config) { c.Uniqueness.HammingThreshold = 65 }, "hamming_threshold"},
		{"section similarity zero", func(c *config.Config) { c.Uniqueness.SectionSimilarity = 0 }, "section_similarity"},
		{"overuse scale zero", func(c *config.Config) { c.Images.OveruseScale = 0 }, "overuse_scale"},
		{"overuse growth rate zero", func(c *config.Config) { c.Images.OveruseGrowthRate = 0 }, "overuse_growth_rate"},
		{"unknown source", func(c *config.Config) { c.Signals.Source = "reddit" }, "signals.source"},
		{"bad season date", func(c *config.Config) { c.Scoring.Seasons[0].Start = "13-45" }, "MM-DD"},
		{"no categories", func(c *config.Config) { c.Scoring.Categories = nil }, "scoring.categories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[uniqueness]") {
		t.Fatal("sample config missing uniqueness section")
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Uniqueness.HammingThreshold != 12 {
		t.Fatalf("expected sample hamming threshold 12, got %d", cfg.Uniqueness.HammingThreshold)
	}
}
