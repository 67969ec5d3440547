package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"pressroom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose every path lives under a fresh temp
// directory. The image pool and drafts directories exist but are empty.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LineupFile = filepath.Join(base, "state", "lineup.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ImageDir = filepath.Join(base, "images")
	cfgVal.Paths.DraftsDir = filepath.Join(base, "drafts")
	cfgVal.Paths.SeedsFile = filepath.Join(base, "seeds.yaml")
	cfgVal.Paths.FeedsFile = filepath.Join(base, "feeds.yaml")
	cfgVal.Paths.DefaultImage = filepath.Join(base, "images", "default.jpg")

	for _, dir := range []string{cfgVal.Paths.ImageDir, cfgVal.Paths.DraftsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSeeds writes the seeds YAML document to paths.seeds_file.
func WithSeeds(doc string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.WriteFile(b.cfg.Paths.SeedsFile, []byte(doc), 0o644); err != nil {
			b.t.Fatalf("write seeds: %v", err)
		}
	}
}

// WithMetricsFile enables the Prometheus textfile under the temp directory.
func WithMetricsFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MetricsFile = filepath.Join(b.baseDir, "metrics", "pressroom.prom")
	}
}

// WithImages writes one pool image per slash-separated relative path, each at
// the given resolution.
func WithImages(width, height int, paths ...string) ConfigOption {
	return func(b *configBuilder) {
		for _, rel := range paths {
			WritePNG(b.t, filepath.Join(b.cfg.Paths.ImageDir, filepath.FromSlash(rel)), width, height)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
