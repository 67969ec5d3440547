// Package signals supplies per-keyword time series from a configurable source.
//
// Two sources exist: a synthetic source that produces deterministic series
// seeded from the keyword phrase, and a feed source that counts daily
// mentions across RSS/Atom feeds. The scorer never branches on which source
// produced a series; it only sees Points and Metadata.
package signals

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/logging"
)

// Point is one observation in a keyword's signal series.
type Point struct {
	At        time.Time `json:"at"`
	Magnitude float64   `json:"magnitude"`
}

// Metadata carries the non-series facts a source knows about a keyword.
type Metadata struct {
	Tags         []string `json:"tags,omitempty"`
	CategoryHint string   `json:"category_hint,omitempty"`
	// Difficulty is a competition hint in [0,1]; nil when the source has none.
	Difficulty *float64 `json:"difficulty,omitempty"`
}

// Signal is the result of fetching one seed.
type Signal struct {
	Phrase   string
	Series   []Point
	Metadata Metadata
}

// Source fetches the signal for one seed keyword.
type Source interface {
	Name() string
	Fetch(ctx context.Context, seed Seed) (Signal, error)
}

// New selects a Source from cfg.Signals.Source.
func New(cfg *config.Config, logger *slog.Logger) (Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("signals: config is required")
	}
	logger = logging.NewComponentLogger(logger, "signals")
	switch cfg.Signals.Source {
	case "synthetic", "":
		return NewSyntheticSource(cfg.Signals.WindowDays), nil
	case "feeds":
		urls, err := LoadFeeds(cfg.Paths.FeedsFile)
		if err != nil {
			return nil, err
		}
		return NewFeedSource(urls, FeedOptions{
			WindowDays:  cfg.Signals.WindowDays,
			Concurrency: cfg.Signals.FetchConcurrency,
			Timeout:     time.Duration(cfg.Signals.RequestTimeout) * time.Second,
			Logger:      logger,
		}), nil
	default:
		return nil, fmt.Errorf("signals: unsupported source %q", cfg.Signals.Source)
	}
}

// Empty returns a signal with no series for seed. Callers substitute it when a
// fetch fails so the keyword is still scored, with a degraded trend.
func Empty(seed Seed) Signal {
	return Signal{Phrase: seed.Phrase, Metadata: metadataFromSeed(seed)}
}

func metadataFromSeed(seed Seed) Metadata {
	meta := Metadata{
		Tags:         append([]string(nil), seed.Tags...),
		CategoryHint: seed.Category,
	}
	if seed.Difficulty != nil {
		value := *seed.Difficulty
		meta.Difficulty = &value
	}
	return meta
}

func windowStart(now time.Time, days int) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -(days - 1))
}
