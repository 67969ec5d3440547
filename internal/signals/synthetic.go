package signals

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"pressroom/internal/textutil"
)

// SyntheticSource produces a deterministic daily series per phrase. It stands
// in for a real provider when none is configured.
type SyntheticSource struct {
	windowDays int
	now        func() time.Time
}

// NewSyntheticSource returns a synthetic source covering windowDays days.
func NewSyntheticSource(windowDays int) *SyntheticSource {
	if windowDays <= 0 {
		windowDays = 90
	}
	return &SyntheticSource{windowDays: windowDays, now: time.Now}
}

// WithClock overrides the time source; used by tests and replays.
func (s *SyntheticSource) WithClock(now func() time.Time) *SyntheticSource {
	if now != nil {
		s.now = now
	}
	return s
}

// Name implements Source.
func (s *SyntheticSource) Name() string { return "synthetic" }

// Fetch implements Source. The same phrase on the same day always yields the
// same series.
func (s *SyntheticSource) Fetch(ctx context.Context, seed Seed) (Signal, error) {
	if err := ctx.Err(); err != nil {
		return Signal{}, err
	}
	phrase := textutil.NormalizePhrase(seed.Phrase)
	h := fnv.New64a()
	_, _ = h.Write([]byte(phrase))
	sum := h.Sum64()
	rng := rand.New(rand.NewPCG(sum, sum>>17|1))

	base := 20 + rng.Float64()*80
	// Slope in [-0.6, +0.9] of base across the window; positive more often.
	slope := (rng.Float64()*1.5 - 0.6) * base / float64(s.windowDays)
	noise := 0.08 * base

	start := windowStart(s.now(), s.windowDays)
	series := make([]Point, 0, s.windowDays)
	for day := 0; day < s.windowDays; day++ {
		value := base + slope*float64(day) + (rng.Float64()*2-1)*noise
		series = append(series, Point{
			At:        start.AddDate(0, 0, day),
			Magnitude: math.Max(0, math.Round(value*100)/100),
		})
	}

	return Signal{
		Phrase:   strings.TrimSpace(seed.Phrase),
		Series:   series,
		Metadata: metadataFromSeed(seed),
	}, nil
}
