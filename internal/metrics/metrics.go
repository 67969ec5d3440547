// Package metrics collects per-cycle counters and writes them for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pressroom"

// Cycle holds the metrics of one plan or publish cycle. Each cycle gets its
// own registry so the written file describes only that run.
type Cycle struct {
	Registry *prometheus.Registry

	KeywordsScored  prometheus.Counter
	DegradedSignals prometheus.Counter
	LineupSize      prometheus.Gauge
	GuardVerdicts   *prometheus.CounterVec
	ImageTiers      *prometheus.CounterVec
	Outcomes        *prometheus.CounterVec
	Duration        prometheus.Gauge
	LastSuccess     prometheus.Gauge

	start time.Time
}

// NewCycle registers a fresh metric set. kind labels the cycle ("plan" or
// "publish").
func NewCycle(kind, cycleID string, start time.Time) *Cycle {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"cycle": kind}

	c := &Cycle{
		Registry: reg,
		KeywordsScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "keywords_scored_total",
			Help:        "Keywords scored during the cycle",
			ConstLabels: constLabels,
		}),
		DegradedSignals: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "signals_degraded_total",
			Help:        "Keywords scored with missing or malformed signal data",
			ConstLabels: constLabels,
		}),
		LineupSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "lineup_size",
			Help:        "Entries in the selected lineup",
			ConstLabels: constLabels,
		}),
		GuardVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "guard_verdicts_total",
			Help:        "Uniqueness guard verdicts by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		ImageTiers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "image_selections_total",
			Help:        "Image selections by fallback tier",
			ConstLabels: constLabels,
		}, []string{"tier"}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "publish_outcomes_total",
			Help:        "Publish attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		Duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "cycle_duration_seconds",
			Help:        "Wall time of the cycle",
			ConstLabels: constLabels,
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "cycle_last_success_timestamp_seconds",
			Help:        "Unix time the cycle last completed",
			ConstLabels: constLabels,
		}),
		start: start,
	}
	factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "cycle_info",
		Help:        "Identifier of the cycle that wrote this file",
		ConstLabels: prometheus.Labels{"cycle": kind, "cycle_id": cycleID},
	}).Set(1)
	return c
}

// Verdict counts one guard verdict. Accepted drafts use reason "accepted".
func (c *Cycle) Verdict(reason string) {
	if c == nil {
		return
	}
	if strings.TrimSpace(reason) == "" {
		reason = "accepted"
	}
	c.GuardVerdicts.WithLabelValues(reason).Inc()
}

// Image counts one image selection.
func (c *Cycle) Image(tier string) {
	if c == nil {
		return
	}
	c.ImageTiers.WithLabelValues(tier).Inc()
}

// Outcome counts one publish outcome.
func (c *Cycle) Outcome(outcome string) {
	if c == nil {
		return
	}
	c.Outcomes.WithLabelValues(outcome).Inc()
}

// Finish records the duration and success time.
func (c *Cycle) Finish(end time.Time) {
	if c == nil {
		return
	}
	c.Duration.Set(end.Sub(c.start).Seconds())
	c.LastSuccess.Set(float64(end.Unix()))
}

// WriteTextfile writes the registry to path. The file name gains the cycle
// kind so plan and publish runs do not overwrite each other: metrics.prom
// becomes metrics.plan.prom. An empty path is a no-op.
func (c *Cycle) WriteTextfile(path, kind string) (string, error) {
	if c == nil || strings.TrimSpace(path) == "" {
		return "", nil
	}
	target := KindPath(path, kind)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(target, c.Registry); err != nil {
		return "", fmt.Errorf("write metrics: %w", err)
	}
	return target, nil
}

// KindPath inserts kind before the file extension.
func KindPath(path, kind string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + kind + ext
}
