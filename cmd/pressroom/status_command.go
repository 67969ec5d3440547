package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pressroom/internal/history"
	"pressroom/internal/images"
	"pressroom/internal/lineup"
	"pressroom/internal/preflight"
	"pressroom/internal/state"
)

type statusSummary struct {
	ConfigPath   string             `json:"config_path"`
	ConfigExists bool               `json:"config_exists"`
	SignalSource string             `json:"signal_source"`
	Checks       []preflight.Result `json:"checks"`
	Articles     int                `json:"window_articles"`
	TrackedImage int                `json:"tracked_images"`
	PoolImages   int                `json:"pool_images"`
	Keywords     int                `json:"keywords"`
	Published    int                `json:"published_keywords"`
	LatestLineup string             `json:"latest_lineup,omitempty"`
	LineupSize   int                `json:"latest_lineup_size"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show readiness checks and store summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := collectStatus(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			return renderStatus(cmd, summary)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// collectStatus reads every store directly; it neither locks nor builds a
// signal source, so it works while a cycle runs or feeds are down.
func collectStatus(ctx context.Context, cc *commandContext) (statusSummary, error) {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return statusSummary{}, err
	}
	summary := statusSummary{
		ConfigPath:   cc.configPath,
		ConfigExists: cc.configExists,
		SignalSource: cfg.Signals.Source,
		Checks:       preflight.RunAll(ctx, cfg),
	}

	if snap, err := state.NewStore(cfg.Paths.StateDir).Load(); err == nil {
		summary.Articles = len(snap.Articles)
		summary.TrackedImage = len(snap.Usage)
	} else {
		summary.Checks = append(summary.Checks, preflight.Result{Name: "State files", Detail: err.Error()})
	}
	if pool, err := images.Scan(cfg.Paths.ImageDir); err == nil {
		summary.PoolImages = len(pool)
	}

	store, err := history.OpenFromConfig(cfg)
	if err != nil {
		summary.Checks = append(summary.Checks, preflight.Result{Name: "Keyword history", Detail: err.Error()})
	} else {
		defer store.Close()
		records, err := store.Keywords(ctx)
		if err != nil {
			return statusSummary{}, err
		}
		summary.Keywords = len(records)
		for _, rec := range records {
			if rec.LastPublished != nil {
				summary.Published++
			}
		}
	}

	lineups := lineup.NewStore(cfg.Paths.LineupFile, cfg.Lineup.RetainDays)
	if dates, err := lineups.Dates(); err == nil && len(dates) > 0 {
		summary.LatestLineup = dates[0]
		if days, err := lineups.Load(); err == nil {
			summary.LineupSize = len(days[dates[0]])
		}
	}
	return summary, nil
}

func renderStatus(cmd *cobra.Command, s statusSummary) error {
	out := cmd.OutOrStdout()
	report := newStatusReport(out)

	report.section("Configuration")
	if s.ConfigExists {
		report.add("Config", statusOK, s.ConfigPath)
	} else {
		report.add("Config", statusWarn, s.ConfigPath+" (not found, using defaults)")
	}
	report.add("Signal source", statusInfo, s.SignalSource)

	report.section("Readiness")
	for _, check := range s.Checks {
		report.check(check.Name, check.Passed, check.Detail)
	}

	report.section("Stores")
	report.add("Fingerprint window", statusInfo, fmt.Sprintf("%d articles", s.Articles))
	report.add("Image pool", statusInfo, fmt.Sprintf("%d images, %d used", s.PoolImages, s.TrackedImage))
	report.add("Keywords", statusInfo, fmt.Sprintf("%d tracked, %d published", s.Keywords, s.Published))
	if s.LatestLineup == "" {
		report.add("Latest lineup", statusWarn, "none planned yet")
	} else {
		report.add("Latest lineup", statusInfo, fmt.Sprintf("%s (%d entries)", s.LatestLineup, s.LineupSize))
	}
	return report.writeTo(out)
}
