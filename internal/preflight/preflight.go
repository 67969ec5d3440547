package preflight

import (
	"context"

	"pressroom/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Written every cycle
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	// Inputs
	results = append(results, CheckFileReadable("Seed keywords", cfg.Paths.SeedsFile))
	results = append(results, CheckDirectoryReadable("Image pool", cfg.Paths.ImageDir))
	results = append(results, CheckFileReadable("Default image", cfg.Paths.DefaultImage))
	if cfg.Paths.DraftsDir != "" {
		results = append(results, CheckDirectoryReadable("Drafts directory", cfg.Paths.DraftsDir))
	}

	if cfg.Signals.Source == "feeds" {
		results = append(results, CheckFeeds(ctx, cfg.Paths.FeedsFile, cfg.Signals.RequestTimeout)...)
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
