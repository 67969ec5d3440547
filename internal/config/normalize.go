package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScoring()
	c.normalizeRevenue()
	c.normalizeUniqueness()
	c.normalizeImages()
	c.normalizeSignals()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("PRESSROOM_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("PRESSROOM_IMAGE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ImageDir = strings.TrimSpace(value)
	}

	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LineupFile) == "" {
		c.Paths.LineupFile = filepath.Join(c.Paths.StateDir, "lineup.json")
	}
	if c.Paths.LineupFile, err = expandPath(c.Paths.LineupFile); err != nil {
		return fmt.Errorf("paths.lineup_file: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ImageDir, err = expandPath(c.Paths.ImageDir); err != nil {
		return fmt.Errorf("paths.image_dir: %w", err)
	}
	if c.Paths.DraftsDir, err = expandPath(c.Paths.DraftsDir); err != nil {
		return fmt.Errorf("paths.drafts_dir: %w", err)
	}
	if c.Paths.SeedsFile, err = expandPath(c.Paths.SeedsFile); err != nil {
		return fmt.Errorf("paths.seeds_file: %w", err)
	}
	if c.Paths.FeedsFile, err = expandPath(c.Paths.FeedsFile); err != nil {
		return fmt.Errorf("paths.feeds_file: %w", err)
	}
	if c.Paths.MetricsFile, err = expandPath(strings.TrimSpace(c.Paths.MetricsFile)); err != nil {
		return fmt.Errorf("paths.metrics_file: %w", err)
	}

	// A bare default image name lives inside the image pool.
	c.Paths.DefaultImage = strings.TrimSpace(c.Paths.DefaultImage)
	if c.Paths.DefaultImage == "" {
		c.Paths.DefaultImage = defaultDefaultImage
	}
	if !filepath.IsAbs(c.Paths.DefaultImage) && !strings.HasPrefix(c.Paths.DefaultImage, "~") {
		c.Paths.DefaultImage = filepath.Join(c.Paths.ImageDir, c.Paths.DefaultImage)
	}
	if c.Paths.DefaultImage, err = expandPath(c.Paths.DefaultImage); err != nil {
		return fmt.Errorf("paths.default_image: %w", err)
	}
	return nil
}

func (c *Config) normalizeScoring() {
	if c.Scoring.RecentFraction <= 0 {
		c.Scoring.RecentFraction = defaultRecentFraction
	}
	if c.Scoring.TrendSteepness <= 0 {
		c.Scoring.TrendSteepness = defaultTrendSteepness
	}
	if c.Scoring.IntentSaturation <= 0 {
		c.Scoring.IntentSaturation = defaultIntentSaturation
	}
	c.Scoring.IntentTerms = normalizeTerms(c.Scoring.IntentTerms)
	if len(c.Scoring.IntentTerms) == 0 {
		c.Scoring.IntentTerms = append([]string(nil), defaultIntentTerms...)
	}
	for i := range c.Scoring.Categories {
		c.Scoring.Categories[i].Name = strings.ToLower(strings.TrimSpace(c.Scoring.Categories[i].Name))
		c.Scoring.Categories[i].Terms = normalizeTerms(c.Scoring.Categories[i].Terms)
	}
	for i := range c.Scoring.Seasons {
		c.Scoring.Seasons[i].Name = strings.TrimSpace(c.Scoring.Seasons[i].Name)
		c.Scoring.Seasons[i].Start = strings.TrimSpace(c.Scoring.Seasons[i].Start)
		c.Scoring.Seasons[i].End = strings.TrimSpace(c.Scoring.Seasons[i].End)
		c.Scoring.Seasons[i].Terms = normalizeTerms(c.Scoring.Seasons[i].Terms)
		if c.Scoring.Seasons[i].LeadDays < 0 {
			c.Scoring.Seasons[i].LeadDays = 0
		}
		if c.Scoring.Seasons[i].TailDays < 0 {
			c.Scoring.Seasons[i].TailDays = 0
		}
	}
}

func (c *Config) normalizeRevenue() {
	if c.Revenue.MonthlyPageviews <= 0 {
		c.Revenue.MonthlyPageviews = defaultMonthlyPageviews
	}
	c.Revenue.CategoryPageviews = lowerKeys(c.Revenue.CategoryPageviews)
	c.Revenue.CategoryCommissions = lowerKeys(c.Revenue.CategoryCommissions)
}

func (c *Config) normalizeUniqueness() {
	c.Uniqueness.ExcludedHeadings = normalizeTerms(c.Uniqueness.ExcludedHeadings)
	if c.Uniqueness.ShingleSize <= 0 {
		c.Uniqueness.ShingleSize = defaultShingleSize
	}
	if c.Uniqueness.MaxAttempts <= 0 {
		c.Uniqueness.MaxAttempts = defaultMaxAttempts
	}
	if c.Uniqueness.WindowDays <= 0 {
		c.Uniqueness.WindowDays = defaultWindowDays
	}
}

func (c *Config) normalizeImages() {
	c.Images.SceneVocabulary = normalizeTerms(c.Images.SceneVocabulary)
	if len(c.Images.SceneVocabulary) == 0 {
		c.Images.SceneVocabulary = append([]string(nil), defaultSceneVocabulary...)
	}
}

func (c *Config) normalizeSignals() {
	c.Signals.Source = strings.ToLower(strings.TrimSpace(c.Signals.Source))
	if value, ok := os.LookupEnv("PRESSROOM_SIGNAL_SOURCE"); ok && strings.TrimSpace(value) != "" {
		c.Signals.Source = strings.ToLower(strings.TrimSpace(value))
	}
	if c.Signals.Source == "" {
		c.Signals.Source = defaultSignalSource
	}
	if c.Signals.WindowDays <= 0 {
		c.Signals.WindowDays = defaultSignalWindowDays
	}
	if c.Signals.FetchConcurrency <= 0 {
		c.Signals.FetchConcurrency = defaultFetchConcurrency
	}
	if c.Signals.RequestTimeout <= 0 {
		c.Signals.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeTerms(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func lowerKeys(values map[string]float64) map[string]float64 {
	if len(values) == 0 {
		return values
	}
	out := make(map[string]float64, len(values))
	for key, value := range values {
		out[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return out
}
