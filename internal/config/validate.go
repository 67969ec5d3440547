package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const weightTolerance = 1e-6

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateRevenue(); err != nil {
		return err
	}
	if err := c.validateLineup(); err != nil {
		return err
	}
	if err := c.validateUniqueness(); err != nil {
		return err
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	if err := c.validateSignals(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LineupFile) == "" {
		return errors.New("paths.lineup_file must be set")
	}
	return nil
}

func (c *Config) validateScoring() error {
	s := c.Scoring
	if err := ensureUnitMap(map[string]float64{
		"scoring.trend_weight":          s.TrendWeight,
		"scoring.intent_weight":         s.IntentWeight,
		"scoring.seasonality_weight":    s.SeasonalityWeight,
		"scoring.fit_weight":            s.FitWeight,
		"scoring.difficulty_multiplier": s.DifficultyMultiplier,
		"scoring.evergreen_seasonality": s.EvergreenSeasonality,
	}); err != nil {
		return err
	}
	sum := s.TrendWeight + s.IntentWeight + s.SeasonalityWeight + s.FitWeight
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("scoring weights must sum to 1.0 (got %.4f)", sum)
	}
	if s.RecentFraction <= 0 || s.RecentFraction >= 1 {
		return errors.New("scoring.recent_fraction must be between 0 and 1 (exclusive)")
	}
	if len(s.Categories) == 0 {
		return errors.New("scoring.categories must include at least one category")
	}
	for _, cat := range s.Categories {
		if cat.Name == "" {
			return errors.New("scoring.categories entries must have a name")
		}
	}
	for _, season := range s.Seasons {
		if season.Name == "" {
			return errors.New("scoring.seasons entries must have a name")
		}
		if _, err := time.Parse("01-02", season.Start); err != nil {
			return fmt.Errorf("scoring.seasons[%s].start must be MM-DD: %w", season.Name, err)
		}
		if _, err := time.Parse("01-02", season.End); err != nil {
			return fmt.Errorf("scoring.seasons[%s].end must be MM-DD: %w", season.Name, err)
		}
	}
	return nil
}

func (c *Config) validateRevenue() error {
	r := c.Revenue
	if r.RPM < 0 || r.AverageOrderValue < 0 || r.MonthlyPageviews < 0 {
		return errors.New("revenue.rpm, revenue.average_order_value, and revenue.monthly_pageviews must be >= 0")
	}
	if err := ensureUnitMap(map[string]float64{
		"revenue.click_through_rate": r.ClickThroughRate,
		"revenue.conversion_rate":    r.ConversionRate,
		"revenue.commission_rate":    r.CommissionRate,
	}); err != nil {
		return err
	}
	for category, rate := range r.CategoryCommissions {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("revenue.category_commissions[%s] must be between 0 and 1", category)
		}
	}
	for category, views := range r.CategoryPageviews {
		if views < 0 {
			return fmt.Errorf("revenue.category_pageviews[%s] must be >= 0", category)
		}
	}
	return nil
}

func (c *Config) validateLineup() error {
	l := c.Lineup
	if l.MinTarget < 1 || l.MaxTarget > 10 || l.MinTarget > l.MaxTarget {
		return errors.New("lineup.min_target and lineup.max_target must satisfy 1 <= min <= max <= 10")
	}
	if l.TargetCount < l.MinTarget || l.TargetCount > l.MaxTarget {
		return fmt.Errorf("lineup.target_count must be between %d and %d", l.MinTarget, l.MaxTarget)
	}
	if l.PerCategoryCap < 1 {
		return errors.New("lineup.per_category_cap must be positive")
	}
	if l.CooldownDays < 0 {
		return errors.New("lineup.cooldown_days must be >= 0")
	}
	if l.RetainDays < 1 {
		return errors.New("lineup.retain_days must be positive")
	}
	return nil
}

func (c *Config) validateUniqueness() error {
	u := c.Uniqueness
	if u.HammingThreshold < 0 || u.HammingThreshold > 64 {
		return errors.New("uniqueness.hamming_threshold must be between 0 and 64")
	}
	if u.DocumentSimilarity <= 0 || u.DocumentSimilarity > 1 {
		return errors.New("uniqueness.document_similarity must be between 0 and 1")
	}
	if u.SectionSimilarity <= 0 || u.SectionSimilarity > 1 {
		return errors.New("uniqueness.section_similarity must be between 0 and 1")
	}
	if u.MinSectionWords < 1 {
		return errors.New("uniqueness.min_section_words must be positive")
	}
	return nil
}

func (c *Config) validateImages() error {
	i := c.Images
	if i.FloorWidth < 0 || i.FloorHeight < 0 || i.QualityWidth < 0 || i.QualityHeight < 0 {
		return errors.New("images resolution limits must be >= 0")
	}
	if err := ensureUnitMap(map[string]float64{
		"images.relevance_minimum": i.RelevanceMinimum,
		"images.overlap_weight":    i.OverlapWeight,
		"images.category_bonus":    i.CategoryBonus,
		"images.scene_bonus":       i.SceneBonus,
		"images.quality_bonus":     i.QualityBonus,
	}); err != nil {
		return err
	}
	if i.OveruseGrowthRate <= 0 || i.OveruseScale <= 0 {
		return errors.New("images.overuse_growth_rate and images.overuse_scale must be positive")
	}
	return nil
}

func (c *Config) validateSignals() error {
	switch c.Signals.Source {
	case "synthetic":
	case "feeds":
		if strings.TrimSpace(c.Paths.FeedsFile) == "" {
			return errors.New("paths.feeds_file must be set when signals.source is feeds")
		}
	default:
		return fmt.Errorf("signals.source: unsupported value %q (want synthetic or feeds)", c.Signals.Source)
	}
	return nil
}

func ensureUnitMap(values map[string]float64) error {
	for key, value := range values {
		if value < 0 || value > 1 || math.IsNaN(value) {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	return nil
}
