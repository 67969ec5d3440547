package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations for state, inputs, and outputs.
type Paths struct {
	StateDir     string `toml:"state_dir"`
	LineupFile   string `toml:"lineup_file"`
	LogDir       string `toml:"log_dir"`
	ImageDir     string `toml:"image_dir"`
	DraftsDir    string `toml:"drafts_dir"`
	SeedsFile    string `toml:"seeds_file"`
	FeedsFile    string `toml:"feeds_file"`
	MetricsFile  string `toml:"metrics_file"`
	DefaultImage string `toml:"default_image"`
}

// Category describes one product category the site covers.
type Category struct {
	Name  string   `toml:"name"`
	Terms []string `toml:"terms"`
}

// Season describes a recurring calendar period that lifts matching keywords.
// Start and End use MM-DD; a period may wrap the new year.
type Season struct {
	Name     string   `toml:"name"`
	Start    string   `toml:"start"`
	End      string   `toml:"end"`
	LeadDays int      `toml:"lead_days"`
	TailDays int      `toml:"tail_days"`
	Terms    []string `toml:"terms"`
}

// Scoring contains opportunity score weights and the vocabularies feeding each sub-score.
type Scoring struct {
	TrendWeight          float64    `toml:"trend_weight"`
	IntentWeight         float64    `toml:"intent_weight"`
	SeasonalityWeight    float64    `toml:"seasonality_weight"`
	FitWeight            float64    `toml:"fit_weight"`
	DifficultyMultiplier float64    `toml:"difficulty_multiplier"`
	RecentFraction       float64    `toml:"recent_fraction"`
	TrendSteepness       float64    `toml:"trend_steepness"`
	IntentTerms          []string   `toml:"intent_terms"`
	IntentSaturation     int        `toml:"intent_saturation"`
	EvergreenSeasonality float64    `toml:"evergreen_seasonality"`
	Categories           []Category `toml:"categories"`
	Seasons              []Season   `toml:"seasons"`
}

// Revenue contains parameters for the ad and affiliate revenue models.
type Revenue struct {
	RPM                 float64            `toml:"rpm"`
	ClickThroughRate    float64            `toml:"click_through_rate"`
	ConversionRate      float64            `toml:"conversion_rate"`
	AverageOrderValue   float64            `toml:"average_order_value"`
	CommissionRate      float64            `toml:"commission_rate"`
	MonthlyPageviews    float64            `toml:"monthly_pageviews"`
	CategoryPageviews   map[string]float64 `toml:"category_pageviews"`
	CategoryCommissions map[string]float64 `toml:"category_commissions"`
}

// Lineup contains daily selection bounds and the repeat cooldown.
type Lineup struct {
	TargetCount    int `toml:"target_count"`
	MinTarget      int `toml:"min_target"`
	MaxTarget      int `toml:"max_target"`
	PerCategoryCap int `toml:"per_category_cap"`
	CooldownDays   int `toml:"cooldown_days"`
	RetainDays     int `toml:"retain_days"`
}

// Uniqueness contains near-duplicate detection thresholds.
type Uniqueness struct {
	HammingThreshold   int      `toml:"hamming_threshold"`
	DocumentSimilarity float64  `toml:"document_similarity"`
	SectionSimilarity  float64  `toml:"section_similarity"`
	MinSectionWords    int      `toml:"min_section_words"`
	ShingleSize        int      `toml:"shingle_size"`
	WindowDays         int      `toml:"window_days"`
	ExcludedHeadings   []string `toml:"excluded_headings"`
	MaxAttempts        int      `toml:"max_attempts"`
}

// Images contains image relevance weights, quality limits, and the overuse curve.
type Images struct {
	FloorWidth        int      `toml:"floor_width"`
	FloorHeight       int      `toml:"floor_height"`
	QualityWidth      int      `toml:"quality_width"`
	QualityHeight     int      `toml:"quality_height"`
	RelevanceMinimum  float64  `toml:"relevance_minimum"`
	OverlapWeight     float64  `toml:"overlap_weight"`
	CategoryBonus     float64  `toml:"category_bonus"`
	SceneBonus        float64  `toml:"scene_bonus"`
	QualityBonus      float64  `toml:"quality_bonus"`
	OveruseGrowthRate float64  `toml:"overuse_growth_rate"`
	OveruseScale      float64  `toml:"overuse_scale"`
	SceneVocabulary   []string `toml:"scene_vocabulary"`
}

// Signals selects and tunes the keyword signal source.
type Signals struct {
	Source           string `toml:"source"`
	WindowDays       int    `toml:"window_days"`
	FetchConcurrency int    `toml:"fetch_concurrency"`
	RequestTimeout   int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pressroom.
//
// Configuration sections by subsystem:
//   - Paths: state, lineup, image pool, drafts, and seed/feed inputs
//   - Scoring: opportunity weights, intent terms, categories, seasons
//   - Revenue: ad and affiliate revenue model parameters
//   - Lineup: daily target bounds, category cap, cooldown
//   - Uniqueness: fingerprint and similarity thresholds
//   - Images: relevance weights, quality floor, overuse curve
//   - Signals: source selection (synthetic or feeds)
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Scoring    Scoring    `toml:"scoring"`
	Revenue    Revenue    `toml:"revenue"`
	Lineup     Lineup     `toml:"lineup"`
	Uniqueness Uniqueness `toml:"uniqueness"`
	Images     Images     `toml:"images"`
	Signals    Signals    `toml:"signals"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pressroom/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pressroom.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories plus the lineup file's parent.
// The image and drafts directories are inputs and are never created here.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir, c.Paths.LogDir, filepath.Dir(c.Paths.LineupFile)}
	if strings.TrimSpace(c.Paths.MetricsFile) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.MetricsFile))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryDBPath returns the keyword history database location inside the state directory.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// CategoryNames returns the configured site category names in declaration order.
func (c *Config) CategoryNames() []string {
	names := make([]string, 0, len(c.Scoring.Categories))
	for _, cat := range c.Scoring.Categories {
		names = append(names, cat.Name)
	}
	return names
}
