package config

const (
	defaultStateDir             = "~/.local/share/pressroom/state"
	defaultLineupFile           = "~/.local/share/pressroom/lineup.json"
	defaultLogDir               = "~/.local/share/pressroom/logs"
	defaultImageDir             = "~/.local/share/pressroom/images"
	defaultDraftsDir            = "~/.local/share/pressroom/drafts"
	defaultSeedsFile            = "~/.config/pressroom/seeds.yaml"
	defaultFeedsFile            = "~/.config/pressroom/feeds.yaml"
	defaultDefaultImage         = "default.jpg"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultSignalSource         = "synthetic"
	defaultSignalWindowDays     = 90
	defaultFetchConcurrency     = 4
	defaultRequestTimeout       = 15
	defaultRecentFraction       = 0.30
	defaultTrendSteepness       = 4.0
	defaultIntentSaturation     = 2
	defaultEvergreenSeasonality = 0.3
	defaultMonthlyPageviews     = 3000
	defaultTargetCount          = 3
	defaultMinTarget            = 2
	defaultMaxTarget            = 4
	defaultPerCategoryCap       = 1
	defaultCooldownDays         = 14
	defaultLineupRetainDays     = 30
	defaultHammingThreshold     = 12
	defaultDocumentSimilarity   = 0.30
	defaultSectionSimilarity    = 0.45
	defaultMinSectionWords      = 200
	defaultShingleSize          = 3
	defaultWindowDays           = 90
	defaultMaxAttempts          = 3
)

var (
	defaultIntentTerms = []string{
		"best", "review", "reviews", "price", "vs", "versus", "cheap", "deal", "deals",
		"buy", "alternative", "alternatives", "top", "budget", "discount",
	}
	defaultExcludedHeadings = []string{
		"conclusion", "faq", "frequently asked questions", "final thoughts", "summary",
	}
	defaultSceneVocabulary = []string{
		"installation", "install", "setup", "comparison", "versus", "troubleshooting",
		"repair", "unboxing", "lifestyle", "closeup", "desk", "outdoor",
	}
)

func defaultCategories() []Category {
	return []Category{
		{Name: "smart-home", Terms: []string{"smart", "home", "thermostat", "doorbell", "camera", "plug", "hub", "alexa", "lock"}},
		{Name: "audio", Terms: []string{"headphones", "earbuds", "speaker", "soundbar", "audio", "microphone", "anc"}},
		{Name: "networking", Terms: []string{"router", "wifi", "mesh", "modem", "ethernet", "extender", "network"}},
		{Name: "kitchen", Terms: []string{"blender", "coffee", "espresso", "air", "fryer", "kettle", "kitchen", "grinder"}},
		{Name: "computing", Terms: []string{"laptop", "monitor", "keyboard", "mouse", "ssd", "webcam", "dock", "desk"}},
	}
}

func defaultSeasons() []Season {
	return []Season{
		{Name: "new-year", Start: "01-01", End: "01-20", LeadDays: 10, TailDays: 10, Terms: []string{"fitness", "planner", "resolution", "treadmill"}},
		{Name: "back-to-school", Start: "08-01", End: "09-10", LeadDays: 21, TailDays: 7, Terms: []string{"student", "school", "college", "laptop", "backpack"}},
		{Name: "black-friday", Start: "11-20", End: "12-02", LeadDays: 21, TailDays: 5, Terms: []string{"deal", "deals", "black", "friday", "cyber", "discount"}},
		{Name: "holiday", Start: "12-03", End: "12-24", LeadDays: 14, TailDays: 3, Terms: []string{"gift", "gifts", "christmas", "holiday", "stocking"}},
		{Name: "summer", Start: "06-01", End: "08-31", LeadDays: 21, TailDays: 10, Terms: []string{"outdoor", "fan", "cooler", "grill", "portable", "pool"}},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:     defaultStateDir,
			LineupFile:   defaultLineupFile,
			LogDir:       defaultLogDir,
			ImageDir:     defaultImageDir,
			DraftsDir:    defaultDraftsDir,
			SeedsFile:    defaultSeedsFile,
			FeedsFile:    defaultFeedsFile,
			DefaultImage: defaultDefaultImage,
		},
		Scoring: Scoring{
			TrendWeight:          0.35,
			IntentWeight:         0.30,
			SeasonalityWeight:    0.15,
			FitWeight:            0.20,
			DifficultyMultiplier: 0.6,
			RecentFraction:       defaultRecentFraction,
			TrendSteepness:       defaultTrendSteepness,
			IntentTerms:          append([]string(nil), defaultIntentTerms...),
			IntentSaturation:     defaultIntentSaturation,
			EvergreenSeasonality: defaultEvergreenSeasonality,
			Categories:           defaultCategories(),
			Seasons:              defaultSeasons(),
		},
		Revenue: Revenue{
			RPM:               18,
			ClickThroughRate:  0.08,
			ConversionRate:    0.04,
			AverageOrderValue: 120,
			CommissionRate:    0.04,
			MonthlyPageviews:  defaultMonthlyPageviews,
		},
		Lineup: Lineup{
			TargetCount:    defaultTargetCount,
			MinTarget:      defaultMinTarget,
			MaxTarget:      defaultMaxTarget,
			PerCategoryCap: defaultPerCategoryCap,
			CooldownDays:   defaultCooldownDays,
			RetainDays:     defaultLineupRetainDays,
		},
		Uniqueness: Uniqueness{
			HammingThreshold:   defaultHammingThreshold,
			DocumentSimilarity: defaultDocumentSimilarity,
			SectionSimilarity:  defaultSectionSimilarity,
			MinSectionWords:    defaultMinSectionWords,
			ShingleSize:        defaultShingleSize,
			WindowDays:         defaultWindowDays,
			ExcludedHeadings:   append([]string(nil), defaultExcludedHeadings...),
			MaxAttempts:        defaultMaxAttempts,
		},
		Images: Images{
			FloorWidth:        600,
			FloorHeight:       400,
			QualityWidth:      1200,
			QualityHeight:     630,
			RelevanceMinimum:  0.35,
			OverlapWeight:     0.40,
			CategoryBonus:     0.25,
			SceneBonus:        0.15,
			QualityBonus:      0.10,
			OveruseGrowthRate: 0.5,
			OveruseScale:      10,
			SceneVocabulary:   append([]string(nil), defaultSceneVocabulary...),
		},
		Signals: Signals{
			Source:           defaultSignalSource,
			WindowDays:       defaultSignalWindowDays,
			FetchConcurrency: defaultFetchConcurrency,
			RequestTimeout:   defaultRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
