package cycle

import (
	"fmt"
	"log/slog"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/history"
	"pressroom/internal/images"
	"pressroom/internal/lineup"
	"pressroom/internal/logging"
	"pressroom/internal/scoring"
	"pressroom/internal/signals"
	"pressroom/internal/state"
	"pressroom/internal/uniqueness"
)

// Env bundles the components and stores a cycle works with. Fields are
// exported so callers and tests can substitute a source or clock.
type Env struct {
	Config    *config.Config
	Logger    *slog.Logger
	Now       func() time.Time
	Source    signals.Source
	Scorer    *scoring.Scorer
	Scheduler *lineup.Scheduler
	Guard     *uniqueness.Guard
	Matcher   *images.Matcher
	History   *history.Store
	Lineups   *lineup.Store
	State     *state.Store
}

// NewEnv builds every component from cfg and opens the keyword history.
func NewEnv(cfg *config.Config, logger *slog.Logger) (*Env, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cycle: config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	source, err := signals.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("signal source: %w", err)
	}
	scorer, err := scoring.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}
	store, err := history.OpenFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &Env{
		Config:    cfg,
		Logger:    logger,
		Now:       time.Now,
		Source:    source,
		Scorer:    scorer,
		Scheduler: lineup.NewScheduler(cfg.Lineup, logger),
		Guard:     uniqueness.New(uniqueness.OptionsFromConfig(cfg.Uniqueness)),
		Matcher:   images.NewMatcher(images.OptionsFromConfig(cfg), logger),
		History:   store,
		Lineups:   lineup.NewStore(cfg.Paths.LineupFile, cfg.Lineup.RetainDays),
		State:     state.NewStore(cfg.Paths.StateDir),
	}, nil
}

// Close releases the history database.
func (e *Env) Close() error {
	if e == nil || e.History == nil {
		return nil
	}
	return e.History.Close()
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) lock() (*state.CycleLock, error) {
	return state.Lock(e.Config.Paths.StateDir)
}
