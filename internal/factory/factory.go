package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/aicardgame-go/internal/catalog"
	"github.com/mcoot/aicardgame-go/internal/config"
	"github.com/mcoot/aicardgame-go/internal/dependencies/clock"
	"github.com/mcoot/aicardgame-go/internal/dependencies/random"
	"github.com/mcoot/aicardgame-go/internal/dependencies/scheduler"
	"github.com/mcoot/aicardgame-go/internal/realtime"
	"github.com/mcoot/aicardgame-go/internal/services/auth"
	"github.com/mcoot/aicardgame-go/internal/services/battle"
	"github.com/mcoot/aicardgame-go/internal/services/cards"
	"github.com/mcoot/aicardgame-go/internal/services/enhance"
	"github.com/mcoot/aicardgame-go/internal/services/fusion"
	"github.com/mcoot/aicardgame-go/internal/services/gamestate"
	"github.com/mcoot/aicardgame-go/internal/services/matchmaking"
	"github.com/mcoot/aicardgame-go/internal/services/missions"
	"github.com/mcoot/aicardgame-go/internal/services/production"
	"github.com/mcoot/aicardgame-go/internal/services/ranking"
	"github.com/mcoot/aicardgame-go/internal/services/synergy"
	"github.com/mcoot/aicardgame-go/internal/storage"
	"github.com/mcoot/aicardgame-go/internal/storage/memory"
	"github.com/mcoot/aicardgame-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/aicardgame-go/internal/storage/redis"
	"github.com/mcoot/aicardgame-go/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Queue   storage.MatchQueue

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Scheduler scheduler.Scheduler
	Catalog   *catalog.Catalog

	// Services
	Hubs        *realtime.HubManager
	Auth        *auth.Service
	State       *gamestate.Service
	Generator   *cards.Generator
	Synergy     *synergy.Engine
	Battle      *battle.Engine
	Enhance     *enhance.Service
	Fusion      *fusion.Service
	Production  *production.Service
	Missions    *missions.Service
	Ranking     *ranking.Service
	Matchmaking *matchmaking.Service

	logger  *slog.Logger
	cfg     Config
	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger. If nil, a no-op logger is used.
	Logger *slog.Logger
	// StorageType selects the storage backend. Defaults to memory.
	StorageType string
	// RedisConfig is required when StorageType is redis
	RedisConfig *redisstorage.Config
	SQLitePath  string
	PostgresDSN string

	Auth        auth.Config
	Matchmaking matchmaking.Config
	Season      int
	// RankingRefresh is the leaderboard rebuild interval
	RankingRefresh time.Duration
	// HubCleanup is the interval for dropping idle realtime hubs
	HubCleanup time.Duration
}

// FromServerConfig maps environment configuration onto factory configuration
func FromServerConfig(c config.Config, logger *slog.Logger) Config {
	mm := matchmaking.DefaultConfig()
	mm.KFactor = c.EloK
	mm.LiveTimeout = c.LiveSearchTimeout

	cfg := Config{
		Logger:         logger,
		StorageType:    c.Storage,
		SQLitePath:     c.SQLitePath,
		PostgresDSN:    c.PostgresDSN,
		Auth:           auth.Config{SessionDuration: c.SessionDuration},
		Matchmaking:    mm,
		Season:         c.Season,
		RankingRefresh: c.RankingRefresh,
	}
	if c.Storage == config.StorageRedis {
		rc := redisstorage.DefaultConfig()
		rc.URL = c.RedisURL
		cfg.RedisConfig = &rc
	}
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if c.StorageType == "" {
		c.StorageType = config.StorageMemory
	}
	if c.Matchmaking == (matchmaking.Config{}) {
		c.Matchmaking = matchmaking.DefaultConfig()
	}
	if c.Season == 0 {
		c.Season = 1
	}
	if c.RankingRefresh == 0 {
		c.RankingRefresh = 5 * time.Minute
	}
	if c.HubCleanup == 0 {
		c.HubCleanup = 5 * time.Minute
	}
}

// New creates a new application with all dependencies wired. Call Start to
// begin background jobs and Close to release resources.
func New(cfg Config) (*App, error) {
	cfg.applyDefaults()

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	store, queue, closer, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	sched, err := scheduler.New(cfg.Logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	app := newWithDependencies(dependencies{
		store:   store,
		queue:   queue,
		catalog: cat,
		clock:   clock.New(),
		random:  random.New(),
		sched:   sched,
	}, cfg)
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// openStorage creates the configured backend. sqlite and postgres are
// single-node deployments and share an in-process match queue.
func openStorage(cfg Config) (storage.Storage, storage.MatchQueue, io.Closer, error) {
	switch cfg.StorageType {
	case config.StorageMemory:
		return memory.New(), memory.NewQueue(), nil, nil
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return store, redisstorage.NewQueue(store.Client(), *cfg.RedisConfig), store, nil
	case config.StorageSQLite:
		store, err := sqlite.OpenStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, memory.NewQueue(), store, nil
	case config.StoragePostgres:
		store, err := postgres.OpenStore(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, memory.NewQueue(), store, nil
	default:
		return nil, nil, nil, fmt.Errorf("invalid StorageType %q", cfg.StorageType)
	}
}

type dependencies struct {
	store   storage.Storage
	queue   storage.MatchQueue
	catalog *catalog.Catalog
	clock   clock.Clock
	random  random.Random
	sched   scheduler.Scheduler
}

// newWithDependencies wires every service onto the given dependencies
func newWithDependencies(d dependencies, cfg Config) *App {
	cfg.applyDefaults()
	logger := cfg.Logger

	hubs := realtime.NewHubManager(logger)
	state := gamestate.New(d.store, d.catalog, d.clock, logger)
	gen := cards.NewGenerator(d.catalog, d.clock, d.random)
	syn := synergy.New(d.catalog)
	engine := battle.New(d.catalog)

	app := &App{
		Storage:    d.store,
		Queue:      d.queue,
		Clock:      d.clock,
		Random:     d.random,
		Scheduler:  d.sched,
		Catalog:    d.catalog,
		Hubs:       hubs,
		Auth:       auth.New(d.store, state, d.clock, logger, cfg.Auth),
		State:      state,
		Generator:  gen,
		Synergy:    syn,
		Battle:     engine,
		Enhance:    enhance.New(state, d.clock, hubs, logger),
		Fusion:     fusion.New(state, d.catalog, gen, d.clock, hubs, logger),
		Production: production.New(state, d.catalog, syn, gen, d.clock, hubs, logger),
		Missions:   missions.New(state, d.clock, hubs, logger),
		Ranking:    ranking.New(d.store, d.clock, hubs, logger, cfg.Season),
		Matchmaking: matchmaking.New(matchmaking.Deps{
			State:     state,
			Storage:   d.store,
			Queue:     d.queue,
			Catalog:   d.catalog,
			Battle:    engine,
			Synergy:   syn,
			Generator: gen,
			Scheduler: d.sched,
			Sink:      hubs,
			Clock:     d.clock,
			Random:    d.random,
			Logger:    logger,
		}, cfg.Matchmaking),
		logger: logger.With(slog.String("component", "factory")),
		cfg:    cfg,
	}
	return app
}

// Start registers periodic jobs and starts the scheduler
func (a *App) Start() error {
	if err := a.Ranking.Schedule(a.Scheduler, a.cfg.RankingRefresh); err != nil {
		return fmt.Errorf("schedule ranking refresh: %w", err)
	}
	if err := a.Auth.Schedule(a.Scheduler); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	if err := a.Hubs.Schedule(a.Scheduler, a.cfg.HubCleanup); err != nil {
		return fmt.Errorf("schedule hub cleanup: %w", err)
	}
	a.Scheduler.Start()
	a.logger.Info("background jobs started",
		slog.Duration("ranking_refresh", a.cfg.RankingRefresh),
		slog.Int("season", a.cfg.Season),
	)
	return nil
}

// Close stops sessions and jobs, then releases storage
func (a *App) Close(ctx context.Context) error {
	a.Matchmaking.Shutdown(ctx)
	errs := []error{a.Scheduler.Shutdown()}
	a.Hubs.Close()
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
