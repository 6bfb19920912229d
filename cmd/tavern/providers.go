package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/config"
	"github.com/cory-johannsen/tavern/internal/frontend/handlers"
	"github.com/cory-johannsen/tavern/internal/game/action"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/gamedata"
	"github.com/cory-johannsen/tavern/internal/narration"
	"github.com/cory-johannsen/tavern/internal/observability"
	"github.com/cory-johannsen/tavern/internal/storage"
	"github.com/cory-johannsen/tavern/internal/storage/postgres"
	"github.com/cory-johannsen/tavern/internal/storage/redis"
)

// storeConnectTimeout bounds the initial connection to a storage backend.
const storeConnectTimeout = 5 * time.Second

// Options are the command-line inputs to the injector.
type Options struct {
	ConfigPath string
	// LogLevel overrides logging.level when non-empty.
	LogLevel string
}

// Stores holds the persistence chosen by storage.backend.
type Stores struct {
	Backend  string
	Accounts storage.AccountStore
	Saves    session.Store
	// Health pings the backend; nil for the memory backend.
	Health func(ctx context.Context) error
}

// App is everything the serve and play commands run.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Stores  Stores
	Players *session.Manager
	Game    *handlers.GameHandler
	Auth    *handlers.AuthHandler
}

// providerSet is the injector graph shared by both commands.
var providerSet = wire.NewSet(
	provideConfig,
	provideLogger,
	provideRoller,
	provideBundle,
	provideStores,
	provideAccounts,
	provideGateways,
	provideGameHandler,
	session.NewManager,
	handlers.NewAuthHandler,
	wire.Struct(new(App), "*"),
)

func provideConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	l, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return l.Logger, func() { _ = l.Sync() }, nil
}

func provideRoller(logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
}

func provideBundle(cfg config.Config, roller *dice.Roller, logger *zap.Logger) (*gamedata.Bundle, func(), error) {
	b, err := gamedata.Load(content.Open(cfg.Content.Dir), roller, cfg.Game, logger)
	if err != nil {
		return nil, nil, err
	}
	return b, b.Close, nil
}

// provideStores connects the configured storage backend.
//
// Postcondition: the cleanup releases the backend's connections.
func provideStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (Stores, func(), error) {
	start := time.Now()
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		cctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		defer cancel()
		pool, err := postgres.NewPool(cctx, cfg.Database)
		if err != nil {
			return Stores{}, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(start)),
		)
		return Stores{
			Backend:  cfg.Storage.Backend,
			Accounts: postgres.NewAccountRepository(pool.DB()),
			Saves:    postgres.NewSaveRepository(pool.DB()),
			Health: func(ctx context.Context) error {
				return pool.Health(ctx, storeConnectTimeout)
			},
		}, pool.Close, nil

	case config.BackendRedis:
		client, err := redis.NewClient(ctx, cfg.Redis, storeConnectTimeout)
		if err != nil {
			return Stores{}, nil, err
		}
		logger.Info("redis connected",
			zap.String("addr", cfg.Redis.Addr),
			zap.Int("db", cfg.Redis.DB),
			zap.Duration("elapsed", time.Since(start)),
		)
		return Stores{
			Backend:  cfg.Storage.Backend,
			Accounts: redis.NewAccountStore(client, cfg.Redis.KeyPrefix),
			Saves:    redis.NewSaveStore(client, cfg.Redis.KeyPrefix),
			Health: func(ctx context.Context) error {
				pctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
				defer cancel()
				return client.Ping(pctx).Err()
			},
		}, func() { _ = client.Close() }, nil

	case config.BackendMemory:
		logger.Warn("using in-memory storage; accounts and saves are lost on exit")
		return Stores{
			Backend:  cfg.Storage.Backend,
			Accounts: storage.NewMemoryAccounts(),
			Saves:    session.NewMemoryStore(),
		}, func() {}, nil
	}
	return Stores{}, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func provideAccounts(s Stores) storage.AccountStore {
	return s.Accounts
}

// provideGateways builds one narrator per player. A Claude provider without
// an API key falls back to offline narration.
func provideGateways(cfg config.Config, b *gamedata.Bundle, logger *zap.Logger) handlers.GatewayFactory {
	offline := func(string) (narration.Gateway, error) {
		return narration.NewOffline(b.Rules), nil
	}
	if cfg.Narrator.Provider != config.ProviderClaude {
		logger.Info("narration offline", zap.String("provider", cfg.Narrator.Provider))
		return offline
	}
	if cfg.Narrator.APIKey == "" {
		logger.Warn("narrator.api_key is empty; falling back to offline narration")
		return offline
	}
	logger.Info("narration online", zap.String("model", cfg.Narrator.Model))
	return func(account string) (narration.Gateway, error) {
		c, err := narration.NewClaude(cfg.Narrator, logger.With(zap.String("account", account)))
		if errors.Is(err, narration.ErrNoAPIKey) {
			return narration.NewOffline(b.Rules), nil
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func provideGameHandler(
	cfg config.Config,
	b *gamedata.Bundle,
	stores Stores,
	players *session.Manager,
	gateways handlers.GatewayFactory,
	logger *zap.Logger,
) *handlers.GameHandler {
	opts := action.Options{
		NarrationTimeout:  cfg.Narrator.Timeout,
		RandomEventChance: cfg.Game.RandomEventChance,
	}
	return handlers.NewGameHandler(b.Deps, b.Classes, stores.Saves, players, gateways, opts, logger)
}
