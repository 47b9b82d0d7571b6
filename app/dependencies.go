package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/config"
	"github.com/adminhub/ai-gateway/repositories"
	"github.com/adminhub/ai-gateway/repositories/postgres"
	"github.com/adminhub/ai-gateway/services/executor"
	"github.com/adminhub/ai-gateway/services/providers"
	"github.com/adminhub/ai-gateway/services/routing"
	"github.com/adminhub/ai-gateway/services/usage"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// redisClient is non-nil only when the Redis ledger is enabled
	redisClient *redis.Client

	// Repositories
	ProviderConfigs repositories.ProviderConfigRepository
	RequestRecords  repositories.RequestRecordRepository

	// Services
	Ledger   usage.Ledger
	Registry *providers.Registry
	Router   *routing.Service
	Executor *executor.Service
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB = db

	deps.ProviderConfigs = postgres.NewProviderRepository(db, logger)
	deps.RequestRecords = postgres.NewRequestRecordRepository(db, logger)

	if err := deps.initLedger(ctx, cfg); err != nil {
		deps.Close()
		return nil, err
	}

	deps.Registry = providers.NewRegistry(
		deps.ProviderConfigs,
		providers.DefaultFactory(cfg.Providers),
		logger,
	)
	if err := deps.Registry.Load(ctx); err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to load provider registry: %w", err)
	}

	deps.Router = routing.NewService(deps.Registry, deps.Ledger, logger)
	deps.Executor = executor.NewService(deps.Registry, deps.Router, deps.Ledger, deps.RequestRecords, logger)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// initLedger wires the usage ledger: Redis when configured, in-process
// otherwise.
func (d *Dependencies) initLedger(ctx context.Context, cfg *config.Config) error {
	if !cfg.Redis.Enabled {
		d.Ledger = usage.NewMemoryLedger()
		d.Logger.Info("using in-process usage ledger")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	d.redisClient = client
	d.Ledger = usage.NewRedisLedger(client)
	d.Logger.Info("using redis usage ledger", zap.String("addr", cfg.Redis.Addr))
	return nil
}

// Close releases all held resources
func (d *Dependencies) Close() {
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			d.Logger.Error("failed to close redis client", zap.Error(err))
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Error("failed to close database", zap.Error(err))
		}
	}
}
