package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/cache"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
)

func (b *ContainerBuilder) registerStore(container *dig.Container) error {
	providerRedis := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*redis.Client, error) {
		return b.redisConnect(ctx, logger, cfg.Redis)
	}
	return provideAll(container,
		providerRedis,
		func(rdb *redis.Client) *cache.Store { return cache.New(rdb) },
		func(s *cache.Store, cfg *config.Config, logger logx.Logger, m *appMetrics) *cache.Retrying {
			return cache.NewRetrying(s, logger, m.StoreRetries, cache.RetryConfig{
				MaxAttempts: cfg.StoreRetry.MaxAttempts,
				BaseDelay:   cfg.StoreRetry.BaseDelay,
				MaxDelay:    cfg.StoreRetry.MaxDelay,
			})
		},
	)
}

func (b *ContainerBuilder) registerDB(container *dig.Container) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		return b.dbConnect(ctx, logger, cfg.DB.DSN())
	}
	return provideAll(container,
		providerDB,
		repository.NewAssignmentRepo,
	)
}
