package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
)

const (
	connectRetries = 10
	connectDelay   = time.Second
	attemptTimeout = 3 * time.Second
)

var newPool = repository.NewPool

// connectWithRetry calls connect up to retries times, delay apart.
func connectWithRetry[T any](
	ctx context.Context,
	logger logx.Logger,
	what string,
	retries int,
	delay time.Duration,
	connect func(context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error
	for i := 1; i <= retries; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		v, err := connect(attemptCtx)
		cancel()
		if err == nil {
			logger.Info(what+" connected", logx.Int("attempt", i))
			return v, nil
		}
		lastErr = err
		logger.Warn(what+" connect failed",
			logx.Int("attempt", i),
			logx.Int("retries", retries),
			logx.Err(err),
		)
		if i < retries {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return zero, fmt.Errorf("%s connect failed after %d attempts: %w", what, retries, lastErr)
}

func connectDB(ctx context.Context, logger logx.Logger, dsn string) (*pgxpool.Pool, error) {
	return connectWithRetry(ctx, logger, "db", connectRetries, connectDelay, func(ctx context.Context) (*pgxpool.Pool, error) {
		return newPool(ctx, dsn)
	})
}

func connectRedis(ctx context.Context, logger logx.Logger, cfg config.Redis) (*redis.Client, error) {
	return connectWithRetry(ctx, logger, "redis", connectRetries, connectDelay, func(ctx context.Context) (*redis.Client, error) {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, err
		}
		return rdb, nil
	})
}
