package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/push"
	"courier-dispatch/internal/service/commit"
	"courier-dispatch/internal/transport/kafka"
)

const shutdownTimeout = 15 * time.Second

// Runner runs a built container until its context is done.
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a Runner for role.
func NewRunner(role Role) *Runner {
	switch role {
	case RoleWorker:
		return &Runner{runFn: func(c *dig.Container) error { return c.Invoke(runWorker) }}
	case RoleCommit:
		return &Runner{runFn: func(c *dig.Container) error { return c.Invoke(runCommitWorker) }}
	default:
		return &Runner{runFn: func(c *dig.Container) error { return c.Invoke(runDispatch) }}
	}
}

// MustRun runs the container. Cancellation is a clean exit.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Println("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		log.Println("startup aborted: startup timeout exceeded")
	default:
		log.Fatalf("run error: %v", err)
	}
}

type dispatchIn struct {
	dig.In

	Ctx      context.Context
	Config   *config.Config
	Logger   logx.Logger
	Server   *http.Server
	Consumer *kafka.Consumer
	Registry *push.Registry
	Producer *kafka.Producer
	Redis    *redis.Client
}

func runDispatch(in dispatchIn) error {
	defer closeAll(in.Logger,
		closer{"kafka consumer", in.Consumer.Close},
		closer{"kafka producer", in.Producer.Close},
		closer{"redis", in.Redis.Close},
	)

	g, ctx := errgroup.WithContext(in.Ctx)
	g.Go(func() error {
		in.Logger.Info("http listening", logx.String("addr", in.Server.Addr))
		if err := in.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error { return in.Consumer.Run(ctx) })
	g.Go(func() error { return in.Registry.RunKeepalive(ctx, in.Config.Location.Keepalive) })
	g.Go(func() error {
		<-ctx.Done()
		in.Logger.Info("shutting down")
		// стримы держат запросы открытыми, закрываем их до Shutdown
		in.Registry.CloseAll()
		return gracefulShutdown(in.Server, shutdownTimeout)
	})
	return g.Wait()
}

func runWorker(ctx context.Context, logger logx.Logger, consumer *kafka.Consumer, producer *kafka.Producer, rdb *redis.Client) error {
	if consumer == nil {
		return errors.New("kafka consumer is nil: worker container misconfigured")
	}
	defer closeAll(logger,
		closer{"kafka consumer", consumer.Close},
		closer{"kafka producer", producer.Close},
		closer{"redis", rdb.Close},
	)
	logger.Info("assignment worker started")
	return consumer.Run(ctx)
}

func runCommitWorker(
	ctx context.Context,
	logger logx.Logger,
	reader *kafka.ResultReader,
	svc *commit.Service,
	pool *pgxpool.Pool,
	rdb *redis.Client,
) error {
	defer closeAll(logger,
		closer{"kafka reader", reader.Close},
		closer{"redis", rdb.Close},
		closer{"postgres", func() error { pool.Close(); return nil }},
	)
	logger.Info("commit worker started")
	return reader.Run(ctx, svc.Handle)
}

func gracefulShutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

type closer struct {
	name string
	fn   func() error
}

func closeAll(logger logx.Logger, closers ...closer) {
	for _, c := range closers {
		if err := c.fn(); err != nil {
			logger.Error("close error", logx.String("resource", c.name), logx.Err(err))
		}
	}
}
