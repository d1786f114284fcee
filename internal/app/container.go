package app

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/transport/kafka"
)

// Role selects the binary a container is built for.
type Role string

// Roles.
const (
	RoleDispatch Role = "service-dispatch"
	RoleWorker   Role = "worker"
	RoleCommit   Role = "commit-worker"
)

type (
	dbConnectFunc    func(ctx context.Context, logger logx.Logger, dsn string) (*pgxpool.Pool, error)
	redisConnectFunc func(ctx context.Context, logger logx.Logger, cfg config.Redis) (*redis.Client, error)
	producerFunc     func(brokers []string) (*kafka.Producer, error)
	consumerFunc     func(logger logx.Logger, brokers []string, groupID string, topics []string, h kafka.HandleFunc, opts ...kafka.ConsumerOption) (*kafka.Consumer, error)
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	role         Role
	loadConfig   func() (*config.Config, error)
	dbConnect    dbConnectFunc
	redisConnect redisConnectFunc
	newProducer  producerFunc
	newConsumer  consumerFunc
	registerer   prometheus.Registerer
	gatherer     prometheus.Gatherer
	logFatalf    func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder for role.
func NewContainerBuilder(role Role) *ContainerBuilder {
	return &ContainerBuilder{
		role:         role,
		loadConfig:   config.Load,
		dbConnect:    connectDB,
		redisConnect: connectRedis,
		newProducer:  kafka.NewProducer,
		newConsumer:  kafka.NewConsumer,
		registerer:   prometheus.DefaultRegisterer,
		gatherer:     prometheus.DefaultGatherer,
		logFatalf:    log.Fatalf,
	}
}

// WithConfig replaces config loading.
func (b *ContainerBuilder) WithConfig(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadConfig = fn
	}
	return b
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithRedisConnect sets the fast store connection function
func (b *ContainerBuilder) WithRedisConnect(fn redisConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.redisConnect = fn
	}
	return b
}

// WithKafka replaces producer and consumer construction. Nil keeps the default.
func (b *ContainerBuilder) WithKafka(p producerFunc, c consumerFunc) *ContainerBuilder {
	if p != nil {
		b.newProducer = p
	}
	if c != nil {
		b.newConsumer = c
	}
	return b
}

// WithRegistry sets where metrics are registered and gathered from.
func (b *ContainerBuilder) WithRegistry(reg *prometheus.Registry) *ContainerBuilder {
	if reg != nil {
		b.registerer, b.gatherer = reg, reg
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build %s container: %v", b.role, err)
	}
	return container
}

type step struct {
	name string
	fn   func(*dig.Container) error
}

func (b *ContainerBuilder) steps(ctx context.Context) ([]step, error) {
	steps := []step{
		{"core", func(c *dig.Container) error { return b.registerCore(c, ctx) }},
		{"store", b.registerStore},
	}
	switch b.role {
	case RoleDispatch:
		return append(steps,
			step{"kafka", b.registerProducer},
			step{"service", registerDispatchServices},
			step{"consumer", b.registerLocationConsumer},
			step{"http", registerHTTP},
		), nil
	case RoleWorker:
		return append(steps,
			step{"kafka", b.registerProducer},
			step{"service", registerAssignment},
			step{"consumer", b.registerAssignmentConsumer},
		), nil
	case RoleCommit:
		return append(steps,
			step{"DB", b.registerDB},
			step{"kafka", b.registerResultReader},
			step{"service", registerCommit},
		), nil
	default:
		return nil, fmt.Errorf("unknown role %q", b.role)
	}
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	steps, err := b.steps(ctx)
	if err != nil {
		return nil, err
	}
	container := dig.New()
	for _, s := range steps {
		if err := s.fn(container); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container for role.
func MustBuildContainer(ctx context.Context, role Role) *dig.Container {
	return NewContainerBuilder(role).MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func (b *ContainerBuilder) registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		b.loadConfig,
		func(cfg *config.Config) logx.Logger { return NewLogger(cfg, b.role) },
		func() prometheus.Registerer { return b.registerer },
		func() prometheus.Gatherer { return b.gatherer },
		newAppMetrics,
		func(cfg *config.Config) geo.Estimator { return geo.NewAverageSpeed(cfg.Assignment.SpeedKmh) },
	)
}
