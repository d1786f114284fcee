package app

import (
	"go.uber.org/dig"

	"courier-dispatch/internal/cache"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/push"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/service/assignment"
	"courier-dispatch/internal/service/commit"
	"courier-dispatch/internal/service/ingest"
	"courier-dispatch/internal/service/location"
	"courier-dispatch/internal/transport/kafka"
)

func registerDispatchServices(container *dig.Container) error {
	if err := provideAll(container,
		func(pub *kafka.PositionPublisher, cfg *config.Config, logger logx.Logger, m *appMetrics) *ingest.Service {
			return ingest.NewService(pub, ingest.Config{
				ServiceInstance: cfg.Ingest.ServiceInstance,
				Window: domain.FreshnessWindow{
					MaxAge:  cfg.Ingest.MaxAge,
					MaxSkew: cfg.Ingest.MaxSkew,
				},
				BatchLimit:       cfg.Ingest.BatchLimit,
				BatchParallelism: cfg.Ingest.BatchParallelism,
			}, logger, m.GPSReports)
		},
		func(logger logx.Logger, m *appMetrics) *push.Registry {
			return push.NewRegistry(logger, m.PushConnections, m.PushMessages)
		},
		func(
			store *cache.Retrying,
			est geo.Estimator,
			reg *push.Registry,
			cfg *config.Config,
			logger logx.Logger,
			m *appMetrics,
		) *location.Processor {
			return location.NewProcessor(store, est, reg, location.Config{
				StateTTL:     cfg.Location.StateTTL,
				AnalyticsTTL: cfg.Location.AnalyticsTTL,
			}, logger, m.LocationEvents)
		},
	); err != nil {
		return err
	}
	return registerAssignment(container)
}

func registerAssignment(container *dig.Container) error {
	return provideAll(container,
		func(
			store *cache.Retrying,
			pub *kafka.ResultPublisher,
			est geo.Estimator,
			cfg *config.Config,
			logger logx.Logger,
			m *appMetrics,
		) *assignment.Engine {
			return assignment.NewEngine(store, pub, est, assignment.Config{
				DefaultRadiusKm: cfg.Assignment.DefaultRadiusKm,
				ClaimTTL:        cfg.Assignment.ClaimTTL,
			}, logger, m.AssignmentResults, m.ClaimConflicts)
		},
	)
}

func registerCommit(container *dig.Container) error {
	return provideAll(container,
		func(repo *repository.AssignmentRepo, claims *cache.Retrying, logger logx.Logger, m *appMetrics) *commit.Service {
			return commit.NewService(repo, claims, logger, m.Commits)
		},
	)
}
