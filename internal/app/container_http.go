package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/http/pprofserver"
	"courier-dispatch/internal/http/router"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/push"
	"courier-dispatch/internal/service/assignment"
	"courier-dispatch/internal/service/ingest"
	"courier-dispatch/internal/service/location"
	"courier-dispatch/internal/transport/kafka"
)

func newRateLimiter(cfg *config.Config) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.Nop{}
	}
	return ratelimit.NewBuckets(nil, ratelimit.Config{
		Rate:       rl.Rate,
		Burst:      rl.Burst,
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	})
}

type routerIn struct {
	dig.In

	Config     *config.Config
	Logger     logx.Logger
	Metrics    *appMetrics
	Gatherer   prometheus.Gatherer
	Base       *handlers.Handlers
	GPS        *handlers.GPSHandler
	Location   *handlers.LocationHandler
	Push       *handlers.PushHandler
	Assignment *handlers.AssignmentHandler
	Requests   *handlers.RequestHandler
	Limiter    ratelimit.Limiter
}

func newRouter(in routerIn) http.Handler {
	limit := ratelimit.New(in.Logger, in.Metrics.RateLimited, in.Limiter, nil)
	return router.New(router.Deps{
		Logger:      in.Logger,
		HTTP:        in.Metrics.HTTP,
		Metrics:     promhttp.HandlerFor(in.Gatherer, promhttp.HandlerOpts{}),
		Pprof:       &pprofserver.Config{User: in.Config.Debug.User, Pass: in.Config.Debug.Pass},
		Base:        in.Base,
		GPS:         in.GPS,
		Location:    in.Location,
		Push:        in.Push,
		Assignment:  in.Assignment,
		Requests:    in.Requests,
		IngestLimit: limit.Handler(),
	})
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// без WriteTimeout: SSE и WebSocket живут долго, остальное режет router.RequestTimeout
			IdleTimeout: 60 * time.Second,
		}
	}
	return provideAll(container,
		func(logger logx.Logger, g *ingest.Service, p *location.Processor, reg *push.Registry) *handlers.Handlers {
			return handlers.New(logger, g, p, reg)
		},
		func(logger logx.Logger, g *ingest.Service) *handlers.GPSHandler {
			return handlers.NewGPSHandler(logger, g)
		},
		func(logger logx.Logger, p *location.Processor) *handlers.LocationHandler {
			return handlers.NewLocationHandler(logger, p)
		},
		func(cfg *config.Config) *auth.Verifier { return auth.NewVerifier(cfg.Auth.JWTSecret) },
		func(logger logx.Logger, reg *push.Registry, v *auth.Verifier, cfg *config.Config) *handlers.PushHandler {
			return handlers.NewPushHandler(logger, reg, v, cfg.Auth.Origins)
		},
		func(logger logx.Logger, e *assignment.Engine) *handlers.AssignmentHandler {
			return handlers.NewAssignmentHandler(logger, e)
		},
		func(logger logx.Logger, pub *kafka.RequestPublisher) *handlers.RequestHandler {
			return handlers.NewRequestHandler(logger, pub)
		},
		newRateLimiter,
		newRouter,
		serverProvider,
	)
}
