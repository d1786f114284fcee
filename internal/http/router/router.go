package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"courier-dispatch/internal/http/handlers"
	obsmw "courier-dispatch/internal/http/middleware"
	"courier-dispatch/internal/http/pprofserver"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
)

// RequestTimeout bounds every non-streaming request.
const RequestTimeout = 5 * time.Second

// Deps groups everything the router mounts. Nil handler groups are skipped.
type Deps struct {
	Logger  logx.Logger
	HTTP    *metrics.HTTP
	Metrics http.Handler // /metrics
	Pprof   *pprofserver.Config

	Base       *handlers.Handlers
	GPS        *handlers.GPSHandler
	Location   *handlers.LocationHandler
	Push       *handlers.PushHandler
	Assignment *handlers.AssignmentHandler
	Requests   *handlers.RequestHandler

	// IngestLimit wraps the GPS routes.
	IngestLimit func(http.Handler) http.Handler
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(obsmw.Observability(d.Logger, d.HTTP))
	r.Use(middleware.Recoverer)
	if d.Base != nil {
		r.NotFound(d.Base.NotFound)
	}

	// стримы живут дольше таймаута
	if d.Push != nil {
		r.Get("/sse/location/{connectionId}", d.Push.SSE)
		r.Get("/ws/location/{connectionId}", d.Push.WS)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))

		if d.Base != nil {
			r.Get("/ping", d.Base.Ping)
			r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
			r.Get("/health", d.Base.Health)
		}
		if d.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", d.Metrics)
		}
		if d.Pprof != nil {
			r.Mount("/debug", pprofserver.Handler(*d.Pprof))
		}

		if d.GPS != nil {
			r.Route("/gps/location", func(r chi.Router) {
				if d.IngestLimit != nil {
					r.Use(d.IngestLimit)
				}
				r.Post("/", d.GPS.Submit)
				r.Post("/batch", d.GPS.SubmitBatch)
			})
		}

		if d.Location != nil {
			r.Route("/location", func(r chi.Router) {
				r.Get("/couriers/{courierId}", d.Location.Courier)
				r.Get("/couriers/{courierId}/status", d.Location.CourierStatus)
				r.Get("/nearby", d.Location.Nearby)
				r.Get("/orders/{orderId}/eta", d.Location.OrderETA)
				r.Get("/analytics/courier-activity", d.Location.Activity)
			})
		}

		if d.Push != nil {
			r.Route("/sse/subscribe", func(r chi.Router) {
				r.Post("/courier/{connectionId}/{courierId}", d.Push.SubscribeCourier)
				r.Post("/order/{connectionId}/{orderId}", d.Push.SubscribeOrder)
				r.Delete("/{connectionId}/{topicKey}", d.Push.Unsubscribe)
			})
		}

		if d.Assignment != nil {
			r.Post("/assignments/debug", d.Assignment.Debug)
			r.Delete("/couriers/{courierId}/orders/{orderId}", d.Assignment.Release)
		}
		if d.Requests != nil {
			r.Post("/assignments", d.Requests.Enqueue)
		}
	})

	return r
}
