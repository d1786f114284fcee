package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/metrics"
)

// appMetrics holds every collector a container may hand out.
type appMetrics struct {
	HTTP              *metrics.HTTP
	RateLimited       prometheus.Counter
	StoreRetries      prometheus.Counter
	GPSReports        *prometheus.CounterVec
	LocationEvents    *prometheus.CounterVec
	AssignmentResults *prometheus.CounterVec
	ClaimConflicts    prometheus.Counter
	PushConnections   prometheus.Gauge
	PushMessages      *prometheus.CounterVec
	Commits           *prometheus.CounterVec
}

func newAppMetrics(reg prometheus.Registerer) (*appMetrics, error) {
	m := &appMetrics{HTTP: metrics.NewHTTP()}
	var err error
	steps := []func() error{
		func() (e error) { m.HTTP.Requests, e = register(reg, m.HTTP.Requests); return },
		func() (e error) { m.HTTP.Duration, e = register(reg, m.HTTP.Duration); return },
		func() (e error) { m.RateLimited, e = register(reg, metrics.NewRateLimitExceededTotal()); return },
		func() (e error) { m.StoreRetries, e = register(reg, metrics.NewStoreRetriesTotal()); return },
		func() (e error) { m.GPSReports, e = register(reg, metrics.NewGPSReportsTotal()); return },
		func() (e error) { m.LocationEvents, e = register(reg, metrics.NewLocationEventsTotal()); return },
		func() (e error) { m.AssignmentResults, e = register(reg, metrics.NewAssignmentResultsTotal()); return },
		func() (e error) { m.ClaimConflicts, e = register(reg, metrics.NewClaimConflictsTotal()); return },
		func() (e error) { m.PushConnections, e = register(reg, metrics.NewPushConnections()); return },
		func() (e error) { m.PushMessages, e = register(reg, metrics.NewPushMessagesTotal()); return },
		func() (e error) { m.Commits, e = register(reg, metrics.NewCommitsTotal()); return },
	}
	for _, step := range steps {
		if err = step(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// register adds c to reg. A collector registered earlier under the same
// descriptor is reused.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register metric: %w", err)
}
