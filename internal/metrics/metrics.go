package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewStoreRetriesTotal returns a counter of retry attempts performed against the fast store
func NewStoreRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_retries_total",
		Help: "Total number of retry attempts performed against the fast store",
	})
}

// NewGPSReportsTotal counts position reports by outcome (accepted, rejected, failed)
func NewGPSReportsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gps_reports_total",
		Help: "Total number of position reports by outcome",
	}, []string{"outcome"})
}

// NewLocationEventsTotal counts consumed position events by outcome (processed, malformed, failed)
func NewLocationEventsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "location_events_total",
		Help: "Total number of consumed position events by outcome",
	}, []string{"outcome"})
}

// NewAssignmentResultsTotal counts published assignment results by status and reason
func NewAssignmentResultsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_results_total",
		Help: "Total number of assignment results by status and reason",
	}, []string{"status", "reason"})
}

// NewClaimConflictsTotal counts claims lost to a concurrent request
func NewClaimConflictsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_claim_conflicts_total",
		Help: "Total number of courier claims lost to a concurrent request",
	})
}

// NewPushConnections returns a gauge of open live push connections
func NewPushConnections() prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "push_connections",
		Help: "Number of open live push connections",
	})
}

// NewPushMessagesTotal counts push messages by type
func NewPushMessagesTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "push_messages_total",
		Help: "Total number of push messages delivered by type",
	}, []string{"type"})
}

// NewCommitsTotal counts assignment commits by outcome (committed, duplicate, conflict, skipped, failed).
func NewCommitsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_commits_total",
		Help: "Total number of assignment commits by outcome",
	}, []string{"outcome"})
}

// HTTP holds request metrics labelled by method, route pattern and status.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP creates unregistered HTTP request metrics
func NewHTTP() *HTTP {
	labels := []string{"method", "path", "status"}
	return &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, labels),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, labels),
	}
}

// Collectors returns all collectors for registration.
func (m *HTTP) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Requests, m.Duration}
}
