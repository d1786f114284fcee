package handlers

import (
	"net/http"
	"time"

	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/ingest"
	"courier-dispatch/internal/service/location"
)

// Handlers holds the service-level endpoints (ping, health, 404).
type Handlers struct {
	Logger  logx.Logger
	gateway gatewayStats
	engine  engineHealth
	conns   connectionCounter
}

// New creates a Handlers instance. Health sources may be nil.
func New(logger logx.Logger, gateway gatewayStats, engine engineHealth, conns connectionCounter) *Handlers {
	return &Handlers{Logger: logger, gateway: gateway, engine: engine, conns: conns}
}

// Ping handles GET /ping and returns 200 with {"message":"pong"}.
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.Logger, w, r, http.StatusOK, map[string]string{"message": "pong"})
}

// HealthcheckHead handles HEAD /healthcheck and returns 204 No Content.
func (h *Handlers) HealthcheckHead(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

type gatewayHealth struct {
	Accepted        int64      `json:"accepted"`
	Rejected        int64      `json:"rejected"`
	Failed          int64      `json:"failed"`
	EventsPerSecond float64    `json:"eventsPerSecond"`
	LastEventAt     *time.Time `json:"lastEventAt,omitempty"`
	UptimeSeconds   float64    `json:"uptimeSeconds"`
}

type locationHealth struct {
	Healthy     bool       `json:"healthy"`
	Processed   int64      `json:"processed"`
	Malformed   int64      `json:"malformed"`
	Failed      int64      `json:"failed"`
	LastError   string     `json:"lastError,omitempty"`
	LastEventAt *time.Time `json:"lastEventAt,omitempty"`
}

type healthResponse struct {
	Status      string          `json:"status"`
	Gateway     *gatewayHealth  `json:"gateway,omitempty"`
	Location    *locationHealth `json:"location,omitempty"`
	Connections *int            `json:"connections,omitempty"`
}

// Health handles GET /health. A degraded location engine answers 503.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy"}
	if h.gateway != nil {
		resp.Gateway = gatewayToResponse(h.gateway.Stats())
	}
	if h.engine != nil {
		resp.Location = engineToResponse(h.engine.Health())
		if !resp.Location.Healthy {
			resp.Status = "degraded"
		}
	}
	if h.conns != nil {
		n := h.conns.Connections()
		resp.Connections = &n
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(h.Logger, w, r, status, resp)
}

// NotFound returns a JSON 404 error for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(h.Logger, w, r, http.StatusNotFound, "route not found")
}

func gatewayToResponse(s ingest.Stats) *gatewayHealth {
	return &gatewayHealth{
		Accepted:        s.Accepted,
		Rejected:        s.Rejected,
		Failed:          s.Failed,
		EventsPerSecond: s.EventsPerSecond,
		LastEventAt:     timePtr(s.LastEventAt),
		UptimeSeconds:   s.Uptime.Seconds(),
	}
}

func engineToResponse(s location.Health) *locationHealth {
	return &locationHealth{
		Healthy:     s.Healthy,
		Processed:   s.Processed,
		Malformed:   s.Malformed,
		Failed:      s.Failed,
		LastError:   s.LastError,
		LastEventAt: timePtr(s.LastEventAt),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
