package handlers

import (
	"net/http"
	"strconv"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// LocationHandler serves read APIs over the location engine's state.
type LocationHandler struct {
	queries locationQueries
	logger  logx.Logger
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(logger logx.Logger, q locationQueries) *LocationHandler {
	return &LocationHandler{queries: q, logger: logger}
}

// Courier handles GET /location/couriers/{courierId}.
func (h *LocationHandler) Courier(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "courierId")
	loc, err := h.queries.CourierLocation(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, locationToResponse(id, loc))
}

// Nearby handles GET /location/nearby?latitude=&longitude=&radius=.
func (h *LocationHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("latitude"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("longitude"), 64)
	if errLat != nil || errLon != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	var radius float64
	if s := q.Get("radius"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid radius")
			return
		}
		radius = v
	}

	list, err := h.queries.NearbyCouriers(r.Context(), domain.Point{Latitude: lat, Longitude: lon}, radius)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, nearbyToResponse(list))
}

// OrderETA handles GET /location/orders/{orderId}/eta.
func (h *LocationHandler) OrderETA(w http.ResponseWriter, r *http.Request) {
	rec, err := h.queries.OrderETA(r.Context(), pathParam(r, "orderId"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, etaToResponse(rec))
}

// CourierStatus handles GET /location/couriers/{courierId}/status.
func (h *LocationHandler) CourierStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.queries.CourierStatus(r.Context(), pathParam(r, "courierId"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, statusToResponse(st))
}

// Activity handles GET /location/analytics/courier-activity?date=YYYY-MM-DD.
func (h *LocationHandler) Activity(w http.ResponseWriter, r *http.Request) {
	a, err := h.queries.DailyActivity(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, activityResponse{
		Date:           a.Date,
		ActiveCouriers: a.ActiveCouriers,
		Hourly:         a.Hourly,
	})
}
