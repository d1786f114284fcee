package handlers

import (
	"errors"
	"net/http"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// GPSHandler serves the ingestion gateway endpoints.
type GPSHandler struct {
	usecase gpsUsecase
	logger  logx.Logger
}

// NewGPSHandler creates a new GPSHandler.
func NewGPSHandler(logger logx.Logger, uc gpsUsecase) *GPSHandler {
	return &GPSHandler{usecase: uc, logger: logger}
}

// Submit handles POST /gps/location.
func (h *GPSHandler) Submit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req gpsReportRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	pos, err := h.usecase.Submit(r.Context(), req.toModel())
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, gpsAcceptedResponse{
			Success:        true,
			EventID:        pos.EventID,
			ProcessingTime: time.Since(start).Milliseconds(),
		})
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(h.logger, w, r, http.StatusBadRequest, gpsRejectedResponse{Error: domain.Reason(err)})
	case errors.Is(err, apperr.ErrUnavailable):
		writeJSON(h.logger, w, r, http.StatusServiceUnavailable, gpsRejectedResponse{Error: "event log unavailable", Retryable: true})
	default:
		writeJSON(h.logger, w, r, http.StatusInternalServerError, gpsRejectedResponse{Error: "internal error"})
	}
}

// SubmitBatch handles POST /gps/location/batch.
func (h *GPSHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req gpsBatchRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	// неразобранная запись остаётся пустой и не проходит валидацию
	reports := make([]domain.PositionReport, len(req.Locations))
	malformed := make(map[int]gpsBatchEntry)
	for i, raw := range req.Locations {
		l, err := decodeBatchEntry(raw)
		if err != nil {
			malformed[i] = malformedEntry(i, raw, err)
			continue
		}
		reports[i] = l.toModel()
	}

	res, err := h.usecase.SubmitBatch(r.Context(), reports)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalid) {
			writeJSON(h.logger, w, r, http.StatusBadRequest, gpsRejectedResponse{Error: domain.Reason(err)})
			return
		}
		writeAppError(h.logger, w, r, err)
		return
	}

	out := gpsBatchResponse{
		Success:        true,
		TotalProcessed: len(res.Entries),
		Successful:     res.Accepted,
		Failed:         res.Rejected,
		ProcessingTime: time.Since(start).Milliseconds(),
		Results:        make([]gpsBatchEntry, 0, len(res.Entries)),
	}
	for _, e := range res.Entries {
		if m, ok := malformed[e.Index]; ok {
			out.Results = append(out.Results, m)
			continue
		}
		entry := gpsBatchEntry{Index: e.Index, DriverID: e.CourierID, Success: e.Err == nil, EventID: e.EventID}
		if e.Err != nil {
			entry.Error = domain.Reason(e.Err)
			if errors.Is(e.Err, apperr.ErrUnavailable) {
				entry.Error = "event log unavailable"
			}
		}
		out.Results = append(out.Results, entry)
	}
	writeJSON(h.logger, w, r, http.StatusOK, out)
}
