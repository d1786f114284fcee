package handlers

import (
	"errors"
	"net/http"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/transport/kafka"
)

// AssignmentHandler exposes the assignment engine synchronously.
type AssignmentHandler struct {
	usecase assignmentUsecase
	logger  logx.Logger
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(logger logx.Logger, uc assignmentUsecase) *AssignmentHandler {
	return &AssignmentHandler{usecase: uc, logger: logger}
}

// Debug handles POST /assignments/debug. The body has the same schema as
// the request topic; the result is published and also returned.
func (h *AssignmentHandler) Debug(w http.ResponseWriter, r *http.Request) {
	var dto kafka.AssignmentRequestDTO
	if ok := decodeJSON(h.logger, w, r, &dto); !ok {
		return
	}

	req, err := dto.ToDomain()
	if err != nil {
		if req.OrderID == "" {
			writeAppError(h.logger, w, r, err)
			return
		}
		res, perr := h.usecase.Reject(r.Context(), req.OrderID, err)
		if perr != nil {
			writeError(h.logger, w, r, http.StatusServiceUnavailable, "result publish failed")
			return
		}
		writeJSON(h.logger, w, r, http.StatusBadRequest, kafka.ResultFromDomain(res))
		return
	}

	res, err := h.usecase.Handle(r.Context(), req)
	if err != nil {
		writeError(h.logger, w, r, http.StatusServiceUnavailable, "result publish failed")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, kafka.ResultFromDomain(res))
}

// Release handles DELETE /couriers/{courierId}/orders/{orderId}.
func (h *AssignmentHandler) Release(w http.ResponseWriter, r *http.Request) {
	err := h.usecase.Release(r.Context(), pathParam(r, "courierId"), pathParam(r, "orderId"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "claim not found")
	default:
		writeAppError(h.logger, w, r, err)
	}
}
