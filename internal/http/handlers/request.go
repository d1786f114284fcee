package handlers

import (
	"net/http"

	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/transport/kafka"
)

// RequestHandler queues assignment requests onto the request topic.
type RequestHandler struct {
	pub    requestPublisher
	logger logx.Logger
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(logger logx.Logger, pub requestPublisher) *RequestHandler {
	return &RequestHandler{pub: pub, logger: logger}
}

type queuedResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Enqueue handles POST /assignments. Invalid requests never reach the topic.
func (h *RequestHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var dto kafka.AssignmentRequestDTO
	if ok := decodeJSON(h.logger, w, r, &dto); !ok {
		return
	}
	req, err := dto.ToDomain()
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}

	if err := h.pub.PublishRequest(r.Context(), req); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusAccepted, queuedResponse{OrderID: req.OrderID, Status: "queued"})
}
