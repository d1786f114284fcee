package handlers

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/http/stream"
	"courier-dispatch/internal/logx"
)

const wsReadLimit = 4 << 10

// PushHandler serves live push connections and their subscriptions.
type PushHandler struct {
	registry pushRegistry
	verifier tokenVerifier
	origins  []string
	logger   logx.Logger
}

// NewPushHandler creates a new PushHandler. verifier may be nil to accept
// every client; origins are WebSocket origin patterns besides the request host.
func NewPushHandler(logger logx.Logger, reg pushRegistry, verifier tokenVerifier, origins []string) *PushHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &PushHandler{registry: reg, verifier: verifier, origins: origins, logger: logger}
}

func (h *PushHandler) authorize(w http.ResponseWriter, r *http.Request, connectionID string) bool {
	if connectionID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "connectionId is required")
		return false
	}
	if h.verifier == nil {
		return true
	}
	if err := h.verifier.Authorize(r, connectionID); err != nil {
		writeError(h.logger, w, r, auth.HTTPStatus(err), err.Error())
		return false
	}
	return true
}

// SSE handles GET /sse/location/{connectionId}. The request stays open
// until the client leaves or the registry drops the connection.
func (h *PushHandler) SSE(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "connectionId")
	if !h.authorize(w, r, id) {
		return
	}
	sink, err := stream.NewSSE(w)
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	sess, err := h.registry.Open(r.Context(), id, sink)
	if err != nil {
		h.logger.Warn("sse open failed", logx.ConnectionID(id), logx.Err(err))
		return
	}
	defer h.registry.CloseSession(sess)

	select {
	case <-r.Context().Done():
	case <-sink.Done():
	}
}

// WS handles GET /ws/location/{connectionId}. Clients manage their own
// subscriptions with {"action":"subscribe"|"unsubscribe","topic":...} frames.
func (h *PushHandler) WS(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "connectionId")
	if !h.authorize(w, r, id) {
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.Warn("ws accept failed", logx.ConnectionID(id), logx.Err(err))
		return
	}
	conn.SetReadLimit(wsReadLimit)
	sink := stream.NewWS(conn)

	ctx := r.Context()
	sess, err := h.registry.Open(ctx, id, sink)
	if err != nil {
		h.logger.Warn("ws open failed", logx.ConnectionID(id), logx.Err(err))
		conn.Close(websocket.StatusInternalError, "registry unavailable")
		return
	}
	defer h.registry.CloseSession(sess)

	for {
		cmd, err := sink.ReadCommand(ctx)
		if err != nil {
			return
		}
		if err := h.apply(id, cmd); err != nil {
			h.logger.Warn("ws command rejected",
				logx.ConnectionID(id),
				logx.String("action", cmd.Action),
				logx.Topic(cmd.Topic),
				logx.Err(err),
			)
		}
	}
}

func (h *PushHandler) apply(connectionID string, cmd stream.Command) error {
	switch cmd.Action {
	case stream.ActionSubscribe:
		return h.registry.Subscribe(connectionID, cmd.Topic)
	case stream.ActionUnsubscribe:
		return h.registry.Unsubscribe(connectionID, cmd.Topic)
	default:
		return errors.New("unknown action")
	}
}

type subscriptionResponse struct {
	Success bool   `json:"success"`
	Topic   string `json:"topic"`
}

// SubscribeCourier handles POST /sse/subscribe/courier/{connectionId}/{courierId}.
func (h *PushHandler) SubscribeCourier(w http.ResponseWriter, r *http.Request) {
	h.subscribe(w, r, domain.CourierLocationTopic(pathParam(r, "courierId")))
}

// SubscribeOrder handles POST /sse/subscribe/order/{connectionId}/{orderId}.
func (h *PushHandler) SubscribeOrder(w http.ResponseWriter, r *http.Request) {
	h.subscribe(w, r, domain.OrderETATopic(pathParam(r, "orderId")))
}

func (h *PushHandler) subscribe(w http.ResponseWriter, r *http.Request, topic string) {
	id := pathParam(r, "connectionId")
	if !h.authorize(w, r, id) {
		return
	}
	if err := h.registry.Subscribe(id, topic); err != nil {
		h.writeRegistryError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, subscriptionResponse{Success: true, Topic: topic})
}

// Unsubscribe handles DELETE /sse/subscribe/{connectionId}/{topicKey}.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "connectionId")
	if !h.authorize(w, r, id) {
		return
	}
	topic := pathParam(r, "topicKey")
	if err := h.registry.Unsubscribe(id, topic); err != nil {
		h.writeRegistryError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, subscriptionResponse{Success: true, Topic: topic})
}

func (h *PushHandler) writeRegistryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeError(h.logger, w, r, http.StatusNotFound, "connection not found")
		return
	}
	writeAppError(h.logger, w, r, err)
}
