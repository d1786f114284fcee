package stream

import (
	"context"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"courier-dispatch/internal/push"
)

// WS writes push messages as JSON text frames.
type WS struct {
	conn *websocket.Conn
}

// NewWS wraps an accepted connection.
func NewWS(conn *websocket.Conn) *WS {
	return &WS{conn: conn}
}

// Send writes m as one text frame.
func (s *WS) Send(ctx context.Context, m push.Message) error {
	if err := wsjson.Write(ctx, s.conn, m); err != nil {
		return fmt.Errorf("ws write %s: %w", m.Type, err)
	}
	return nil
}

// Close ends the connection with a normal closure.
func (s *WS) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "closed")
}

// Command is a client frame on the WebSocket endpoint.
type Command struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// Client actions.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ReadCommand blocks until the next client frame.
func (s *WS) ReadCommand(ctx context.Context) (Command, error) {
	var c Command
	err := wsjson.Read(ctx, s.conn, &c)
	return c, err
}
