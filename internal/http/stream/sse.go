// Package stream adapts HTTP connections into push.Sink implementations.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"courier-dispatch/internal/push"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// SSE writes push messages as server-sent events.
type SSE struct {
	w  http.ResponseWriter
	rc *http.ResponseController

	// mu covers writes to w and closing done
	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewSSE writes the event-stream headers and flushes them.
func NewSSE(w http.ResponseWriter) (*SSE, error) {
	if _, ok := w.(http.Flusher); !ok {
		return nil, ErrStreamingUnsupported
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &SSE{w: w, rc: http.NewResponseController(w), done: make(chan struct{})}
	if err := s.rc.Flush(); err != nil {
		return nil, fmt.Errorf("flush headers: %w", err)
	}
	return s, nil
}

// Send writes one "data:" frame. It fails with net.ErrClosed after Close.
func (s *SSE) Send(ctx context.Context, m push.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.Type, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return net.ErrClosed
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.rc.SetWriteDeadline(deadline)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Close marks the stream finished; the serving handler returns on Done.
// It waits for a Send in progress, so w is untouched once Close returns.
func (s *SSE) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

// Done is closed once the registry drops the connection.
func (s *SSE) Done() <-chan struct{} { return s.done }
