// Package push is the live subscription registry. It is process local and
// in memory: a restart drops every connection and subscription, and clients
// are expected to reconnect and resubscribe.
package push

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// Sink delivers frames to one client connection. Send must return an error
// once the client is gone.
type Sink interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

type gauge interface {
	Inc()
	Dec()
}

type counterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// Session identifies one opened connection. Reopening a connection id yields
// a new Session; closing a stale Session is a no-op.
type Session struct {
	ID string
	c  *conn
}

type conn struct {
	id     string
	sink   Sink
	topics map[string]struct{}
	sendMu sync.Mutex
}

// Registry tracks live connections and their topic subscriptions.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*conn
	topics map[string]map[string]*conn

	logger      logx.Logger
	open        gauge
	messages    counterVec
	now         func() time.Time
	sendTimeout time.Duration
}

// NewRegistry creates an empty registry. open and messages may be nil.
func NewRegistry(logger logx.Logger, open gauge, messages counterVec) *Registry {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Registry{
		conns:       make(map[string]*conn),
		topics:      make(map[string]map[string]*conn),
		logger:      logger,
		open:        open,
		messages:    messages,
		now:         func() time.Time { return time.Now().UTC() },
		sendTimeout: 5 * time.Second,
	}
}

// Open registers sink under connectionID and sends the connected
// acknowledgment. An existing connection with the same id is replaced and
// closed.
func (r *Registry) Open(ctx context.Context, connectionID string, sink Sink) (*Session, error) {
	if connectionID == "" || sink == nil {
		return nil, fmt.Errorf("%w: connection id and sink are required", apperr.ErrInvalid)
	}
	c := &conn{id: connectionID, sink: sink, topics: make(map[string]struct{})}

	r.mu.Lock()
	old := r.conns[connectionID]
	if old != nil {
		r.detachLocked(old)
	}
	r.conns[connectionID] = c
	r.mu.Unlock()

	if old != nil {
		old.closeSink()
	} else if r.open != nil {
		r.open.Inc()
	}

	if err := r.send(ctx, c, Connected(connectionID, r.now())); err != nil {
		r.remove(c)
		return nil, fmt.Errorf("connected ack: %w", err)
	}
	r.logger.Info("push connection opened", logx.ConnectionID(connectionID))
	return &Session{ID: connectionID, c: c}, nil
}

// Subscribe adds topic to the connection's membership.
func (r *Registry) Subscribe(connectionID, topic string) error {
	if !domain.ValidTopic(topic) {
		return fmt.Errorf("%w: unknown topic %q", apperr.ErrInvalid, topic)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connectionID]
	if !ok {
		return fmt.Errorf("connection %s: %w", connectionID, apperr.ErrNotFound)
	}
	c.topics[topic] = struct{}{}
	subs := r.topics[topic]
	if subs == nil {
		subs = make(map[string]*conn)
		r.topics[topic] = subs
	}
	subs[connectionID] = c
	return nil
}

// Unsubscribe removes topic from the connection's membership. Removing a
// topic that is not subscribed is not an error.
func (r *Registry) Unsubscribe(connectionID, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connectionID]
	if !ok {
		return fmt.Errorf("connection %s: %w", connectionID, apperr.ErrNotFound)
	}
	delete(c.topics, topic)
	r.unindexLocked(topic, connectionID)
	return nil
}

// Close drops the connection and all its subscriptions.
func (r *Registry) Close(connectionID string) {
	r.mu.RLock()
	c := r.conns[connectionID]
	r.mu.RUnlock()
	if c != nil {
		r.remove(c)
	}
}

// CloseSession drops the connection only if s is still its current session.
func (r *Registry) CloseSession(s *Session) {
	if s != nil && s.c != nil {
		r.remove(s.c)
	}
}

// CloseAll drops every connection.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	all := make([]*conn, 0, len(r.conns))
	for _, c := range r.conns {
		all = append(all, c)
	}
	r.mu.RUnlock()
	for _, c := range all {
		r.remove(c)
	}
}

// Publish sends msg to every connection subscribed to topic and returns how
// many received it. A failed send evicts that connection only.
func (r *Registry) Publish(ctx context.Context, topic string, msg Message) int {
	r.mu.RLock()
	subs := r.topics[topic]
	targets := make([]*conn, 0, len(subs))
	for _, c := range subs {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if err := r.send(ctx, c, msg); err != nil {
			r.logger.Warn("push send failed, dropping connection",
				logx.ConnectionID(c.id),
				logx.Topic(topic),
				logx.Err(err),
			)
			r.remove(c)
			continue
		}
		delivered++
	}
	return delivered
}

// RunKeepalive sends a heartbeat to every connection each interval until ctx
// is done. Connections whose heartbeat fails are reaped.
func (r *Registry) RunKeepalive(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Heartbeat(ctx)
		}
	}
}

// Heartbeat sends one keep-alive round and returns the number of reaped
// connections.
func (r *Registry) Heartbeat(ctx context.Context) int {
	r.mu.RLock()
	all := make([]*conn, 0, len(r.conns))
	for _, c := range r.conns {
		all = append(all, c)
	}
	r.mu.RUnlock()

	msg := Heartbeat(r.now())
	reaped := 0
	for _, c := range all {
		if err := r.send(ctx, c, msg); err != nil {
			r.remove(c)
			reaped++
		}
	}
	if reaped > 0 {
		r.logger.Info("push connections reaped", logx.Int("count", reaped))
	}
	return reaped
}

// Connections returns the number of open connections.
func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Subscriptions returns the sorted topics of a connection.
func (r *Registry) Subscriptions(connectionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connectionID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(c.topics))
	for t := range c.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) send(ctx context.Context, c *conn, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, r.sendTimeout)
	defer cancel()

	c.sendMu.Lock()
	err := c.sink.Send(ctx, msg)
	c.sendMu.Unlock()
	if err == nil && r.messages != nil {
		r.messages.WithLabelValues(msg.Type).Inc()
	}
	return err
}

// remove detaches c if it is still registered and closes its sink.
func (r *Registry) remove(c *conn) {
	r.mu.Lock()
	cur, ok := r.conns[c.id]
	if !ok || cur != c {
		r.mu.Unlock()
		return
	}
	r.detachLocked(c)
	delete(r.conns, c.id)
	r.mu.Unlock()

	if r.open != nil {
		r.open.Dec()
	}
	c.closeSink()
	r.logger.Info("push connection closed", logx.ConnectionID(c.id))
}

// closeSink waits for an in-flight send, so nothing writes to the sink once
// Close has returned and the serving handler is gone.
func (c *conn) closeSink() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	_ = c.sink.Close()
}

func (r *Registry) detachLocked(c *conn) {
	for t := range c.topics {
		r.unindexLocked(t, c.id)
	}
	c.topics = make(map[string]struct{})
}

func (r *Registry) unindexLocked(topic, connectionID string) {
	subs := r.topics[topic]
	if subs == nil {
		return
	}
	delete(subs, connectionID)
	if len(subs) == 0 {
		delete(r.topics, topic)
	}
}
