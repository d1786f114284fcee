// Package location is the location processing engine: it applies consumed
// position events to the fast store, recomputes ETAs of active orders and
// pushes updates to live subscribers.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/push"
)

type counterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// Config holds TTLs of the records the engine writes.
type Config struct {
	StateTTL     time.Duration
	AnalyticsTTL time.Duration
}

// Processor handles position events. Handle is safe for concurrent use
// across partitions.
type Processor struct {
	store    Store
	est      geo.Estimator
	notifier Notifier
	cfg      Config
	logger   logx.Logger
	events   counterVec
	now      func() time.Time

	healthy   atomic.Bool
	processed atomic.Int64
	malformed atomic.Int64
	failed    atomic.Int64

	mu        sync.Mutex
	lastError string
	lastEvent time.Time
}

// NewProcessor creates a Processor. notifier and events may be nil.
func NewProcessor(store Store, est geo.Estimator, notifier Notifier, cfg Config, logger logx.Logger, events counterVec) *Processor {
	if est == nil {
		est = geo.NewAverageSpeed(geo.DefaultSpeedKmh)
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = 5 * time.Minute
	}
	if cfg.AnalyticsTTL <= 0 {
		cfg.AnalyticsTTL = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{
		store:    store,
		est:      est,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
	p.healthy.Store(true)
	return p
}

// Handle applies one position event. A malformed event is counted and
// returned as an apperr.ErrInvalid error; it must be dropped, not requeued.
// A store failure marks the engine unhealthy and is returned; consumption
// should continue with the next event.
func (p *Processor) Handle(ctx context.Context, pos domain.CourierPosition) error {
	if err := pos.Validate(); err != nil {
		p.RecordMalformed(err)
		return err
	}

	now := p.now()
	loc := domain.LocationFromPosition(pos, now)
	if err := p.store.RecordPosition(ctx, pos.CourierID, loc, p.cfg.StateTTL); err != nil {
		p.storeFailed("record position", err)
		return fmt.Errorf("record position %s: %w", pos.CourierID, err)
	}

	degraded := false
	if err := p.store.RecordActivity(ctx, pos.CourierID, pos.Timestamp, p.cfg.AnalyticsTTL); err != nil {
		p.storeFailed("record activity", err)
		degraded = true
	}

	p.notify(ctx, domain.CourierLocationTopic(pos.CourierID), push.LocationUpdate(pos.CourierID, loc, now))

	if err := p.refreshETAs(ctx, pos.CourierID, pos.Point, now); err != nil {
		p.storeFailed("refresh eta", err)
		degraded = true
	}

	p.processed.Add(1)
	p.observe("processed")
	p.mu.Lock()
	p.lastEvent = now
	p.mu.Unlock()
	if !degraded {
		p.healthy.Store(true)
	}
	return nil
}

// refreshETAs recomputes the ETA of every active order of the courier.
// Orders without details (expired or not yet persisted) are skipped.
func (p *Processor) refreshETAs(ctx context.Context, courierID string, at domain.Point, now time.Time) error {
	orders, err := p.store.ActiveOrders(ctx, courierID)
	if err != nil {
		return err
	}
	var errs []error
	for _, orderID := range orders {
		d, err := p.store.OrderDetails(ctx, orderID)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}

		rec := domain.ETARecord{
			OrderID:    orderID,
			ETAMinutes: ETA(p.est, at, d.Restaurant, d.Customer),
			Courier:    at,
			ComputedAt: now,
		}
		if err := p.store.SaveETA(ctx, rec, p.cfg.StateTTL); err != nil {
			errs = append(errs, err)
			continue
		}
		p.notify(ctx, domain.OrderETATopic(orderID), push.ETAUpdate(rec, courierID))
	}
	return errors.Join(errs...)
}

// ETA is the delivery ETA in minutes: courier to restaurant plus restaurant
// to customer, rounded up with a floor of geo.MinETAMinutes.
func ETA(est geo.Estimator, courier, restaurant, customer domain.Point) int {
	return geo.Minutes(est.EstimateTravelTime(courier, restaurant) + est.EstimateTravelTime(restaurant, customer))
}

func (p *Processor) notify(ctx context.Context, topic string, msg push.Message) {
	if p.notifier == nil {
		return
	}
	p.notifier.Publish(ctx, topic, msg)
}

// RecordMalformed counts an event that could not be decoded or validated.
func (p *Processor) RecordMalformed(err error) {
	p.malformed.Add(1)
	p.observe("malformed")
	p.logger.Warn("malformed position event dropped", logx.Err(err))
}

func (p *Processor) storeFailed(op string, err error) {
	p.healthy.Store(false)
	p.failed.Add(1)
	p.observe("failed")
	p.mu.Lock()
	p.lastError = op + ": " + err.Error()
	p.mu.Unlock()
	p.logger.Error("location store failure", logx.String("op", op), logx.Err(err))
}

func (p *Processor) observe(outcome string) {
	if p.events != nil {
		p.events.WithLabelValues(outcome).Inc()
	}
}

// Health is a snapshot of engine state for health checks.
type Health struct {
	Healthy     bool
	Processed   int64
	Malformed   int64
	Failed      int64
	LastError   string
	LastEventAt time.Time
}

// Healthy reports whether the last store interaction succeeded.
func (p *Processor) Healthy() bool { return p.healthy.Load() }

// Health returns engine counters.
func (p *Processor) Health() Health {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Health{
		Healthy:     p.healthy.Load(),
		Processed:   p.processed.Load(),
		Malformed:   p.malformed.Load(),
		Failed:      p.failed.Load(),
		LastError:   p.lastError,
		LastEventAt: p.lastEvent,
	}
}
