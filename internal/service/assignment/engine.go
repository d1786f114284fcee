// Package assignment is the driver assignment engine: it finds available
// couriers near the restaurant, ranks them and claims the best one
// atomically.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/logx"
)

type counterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

type counter interface {
	Inc()
}

// Config tunes the engine.
type Config struct {
	DefaultRadiusKm float64
	ClaimTTL        time.Duration
	// CandidateLimit caps the geo query; zero means no cap.
	CandidateLimit int
}

// Engine turns assignment requests into exactly one result each.
type Engine struct {
	store     Store
	pub       Publisher
	est       geo.Estimator
	cfg       Config
	logger    logx.Logger
	results   counterVec
	conflicts counter
	now       func() time.Time
}

// NewEngine creates an Engine. results and conflicts may be nil.
func NewEngine(store Store, pub Publisher, est geo.Estimator, cfg Config, logger logx.Logger, results counterVec, conflicts counter) *Engine {
	if est == nil {
		est = geo.NewAverageSpeed(geo.DefaultSpeedKmh)
	}
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = 5
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = time.Hour
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Engine{
		store:     store,
		pub:       pub,
		est:       est,
		cfg:       cfg,
		logger:    logger,
		results:   results,
		conflicts: conflicts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle assigns req and publishes the result. The returned error is non-nil
// only when publishing failed; the result is returned either way.
func (e *Engine) Handle(ctx context.Context, req domain.AssignmentRequest) (domain.AssignmentResult, error) {
	res := e.decide(ctx, req)
	return res, e.publish(ctx, res)
}

// Reject answers a request that could not be decoded with an
// "invalid request" failure.
func (e *Engine) Reject(ctx context.Context, orderID string, cause error) (domain.AssignmentResult, error) {
	e.logger.Warn("assignment request rejected",
		logx.OrderID(orderID),
		logx.Err(cause),
	)
	res := domain.Failed(strings.TrimSpace(orderID), domain.ReasonInvalidRequest, e.now())
	return res, e.publish(ctx, res)
}

func (e *Engine) decide(ctx context.Context, req domain.AssignmentRequest) domain.AssignmentResult {
	if err := req.Validate(); err != nil {
		e.logger.Warn("assignment request invalid",
			logx.OrderID(req.OrderID),
			logx.Err(err),
		)
		return domain.Failed(req.OrderID, domain.ReasonInvalidRequest, e.now())
	}

	// redelivered request for an order that is already assigned
	if d, err := e.store.OrderDetails(ctx, req.OrderID); err == nil && d.CourierID != "" {
		held, err := e.holds(ctx, d.CourierID, req.OrderID)
		if err != nil {
			return e.internal(req.OrderID, "active orders", err)
		}
		if held {
			e.logger.Info("assignment replayed",
				logx.OrderID(req.OrderID),
				logx.CourierID(d.CourierID),
			)
			return domain.Assigned(req.OrderID, d.CourierID, d.ETAMinutes, d.AssignedAt)
		}
		// claim was released, details are stale
		e.logger.Info("stale order details ignored",
			logx.OrderID(req.OrderID),
			logx.CourierID(d.CourierID),
		)
	} else if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return e.internal(req.OrderID, "order details", err)
	}

	radius := req.RadiusKm
	if radius <= 0 {
		radius = e.cfg.DefaultRadiusKm
	}
	nearby, err := e.store.Nearby(ctx, req.Restaurant, radius, e.cfg.CandidateLimit)
	if err != nil {
		return e.internal(req.OrderID, "nearby", err)
	}
	if len(nearby) == 0 {
		return domain.Failed(req.OrderID, domain.ReasonNoCouriers, e.now())
	}

	ids := make([]string, len(nearby))
	for i, c := range nearby {
		ids[i] = c.CourierID
	}
	active, err := e.store.ActiveOrdersMany(ctx, ids)
	if err != nil {
		return e.internal(req.OrderID, "active orders", err)
	}

	cands := make([]Candidate, 0, len(nearby))
	for _, c := range nearby {
		if len(active[c.CourierID]) > 0 {
			continue
		}
		cands = append(cands, Evaluate(e.est, req, c))
	}
	if len(cands) == 0 {
		return domain.Failed(req.OrderID, domain.ReasonAllBusy, e.now())
	}
	Rank(cands)

	for _, c := range cands {
		ok, err := e.store.Claim(ctx, c.CourierID, req.OrderID, e.cfg.ClaimTTL)
		if err != nil {
			return e.internal(req.OrderID, "claim", err)
		}
		if !ok {
			if e.conflicts != nil {
				e.conflicts.Inc()
			}
			e.logger.Debug("claim lost, trying next candidate",
				logx.OrderID(req.OrderID),
				logx.CourierID(c.CourierID),
			)
			continue
		}
		return e.commitClaim(ctx, req, c)
	}
	return domain.Failed(req.OrderID, domain.ReasonAllBusy, e.now())
}

// holds reports whether courierID still has orderID among its active orders.
func (e *Engine) holds(ctx context.Context, courierID, orderID string) (bool, error) {
	active, err := e.store.ActiveOrdersMany(ctx, []string{courierID})
	if err != nil {
		return false, err
	}
	return slices.Contains(active[courierID], orderID), nil
}

func (e *Engine) commitClaim(ctx context.Context, req domain.AssignmentRequest, c Candidate) domain.AssignmentResult {
	now := e.now()
	details := domain.OrderDetails{
		OrderID:         req.OrderID,
		CourierID:       c.CourierID,
		Restaurant:      req.Restaurant,
		Customer:        req.Customer,
		PreparationTime: req.PreparationTime,
		ETAMinutes:      c.TotalETA,
		AssignedAt:      now,
	}
	if err := e.store.SaveOrderDetails(ctx, details, e.cfg.ClaimTTL); err != nil {
		if _, rerr := e.store.Release(ctx, c.CourierID, req.OrderID); rerr != nil {
			e.logger.Error("claim release failed",
				logx.OrderID(req.OrderID),
				logx.CourierID(c.CourierID),
				logx.Err(rerr),
			)
		}
		return e.internal(req.OrderID, "save order details", err)
	}

	e.logger.Info("courier assigned",
		logx.String("event", "courier_assigned"),
		logx.OrderID(req.OrderID),
		logx.CourierID(c.CourierID),
		logx.Int("eta", c.TotalETA),
		logx.Float64("score", c.Score),
		logx.Float64("distance_km", c.DistanceKm),
	)
	return domain.Assigned(req.OrderID, c.CourierID, c.TotalETA, now)
}

func (e *Engine) internal(orderID, op string, err error) domain.AssignmentResult {
	e.logger.Error("assignment failed",
		logx.OrderID(orderID),
		logx.String("op", op),
		logx.Err(err),
	)
	return domain.Failed(orderID, domain.ReasonInternal, e.now())
}

func (e *Engine) publish(ctx context.Context, res domain.AssignmentResult) error {
	if e.results != nil {
		e.results.WithLabelValues(string(res.Status), res.Reason).Inc()
	}
	if err := e.pub.PublishResult(ctx, res); err != nil {
		e.logger.Error("assignment result publish failed",
			logx.OrderID(res.OrderID),
			logx.String("status", string(res.Status)),
			logx.Err(err),
		)
		return fmt.Errorf("publish result %s: %w", res.OrderID, err)
	}
	return nil
}

// Release frees the courier's claim on orderID. Releasing an order the
// courier does not hold returns apperr.ErrNotFound.
func (e *Engine) Release(ctx context.Context, courierID, orderID string) error {
	courierID, orderID = strings.TrimSpace(courierID), strings.TrimSpace(orderID)
	if courierID == "" {
		return domain.MissingField("driverId")
	}
	if orderID == "" {
		return domain.MissingField("orderId")
	}
	removed, err := e.store.Release(ctx, courierID, orderID)
	if err != nil {
		return fmt.Errorf("release %s/%s: %w", courierID, orderID, err)
	}
	if !removed {
		return fmt.Errorf("order %s on courier %s: %w", orderID, courierID, apperr.ErrNotFound)
	}
	e.logger.Info("courier released",
		logx.OrderID(orderID),
		logx.CourierID(courierID),
	)
	return nil
}
