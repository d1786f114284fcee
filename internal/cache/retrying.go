package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

type backend interface {
	Ping(ctx context.Context) error
	RecordPosition(ctx context.Context, courierID string, loc domain.CourierLocation, ttl time.Duration) error
	Location(ctx context.Context, courierID string) (domain.CourierLocation, error)
	CourierState(ctx context.Context, courierID string) (domain.CourierState, error)
	Nearby(ctx context.Context, center domain.Point, radiusKm float64, limit int) ([]domain.NearbyCourier, error)
	ActiveOrders(ctx context.Context, courierID string) ([]string, error)
	ActiveOrdersMany(ctx context.Context, courierIDs []string) (map[string][]string, error)
	SaveOrderDetails(ctx context.Context, d domain.OrderDetails, ttl time.Duration) error
	OrderDetails(ctx context.Context, orderID string) (domain.OrderDetails, error)
	SaveETA(ctx context.Context, rec domain.ETARecord, ttl time.Duration) error
	ETA(ctx context.Context, orderID string) (domain.ETARecord, error)
	Claim(ctx context.Context, courierID, orderID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, courierID, orderID string) (bool, error)
	RecordActivity(ctx context.Context, courierID string, at time.Time, ttl time.Duration) error
	DailyActivity(ctx context.Context, date string) (domain.DailyActivity, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes the backoff of Retrying.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retrying retries transient store failures with capped exponential backoff.
// Errors that outlive the retries wrap apperr.ErrUnavailable.
// Claim is never retried: a lost reply could hide a claim that did happen.
type Retrying struct {
	next    backend
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetrying wraps next; it returns nil when next is nil.
func NewRetrying(next backend, logger logx.Logger, retries counter, cfg RetryConfig) *Retrying {
	if next == nil {
		return nil
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Retrying{next: next, logger: logger, retries: retries, cfg: cfg}
}

func (r *Retrying) do(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts {
			break
		}

		delay := backoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn("store retry",
			logx.String("op", op),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrUnavailable, lastErr)
}

// Ping implements backend.
func (r *Retrying) Ping(ctx context.Context) error {
	return r.do(ctx, "ping", r.next.Ping)
}

// RecordPosition implements backend.
func (r *Retrying) RecordPosition(ctx context.Context, courierID string, loc domain.CourierLocation, ttl time.Duration) error {
	return r.do(ctx, "record position", func(ctx context.Context) error {
		return r.next.RecordPosition(ctx, courierID, loc, ttl)
	})
}

// Location implements backend.
func (r *Retrying) Location(ctx context.Context, courierID string) (out domain.CourierLocation, err error) {
	err = r.do(ctx, "location", func(ctx context.Context) (e error) {
		out, e = r.next.Location(ctx, courierID)
		return e
	})
	return out, err
}

// CourierState implements backend.
func (r *Retrying) CourierState(ctx context.Context, courierID string) (out domain.CourierState, err error) {
	err = r.do(ctx, "courier state", func(ctx context.Context) (e error) {
		out, e = r.next.CourierState(ctx, courierID)
		return e
	})
	return out, err
}

// Nearby implements backend.
func (r *Retrying) Nearby(ctx context.Context, center domain.Point, radiusKm float64, limit int) (out []domain.NearbyCourier, err error) {
	err = r.do(ctx, "nearby", func(ctx context.Context) (e error) {
		out, e = r.next.Nearby(ctx, center, radiusKm, limit)
		return e
	})
	return out, err
}

// ActiveOrders implements backend.
func (r *Retrying) ActiveOrders(ctx context.Context, courierID string) (out []string, err error) {
	err = r.do(ctx, "active orders", func(ctx context.Context) (e error) {
		out, e = r.next.ActiveOrders(ctx, courierID)
		return e
	})
	return out, err
}

// ActiveOrdersMany implements backend.
func (r *Retrying) ActiveOrdersMany(ctx context.Context, courierIDs []string) (out map[string][]string, err error) {
	err = r.do(ctx, "active orders many", func(ctx context.Context) (e error) {
		out, e = r.next.ActiveOrdersMany(ctx, courierIDs)
		return e
	})
	return out, err
}

// SaveOrderDetails implements backend.
func (r *Retrying) SaveOrderDetails(ctx context.Context, d domain.OrderDetails, ttl time.Duration) error {
	return r.do(ctx, "save order details", func(ctx context.Context) error {
		return r.next.SaveOrderDetails(ctx, d, ttl)
	})
}

// OrderDetails implements backend.
func (r *Retrying) OrderDetails(ctx context.Context, orderID string) (out domain.OrderDetails, err error) {
	err = r.do(ctx, "order details", func(ctx context.Context) (e error) {
		out, e = r.next.OrderDetails(ctx, orderID)
		return e
	})
	return out, err
}

// SaveETA implements backend.
func (r *Retrying) SaveETA(ctx context.Context, rec domain.ETARecord, ttl time.Duration) error {
	return r.do(ctx, "save eta", func(ctx context.Context) error {
		return r.next.SaveETA(ctx, rec, ttl)
	})
}

// ETA implements backend.
func (r *Retrying) ETA(ctx context.Context, orderID string) (out domain.ETARecord, err error) {
	err = r.do(ctx, "eta", func(ctx context.Context) (e error) {
		out, e = r.next.ETA(ctx, orderID)
		return e
	})
	return out, err
}

// Claim implements backend without retries.
func (r *Retrying) Claim(ctx context.Context, courierID, orderID string, ttl time.Duration) (bool, error) {
	ok, err := r.next.Claim(ctx, courierID, orderID, ttl)
	if err != nil && isRetryable(err) {
		return false, fmt.Errorf("claim: %w: %w", apperr.ErrUnavailable, err)
	}
	return ok, err
}

// Release implements backend. Release is idempotent and therefore retried.
func (r *Retrying) Release(ctx context.Context, courierID, orderID string) (out bool, err error) {
	err = r.do(ctx, "release", func(ctx context.Context) (e error) {
		out, e = r.next.Release(ctx, courierID, orderID)
		return e
	})
	return out, err
}

// RecordActivity implements backend.
func (r *Retrying) RecordActivity(ctx context.Context, courierID string, at time.Time, ttl time.Duration) error {
	return r.do(ctx, "record activity", func(ctx context.Context) error {
		return r.next.RecordActivity(ctx, courierID, at, ttl)
	})
}

// DailyActivity implements backend.
func (r *Retrying) DailyActivity(ctx context.Context, date string) (out domain.DailyActivity, err error) {
	err = r.do(ctx, "daily activity", func(ctx context.Context) (e error) {
		out, e = r.next.DailyActivity(ctx, date)
		return e
	})
	return out, err
}

// isRetryable определяет, является ли ошибка повторяемой
func isRetryable(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, redis.Nil),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, redis.ErrClosed):
		return false
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return redis.HasErrorPrefix(err, "LOADING") ||
		redis.HasErrorPrefix(err, "TRYAGAIN") ||
		redis.HasErrorPrefix(err, "CLUSTERDOWN") ||
		redis.HasErrorPrefix(err, "MASTERDOWN")
}

// backoff вычисляет задержку повтора
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
