// Package ingest is the GPS ingestion gateway: it validates and enriches
// courier position reports and publishes them to geo-sharded topics.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

type counterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// Config tunes the gateway.
type Config struct {
	ServiceInstance  string
	Window           domain.FreshnessWindow
	BatchLimit       int
	BatchParallelism int
}

// ErrBatchTooLarge is returned when a batch exceeds Config.BatchLimit.
var ErrBatchTooLarge = fmt.Errorf("%w: batch too large", apperr.ErrInvalid)

// ErrEmptyBatch is returned for a batch without entries.
var ErrEmptyBatch = fmt.Errorf("%w: empty batch", apperr.ErrInvalid)

// Service validates, enriches and publishes position reports.
// Delivery is "accepted for processing": nothing is retried locally.
type Service struct {
	pub     Publisher
	cfg     Config
	logger  logx.Logger
	reports counterVec
	now     func() time.Time
	newID   func() string

	startedAt time.Time
	accepted  atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
	mu        sync.Mutex
	lastEvent time.Time
}

// NewService creates the gateway. reports may be nil.
func NewService(pub Publisher, cfg Config, logger logx.Logger, reports counterVec) *Service {
	if cfg.ServiceInstance == "" {
		cfg.ServiceInstance = "gps-1"
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 100
	}
	if cfg.BatchParallelism <= 0 {
		cfg.BatchParallelism = 10
	}
	if logger == nil {
		logger = logx.Nop()
	}
	now := func() time.Time { return time.Now().UTC() }
	return &Service{
		pub:       pub,
		cfg:       cfg,
		logger:    logger,
		reports:   reports,
		now:       now,
		newID:     uuid.NewString,
		startedAt: now(),
	}
}

// Submit validates r against the freshness window, enriches it and publishes
// it keyed by courier id. Validation failures wrap apperr.ErrInvalid and are
// never published; publish failures wrap apperr.ErrUnavailable and may be
// retried by the caller.
func (s *Service) Submit(ctx context.Context, r domain.PositionReport) (domain.CourierPosition, error) {
	now := s.now()
	point, err := r.Validate(now, s.cfg.Window)
	if err != nil {
		s.rejected.Add(1)
		s.observe("rejected")
		s.logger.Debug("position rejected",
			logx.CourierID(r.CourierID),
			logx.Err(err),
		)
		return domain.CourierPosition{}, err
	}

	pos := domain.CourierPosition{
		EventID:         s.newID(),
		CourierID:       r.CourierID,
		Point:           point,
		Timestamp:       r.Timestamp.UTC(),
		Accuracy:        r.Accuracy,
		Speed:           r.Speed,
		Heading:         r.Heading,
		Altitude:        r.Altitude,
		BatteryLevel:    r.BatteryLevel,
		NetworkType:     r.NetworkType,
		ProcessedAt:     now,
		ServiceInstance: s.cfg.ServiceInstance,
	}

	if err := s.pub.PublishPosition(ctx, pos); err != nil {
		s.failed.Add(1)
		s.observe("failed")
		s.logger.Error("position publish failed",
			logx.CourierID(pos.CourierID),
			logx.String("event_id", pos.EventID),
			logx.Err(err),
		)
		if !errors.Is(err, apperr.ErrUnavailable) {
			err = fmt.Errorf("publish position: %w: %w", apperr.ErrUnavailable, err)
		}
		return domain.CourierPosition{}, err
	}

	s.accepted.Add(1)
	s.observe("accepted")
	s.mu.Lock()
	s.lastEvent = now
	s.mu.Unlock()
	return pos, nil
}

func (s *Service) observe(outcome string) {
	if s.reports != nil {
		s.reports.WithLabelValues(outcome).Inc()
	}
}

// EntryResult is the outcome of one batch entry.
type EntryResult struct {
	Index     int
	CourierID string
	EventID   string
	Err       error
}

// BatchResult holds per-entry outcomes in input order.
type BatchResult struct {
	Entries  []EntryResult
	Accepted int
	Rejected int
}

// SubmitBatch submits up to Config.BatchLimit reports with bounded
// parallelism. Per-entry failures are reported, not returned.
func (s *Service) SubmitBatch(ctx context.Context, reports []domain.PositionReport) (BatchResult, error) {
	if len(reports) == 0 {
		return BatchResult{}, ErrEmptyBatch
	}
	if len(reports) > s.cfg.BatchLimit {
		return BatchResult{}, fmt.Errorf("%w: %d entries, limit %d", ErrBatchTooLarge, len(reports), s.cfg.BatchLimit)
	}

	entries := make([]EntryResult, len(reports))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchParallelism)
	for i, r := range reports {
		i, r := i, r
		g.Go(func() error {
			pos, err := s.Submit(gctx, r)
			entries[i] = EntryResult{Index: i, CourierID: r.CourierID, EventID: pos.EventID, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := BatchResult{Entries: entries}
	for _, e := range entries {
		if e.Err == nil {
			out.Accepted++
		} else {
			out.Rejected++
		}
	}
	return out, nil
}

// Stats is a snapshot of gateway counters.
type Stats struct {
	Accepted        int64
	Rejected        int64
	Failed          int64
	EventsPerSecond float64
	LastEventAt     time.Time
	Uptime          time.Duration
}

// Stats returns the current counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	last := s.lastEvent
	s.mu.Unlock()

	uptime := s.now().Sub(s.startedAt)
	st := Stats{
		Accepted:    s.accepted.Load(),
		Rejected:    s.rejected.Load(),
		Failed:      s.failed.Load(),
		LastEventAt: last,
		Uptime:      uptime,
	}
	if secs := uptime.Seconds(); secs > 0 {
		st.EventsPerSecond = float64(st.Accepted) / secs
	}
	return st
}
