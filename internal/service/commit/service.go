// Package commit durably binds assigned orders to couriers using
// version-guarded updates.
package commit

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/ports/committx"
)

// Outcomes reported by Commit.
const (
	OutcomeCommitted = "committed"
	OutcomeDuplicate = "duplicate"
	OutcomeConflict  = "conflict"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

type counterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// Service applies assignment results to the relational store.
type Service struct {
	tx       committx.Runner
	claims   ClaimReleaser
	logger   logx.Logger
	outcomes counterVec
}

// NewService creates a commit Service. claims and outcomes may be nil.
func NewService(tx committx.Runner, claims ClaimReleaser, logger logx.Logger, outcomes counterVec) *Service {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{tx: tx, claims: claims, logger: logger, outcomes: outcomes}
}

// Commit binds res.OrderID to res.CourierID in one transaction. Failed
// results are ignored. A stale version or a missing row rolls back, releases
// the claim and returns nil; the write is never retried. Other errors wrap
// apperr.ErrUnavailable so the caller can redeliver.
func (s *Service) Commit(ctx context.Context, res domain.AssignmentResult) (string, error) {
	if !res.IsAssigned() {
		s.count(OutcomeSkipped)
		return OutcomeSkipped, nil
	}

	outcome := OutcomeCommitted
	err := s.tx.WithTx(ctx, func(tx committx.Repository) error {
		order, err := tx.OrderByID(ctx, res.OrderID)
		if err != nil {
			return err
		}
		switch order.DriverID {
		case res.CourierID:
			outcome = OutcomeDuplicate
			return nil
		case "":
		default:
			return fmt.Errorf("order %s already bound to %s: %w", order.ID, order.DriverID, apperr.ErrConflict)
		}
		courier, err := tx.CourierByID(ctx, res.CourierID)
		if err != nil {
			return err
		}
		if err := tx.BindCourier(ctx, courier.ID, res.OrderID, courier.Version); err != nil {
			return err
		}
		return tx.BindOrder(ctx, order.ID, courier.ID, order.Version)
	})

	switch {
	case err == nil:
		s.count(outcome)
		s.logger.Info("assignment committed",
			logx.OrderID(res.OrderID),
			logx.CourierID(res.CourierID),
			logx.String("outcome", outcome),
		)
		return outcome, nil
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrNotFound):
		s.count(OutcomeConflict)
		s.logger.Warn("assignment commit rejected",
			logx.OrderID(res.OrderID),
			logx.CourierID(res.CourierID),
			logx.Err(err),
		)
		s.release(ctx, res)
		return OutcomeConflict, nil
	default:
		s.count(OutcomeFailed)
		s.logger.Error("assignment commit failed",
			logx.OrderID(res.OrderID),
			logx.CourierID(res.CourierID),
			logx.Err(err),
		)
		return OutcomeFailed, fmt.Errorf("commit %s: %w: %w", res.OrderID, apperr.ErrUnavailable, err)
	}
}

// Handle adapts Commit to the result reader callback.
func (s *Service) Handle(ctx context.Context, res domain.AssignmentResult) error {
	_, err := s.Commit(ctx, res)
	return err
}

func (s *Service) release(ctx context.Context, res domain.AssignmentResult) {
	if s.claims == nil {
		return
	}
	if _, err := s.claims.Release(ctx, res.CourierID, res.OrderID); err != nil {
		s.logger.Error("claim release failed",
			logx.OrderID(res.OrderID),
			logx.CourierID(res.CourierID),
			logx.Err(err),
		)
	}
}

func (s *Service) count(outcome string) {
	if s.outcomes != nil {
		s.outcomes.WithLabelValues(outcome).Inc()
	}
}
