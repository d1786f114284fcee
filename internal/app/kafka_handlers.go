package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/transport/kafka"
)

type positionHandler interface {
	Handle(ctx context.Context, pos domain.CourierPosition) error
	RecordMalformed(err error)
}

type requestHandler interface {
	Handle(ctx context.Context, req domain.AssignmentRequest) (domain.AssignmentResult, error)
	Reject(ctx context.Context, orderID string, cause error) (domain.AssignmentResult, error)
}

// positionEvents decodes driver_location records for the location engine.
// Undecodable or invalid events are permanent: they are dropped, not requeued.
func positionEvents(p positionHandler) kafka.HandleFunc {
	return func(ctx context.Context, m kafka.Message) error {
		var dto kafka.PositionEventDTO
		if err := json.Unmarshal(m.Value, &dto); err != nil {
			err = fmt.Errorf("decode position event: %w", err)
			p.RecordMalformed(err)
			return kafka.Permanent(err)
		}
		pos, err := dto.ToDomain()
		if err != nil {
			p.RecordMalformed(err)
			return kafka.Permanent(err)
		}
		if err := p.Handle(ctx, pos); err != nil {
			if errors.Is(err, apperr.ErrInvalid) {
				return kafka.Permanent(err)
			}
			return err
		}
		return nil
	}
}

// assignmentRequests decodes request records for the assignment engine.
// A request that names an order but fails validation is still answered with
// a failed result; one without an order id cannot be answered and is dropped.
func assignmentRequests(e requestHandler) kafka.HandleFunc {
	return func(ctx context.Context, m kafka.Message) error {
		var dto kafka.AssignmentRequestDTO
		if err := json.Unmarshal(m.Value, &dto); err != nil {
			return kafka.Permanent(fmt.Errorf("decode assignment request: %w", err))
		}
		req, err := dto.ToDomain()
		if err != nil {
			if req.OrderID == "" {
				return kafka.Permanent(err)
			}
			if _, perr := e.Reject(ctx, req.OrderID, err); perr != nil {
				return perr
			}
			return kafka.Permanent(err)
		}
		_, err = e.Handle(ctx, req)
		return err
	}
}
