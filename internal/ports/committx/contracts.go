package committx

import (
	"context"

	"courier-dispatch/internal/domain"
)

// Repository is the transactional view of courier and order rows.
type Repository interface {
	CourierByID(ctx context.Context, id string) (domain.CourierRecord, error)
	OrderByID(ctx context.Context, id string) (domain.OrderRecord, error)
	// BindCourier marks the courier busy with orderID if its version still
	// equals version and it is not busy. Zero affected rows is apperr.ErrConflict.
	BindCourier(ctx context.Context, courierID, orderID string, version int64) error
	// BindOrder sets the order's driver if its version still equals version.
	BindOrder(ctx context.Context, orderID, courierID string, version int64) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
