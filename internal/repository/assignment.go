package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/ports/committx"
)

// AssignmentRepo binds orders to couriers in Postgres.
type AssignmentRepo struct {
	db *pgxpool.Pool
}

// NewAssignmentRepo creates a new AssignmentRepo.
func NewAssignmentRepo(db *pgxpool.Pool) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *AssignmentRepo) WithTx(ctx context.Context, fn func(tx committx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// откатываем при панике
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TxRepo runs commit statements inside one transaction.
type TxRepo struct {
	tx pgx.Tx
}

// CourierByID reads the courier row.
func (r *TxRepo) CourierByID(ctx context.Context, id string) (domain.CourierRecord, error) {
	var (
		c     domain.CourierRecord
		order *string
	)
	err := r.tx.QueryRow(ctx, `
        SELECT id, busy, current_order, version
        FROM couriers
        WHERE id = $1
    `, id).Scan(&c.ID, &c.Busy, &order, &c.Version)
	if err != nil {
		return domain.CourierRecord{}, rowErr("courier", id, err)
	}
	if order != nil {
		c.CurrentOrder = *order
	}
	return c, nil
}

// OrderByID reads the order row.
func (r *TxRepo) OrderByID(ctx context.Context, id string) (domain.OrderRecord, error) {
	var (
		o      domain.OrderRecord
		driver *string
	)
	err := r.tx.QueryRow(ctx, `
        SELECT id, driver_id, version
        FROM orders
        WHERE id = $1
    `, id).Scan(&o.ID, &driver, &o.Version)
	if err != nil {
		return domain.OrderRecord{}, rowErr("order", id, err)
	}
	if driver != nil {
		o.DriverID = *driver
	}
	return o, nil
}

// BindCourier - version-guarded courier update.
func (r *TxRepo) BindCourier(ctx context.Context, courierID, orderID string, version int64) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET busy = true,
            status = 'busy',
            current_order = $2,
            version = version + 1,
            updated_at = now()
        WHERE id = $1 AND version = $3 AND busy = false
    `, courierID, orderID, version)
	return guardErr(ct, err, "courier", courierID, version)
}

// BindOrder - version-guarded order update. An order that already has a
// driver is never rebound.
func (r *TxRepo) BindOrder(ctx context.Context, orderID, courierID string, version int64) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET driver_id = $2,
            current_status = 'assigned',
            version = version + 1,
            updated_at = now()
        WHERE id = $1 AND version = $3 AND driver_id IS NULL
    `, orderID, courierID, version)
	return guardErr(ct, err, "order", orderID, version)
}
