package location

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// Nearby search bounds.
const (
	DefaultNearbyRadiusKm = 5.0
	MaxNearbyRadiusKm     = 50.0
	NearbyLimit           = 50
)

const dateLayout = "2006-01-02"

// CourierLocation returns the latest cached position of a courier.
func (p *Processor) CourierLocation(ctx context.Context, courierID string) (domain.CourierLocation, error) {
	id, err := requireID(courierID, "driverId")
	if err != nil {
		return domain.CourierLocation{}, err
	}
	return p.store.Location(ctx, id)
}

// NearbyCouriers lists couriers around center, nearest first. A zero radius
// means DefaultNearbyRadiusKm.
func (p *Processor) NearbyCouriers(ctx context.Context, center domain.Point, radiusKm float64) ([]domain.NearbyCourier, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if radiusKm == 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if radiusKm < 0 || radiusKm > MaxNearbyRadiusKm {
		return nil, fmt.Errorf("%w: radius must be within (0, %g] km", apperr.ErrInvalid, MaxNearbyRadiusKm)
	}
	return p.store.Nearby(ctx, center, radiusKm, NearbyLimit)
}

// OrderETA returns the current ETA record of an order.
func (p *Processor) OrderETA(ctx context.Context, orderID string) (domain.ETARecord, error) {
	id, err := requireID(orderID, "orderId")
	if err != nil {
		return domain.ETARecord{}, err
	}
	return p.store.ETA(ctx, id)
}

// CourierStatus returns the fast-store view of a courier.
func (p *Processor) CourierStatus(ctx context.Context, courierID string) (domain.CourierState, error) {
	id, err := requireID(courierID, "driverId")
	if err != nil {
		return domain.CourierState{}, err
	}
	return p.store.CourierState(ctx, id)
}

// DailyActivity returns activity counters for date (YYYY-MM-DD); an empty
// date means today (UTC).
func (p *Processor) DailyActivity(ctx context.Context, date string) (domain.DailyActivity, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = p.now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return domain.DailyActivity{}, fmt.Errorf("%w: date must be YYYY-MM-DD", apperr.ErrInvalid)
	}
	return p.store.DailyActivity(ctx, date)
}

func requireID(raw, field string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", domain.MissingField(field)
	}
	return id, nil
}
