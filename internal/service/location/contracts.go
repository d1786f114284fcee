//go:generate mockgen -source=contracts.go -destination=location_mocks_test.go -package=location

package location

import (
	"context"
	"time"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/push"
)

// Store is the fast-store subset used by the location engine.
type Store interface {
	RecordPosition(ctx context.Context, courierID string, loc domain.CourierLocation, ttl time.Duration) error
	ActiveOrders(ctx context.Context, courierID string) ([]string, error)
	OrderDetails(ctx context.Context, orderID string) (domain.OrderDetails, error)
	SaveETA(ctx context.Context, rec domain.ETARecord, ttl time.Duration) error
	RecordActivity(ctx context.Context, courierID string, at time.Time, ttl time.Duration) error

	Location(ctx context.Context, courierID string) (domain.CourierLocation, error)
	CourierState(ctx context.Context, courierID string) (domain.CourierState, error)
	Nearby(ctx context.Context, center domain.Point, radiusKm float64, limit int) ([]domain.NearbyCourier, error)
	ETA(ctx context.Context, orderID string) (domain.ETARecord, error)
	DailyActivity(ctx context.Context, date string) (domain.DailyActivity, error)
}

// Notifier fans a frame out to live subscribers of a topic.
type Notifier interface {
	Publish(ctx context.Context, topic string, msg push.Message) int
}
