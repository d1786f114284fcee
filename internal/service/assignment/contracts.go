//go:generate mockgen -source=contracts.go -destination=assignment_mocks_test.go -package=assignment

package assignment

import (
	"context"
	"time"

	"courier-dispatch/internal/domain"
)

// Store is the fast-store subset used by the assignment engine.
type Store interface {
	Nearby(ctx context.Context, center domain.Point, radiusKm float64, limit int) ([]domain.NearbyCourier, error)
	ActiveOrdersMany(ctx context.Context, courierIDs []string) (map[string][]string, error)
	Claim(ctx context.Context, courierID, orderID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, courierID, orderID string) (bool, error)
	SaveOrderDetails(ctx context.Context, d domain.OrderDetails, ttl time.Duration) error
	OrderDetails(ctx context.Context, orderID string) (domain.OrderDetails, error)
}

// Publisher emits assignment results.
type Publisher interface {
	PublishResult(ctx context.Context, r domain.AssignmentResult) error
}
