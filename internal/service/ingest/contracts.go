//go:generate mockgen -source=contracts.go -destination=ingest_mocks_test.go -package=ingest

package ingest

import (
	"context"

	"courier-dispatch/internal/domain"
)

// Publisher writes an accepted position to the event log.
type Publisher interface {
	PublishPosition(ctx context.Context, p domain.CourierPosition) error
}
