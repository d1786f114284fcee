package handlers

import (
	"context"
	"net/http"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/push"
	"courier-dispatch/internal/service/ingest"
	"courier-dispatch/internal/service/location"
)

type gatewayStats interface {
	Stats() ingest.Stats
}

type engineHealth interface {
	Health() location.Health
}

type connectionCounter interface {
	Connections() int
}

type gpsUsecase interface {
	Submit(ctx context.Context, r domain.PositionReport) (domain.CourierPosition, error)
	SubmitBatch(ctx context.Context, reports []domain.PositionReport) (ingest.BatchResult, error)
}

type locationQueries interface {
	CourierLocation(ctx context.Context, courierID string) (domain.CourierLocation, error)
	NearbyCouriers(ctx context.Context, center domain.Point, radiusKm float64) ([]domain.NearbyCourier, error)
	OrderETA(ctx context.Context, orderID string) (domain.ETARecord, error)
	CourierStatus(ctx context.Context, courierID string) (domain.CourierState, error)
	DailyActivity(ctx context.Context, date string) (domain.DailyActivity, error)
}

type assignmentUsecase interface {
	Handle(ctx context.Context, req domain.AssignmentRequest) (domain.AssignmentResult, error)
	Reject(ctx context.Context, orderID string, cause error) (domain.AssignmentResult, error)
	Release(ctx context.Context, courierID, orderID string) error
}

type pushRegistry interface {
	Open(ctx context.Context, connectionID string, sink push.Sink) (*push.Session, error)
	Subscribe(connectionID, topic string) error
	Unsubscribe(connectionID, topic string) error
	CloseSession(s *push.Session)
}

type tokenVerifier interface {
	Authorize(r *http.Request, connectionID string) error
}

type requestPublisher interface {
	PublishRequest(ctx context.Context, r domain.AssignmentRequest) error
}
