package handlers

import (
	"time"

	"courier-dispatch/internal/domain"
)

type courierLocationResponse struct {
	DriverID     string    `json:"driverId"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timestamp    time.Time `json:"timestamp"`
	Accuracy     *float64  `json:"accuracy,omitempty"`
	Speed        *float64  `json:"speed,omitempty"`
	Heading      *float64  `json:"heading,omitempty"`
	BatteryLevel *float64  `json:"batteryLevel,omitempty"`
	NetworkType  string    `json:"networkType,omitempty"`
	LastUpdate   time.Time `json:"lastUpdate"`
}

type nearbyCourierDTO struct {
	DriverID   string  `json:"driverId"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distanceKm"`
}

type nearbyResponse struct {
	Count   int                `json:"count"`
	Drivers []nearbyCourierDTO `json:"drivers"`
}

type orderETAResponse struct {
	OrderID        string       `json:"orderId"`
	ETA            int          `json:"eta"`
	DriverLocation domain.Point `json:"driverLocation"`
	CalculatedAt   time.Time    `json:"calculatedAt"`
}

type courierStatusResponse struct {
	DriverID     string                   `json:"driverId"`
	Status       domain.Liveness          `json:"status"`
	Busy         bool                     `json:"busy"`
	Available    bool                     `json:"available"`
	ActiveOrders []string                 `json:"activeOrders"`
	Location     *courierLocationResponse `json:"location,omitempty"`
}

type activityResponse struct {
	Date           string    `json:"date"`
	ActiveCouriers int64     `json:"activeCouriers"`
	Hourly         [24]int64 `json:"hourlyUpdates"`
}

func locationToResponse(id string, l domain.CourierLocation) courierLocationResponse {
	return courierLocationResponse{
		DriverID:     id,
		Latitude:     l.Point.Latitude,
		Longitude:    l.Point.Longitude,
		Timestamp:    l.Timestamp,
		Accuracy:     l.Accuracy,
		Speed:        l.Speed,
		Heading:      l.Heading,
		BatteryLevel: l.BatteryLevel,
		NetworkType:  l.NetworkType,
		LastUpdate:   l.LastUpdate,
	}
}

func nearbyToResponse(list []domain.NearbyCourier) nearbyResponse {
	out := nearbyResponse{Count: len(list), Drivers: make([]nearbyCourierDTO, 0, len(list))}
	for _, c := range list {
		out.Drivers = append(out.Drivers, nearbyCourierDTO{
			DriverID:   c.CourierID,
			Latitude:   c.Point.Latitude,
			Longitude:  c.Point.Longitude,
			DistanceKm: c.DistanceKm,
		})
	}
	return out
}

func etaToResponse(rec domain.ETARecord) orderETAResponse {
	return orderETAResponse{
		OrderID:        rec.OrderID,
		ETA:            rec.ETAMinutes,
		DriverLocation: rec.Courier,
		CalculatedAt:   rec.ComputedAt,
	}
}

func statusToResponse(s domain.CourierState) courierStatusResponse {
	out := courierStatusResponse{
		DriverID:     s.CourierID,
		Status:       s.Status,
		Busy:         s.Busy,
		Available:    s.Available(),
		ActiveOrders: s.ActiveOrders,
	}
	if out.ActiveOrders == nil {
		out.ActiveOrders = []string{}
	}
	if s.Location != nil {
		l := locationToResponse(s.CourierID, *s.Location)
		out.Location = &l
	}
	return out
}
