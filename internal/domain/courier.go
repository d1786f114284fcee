package domain

import "time"

// Liveness is derived from position freshness.
type Liveness string

// Liveness values.
const (
	LivenessActive   Liveness = "active"
	LivenessInactive Liveness = "inactive"
)

// Valid checks if the Liveness is one of the known values.
func (l Liveness) Valid() bool {
	return l == LivenessActive || l == LivenessInactive
}

// CourierLocation is the cached per-courier location record.
type CourierLocation struct {
	Point        Point     `json:"point"`
	Timestamp    time.Time `json:"timestamp"`
	Accuracy     *float64  `json:"accuracy,omitempty"`
	Speed        *float64  `json:"speed,omitempty"`
	Heading      *float64  `json:"heading,omitempty"`
	BatteryLevel *float64  `json:"batteryLevel,omitempty"`
	NetworkType  string    `json:"networkType,omitempty"`
	LastUpdate   time.Time `json:"lastUpdate"`
}

// LocationFromPosition builds the cache record for a position event.
func LocationFromPosition(p CourierPosition, now time.Time) CourierLocation {
	return CourierLocation{
		Point:        p.Point,
		Timestamp:    p.Timestamp,
		Accuracy:     p.Accuracy,
		Speed:        p.Speed,
		Heading:      p.Heading,
		BatteryLevel: p.BatteryLevel,
		NetworkType:  p.NetworkType,
		LastUpdate:   now,
	}
}

// CourierState is the fast-store view of a courier.
// A non-empty ActiveOrders implies Busy.
type CourierState struct {
	CourierID    string
	Location     *CourierLocation
	Status       Liveness
	ActiveOrders []string
	Busy         bool
}

// Available reports whether the courier can be offered a new order.
func (s CourierState) Available() bool {
	return len(s.ActiveOrders) == 0
}

// NearbyCourier is a geo-index hit.
type NearbyCourier struct {
	CourierID  string
	Point      Point
	DistanceKm float64
}
