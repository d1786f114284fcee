package domain

import (
	"strings"
	"time"
)

// FreshnessWindow bounds how far a report timestamp may drift from the
// processing clock.
type FreshnessWindow struct {
	MaxAge  time.Duration
	MaxSkew time.Duration
}

// PositionReport is a raw position report as submitted by the courier app.
// Required coordinates are pointers so that an absent value can be told apart
// from a zero coordinate.
type PositionReport struct {
	CourierID    string
	Latitude     *float64
	Longitude    *float64
	Timestamp    time.Time
	Accuracy     *float64
	Speed        *float64
	Heading      *float64
	Altitude     *float64
	BatteryLevel *float64
	NetworkType  string
}

// Validate checks required fields, coordinate ranges and timestamp freshness
// against now. It returns the validated point.
func (r PositionReport) Validate(now time.Time, w FreshnessWindow) (Point, error) {
	if strings.TrimSpace(r.CourierID) == "" {
		return Point{}, MissingField("driverId")
	}
	if r.Latitude == nil {
		return Point{}, MissingField("latitude")
	}
	if r.Longitude == nil {
		return Point{}, MissingField("longitude")
	}
	if r.Timestamp.IsZero() {
		return Point{}, MissingField("timestamp")
	}

	p := Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}

	if r.Timestamp.Before(now.Add(-w.MaxAge)) {
		return Point{}, ErrStaleTimestamp
	}
	if r.Timestamp.After(now.Add(w.MaxSkew)) {
		return Point{}, ErrFutureTimestamp
	}
	return p, nil
}

// CourierPosition is an accepted, enriched position event. It is replaced per
// courier in the geo index and never persisted beyond the state TTL.
type CourierPosition struct {
	EventID         string
	CourierID       string
	Point           Point
	Timestamp       time.Time
	Accuracy        *float64
	Speed           *float64
	Heading         *float64
	Altitude        *float64
	BatteryLevel    *float64
	NetworkType     string
	ProcessedAt     time.Time
	ServiceInstance string
}

// Validate checks that a consumed event carries what downstream processing needs.
func (p CourierPosition) Validate() error {
	if strings.TrimSpace(p.EventID) == "" {
		return MissingField("eventId")
	}
	if strings.TrimSpace(p.CourierID) == "" {
		return MissingField("driverId")
	}
	if p.Timestamp.IsZero() {
		return MissingField("timestamp")
	}
	return p.Point.Validate()
}
