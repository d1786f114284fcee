// Package geo holds great-circle distance and travel-time estimation.
package geo

import (
	"fmt"
	"math"
	"time"

	"courier-dispatch/internal/domain"
)

const earthRadiusKm = 6371.0

// MinETAMinutes is the floor applied to every rounded travel estimate.
const MinETAMinutes = 5

// DefaultSpeedKmh is the assumed average courier speed.
const DefaultSpeedKmh = 30.0

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b domain.Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Estimator estimates travel time between two points.
// Swappable for a routing provider.
type Estimator interface {
	EstimateTravelTime(from, to domain.Point) time.Duration
}

// AverageSpeed estimates travel time as straight-line distance at a fixed speed.
type AverageSpeed struct {
	SpeedKmh float64
}

// NewAverageSpeed returns an estimator for speedKmh, falling back to
// DefaultSpeedKmh for non-positive values.
func NewAverageSpeed(speedKmh float64) AverageSpeed {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	return AverageSpeed{SpeedKmh: speedKmh}
}

// EstimateTravelTime implements Estimator.
func (s AverageSpeed) EstimateTravelTime(from, to domain.Point) time.Duration {
	speed := s.SpeedKmh
	if speed <= 0 {
		speed = DefaultSpeedKmh
	}
	hours := Distance(from, to) / speed
	return time.Duration(hours * float64(time.Hour))
}

// Minutes rounds d up to whole minutes with a floor of MinETAMinutes.
func Minutes(d time.Duration) int {
	m := int(math.Ceil(d.Minutes()))
	if m < MinETAMinutes {
		return MinETAMinutes
	}
	return m
}

// Shard returns the 10x10 degree cell of p, e.g. "4_-8" for New York.
func Shard(p domain.Point) string {
	return fmt.Sprintf("%d_%d", int(math.Floor(p.Latitude/10)), int(math.Floor(p.Longitude/10)))
}
