package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/domain"
)

var (
	restaurant = domain.Point{Latitude: 40.7128, Longitude: -74.0060}
	customer   = domain.Point{Latitude: 40.7589, Longitude: -73.9851}
	courier    = domain.Point{Latitude: 40.7100, Longitude: -74.0000}
)

func TestDistance(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, Distance(restaurant, restaurant), 1e-9)
	assert.InDelta(t, 0.59, Distance(courier, restaurant), 0.02)
	assert.InDelta(t, 5.42, Distance(restaurant, customer), 0.05)
	assert.InDelta(t, Distance(restaurant, customer), Distance(customer, restaurant), 1e-9)
}

func TestAverageSpeed(t *testing.T) {
	t.Parallel()

	est := NewAverageSpeed(0)
	require.Equal(t, DefaultSpeedKmh, est.SpeedKmh)

	// 5.42 km at 30 km/h is roughly 10.8 minutes.
	d := est.EstimateTravelTime(restaurant, customer)
	assert.InDelta(t, 10.8, d.Minutes(), 0.2)
	assert.Equal(t, 11, Minutes(d))
}

func TestMinutes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, Minutes(0))
	assert.Equal(t, 5, Minutes(70*time.Second))
	assert.Equal(t, 6, Minutes(5*time.Minute+time.Second))
	assert.Equal(t, 30, Minutes(30*time.Minute))
}

func TestShard(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "4_-8", Shard(restaurant))
	assert.Equal(t, "5_1", Shard(domain.Point{Latitude: 55.75, Longitude: 12.5}))
	assert.Equal(t, "-4_-5", Shard(domain.Point{Latitude: -33.9, Longitude: -42.1}))
	assert.Equal(t, "0_0", Shard(domain.Point{}))
}
