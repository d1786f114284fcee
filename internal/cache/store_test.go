package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestStore_RecordPositionAndState(t *testing.T) {
	t.Parallel()
	s, mr := newStore(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	loc := domain.CourierLocation{
		Point:      domain.Point{Latitude: 40.7100, Longitude: -74.0000},
		Timestamp:  now,
		LastUpdate: now,
	}
	require.NoError(t, s.RecordPosition(ctx, "d1", loc, 5*time.Minute))

	got, err := s.Location(ctx, "d1")
	require.NoError(t, err)
	require.InDelta(t, 40.71, got.Point.Latitude, 1e-9)

	st, err := s.CourierState(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, domain.LivenessActive, st.Status)
	require.NotNil(t, st.Location)
	require.False(t, st.Busy)
	require.True(t, st.Available())

	mr.FastForward(6 * time.Minute)

	st, err = s.CourierState(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, domain.LivenessInactive, st.Status)
	require.Nil(t, st.Location)

	_, err = s.Location(ctx, "d1")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_Nearby(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)
	ctx := context.Background()

	put := func(id string, lat, lon float64) {
		require.NoError(t, s.RecordPosition(ctx, id, domain.CourierLocation{
			Point: domain.Point{Latitude: lat, Longitude: lon},
		}, time.Minute))
	}
	put("near", 40.7100, -74.0000)
	put("mid", 40.7300, -73.9900)
	put("far", 41.5000, -73.0000)

	got, err := s.Nearby(ctx, domain.Point{Latitude: 40.7128, Longitude: -74.0060}, 5, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "near", got[0].CourierID)
	require.Equal(t, "mid", got[1].CourierID)
	require.InDelta(t, 0.59, got[0].DistanceKm, 0.05)
	require.InDelta(t, 40.71, got[0].Point.Latitude, 1e-3)
}

func TestStore_ClaimRelease_RoundTrip(t *testing.T) {
	t.Parallel()
	s, mr := newStore(t)
	ctx := context.Background()

	ok, err := s.Claim(ctx, "d1", "o1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	orders, err := s.ActiveOrders(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, []string{"o1"}, orders)
	require.True(t, mr.Exists(busyKey("d1")))

	ok, err = s.Claim(ctx, "d1", "o2", time.Hour)
	require.NoError(t, err)
	require.False(t, ok)

	st, err := s.CourierState(ctx, "d1")
	require.NoError(t, err)
	require.True(t, st.Busy)
	require.False(t, st.Available())

	removed, err := s.Release(ctx, "d1", "o1")
	require.NoError(t, err)
	require.True(t, removed)
	require.False(t, mr.Exists(activeOrdersKey("d1")))
	require.False(t, mr.Exists(busyKey("d1")))

	removed, err = s.Release(ctx, "d1", "o1")
	require.NoError(t, err)
	require.False(t, removed)

	ok, err = s.Claim(ctx, "d1", "o2", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStore_ClaimTreatsEmptyListAsFree(t *testing.T) {
	t.Parallel()
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(activeOrdersKey("d1"), "[]"))
	ok, err := s.Claim(ctx, "d1", "o1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStore_ReleaseKeepsOtherOrders(t *testing.T) {
	t.Parallel()
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(activeOrdersKey("d1"), `["o1","o2"]`))
	mr.SetTTL(activeOrdersKey("d1"), time.Hour)
	require.NoError(t, mr.Set(busyKey("d1"), "1"))

	removed, err := s.Release(ctx, "d1", "o1")
	require.NoError(t, err)
	require.True(t, removed)

	orders, err := s.ActiveOrders(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, []string{"o2"}, orders)
	require.True(t, mr.Exists(busyKey("d1")))
	require.Greater(t, mr.TTL(activeOrdersKey("d1")), time.Duration(0))
}

func TestStore_ReleaseDropsOwnOrderDetails(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"o1", "o2"} {
		ok, err := s.Claim(ctx, "d-"+id, id, time.Hour)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, s.SaveOrderDetails(ctx, domain.OrderDetails{OrderID: "o1", CourierID: "d-o1"}, time.Hour))
	// o2 details name a different courier than the one being released
	require.NoError(t, s.SaveOrderDetails(ctx, domain.OrderDetails{OrderID: "o2", CourierID: "d-o2"}, time.Hour))

	removed, err := s.Release(ctx, "d-o1", "o1")
	require.NoError(t, err)
	require.True(t, removed)
	_, err = s.OrderDetails(ctx, "o1")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	removed, err = s.Release(ctx, "d-o1", "o2")
	require.NoError(t, err)
	require.False(t, removed)
	d, err := s.OrderDetails(ctx, "o2")
	require.NoError(t, err)
	require.Equal(t, "d-o2", d.CourierID)
}

func TestStore_Claim_ConcurrentRequestsOneWinner(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)
	ctx := context.Background()

	const n = 32
	var (
		wg   sync.WaitGroup
		wins int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := s.Claim(ctx, "d1", fmt.Sprintf("order-%d", i), time.Hour)
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), wins)
	orders, err := s.ActiveOrders(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestStore_ClaimExpires(t *testing.T) {
	t.Parallel()
	s, mr := newStore(t)
	ctx := context.Background()

	ok, err := s.Claim(ctx, "d1", "o1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(time.Hour + time.Second)

	ok, err = s.Claim(ctx, "d1", "o2", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStore_ActiveOrdersMany(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Claim(ctx, "busy", "o1", time.Hour)
	require.NoError(t, err)

	got, err := s.ActiveOrdersMany(ctx, []string{"busy", "free"})
	require.NoError(t, err)
	require.Equal(t, []string{"o1"}, got["busy"])
	require.Empty(t, got["free"])

	empty, err := s.ActiveOrdersMany(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestStore_OrderDetailsAndETA(t *testing.T) {
	t.Parallel()
	s, mr := newStore(t)
	ctx := context.Background()

	_, err := s.OrderDetails(ctx, "o1")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	d := domain.OrderDetails{
		OrderID:         "o1",
		CourierID:       "d1",
		Restaurant:      domain.Point{Latitude: 40.7128, Longitude: -74.0060},
		Customer:        domain.Point{Latitude: 40.7589, Longitude: -73.9851},
		PreparationTime: 15,
		AssignedAt:      time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, s.SaveOrderDetails(ctx, d, time.Hour))
	got, err := s.OrderDetails(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, d.CourierID, got.CourierID)
	require.Equal(t, d.Customer, got.Customer)
	require.Equal(t, 15, got.PreparationTime)
	require.True(t, d.AssignedAt.Equal(got.AssignedAt))
	require.Equal(t, time.Hour, mr.TTL(orderDetailsKey("o1")))

	rec := domain.ETARecord{OrderID: "o1", ETAMinutes: 16, ComputedAt: d.AssignedAt}
	require.NoError(t, s.SaveETA(ctx, rec, time.Hour))
	gotETA, err := s.ETA(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, 16, gotETA.ETAMinutes)
}

func TestStore_Activity(t *testing.T) {
	t.Parallel()
	s, mr := newStore(t)
	ctx := context.Background()

	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	require.NoError(t, s.RecordActivity(ctx, "d1", at, 7*24*time.Hour))
	require.NoError(t, s.RecordActivity(ctx, "d1", at.Add(time.Minute), 7*24*time.Hour))
	require.NoError(t, s.RecordActivity(ctx, "d2", at.Add(time.Hour), 7*24*time.Hour))

	got, err := s.DailyActivity(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Equal(t, int64(2), got.ActiveCouriers)
	require.Equal(t, int64(2), got.Hourly[10])
	require.Equal(t, int64(1), got.Hourly[11])
	require.Equal(t, int64(0), got.Hourly[0])
	require.Equal(t, 7*24*time.Hour, mr.TTL(hourKey("2024-01-15", 10)))

	none, err := s.DailyActivity(ctx, "2023-01-01")
	require.NoError(t, err)
	require.Zero(t, none.ActiveCouriers)
}
