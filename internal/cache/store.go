// Package cache is the fast-store access layer: the courier geo index, TTL
// bound courier and order state, the atomic claim and activity analytics.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// Store implements fast-store operations on top of Redis.
type Store struct {
	rdb redis.UniversalClient
}

// New returns a Store over rdb.
func New(rdb redis.UniversalClient) *Store {
	if rdb == nil {
		return nil
	}
	return &Store{rdb: rdb}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// RecordPosition upserts the courier in the geo index and refreshes its
// location and liveness records with ttl.
func (s *Store) RecordPosition(ctx context.Context, courierID string, loc domain.CourierLocation, ttl time.Duration) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.GeoAdd(ctx, geoKey, &redis.GeoLocation{
			Name:      courierID,
			Longitude: loc.Point.Longitude,
			Latitude:  loc.Point.Latitude,
		})
		p.Set(ctx, locationKey(courierID), raw, ttl)
		p.Set(ctx, statusKey(courierID), string(domain.LivenessActive), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record position %s: %w", courierID, err)
	}
	return nil
}

// Location returns the cached location of a courier.
func (s *Store) Location(ctx context.Context, courierID string) (domain.CourierLocation, error) {
	var loc domain.CourierLocation
	if err := s.getJSON(ctx, locationKey(courierID), &loc); err != nil {
		return domain.CourierLocation{}, fmt.Errorf("courier %s location: %w", courierID, err)
	}
	return loc, nil
}

// CourierState assembles the fast-store view of a courier. A courier without
// any record is reported inactive with no orders.
func (s *Store) CourierState(ctx context.Context, courierID string) (domain.CourierState, error) {
	var (
		locCmd    *redis.StringCmd
		statusCmd *redis.StringCmd
		ordersCmd *redis.StringCmd
		busyCmd   *redis.IntCmd
	)
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		locCmd = p.Get(ctx, locationKey(courierID))
		statusCmd = p.Get(ctx, statusKey(courierID))
		ordersCmd = p.Get(ctx, activeOrdersKey(courierID))
		busyCmd = p.Exists(ctx, busyKey(courierID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.CourierState{}, fmt.Errorf("courier %s state: %w", courierID, err)
	}

	st := domain.CourierState{CourierID: courierID, Status: domain.LivenessInactive}
	if raw, err := locCmd.Bytes(); err == nil {
		var loc domain.CourierLocation
		if err := json.Unmarshal(raw, &loc); err == nil {
			st.Location = &loc
		}
	}
	if v, err := statusCmd.Result(); err == nil && domain.Liveness(v).Valid() {
		st.Status = domain.Liveness(v)
	}
	if raw, err := ordersCmd.Result(); err == nil {
		st.ActiveOrders = decodeOrders(raw)
	}
	st.Busy = busyCmd.Val() > 0 || len(st.ActiveOrders) > 0
	return st, nil
}

// Nearby returns couriers within radiusKm of center, nearest first.
// limit <= 0 means no limit.
func (s *Store) Nearby(ctx context.Context, center domain.Point, radiusKm float64, limit int) ([]domain.NearbyCourier, error) {
	locs, err := s.rdb.GeoRadius(ctx, geoKey, center.Longitude, center.Latitude, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Count:     limit,
		Sort:      "ASC",
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("geo radius: %w", err)
	}
	out := make([]domain.NearbyCourier, 0, len(locs))
	for _, l := range locs {
		out = append(out, domain.NearbyCourier{
			CourierID:  l.Name,
			Point:      domain.Point{Latitude: l.Latitude, Longitude: l.Longitude},
			DistanceKm: l.Dist,
		})
	}
	return out, nil
}

// ActiveOrders returns the active order ids of a courier.
func (s *Store) ActiveOrders(ctx context.Context, courierID string) ([]string, error) {
	raw, err := s.rdb.Get(ctx, activeOrdersKey(courierID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("courier %s active orders: %w", courierID, err)
	}
	return decodeOrders(raw), nil
}

// ActiveOrdersMany returns active order ids for each courier in one round trip.
// Couriers without orders are present with an empty slice.
func (s *Store) ActiveOrdersMany(ctx context.Context, courierIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(courierIDs))
	if len(courierIDs) == 0 {
		return out, nil
	}
	keys := make([]string, len(courierIDs))
	for i, id := range courierIDs {
		keys[i] = activeOrdersKey(id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("active orders: %w", err)
	}
	for i, id := range courierIDs {
		raw, _ := vals[i].(string)
		out[id] = decodeOrders(raw)
	}
	return out, nil
}

// SaveOrderDetails persists the route of an assigned order.
func (s *Store) SaveOrderDetails(ctx context.Context, d domain.OrderDetails, ttl time.Duration) error {
	return s.setJSON(ctx, orderDetailsKey(d.OrderID), d, ttl)
}

// OrderDetails returns the persisted route of an order.
func (s *Store) OrderDetails(ctx context.Context, orderID string) (domain.OrderDetails, error) {
	var d domain.OrderDetails
	if err := s.getJSON(ctx, orderDetailsKey(orderID), &d); err != nil {
		return domain.OrderDetails{}, fmt.Errorf("order %s details: %w", orderID, err)
	}
	return d, nil
}

// SaveETA overwrites the ETA record of an order.
func (s *Store) SaveETA(ctx context.Context, rec domain.ETARecord, ttl time.Duration) error {
	return s.setJSON(ctx, orderETAKey(rec.OrderID), rec, ttl)
}

// ETA returns the current ETA record of an order.
func (s *Store) ETA(ctx context.Context, orderID string) (domain.ETARecord, error) {
	var rec domain.ETARecord
	if err := s.getJSON(ctx, orderETAKey(orderID), &rec); err != nil {
		return domain.ETARecord{}, fmt.Errorf("order %s eta: %w", orderID, err)
	}
	return rec, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func decodeOrders(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// unreadable membership is treated as occupied
		return []string{raw}
	}
	return ids
}
