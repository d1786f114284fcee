package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/domain"
)

// DateLayout is the analytics day key format.
const DateLayout = "2006-01-02"

// RecordActivity adds the courier to the daily unique set and bumps the
// hourly bucket of at (UTC).
func (s *Store) RecordActivity(ctx context.Context, courierID string, at time.Time, ttl time.Duration) error {
	at = at.UTC()
	date := at.Format(DateLayout)
	daily := activeCouriersKey(date)
	hourly := hourKey(date, at.Hour())

	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.PFAdd(ctx, daily, courierID)
		p.Expire(ctx, daily, ttl)
		p.Incr(ctx, hourly)
		p.Expire(ctx, hourly, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// DailyActivity reads the counters of date (YYYY-MM-DD).
func (s *Store) DailyActivity(ctx context.Context, date string) (domain.DailyActivity, error) {
	out := domain.DailyActivity{Date: date}

	unique, err := s.rdb.PFCount(ctx, activeCouriersKey(date)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return out, fmt.Errorf("daily activity: %w", err)
	}
	out.ActiveCouriers = unique

	keys := make([]string, len(out.Hourly))
	for h := range keys {
		keys[h] = hourKey(date, h)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return out, fmt.Errorf("hourly activity: %w", err)
	}
	for h, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if n, err := strconv.ParseInt(str, 10, 64); err == nil {
			out.Hourly[h] = n
		}
	}
	return out, nil
}
