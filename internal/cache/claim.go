package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] active orders, KEYS[2] busy flag; ARGV[1] encoded order list, ARGV[2] ttl seconds.
var claimScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, list = pcall(cjson.decode, cur)
  if not ok or type(list) ~= 'table' or #list > 0 then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
redis.call('SET', KEYS[2], '1', 'EX', ARGV[2])
return 1
`)

// KEYS[1] active orders, KEYS[2] busy flag, KEYS[3] order details;
// ARGV[1] order id, ARGV[2] courier id.
var releaseScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[3])
if raw then
  local ok, d = pcall(cjson.decode, raw)
  if ok and type(d) == 'table' and d.driverId == ARGV[2] then
    redis.call('DEL', KEYS[3])
  end
end
local cur = redis.call('GET', KEYS[1])
if not cur then
  redis.call('DEL', KEYS[2])
  return 0
end
local ok, list = pcall(cjson.decode, cur)
if not ok or type(list) ~= 'table' then
  return 0
end
local keep = {}
local removed = 0
for _, id in ipairs(list) do
  if id == ARGV[1] then
    removed = 1
  else
    table.insert(keep, id)
  end
end
if #keep == 0 then
  redis.call('DEL', KEYS[1], KEYS[2])
  return removed
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
  redis.call('SET', KEYS[1], cjson.encode(keep), 'PX', ttl)
else
  redis.call('SET', KEYS[1], cjson.encode(keep))
end
return removed
`)

// Claim atomically reserves courierID for orderID. It reports false when the
// courier already has an active order. The reservation and the busy flag
// expire after ttl.
func (s *Store) Claim(ctx context.Context, courierID, orderID string, ttl time.Duration) (bool, error) {
	orders, err := json.Marshal([]string{orderID})
	if err != nil {
		return false, fmt.Errorf("marshal orders: %w", err)
	}
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	n, err := claimScript.Run(ctx, s.rdb,
		[]string{activeOrdersKey(courierID), busyKey(courierID)},
		string(orders), secs,
	).Int()
	if err != nil {
		return false, fmt.Errorf("claim courier %s: %w", courierID, err)
	}
	return n == 1, nil
}

// Release removes orderID from the courier's active orders and clears the
// busy flag once none remain. Order details naming this courier are dropped
// in the same script. It reports whether the order was present.
func (s *Store) Release(ctx context.Context, courierID, orderID string) (bool, error) {
	n, err := releaseScript.Run(ctx, s.rdb,
		[]string{activeOrdersKey(courierID), busyKey(courierID), orderDetailsKey(orderID)},
		orderID, courierID,
	).Int()
	if err != nil {
		return false, fmt.Errorf("release courier %s: %w", courierID, err)
	}
	return n == 1, nil
}
