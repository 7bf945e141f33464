package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/acquisitions/acquisitions-api/internal/infrastructure/protection"
)

// slidingWindowScript keeps one sorted-set member per admitted request,
// scored by its arrival time in milliseconds. It returns
// {allowed, count, oldestScore}.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max    = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count >= max then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, count, tonumber(oldest[2])}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {1, count + 1, tonumber(oldest[2])}
`)

// WindowStore is a protection.WindowStore backed by Redis sorted sets.
// Key format: <prefix>:<bucket>:<ip>
type WindowStore struct {
	client *redis.Client
	prefix string
}

// NewWindowStore wraps client. An empty prefix defaults to "admission".
func NewWindowStore(client *redis.Client, prefix string) *WindowStore {
	if prefix == "" {
		prefix = "admission"
	}
	return &WindowStore{client: client, prefix: prefix}
}

func (s *WindowStore) Hit(ctx context.Context, key string, window time.Duration, max int, now time.Time) (protection.WindowResult, error) {
	vals, err := slidingWindowScript.Run(ctx, s.client,
		[]string{s.prefix + ":" + key},
		now.UnixMilli(), window.Milliseconds(), max, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return protection.WindowResult{}, fmt.Errorf("sliding window %s: %w", key, err)
	}
	if len(vals) != 3 {
		return protection.WindowResult{}, fmt.Errorf("sliding window %s: unexpected reply %v", key, vals)
	}

	allowed := vals[0] == 1
	remaining := max - int(vals[1])
	if remaining < 0 || !allowed {
		remaining = 0
	}
	return protection.WindowResult{
		Allowed:   allowed,
		Remaining: remaining,
		Reset:     time.UnixMilli(vals[2]).Add(window),
	}, nil
}
