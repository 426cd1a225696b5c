package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the window, then admits the request
// if it still fits. Returns {allowed, count, oldest_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestMs = now
if oldest[2] then
  oldestMs = tonumber(oldest[2])
end
return {allowed, count, oldestMs}
`)

// RedisLimiter shares one sliding window across every instance using the
// same key.
type RedisLimiter struct {
	client redis.UniversalClient
	quota  Quota
	now    func() time.Time
}

// NewRedis creates a limiter enforcing q.
func NewRedis(client redis.UniversalClient, q Quota) *RedisLimiter {
	return &RedisLimiter{client: client, quota: q, now: time.Now}
}

// Allow records the request when it fits the window.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if !r.quota.Enabled() {
		return Result{Allowed: true, Remaining: -1}, nil
	}
	now := r.now().UnixMilli()
	window := r.quota.Window.Milliseconds()
	vals, err := slidingWindow.Run(ctx, r.client, []string{key},
		now, window, r.quota.Limit, strconv.FormatInt(now, 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("sliding window %s: %w", key, err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("sliding window %s: unexpected reply %v", key, vals)
	}
	res := Result{
		Allowed:   vals[0] == 1,
		Remaining: max(r.quota.Limit-int(vals[1]), 0),
		ResetAt:   time.UnixMilli(vals[2] + window),
	}
	return res, nil
}
