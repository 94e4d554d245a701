package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript implements the token bucket atomically on the Redis side.
// State per key: tokens and the last refill timestamp in milliseconds.
// The key TTL is set to twice the time needed for a full refill so idle
// buckets expire on their own.
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local refill_interval_ms = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now_ms = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill_ms = tonumber(state[2])

if tokens == nil then
	tokens = capacity
	last_refill_ms = now_ms
end

local elapsed = now_ms - last_refill_ms
local max_intervals = math.floor(capacity / refill_rate) + 1
local intervals = math.floor(elapsed / refill_interval_ms)
if intervals > max_intervals then
	intervals = max_intervals
end

if intervals > 0 then
	tokens = math.min(tokens + intervals * refill_rate, capacity)
	last_refill_ms = last_refill_ms + intervals * refill_interval_ms
end

-- Refusals never mutate the bucket; only the reported remainder goes
-- negative.
local remaining = tokens - requested
if remaining >= 0 then
	tokens = remaining
end

local full_refill_ms = max_intervals * refill_interval_ms
redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill_ms)
redis.call('PEXPIRE', key, full_refill_ms * 2)

return {remaining, last_refill_ms + refill_interval_ms}
`)

// RedisStore implements Store on Redis, sharing bucket state between
// replicas. Refill and consumption run inside a Lua script so concurrent
// consumers observe a consistent bucket.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	scanBatch int64
	now       func() time.Time
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the namespace prefix for bucket keys.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.keyPrefix = prefix
		}
	}
}

// WithScanBatchSize sets the SCAN page size used by Clear.
func WithScanBatchSize(n int64) RedisStoreOption {
	return func(rs *RedisStore) {
		if n > 0 {
			rs.scanBatch = n
		}
	}
}

// WithRedisClock injects the time source used for refill arithmetic.
func WithRedisClock(now func() time.Time) RedisStoreOption {
	return func(rs *RedisStore) {
		if now != nil {
			rs.now = now
		}
	}
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", ErrInvalidConfig)
	}

	rs := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
		scanBatch: 1000,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs, nil
}

// ConsumeTokens implements Store.
func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	now := rs.now()

	res, err := consumeScript.Run(ctx, rs.client, []string{rs.keyPrefix + key},
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		tokens,
		now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script result", ErrStoreUnavailable)
	}

	return int(res[0]), time.UnixMilli(res[1]), nil
}

// Reset implements Store.
func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.keyPrefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Clear implements Store, removing every bucket under the key prefix.
// Uses SCAN so it never blocks the server on large keyspaces.
func (rs *RedisStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := rs.client.Scan(ctx, cursor, rs.keyPrefix+"*", rs.scanBatch).Result()
		if err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
		if len(keys) > 0 {
			if err := rs.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Join(ErrStoreUnavailable, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Now implements Store.
func (rs *RedisStore) Now() time.Time {
	return rs.now()
}

// Healthcheck validates Redis connectivity.
func (rs *RedisStore) Healthcheck(ctx context.Context) error {
	if err := rs.client.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
