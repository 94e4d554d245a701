// Package ratelimiter provides token bucket rate limiting with pluggable
// storage backends.
//
// A Bucket combines a Config (capacity, refill rate, refill interval) with a
// Store holding per-key token state. MemoryStore keeps buckets in a
// size-bounded LRU table so memory stays bounded no matter how many distinct
// keys arrive; RedisStore shares state between replicas using an atomic Lua
// script.
//
// Basic usage:
//
//	store := ratelimiter.NewMemoryStore(ratelimiter.WithMaxEntries(10_000))
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     5,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := limiter.Allow(ctx, clientIP)
//	if err != nil {
//		return err
//	}
//	if !result.Allowed() {
//		// reject with result.RetryAfter()
//	}
package ratelimiter
