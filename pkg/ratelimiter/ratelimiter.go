package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Package-level error definitions for rate limiter operations.
var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidTokenCount = errors.New("invalid token count")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// Config defines a token bucket: Capacity tokens maximum, refilled by
// RefillRate tokens every RefillInterval.
type Config struct {
	Capacity       int
	RefillRate     int
	RefillInterval time.Duration
}

// Validate reports whether the configuration describes a usable bucket.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive", ErrInvalidConfig)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Result describes the outcome of a consumption attempt.
type Result struct {
	// Limit is the bucket capacity.
	Limit int
	// Remaining is the token count after consumption; negative when the
	// request was refused.
	Remaining int
	// ResetAt is when the next refill lands.
	ResetAt time.Time

	now time.Time
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long the caller should wait before retrying.
// Zero for allowed requests.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	wait := r.ResetAt.Sub(r.now)
	if wait < 0 {
		return 0
	}
	return wait
}

// RetryAfterSeconds returns the retry hint in whole seconds, rounded up,
// with a one-second floor. Suitable for the Retry-After response header,
// which must never be zero.
func (r *Result) RetryAfterSeconds() int {
	secs := int((r.RetryAfter() + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// RateLimiter is the consumption contract used by middleware.
type RateLimiter interface {
	// Allow attempts to consume one token for the key.
	Allow(ctx context.Context, key string) (*Result, error)
	// Reset clears the bucket state for the key.
	Reset(ctx context.Context, key string) error
	// Clear drops all bucket state. Administrative operation used by tests.
	Clear(ctx context.Context) error
}

// Store persists token bucket state.
type Store interface {
	// ConsumeTokens atomically refills the bucket per config and consumes
	// the requested tokens. On refusal the returned remaining is negative
	// but the persisted bucket state is untouched.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)
	// Reset removes the bucket for the key.
	Reset(ctx context.Context, key string) error
	// Clear removes all buckets.
	Clear(ctx context.Context) error
	// Now returns the store's clock reading, shared with Result arithmetic.
	Now() time.Time
}

// Bucket implements RateLimiter over a Store.
type Bucket struct {
	store  Store
	config Config
}

// NewBucket creates a rate limiter with the given store and configuration.
func NewBucket(store Store, config Config) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, config: config}, nil
}

// Allow attempts to consume a single token for the key.
func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN attempts to consume n tokens for the key.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, ErrInvalidTokenCount
	}

	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.config)
	if err != nil {
		return nil, err
	}

	return &Result{
		Limit:     b.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
		now:       b.store.Now(),
	}, nil
}

// Reset clears the bucket for the key.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}

// Clear drops all bucket state in the underlying store.
func (b *Bucket) Clear(ctx context.Context) error {
	return b.store.Clear(ctx)
}
