package ratelimiter

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxEntries bounds the bucket table when no explicit limit is set.
const DefaultMaxEntries = 10_000

// bucket represents one key's token bucket state.
type bucket struct {
	key        string
	tokens     int
	lastRefill time.Time
}

// MemoryStore implements Store with an in-memory, size-bounded LRU table.
// When the table exceeds its maximum size the least-recently-used buckets
// are evicted, so memory stays bounded for arbitrary key cardinality.
// Eviction of a hot key only restores its full capacity; it never grants
// more than Capacity tokens.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	now        func() time.Time

	// Observability counters.
	bucketsCreated atomic.Int64
	bucketsEvicted atomic.Int64
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMaxEntries bounds the number of live buckets per store.
func WithMaxEntries(n int) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if n > 0 {
			ms.maxEntries = n
		}
	}
}

// WithClock injects the time source. All refill arithmetic uses this clock.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

// ConsumeTokens implements Store.
func (ms *MemoryStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()

	elem, exists := ms.entries[key]
	var b *bucket
	if exists {
		b = elem.Value.(*bucket)
		ms.order.MoveToFront(elem)
	} else {
		b = &bucket{key: key, tokens: config.Capacity, lastRefill: now}
		ms.entries[key] = ms.order.PushFront(b)
		ms.bucketsCreated.Add(1)
		ms.evictOverflow()
	}

	// Token bucket refill: add RefillRate tokens per elapsed full interval.
	// Intervals are capped to avoid overflow in high-capacity/low-rate
	// configurations.
	elapsed := now.Sub(b.lastRefill)
	maxIntervals := int64(config.Capacity/config.RefillRate + 1)
	intervalsElapsed := min(int64(elapsed/config.RefillInterval), maxIntervals)

	if intervalsElapsed > 0 {
		b.tokens = min(b.tokens+int(intervalsElapsed)*config.RefillRate, config.Capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervalsElapsed) * config.RefillInterval)
	}

	// Refusals never mutate the bucket: a drained bucket holds at zero no
	// matter how hard it is hammered, so one full interval always restores
	// RefillRate tokens.
	remaining := b.tokens - tokens
	if remaining >= 0 {
		b.tokens = remaining
	}
	return remaining, b.lastRefill.Add(config.RefillInterval), nil
}

// evictOverflow drops least-recently-used buckets beyond the size bound.
// Caller must hold the lock.
func (ms *MemoryStore) evictOverflow() {
	for ms.order.Len() > ms.maxEntries {
		oldest := ms.order.Back()
		if oldest == nil {
			return
		}
		ms.order.Remove(oldest)
		delete(ms.entries, oldest.Value.(*bucket).key)
		ms.bucketsEvicted.Add(1)
	}
}

// Reset implements Store.
func (ms *MemoryStore) Reset(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if elem, ok := ms.entries[key]; ok {
		ms.order.Remove(elem)
		delete(ms.entries, key)
	}
	return nil
}

// Clear implements Store, dropping every bucket.
func (ms *MemoryStore) Clear(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.entries = make(map[string]*list.Element)
	ms.order.Init()
	return nil
}

// Now implements Store.
func (ms *MemoryStore) Now() time.Time {
	return ms.now()
}

// MemoryStoreStats provides observability metrics for monitoring and tests.
type MemoryStoreStats struct {
	BucketsCreated int64
	BucketsEvicted int64
	ActiveBuckets  int
}

// Stats returns current store statistics. Thread-safe.
func (ms *MemoryStore) Stats() MemoryStoreStats {
	ms.mu.Lock()
	active := ms.order.Len()
	ms.mu.Unlock()

	return MemoryStoreStats{
		BucketsCreated: ms.bucketsCreated.Load(),
		BucketsEvicted: ms.bucketsEvicted.Load(),
		ActiveBuckets:  active,
	}
}

// Healthcheck validates that the store is operational.
func (ms *MemoryStore) Healthcheck(ctx context.Context) error {
	return nil
}
