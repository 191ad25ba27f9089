package hsjwt

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultMaxBuckets = 10000

// RateLimiter limits token creation per key. Each key gets a token bucket
// that refills maxRate tokens per window and holds at most maxRate.
// The rate limiter is safe for concurrent use.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	limit      rate.Limit
	burst      int
	maxBuckets int
	now        func() time.Time
	closed     bool
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing maxRate requests per
// window for each key. Non-positive arguments fall back to 100 per minute.
func NewRateLimiter(maxRate int, window time.Duration) *RateLimiter {
	if maxRate <= 0 {
		maxRate = 100
	}
	if window <= 0 {
		window = time.Minute
	}

	return &RateLimiter{
		buckets:    make(map[string]*bucket),
		limit:      rate.Limit(float64(maxRate) / window.Seconds()),
		burst:      maxRate,
		maxBuckets: defaultMaxBuckets,
		now:        time.Now,
	}
}

// Allow reports whether a single request for key is allowed.
// An empty key is never allowed.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.AllowN(key, 1)
}

// AllowN reports whether n requests for key are allowed now, consuming
// them if so. An empty key is never allowed; n <= 0 always is.
func (rl *RateLimiter) AllowN(key string, n int) bool {
	if n <= 0 {
		return true
	}
	if key == "" {
		return false
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return false
	}

	now := rl.now()
	b, exists := rl.buckets[key]
	if !exists {
		if len(rl.buckets) >= rl.maxBuckets {
			rl.evictOldestUnsafe()
		}
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, n)
}

// Reset forgets the bucket for key, restoring its full allowance.
func (rl *RateLimiter) Reset(key string) {
	if key == "" {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Close releases all buckets. After Close every Allow call returns false.
// It is safe to call Close multiple times.
func (rl *RateLimiter) Close() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return
	}

	rl.closed = true
	clear(rl.buckets)
	rl.buckets = nil
}

func (rl *RateLimiter) evictOldestUnsafe() {
	oldestKey := ""
	var oldest time.Time

	for key, b := range rl.buckets {
		if oldestKey == "" || b.lastSeen.Before(oldest) {
			oldestKey = key
			oldest = b.lastSeen
		}
	}

	if oldestKey != "" {
		delete(rl.buckets, oldestKey)
	}
}
