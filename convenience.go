package hsjwt

import (
	"encoding/hex"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cybergodev/hsjwt/claims"
	"github.com/cybergodev/hsjwt/internal/sha2"
)

type cacheEntry struct {
	processor  *Processor
	lastAccess atomic.Int64
	refCount   atomic.Int32
	evicted    atomic.Bool
	closeOnce  sync.Once
}

type processorCache struct {
	entries     map[string]*cacheEntry
	mu          sync.RWMutex
	lastCleanup atomic.Int64
}

var cache = &processorCache{
	entries: make(map[string]*cacheEntry, 16),
}

// CreateToken signs payload with HS256 using a processor cached per secret.
// It is meant for simple use cases; use a Processor for rate limiting,
// metrics or a shared revocation store.
func CreateToken(secretKey string, payload *claims.Set) (string, error) {
	processor, release, err := getProcessor(secretKey)
	if err != nil {
		return "", err
	}
	defer release()

	return processor.CreateToken(payload)
}

// ValidateToken validates token using a processor cached per secret.
// Revocations made through RevokeToken with the same secret are honored.
func ValidateToken(secretKey, token string) (bool, error) {
	processor, release, err := getProcessor(secretKey)
	if err != nil {
		return false, err
	}
	defer release()

	return processor.ValidateToken(token)
}

// RevokeToken revokes token until its "exp" claim using a processor cached
// per secret.
func RevokeToken(secretKey, token string) error {
	processor, release, err := getProcessor(secretKey)
	if err != nil {
		return err
	}
	defer release()

	return processor.RevokeToken(token, time.Time{})
}

// cacheKey identifies a secret without keeping it as a map key.
func cacheKey(secretKey string) string {
	sum := sha2.Sum256([]byte(secretKey))
	return hex.EncodeToString(sum[:])
}

const (
	maxCachedProcessors = 100
	cacheSweepInterval  = 5 * time.Minute
	cacheMaxIdle        = time.Hour
)

// getProcessor returns the cached processor for secretKey, creating it on
// first use. The returned release func must be called once the caller is done.
func getProcessor(secretKey string) (*Processor, func(), error) {
	noop := func() {}
	if err := validateSecretKey(secretKey); err != nil {
		return nil, noop, err
	}

	now := time.Now()
	key := cacheKey(secretKey)

	if processor, release, ok := cache.lookup(key, now); ok {
		return processor, release, nil
	}

	processor, err := New(secretKey)
	if err != nil {
		return nil, noop, err
	}
	return cache.insert(key, processor, now)
}

// acquire takes a reference on e. Callers hold the cache lock, so an entry
// is never handed out after it has been evicted.
func (e *cacheEntry) acquire(now time.Time) (*Processor, func()) {
	e.lastAccess.Store(now.Unix())
	e.refCount.Add(1)

	var once sync.Once
	return e.processor, func() { once.Do(e.release) }
}

func (e *cacheEntry) release() {
	if e.refCount.Add(-1) == 0 && e.evicted.Load() {
		e.close()
	}
}

// evict marks e as removed from the cache and closes its processor once no
// caller holds a reference.
func (e *cacheEntry) evict() {
	e.evicted.Store(true)
	if e.idle() {
		e.close()
	}
}

func (e *cacheEntry) close() {
	e.closeOnce.Do(func() {
		if e.processor != nil {
			_ = e.processor.Close()
		}
	})
}

func (e *cacheEntry) idle() bool {
	return e.refCount.Load() <= 0
}

func (c *processorCache) lookup(key string, now time.Time) (*Processor, func(), bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, nil, false
	}
	processor, release := entry.acquire(now)
	return processor, release, true
}

// insert stores processor under key unless a concurrent caller won the race,
// in which case processor is closed and the existing entry is used.
func (c *processorCache) insert(key string, processor *Processor, now time.Time) (*Processor, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		_ = processor.Close()
		p, release := entry.acquire(now)
		return p, release, nil
	}

	if len(c.entries) >= maxCachedProcessors {
		c.evictLeastRecentLocked()
	}
	c.sweepLocked(now)

	entry := &cacheEntry{processor: processor}
	c.entries[key] = entry
	p, release := entry.acquire(now)
	return p, release, nil
}

func (c *processorCache) evictLeastRecentLocked() {
	var (
		victim string
		oldest int64 = math.MaxInt64
	)
	for key, entry := range c.entries {
		if !entry.idle() {
			continue
		}
		if at := entry.lastAccess.Load(); at < oldest {
			victim, oldest = key, at
		}
	}
	if victim != "" {
		c.removeLocked(victim)
	}
}

// sweepLocked drops idle processors unused for cacheMaxIdle, at most once
// per cacheSweepInterval.
func (c *processorCache) sweepLocked(now time.Time) {
	last := c.lastCleanup.Load()
	if now.Unix()-last < int64(cacheSweepInterval/time.Second) {
		return
	}
	c.lastCleanup.Store(now.Unix())

	cutoff := now.Add(-cacheMaxIdle).Unix()
	for key, entry := range c.entries {
		if entry.idle() && entry.lastAccess.Load() < cutoff {
			c.removeLocked(key)
		}
	}
}

func (c *processorCache) removeLocked(key string) {
	if entry := c.entries[key]; entry != nil {
		entry.evict()
	}
	delete(c.entries, key)
}

// ClearCache drops every cached processor. Idle processors are closed now;
// those still in use are closed when their last caller finishes. Later calls
// create new processors, so revocations recorded in the memory store are
// forgotten.
func ClearCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	for key := range cache.entries {
		cache.removeLocked(key)
	}
}
