// Package revocation tracks revoked tokens until they expire. Entries are
// keyed by an opaque identifier; the processor uses the hex SHA-256 digest
// of the compact token, so no payload claim is required.
package revocation

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStoreClosed is returned by every store method after Close.
	ErrStoreClosed = errors.New("revocation store is closed")
	// ErrManagerClosed is returned by every manager method after Close.
	ErrManagerClosed = errors.New("revocation manager is closed")
	// ErrEmptyID is returned when an empty identifier is revoked.
	ErrEmptyID = errors.New("revocation id cannot be empty")
)

// Store persists revoked identifiers with their expiry.
type Store interface {
	// Add records id as revoked until expiresAt.
	Add(ctx context.Context, id string, expiresAt time.Time) error

	// Contains reports whether id is revoked and not yet expired.
	Contains(ctx context.Context, id string) (bool, error)

	// Remove forgets id.
	Remove(ctx context.Context, id string) error

	// Cleanup drops expired entries and returns how many were dropped.
	Cleanup(ctx context.Context) (int, error)

	// Size returns the number of stored entries.
	Size(ctx context.Context) (int, error)

	// Close releases the store.
	Close() error
}

// Manager fronts a Store and runs periodic cleanup.
type Manager interface {
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
	Close() error
}

// Config configures a Manager and the default memory store.
type Config struct {
	// CleanupInterval is how often expired entries are dropped.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// MaxSize bounds the memory store.
	MaxSize int `koanf:"max_size"`

	// EnableAutoCleanup starts the cleanup ticker.
	EnableAutoCleanup bool `koanf:"auto_cleanup"`

	// RedisAddr selects the Redis store when set.
	RedisAddr string `koanf:"redis_addr"`

	// RedisPrefix namespaces Redis keys.
	RedisPrefix string `koanf:"redis_prefix"`
}

// DefaultConfig returns a memory-backed configuration with auto cleanup.
func DefaultConfig() Config {
	return Config{
		CleanupInterval:   5 * time.Minute,
		MaxSize:           100000,
		EnableAutoCleanup: true,
		RedisPrefix:       DefaultRedisPrefix,
	}
}
