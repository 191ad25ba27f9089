package revocation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces revocation keys.
const DefaultRedisPrefix = "hsjwt:revoked"

var errRedisUnavailable = errors.New("revocation redis unavailable")

type redisStore struct {
	client redis.UniversalClient
	prefix string
	closed atomic.Bool
}

// NewRedisStore returns a store that keeps each revoked id as a key whose
// TTL is the token's remaining lifetime, so Redis expires entries itself.
// The client stays owned by the caller; Close does not close it.
func NewRedisStore(client redis.UniversalClient, prefix string) Store {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *redisStore) Add(ctx context.Context, id string, expiresAt time.Time) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	// Redis rejects sub-millisecond expirations
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	if err := s.client.Set(ctx, s.key(id), expiresAt.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", errRedisUnavailable, err)
	}
	return nil
}

func (s *redisStore) Contains(ctx context.Context, id string) (bool, error) {
	if s.closed.Load() {
		return false, ErrStoreClosed
	}

	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %w", errRedisUnavailable, err)
	}
	return n > 0, nil
}

func (s *redisStore) Remove(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %w", errRedisUnavailable, err)
	}
	return nil
}

// Cleanup is a no-op: keys carry their own TTL.
func (s *redisStore) Cleanup(context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	return 0, nil
}

func (s *redisStore) Size(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}

	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", 256).Result()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", errRedisUnavailable, err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

func (s *redisStore) Close() error {
	s.closed.Store(true)
	return nil
}
