package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store shared across replicas, backed by Redis. Entries are
// stored as JSON with the Redis key TTL aligned to the entry expiry, so Redis
// evicts what the lazy read-side check would have dropped anyway.
type RedisStore[T any] struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store using client, namespacing all keys with prefix.
func NewRedisStore[T any](client *redis.Client, prefix string) *RedisStore[T] {
	return &RedisStore[T]{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisStore[T]) key(key string) string {
	return s.prefix + ":" + key
}

// Get returns the live entry for key, if any.
func (s *RedisStore[T]) Get(ctx context.Context, key string) (Entry[T], bool, error) {
	var zero Entry[T]

	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt entry is treated as a miss; the caller recomputes
		// and the next Set overwrites it.
		return zero, false, nil
	}

	if entry.ExpiredAt(s.now()) {
		return zero, false, nil
	}

	return entry, true, nil
}

// Set stores entry under key. SET is atomic on the Redis side, so readers
// never observe a partial write.
func (s *RedisStore[T]) Set(ctx context.Context, key string, entry Entry[T]) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	ttl := entry.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		// Already expired; storing it would only create a dead key.
		return nil
	}

	if err := s.client.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes the entry for key if present.
func (s *RedisStore[T]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
