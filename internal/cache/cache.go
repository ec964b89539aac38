package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrStoreUnavailable = errors.New("cache store unavailable")
)

// Entry wraps a cacheable payload with its generation metadata. Entries are
// immutable once constructed; expiry is evaluated lazily at read time, there
// is no background sweeper.
type Entry[T any] struct {
	Data      T         `json:"data"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag"`
}

// NewEntry creates an entry valid for ttl from now. An empty etag is replaced
// with a freshly generated opaque id identifying this cache generation.
func NewEntry[T any](data T, ttl time.Duration, etag string) Entry[T] {
	return newEntryAt(data, ttl, etag, time.Now())
}

func newEntryAt[T any](data T, ttl time.Duration, etag string, now time.Time) Entry[T] {
	if etag == "" {
		etag = uuid.NewString()
	}
	return Entry[T]{
		Data:      data,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
		ETag:      etag,
	}
}

// IsExpired reports whether the entry is past its expiry instant.
func (e Entry[T]) IsExpired() bool {
	return e.ExpiredAt(time.Now())
}

// ExpiredAt reports expiry against an explicit instant.
func (e Entry[T]) ExpiredAt(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Store defines the interface for a shared entry cache. Concurrent writers
// for the same key are tolerated; last write wins.
type Store[T any] interface {
	// Get retrieves a live entry. The second return is false on miss or
	// when the stored entry has expired.
	Get(ctx context.Context, key string) (Entry[T], bool, error)

	// Set stores an entry under key. The write is atomic: readers observe
	// either the previous entry or the full new one.
	Set(ctx context.Context, key string, entry Entry[T]) error

	// Delete removes an entry if present.
	Delete(ctx context.Context, key string) error
}
