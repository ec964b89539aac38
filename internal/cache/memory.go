package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store backed by a mutex-guarded map. Expired
// entries are dropped on read rather than swept in the background.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{
		entries: make(map[string]Entry[T]),
		now:     time.Now,
	}
}

// Get returns the live entry for key, if any.
func (s *MemoryStore[T]) Get(ctx context.Context, key string) (Entry[T], bool, error) {
	if err := ctx.Err(); err != nil {
		var zero Entry[T]
		return zero, false, err
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		var zero Entry[T]
		return zero, false, nil
	}

	if entry.ExpiredAt(s.now()) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the key in the meantime.
		if current, ok := s.entries[key]; ok && current.ETag == entry.ETag {
			delete(s.entries, key)
		}
		s.mu.Unlock()

		var zero Entry[T]
		return zero, false, nil
	}

	return entry, true, nil
}

// Set stores entry under key, replacing any previous generation.
func (s *MemoryStore[T]) Set(ctx context.Context, key string, entry Entry[T]) error {
	// A cancelled request must not leave a partial write behind.
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes the entry for key if present.
func (s *MemoryStore[T]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
