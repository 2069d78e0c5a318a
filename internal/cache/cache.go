// Package cache is the serialized-feed store. Entries are keyed by
// (location id, language); the refresh scheduler is the only writer,
// request handlers only read. There is no eviction: the key universe is
// bounded by the discovered locations times the configured languages.
package cache

import (
	"context"
	"errors"
	"sync"
)

// ErrFeedNotFound reports a cache miss. The request path never falls
// back to the pipeline on a miss.
var ErrFeedNotFound = errors.New("feed not found")

// Store is a concurrent keyed byte store. Writers own disjoint keys, so
// no cross-key guarantees are needed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, body []byte) error
}

// Key builds the cache key for a location/language pair.
func Key(locationIDs, lang string) string {
	return locationIDs + "/" + lang
}

// MemoryStore is the in-process Store used without an external cache
// and as a fake in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.entries[key]
	if !ok {
		return nil, ErrFeedNotFound
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, body []byte) error {
	stored := make([]byte, len(body))
	copy(stored, body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = stored
	return nil
}

// Len reports the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
