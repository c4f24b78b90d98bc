package storage

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

// MemoryStore is an in-process BlobStore, used by tests and the memory driver
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	// Return a copy so callers cannot mutate the stored blob
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Keys returns the stored keys, in no particular order
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.blobs))
	for k := range s.blobs {
		out = append(out, k)
	}
	return out
}

func (s *MemoryStore) Check(ctx context.Context) error { return nil }
