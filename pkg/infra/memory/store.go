// Package memory provides an in-process cache store for local runs and tests
package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/relcheck/pkg/domain/types"
)

// Store is a thread-safe in-memory key-value store
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// New creates an empty store
func New() *Store {
	return &Store{
		items: make(map[string][]byte),
	}
}

// Get returns the stored value, or types.ErrCacheMiss when absent
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, types.ErrCacheMiss
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put stores a value, overwriting any previous one
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = stored
	return nil
}
