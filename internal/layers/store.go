package layers

import (
	"context"
	"sync"
)

// Store holds loaded layer documents. The memory store gives the
// per-session semantics of the map client (retained until shutdown, never
// evicted); the redis store shares documents across instances.
type Store interface {
	Get(ctx context.Context, city string) ([]byte, bool, error)
	Put(ctx context.Context, city string, doc []byte) error
}

type memoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns the default in-process store.
func NewMemoryStore() Store {
	return &memoryStore{docs: map[string][]byte{}}
}

func (s *memoryStore) Get(_ context.Context, city string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[city]
	return doc, ok, nil
}

func (s *memoryStore) Put(_ context.Context, city string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[city] = doc
	return nil
}
