package store

import (
	"context"
	"sync"

	"github.com/telhawk-systems/telhawk-csv/internal/csv/headers"
)

// MemoryStore keeps header blocks in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*record)}
}

func (s *MemoryStore) Save(_ context.Context, source string, h *headers.Headers) error {
	rec, err := snapshot(source, h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[source] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, source string) (*headers.Headers, error) {
	s.mu.RLock()
	rec, ok := s.records[source]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return rec.restore(), nil
}

func (s *MemoryStore) Delete(_ context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[source]; !ok {
		return ErrNotFound
	}
	delete(s.records, source)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
