package session

import (
	"context"
	"sync"
)

// MemoryStore keeps markers in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	markers map[string]Marker
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{markers: make(map[string]Marker)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Marker, error) {
	if err := ctx.Err(); err != nil {
		return Marker{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	marker, ok := s.markers[id]
	if !ok {
		return Marker{}, ErrNotFound
	}
	return marker, nil
}

func (s *MemoryStore) Set(ctx context.Context, id string, marker Marker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[id] = marker
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, id)
	return nil
}
