package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the session id for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	value string
	saves int
}

func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{value: initial}
}

func (s *MemoryStore) Load(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string) error {
	s.mu.Lock()
	s.value = sessionID
	s.saves++
	s.mu.Unlock()
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
