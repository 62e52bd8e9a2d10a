package wager

import (
	"context"
	"sync"
)

// MemoryStore é a implementação em memória do Store (testes e execução local).
type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]PendingWager
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]PendingWager)}
}

func (s *MemoryStore) Put(_ context.Context, w PendingWager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[w.RequestID]; ok {
		return ErrDuplicate
	}
	s.pending[w.RequestID] = w
	return nil
}

func (s *MemoryStore) Take(_ context.Context, requestID string) (PendingWager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.pending[requestID]
	if !ok {
		return PendingWager{}, ErrNotFound
	}
	delete(s.pending, requestID)
	return w, nil
}

func (s *MemoryStore) Get(_ context.Context, requestID string) (PendingWager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.pending[requestID]
	if !ok {
		return PendingWager{}, ErrNotFound
	}
	return w, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending), nil
}
