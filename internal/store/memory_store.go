package store

import (
	"context"
	"sync"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// MemorySessionStore is an in-memory SessionStore. Used by tests and as a
// single-process fallback when no Redis is configured.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.SessionState
}

// NewMemorySessionStore creates an empty in-memory SessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*model.SessionState)}
}

func (s *MemorySessionStore) Get(_ context.Context, key string) (*model.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[key]
	if !ok {
		return nil, ErrNotFound
	}
	return state.Clone(), nil
}

func (s *MemorySessionStore) Put(_ context.Context, key string, state *model.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = state.Clone()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Len reports how many keys hold persisted state.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
