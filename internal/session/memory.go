package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type memoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemory returns a store that keeps sessions in process memory.
func NewMemory(logger *zap.Logger) Store {
	return newStore(&memoryBackend{sessions: make(map[string]*Session)}, logger)
}

func (m *memoryBackend) load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.clone(), nil
}

func (m *memoryBackend) save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = s.clone()
	return nil
}
