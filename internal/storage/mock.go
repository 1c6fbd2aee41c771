package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/career-engine/pkg/session"
)

// MockStore is an in-memory SessionStore for tests.
type MockStore struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*session.PlayerSession
	pingError error
	saveError error
}

var _ SessionStore = (*MockStore)(nil)

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[uuid.UUID]*session.PlayerSession),
	}
}

// SetPingError configures the mock to fail on ping with the given error.
func (m *MockStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on save with the given error.
func (m *MockStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStore) Close() error { return nil }

func (m *MockStore) SaveSession(ctx context.Context, s *session.PlayerSession) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	s.UpdatedAt = time.Now()
	clone := s.Clone()
	m.sessions[s.ID] = &clone
	return nil
}

func (m *MockStore) LoadSession(ctx context.Context, id uuid.UUID) (*session.PlayerSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	clone := s.Clone()
	return &clone, nil
}

func (m *MockStore) ListSessionIDs(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}
