package pipeline

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when a session ID is unknown to the store.
var ErrSessionNotFound = errors.New("session not found")

// MemoryStore keeps sessions in process memory. It hands out copies, so a
// caller's edits become visible to others only through Save.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create stores a new empty session and returns a copy of it.
func (m *MemoryStore) Create() *Session {
	s := NewSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s.Clone()
}

// Get returns a copy of the session with the given ID.
func (m *MemoryStore) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Save replaces the stored session with s. The session must already exist.
func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	c := s.Clone()
	c.UpdatedAt = time.Now().UTC()
	m.sessions[s.ID] = c
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
