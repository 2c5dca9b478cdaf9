// Package session gives each quoting workflow its own catalog store and
// selection cart. The engine holds no process-wide mutable state; concurrent
// users are isolated by owning separate sessions.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/montroyal/quote-service/internal/cart"
	"github.com/montroyal/quote-service/internal/catalog"
)

// Session is one quoting workflow instance. Its catalog and cart are owned
// exclusively by the session and are not safe for concurrent use; callers
// hold Lock for the duration of any access to them. Two requests carrying
// the same session ID otherwise race on the cart's internals.
type Session struct {
	ID         string
	Catalog    *catalog.Store
	Cart       *cart.Cart
	CreatedAt  time.Time
	LastActive time.Time

	mu sync.Mutex
}

// Lock serializes access to the session's catalog and cart.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Manager tracks live sessions by ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create starts a new session with an empty catalog and cart.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &Session{
		ID:         uuid.NewString(),
		Catalog:    catalog.NewStore(),
		Cart:       cart.New(),
		CreatedAt:  now,
		LastActive: now,
	}
	m.sessions[s.ID] = s
	return s
}

// Get returns the session with the given ID and refreshes its last-active
// timestamp.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	s.LastActive = m.now()
	return s, true
}

// GetOrCreate returns the session with the given ID, creating a fresh one
// when the ID is unknown or empty.
func (m *Manager) GetOrCreate(id string) *Session {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s
		}
	}
	return m.Create()
}

// Delete removes a session and all its state.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than maxIdle and returns the number
// removed.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	removed := 0
	for id, s := range m.sessions {
		if s.LastActive.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
