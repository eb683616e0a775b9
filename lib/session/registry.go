package session

import (
	"sync"

	"github.com/go-smsc/emi-smsc/lib/util"
)

// Registry tracks connected sessions. Thread-safe for concurrent access.
type Registry interface {
	// Register adds a session to the registry.
	// Returns ErrDuplicateID if the session ID already exists.
	Register(s *Session) error

	// Unregister removes a session from the registry by ID.
	// Returns ErrSessionNotFound if the session does not exist.
	Unregister(id string) error

	// Get returns a session by ID, or nil if not found.
	Get(id string) *Session

	// All returns the registered sessions in registration order.
	All() []*Session

	// Count returns the number of registered sessions.
	Count() int

	// Close terminates all sessions and clears the registry.
	Close() error
}

// RegistryImpl is the concrete implementation of Registry.
// Registration order is kept so round-robin selection is stable.
type RegistryImpl struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string
}

// NewRegistry creates a new session registry.
func NewRegistry() *RegistryImpl {
	return &RegistryImpl{
		sessions: make(map[string]*Session),
	}
}

// Register adds a session to the registry.
// Returns util.ErrDuplicateID if the session ID already exists.
func (r *RegistryImpl) Register(s *Session) error {
	if s == nil || s.ID() == "" {
		return util.ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := s.ID()
	if _, exists := r.sessions[id]; exists {
		return util.ErrDuplicateID
	}
	r.sessions[id] = s
	r.order = append(r.order, id)
	return nil
}

// Unregister removes a session from the registry by ID.
// Returns util.ErrSessionNotFound if the session does not exist.
func (r *RegistryImpl) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; !exists {
		return util.ErrSessionNotFound
	}
	delete(r.sessions, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a session by ID, or nil if not found.
func (r *RegistryImpl) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// All returns the registered sessions in registration order.
func (r *RegistryImpl) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sessions[id])
	}
	return out
}

// Count returns the number of registered sessions.
func (r *RegistryImpl) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Has returns true if a session with the given ID exists.
func (r *RegistryImpl) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.sessions[id]
	return exists
}

// Close terminates all sessions and clears the registry.
// The lock is released before closing sessions so close paths may call
// Unregister.
func (r *RegistryImpl) Close() error {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, id := range r.order {
		sessions = append(sessions, r.sessions[id])
	}
	r.sessions = make(map[string]*Session)
	r.order = nil
	r.mu.Unlock()

	for _, s := range sessions {
		_ = s.Close()
	}
	return nil
}
