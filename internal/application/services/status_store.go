package services

import (
	"sync"

	"github.com/touchnstars/companion/internal/domain/capabilities"
)

// StatusStore holds the current belief about every capability's permission
// state. It is shared by all callers of one PermissionManager. Reads are open;
// writes happen only through PermissionManager.
type StatusStore struct {
	mu     sync.RWMutex
	states map[capabilities.Kind]capabilities.State
}

// NewStatusStore creates a store with every capability in its initial state.
func NewStatusStore() *StatusStore {
	states := make(map[capabilities.Kind]capabilities.State, len(capabilities.AllKinds()))
	for _, k := range capabilities.AllKinds() {
		states[k] = capabilities.InitialState()
	}
	return &StatusStore{states: states}
}

// Get returns the state of one capability.
func (s *StatusStore) Get(kind capabilities.Kind) capabilities.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.states[kind]; ok {
		return state
	}
	return capabilities.InitialState()
}

// Snapshot returns a copy of all states.
func (s *StatusStore) Snapshot() map[capabilities.Kind]capabilities.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[capabilities.Kind]capabilities.State, len(s.states))
	for k, v := range s.states {
		out[k] = v
	}
	return out
}

// record stores status and marks the capability checked.
func (s *StatusStore) record(kind capabilities.Kind, status capabilities.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[kind] = capabilities.State{Status: status, Checked: true}
}
