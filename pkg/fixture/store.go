package fixture

import "sync"

// Store is the process-wide fixture. All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current State
	initial State
}

// NewStore creates a store holding initial. Reset returns to this value.
func NewStore(initial State) *Store {
	return &Store{current: initial, initial: initial}
}

// Get returns the current fixture. State values are immutable, so the result
// stays valid after later calls to Set.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the current fixture. No validation is performed.
func (s *Store) Set(state State) {
	s.mu.Lock()
	s.current = state
	s.mu.Unlock()
}

// Reset restores the value the store was created with.
func (s *Store) Reset() {
	s.mu.Lock()
	s.current = s.initial
	s.mu.Unlock()
}

// Kind reports the variant of the initial fixture, which is the deployment's variant.
func (s *Store) Kind() Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initial.Kind()
}
