package taskstore

import "sync"

// Store serialises dispatches so that actions from concurrent Sync calls are
// applied one at a time, each against the latest state.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: InitialState()}
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

// State returns the current state. Slices in the returned value are shared
// with the store and must not be modified.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Reset discards everything, as on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = InitialState()
}

func (s *Store) Counts() Counts {
	return Count(s.State().Tasks)
}
