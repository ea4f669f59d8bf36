package adapter

import "sync"

// State is the process-wide adapter state. One instance is created at
// bootstrap and passed by reference to its writer and readers.
type State struct {
	mu      sync.RWMutex
	enabled bool
}

// NewState returns a State with the given initial value.
func NewState(enabled bool) *State {
	return &State{enabled: enabled}
}

// Enabled reports the last written value.
func (s *State) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Set stores enabled and reports whether the value changed.
func (s *State) Set(enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.enabled != enabled
	s.enabled = enabled
	return changed
}
