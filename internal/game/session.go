package game

import "sync"

// State is the client-reported player state.
type State struct {
	WorldID        uint32 `json:"world_id"`
	InCombat       bool   `json:"in_combat"`
	InContent      bool   `json:"in_content"`
	KeybindPressed bool   `json:"keybind_pressed"`
}

// Session holds the latest State. Safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	state State
}

// NewSession creates a session with an initial state.
func NewSession(initial State) *Session {
	return &Session{state: initial}
}

// Apply runs fn on the state under the write lock, so partial updates
// from concurrent callers do not overwrite each other.
func (s *Session) Apply(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// SetKeybind updates only the keybind flag.
func (s *Session) SetKeybind(pressed bool) {
	s.mu.Lock()
	s.state.KeybindPressed = pressed
	s.mu.Unlock()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// HomeWorld returns the current world id, 0 when unknown.
func (s *Session) HomeWorld() uint32 {
	return s.State().WorldID
}

// InCombat reports whether the player is in combat.
func (s *Session) InCombat() bool {
	return s.State().InCombat
}

// InRestrictedContent reports whether the player is bound by duty.
func (s *Session) InRestrictedContent() bool {
	return s.State().InContent
}

// KeybindPressed reports whether the price-check keybind is held.
func (s *Session) KeybindPressed() bool {
	return s.State().KeybindPressed
}
