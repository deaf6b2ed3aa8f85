package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cory-johannsen/storyteller/internal/game/character"
)

// ErrNoCharacter is returned by operations that need a character before one has
// been created or loaded.
var ErrNoCharacter = errors.New("no character")

// Session owns one player's character. A Character is not safe for concurrent
// use; every access goes through the session lock.
type Session struct {
	id string

	mu    sync.Mutex
	state State
	char  *character.Character
}

// New returns a session on the menu screen with no character.
//
// Precondition: id must be non-empty.
func New(id string) *Session {
	return &Session{id: id, state: StateMenu}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current screen.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HasCharacter reports whether a character has been created or loaded.
func (s *Session) HasCharacter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.char != nil
}

// Reset drops the character and returns to the menu.
//
// Postcondition: State() == StateMenu and HasCharacter() is false.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.char = nil
	s.state = StateMenu
}

// BeginCreation moves to the character creation screen. Any current character
// is kept until Start replaces it.
func (s *Session) BeginCreation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateCharacterCreation
}

// Start installs c as the session character and begins play.
//
// Precondition: c must be non-nil.
// Postcondition: State() == StatePlaying.
func (s *Session) Start(c *character.Character) {
	if c == nil {
		panic("session.Start: precondition violated: character must be non-nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.char = c
	s.state = StatePlaying
}

// Restore rebuilds the character from a saved snapshot and returns to the saved
// state. The current character is left untouched on error.
//
// Postcondition: HasCharacter() is true and State() == state, or an error
// wrapping ErrUnknownState is returned.
func (s *Session) Restore(snap character.Snapshot, state State) error {
	if !state.Valid() {
		return fmt.Errorf("restoring session %s: %w: %q", s.id, ErrUnknownState, state)
	}
	c := character.New(snap.Config())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.char = c
	s.state = state
	return nil
}

// Play moves a session that has a character onto the story screen.
//
// Postcondition: State() == StatePlaying, or ErrNoCharacter is returned.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.char == nil {
		return ErrNoCharacter
	}
	s.state = StatePlaying
	return nil
}

// Snapshot returns a status report of the current character.
//
// Postcondition: Returns the report and true, or a zero Snapshot and false when
// there is no character.
func (s *Session) Snapshot() (character.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.char == nil {
		return character.Snapshot{}, false
	}
	return s.char.StatusReport(), true
}

// WithCharacter runs fn with exclusive access to the character.
//
// Postcondition: Returns fn's error, or ErrNoCharacter without calling fn.
func (s *Session) WithCharacter(fn func(c *character.Character) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.char == nil {
		return ErrNoCharacter
	}
	return fn(s.char)
}
