// Package session tracks one player's progress through the story: the screen
// they are on and the character they play.
package session

import (
	"errors"
	"fmt"
)

// ErrUnknownState is returned when a game state name is not recognised.
var ErrUnknownState = errors.New("unknown game state")

// State is the screen a session is on.
type State string

// Game states.
const (
	StateMenu              State = "menu"
	StateCharacterCreation State = "character-creation"
	StatePlaying           State = "playing"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateMenu, StateCharacterCreation, StatePlaying:
		return true
	}
	return false
}

// ParseState maps a stored state name to its State.
//
// Postcondition: Returns a valid State, or an error wrapping ErrUnknownState.
func ParseState(name string) (State, error) {
	s := State(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	return s, nil
}
