package character

import "errors"

// ErrAlreadyGuarded is returned by Guard when the character is already guarding.
var ErrAlreadyGuarded = errors.New("already guarding")

// GuardMessage confirms that a guard was raised.
const GuardMessage = "Guarding: boosted mitigation stats for 1 turn."

const guardMultiplier = 2

type guardState int

const (
	unguarded guardState = iota
	guarded
)

// Guard raises the character's guard, doubling AGI, WIS and CHA until ResetGuard.
//
// Postcondition: Guarded() is true. If the character was already guarding,
// ErrAlreadyGuarded is returned and the mitigation stats are unchanged.
func (c *Character) Guard() (string, error) {
	if c.guard == guarded {
		return "", ErrAlreadyGuarded
	}
	c.guard = guarded
	return GuardMessage, nil
}

// ResetGuard lowers the guard, restoring AGI, WIS and CHA to their base values.
// It is a no-op when the character is not guarding. The turn layer decides when a
// guard expires.
//
// Postcondition: Guarded() is false.
func (c *Character) ResetGuard() {
	c.guard = unguarded
}

// Guarded reports whether the character is guarding.
func (c *Character) Guarded() bool { return c.guard == guarded }

func (c *Character) mitigation(base int) int {
	if c.guard == guarded {
		return base * guardMultiplier
	}
	return base
}

// AGI returns Agility, the defence against strikes, including any guard bonus.
func (c *Character) AGI() int { return c.mitigation(c.agi) }

// WIS returns Wisdom, the defence against crafts, including any guard bonus.
func (c *Character) WIS() int { return c.mitigation(c.wis) }

// CHA returns Charisma, the defence against talk, including any guard bonus.
func (c *Character) CHA() int { return c.mitigation(c.cha) }
