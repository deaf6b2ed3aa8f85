package character

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned for an action kind outside strike, craft and talk.
var ErrUnknownAction = errors.New("unknown action")

// ActionKind names one of the three offensive actions.
type ActionKind string

// Offensive actions, one per attribute.
const (
	ActionStrike ActionKind = "strike"
	ActionCraft  ActionKind = "craft"
	ActionTalk   ActionKind = "talk"
)

// Defending statistics named by an Action.
const (
	DefenseAGI = "AGI"
	DefenseWIS = "WIS"
	DefenseCHA = "CHA"
)

// Action describes how an offensive action resolves: the attacker's statistic, the
// statistic the defender opposes it with, and the pool a hit depletes. Applying the
// hit is left to the combat layer.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Attack  int        `json:"attack"`
	Defense string     `json:"defense"`
	Target  Pool       `json:"target"`
}

// Strike pairs Might against Agility and targets Stamina.
func (c *Character) Strike() Action {
	return Action{Kind: ActionStrike, Attack: c.mig, Defense: DefenseAGI, Target: PoolSTA}
}

// Craft pairs Technique against Wisdom and targets Concentration.
func (c *Character) Craft() Action {
	return Action{Kind: ActionCraft, Attack: c.tec, Defense: DefenseWIS, Target: PoolCON}
}

// Talk pairs Influence against Charisma and targets Resolve.
func (c *Character) Talk() Action {
	return Action{Kind: ActionTalk, Attack: c.inf, Defense: DefenseCHA, Target: PoolRES}
}

// Perform returns the Action for kind.
//
// Postcondition: Returns the matching Action, or ErrUnknownAction.
func (c *Character) Perform(kind ActionKind) (Action, error) {
	switch ActionKind(strings.ToLower(string(kind))) {
	case ActionStrike:
		return c.Strike(), nil
	case ActionCraft:
		return c.Craft(), nil
	case ActionTalk:
		return c.Talk(), nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
}

// Defense returns the current value of the named defending statistic.
//
// Postcondition: Returns the statistic, or false for an unknown name.
func (c *Character) Defense(name string) (int, bool) {
	switch strings.ToUpper(name) {
	case DefenseAGI:
		return c.AGI(), true
	case DefenseWIS:
		return c.WIS(), true
	case DefenseCHA:
		return c.CHA(), true
	}
	return 0, false
}
