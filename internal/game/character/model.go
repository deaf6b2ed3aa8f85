// Package character defines the character domain model and the pure derivation of
// its resources and statistics from a handful of creation choices.
package character

// Attributes holds the three core attribute scores: Body, Mind and Soul.
type Attributes struct {
	BDY int `json:"BDY"`
	MND int `json:"MND"`
	SOL int `json:"SOL"`
}

// Approaches holds the three approach scores: Force, Focus and Finesse.
type Approaches struct {
	FRC int `json:"FRC"`
	FOC int `json:"FOC"`
	FNS int `json:"FNS"`
}

// Equipment holds one optional item name per slot. A nil slot is empty.
type Equipment struct {
	Weapon    *string `json:"weapon"`
	Armor     *string `json:"armor"`
	Accessory *string `json:"accessory"`
}

func (e Equipment) clone() Equipment {
	return Equipment{
		Weapon:    cloneString(e.Weapon),
		Armor:     cloneString(e.Armor),
		Accessory: cloneString(e.Accessory),
	}
}

// Experience tracks earned experience. It is informational only and never feeds
// into derivation.
type Experience struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Recovery holds the per-tick recovery rate of each energy pool.
type Recovery struct {
	STA int `json:"STA"`
	CON int `json:"CON"`
	RES int `json:"RES"`
}

// Character is a playable character: its creation choices, the resources and
// statistics derived from them once at construction, and the current pool values.
//
// A Character is not safe for concurrent use; the owning session must serialise access.
type Character struct {
	name       string
	background string
	archetype  string

	experience Experience
	attributes Attributes
	approaches Approaches
	equipment  Equipment

	maxHP  int
	maxSTA int
	maxCON int
	maxRES int

	hp  int
	sta int
	con int
	res int

	mig int
	tec int
	inf int

	// Base mitigation; the guard multiplier is applied on read.
	agi int
	wis int
	cha int

	spd int
	im  int
	rec Recovery

	guard guardState
}

// Name returns the character's display name.
func (c *Character) Name() string { return c.name }

// Background returns the background label chosen at creation.
func (c *Character) Background() string { return c.background }

// Archetype returns the archetype label chosen at creation.
func (c *Character) Archetype() string { return c.archetype }

// Attributes returns the base attribute scores.
func (c *Character) Attributes() Attributes { return c.attributes }

// Approaches returns the base approach scores.
func (c *Character) Approaches() Approaches { return c.approaches }

// Equipment returns a copy of the equipped item names.
func (c *Character) Equipment() Equipment { return c.equipment.clone() }

// Experience returns the experience counters.
func (c *Character) Experience() Experience { return c.experience }

// Recovery returns the per-tick recovery rates.
func (c *Character) Recovery() Recovery { return c.rec }

// MIG returns Might, the attack statistic of a strike.
func (c *Character) MIG() int { return c.mig }

// TEC returns Technique, the attack statistic of a craft.
func (c *Character) TEC() int { return c.tec }

// INF returns Influence, the attack statistic of a talk.
func (c *Character) INF() int { return c.inf }

// SPD returns Speed.
func (c *Character) SPD() int { return c.spd }

// IM returns the initiative meter.
func (c *Character) IM() int { return c.im }

// SetIM stores the initiative meter. The meter is owned by the turn layer; the
// character only carries it.
func (c *Character) SetIM(v int) { c.im = v }

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
