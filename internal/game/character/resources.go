package character

import "fmt"

// TakeDamage depletes energy pool p by amount. Damage the pool cannot absorb
// overflows into Hope at half rate, rounded down, with at least 1 Hope lost:
// HP -= max(1, floor(overflow/2)). Hope never drops below 0.
//
// Precondition: p must be PoolSTA, PoolCON or PoolRES; amount must be >= 0.
// Postcondition: On error nothing is mutated. Otherwise 0 <= Current(p) <= Max(p)
// and 0 <= Current(PoolHP) <= Max(PoolHP).
func (c *Character) TakeDamage(p Pool, amount int) error {
	if !p.Damageable() {
		return fmt.Errorf("taking damage: %w: %s", ErrUnknownPool, p)
	}
	if amount < 0 {
		return fmt.Errorf("taking damage: %w (got %d)", ErrNegativeAmount, amount)
	}
	cur, _, _ := c.slot(p)
	if *cur >= amount {
		*cur -= amount
		return nil
	}
	overflow := amount - *cur
	*cur = 0
	c.hp = max(0, c.hp-max(1, overflow/2))
	return nil
}

// Recover restores amount to pool p, capped at the pool's maximum.
//
// Precondition: p must be a known Pool; amount must be >= 0.
// Postcondition: On error nothing is mutated. Otherwise Current(p) <= Max(p).
func (c *Character) Recover(p Pool, amount int) error {
	cur, maxValue, ok := c.slot(p)
	if !ok {
		return fmt.Errorf("recovering: %w: %s", ErrUnknownPool, p)
	}
	if amount < 0 {
		return fmt.Errorf("recovering: %w (got %d)", ErrNegativeAmount, amount)
	}
	// Compare against the headroom so huge amounts cannot overflow int.
	if amount >= maxValue-*cur {
		*cur = max(*cur, maxValue)
		return nil
	}
	*cur += amount
	return nil
}

// Rest applies one recovery tick: each energy pool regains its recovery rate.
// Hope is not restored by resting.
func (c *Character) Rest() {
	_ = c.Recover(PoolSTA, c.rec.STA)
	_ = c.Recover(PoolCON, c.rec.CON)
	_ = c.Recover(PoolRES, c.rec.RES)
}

// IsDefeated reports whether Hope is exhausted.
func (c *Character) IsDefeated() bool { return c.hp <= 0 }

// State is a condition flag derived from the current pool values.
type State string

// Derived states, reported in this order by States.
const (
	StateExhausted  State = "EXH"
	StateDistracted State = "DIS"
	StateShaken     State = "SHA"
	StateHopeless   State = "HPL"
)

// IsExhausted reports whether Stamina is spent.
func (c *Character) IsExhausted() bool { return c.sta <= 0 }

// IsDistracted reports whether Concentration is spent.
func (c *Character) IsDistracted() bool { return c.con <= 0 }

// IsShaken reports whether Resolve is spent.
func (c *Character) IsShaken() bool { return c.res <= 0 }

// IsHopeless reports whether Hope is spent.
func (c *Character) IsHopeless() bool { return c.hp <= 0 }

// States returns every state currently in effect, checked independently in the
// order STA, CON, RES, HP.
//
// Postcondition: Returns a non-nil slice (possibly empty).
func (c *Character) States() []State {
	states := make([]State, 0, 4)
	if c.IsExhausted() {
		states = append(states, StateExhausted)
	}
	if c.IsDistracted() {
		states = append(states, StateDistracted)
	}
	if c.IsShaken() {
		states = append(states, StateShaken)
	}
	if c.IsHopeless() {
		states = append(states, StateHopeless)
	}
	return states
}
