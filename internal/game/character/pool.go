package character

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPool is returned when an operation names a pool it cannot act on.
var ErrUnknownPool = errors.New("unknown pool")

// ErrNegativeAmount is returned when a damage or recovery amount is below zero.
var ErrNegativeAmount = errors.New("amount must not be negative")

// Pool identifies one of the character's resource pools.
type Pool int

// Resource pools. Hope is depleted only through overflow from the three energy pools.
const (
	PoolHP Pool = iota + 1
	PoolSTA
	PoolCON
	PoolRES
)

var poolNames = map[Pool]string{
	PoolHP:  "HP",
	PoolSTA: "STA",
	PoolCON: "CON",
	PoolRES: "RES",
}

// String returns the short pool label, e.g. "STA".
func (p Pool) String() string {
	if n, ok := poolNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Pool(%d)", int(p))
}

// Damageable reports whether TakeDamage accepts p. Only the energy pools absorb damage.
func (p Pool) Damageable() bool {
	return p == PoolSTA || p == PoolCON || p == PoolRES
}

// ParsePool maps a pool label ("HP", "STA", "CON", "RES", any case) to its Pool.
//
// Postcondition: Returns a valid Pool, or ErrUnknownPool.
func ParsePool(s string) (Pool, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for p, n := range poolNames {
		if n == want {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPool, s)
}

// slot returns the current value and the maximum of pool p.
func (c *Character) slot(p Pool) (cur *int, maxValue int, ok bool) {
	switch p {
	case PoolHP:
		return &c.hp, c.maxHP, true
	case PoolSTA:
		return &c.sta, c.maxSTA, true
	case PoolCON:
		return &c.con, c.maxCON, true
	case PoolRES:
		return &c.res, c.maxRES, true
	}
	return nil, 0, false
}

// Current returns the current value of pool p, or 0 for an unknown pool.
func (c *Character) Current(p Pool) int {
	cur, _, ok := c.slot(p)
	if !ok {
		return 0
	}
	return *cur
}

// Max returns the maximum of pool p, or 0 for an unknown pool. Maxima never change
// after construction.
func (c *Character) Max(p Pool) int {
	_, m, _ := c.slot(p)
	return m
}

// MarshalText encodes p as its label.
func (p Pool) MarshalText() ([]byte, error) {
	if _, ok := poolNames[p]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPool, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a pool label.
func (p *Pool) UnmarshalText(text []byte) error {
	v, err := ParsePool(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
