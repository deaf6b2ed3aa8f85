package character_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/storyteller/internal/game/character"
)

var allPools = []character.Pool{character.PoolHP, character.PoolSTA, character.PoolCON, character.PoolRES}

var energyPools = []character.Pool{character.PoolSTA, character.PoolCON, character.PoolRES}

func withPools(hp, sta, con, res int) *character.Character {
	cfg := sampleConfig()
	cfg.Resources = &character.ResourceConfig{HP: &hp, STA: &sta, CON: &con, RES: &res}
	return character.New(cfg)
}

func TestTakeDamage_AbsorbedByPool(t *testing.T) {
	c := character.New(sampleConfig())
	require.NoError(t, c.TakeDamage(character.PoolSTA, 15))
	assert.Equal(t, 25, c.Current(character.PoolSTA))
	assert.Equal(t, 9, c.Current(character.PoolHP))
}

func TestTakeDamage_ExactlyEmptiesPool(t *testing.T) {
	c := withPools(9, 10, 32, 32)
	require.NoError(t, c.TakeDamage(character.PoolSTA, 10))
	assert.Equal(t, 0, c.Current(character.PoolSTA))
	assert.Equal(t, 9, c.Current(character.PoolHP), "no overflow when the pool absorbs everything")
}

func TestTakeDamage_OverflowHalvedIntoHope(t *testing.T) {
	c := withPools(9, 5, 32, 32)
	require.NoError(t, c.TakeDamage(character.PoolSTA, 8))
	assert.Equal(t, 0, c.Current(character.PoolSTA))
	// overflow 3 -> max(1, floor(3/2)) = 1
	assert.Equal(t, 8, c.Current(character.PoolHP))
}

func TestTakeDamage_OverflowOfOneStillCostsHope(t *testing.T) {
	c := withPools(9, 32, 4, 32)
	require.NoError(t, c.TakeDamage(character.PoolCON, 5))
	assert.Equal(t, 0, c.Current(character.PoolCON))
	assert.Equal(t, 8, c.Current(character.PoolHP))
}

func TestTakeDamage_EmptyPoolPassesDamageThrough(t *testing.T) {
	c := withPools(9, 32, 32, 0)
	require.NoError(t, c.TakeDamage(character.PoolRES, 10))
	assert.Equal(t, 4, c.Current(character.PoolHP))
}

func TestTakeDamage_HopeClampsAtZero(t *testing.T) {
	c := withPools(3, 0, 32, 32)
	require.NoError(t, c.TakeDamage(character.PoolSTA, 100))
	assert.Equal(t, 0, c.Current(character.PoolHP))
	assert.True(t, c.IsDefeated())
}

func TestTakeDamage_RejectsHope(t *testing.T) {
	c := character.New(sampleConfig())
	err := c.TakeDamage(character.PoolHP, 3)
	assert.ErrorIs(t, err, character.ErrUnknownPool)
	assert.Equal(t, 9, c.Current(character.PoolHP))
}

func TestTakeDamage_RejectsUnknownPool(t *testing.T) {
	c := character.New(sampleConfig())
	assert.ErrorIs(t, c.TakeDamage(character.Pool(99), 3), character.ErrUnknownPool)
	assert.ErrorIs(t, c.TakeDamage(character.Pool(0), 3), character.ErrUnknownPool)
}

func TestTakeDamage_RejectsNegativeAmount(t *testing.T) {
	c := character.New(sampleConfig())
	assert.ErrorIs(t, c.TakeDamage(character.PoolSTA, -1), character.ErrNegativeAmount)
	assert.Equal(t, 40, c.Current(character.PoolSTA))
}

func TestRecover_ClampsToMax(t *testing.T) {
	c := withPools(2, 10, 10, 10)
	require.NoError(t, c.Recover(character.PoolHP, 100))
	require.NoError(t, c.Recover(character.PoolSTA, 5))
	assert.Equal(t, 9, c.Current(character.PoolHP))
	assert.Equal(t, 15, c.Current(character.PoolSTA))
}

func TestRecover_HugeAmountDoesNotOverflow(t *testing.T) {
	c := withPools(2, 10, 10, 10)
	require.NoError(t, c.Recover(character.PoolCON, math.MaxInt))
	assert.Equal(t, 32, c.Current(character.PoolCON))
}

func TestRecover_RejectsUnknownPool(t *testing.T) {
	c := character.New(sampleConfig())
	assert.ErrorIs(t, c.Recover(character.Pool(42), 1), character.ErrUnknownPool)
}

func TestRecover_RejectsNegativeAmount(t *testing.T) {
	c := withPools(2, 10, 10, 10)
	assert.ErrorIs(t, c.Recover(character.PoolHP, -5), character.ErrNegativeAmount)
	assert.Equal(t, 2, c.Current(character.PoolHP))
}

func TestRest_AppliesRecoveryRates(t *testing.T) {
	c := withPools(2, 0, 30, 10)
	c.Rest()
	assert.Equal(t, 6, c.Current(character.PoolSTA))
	assert.Equal(t, 32, c.Current(character.PoolCON))
	assert.Equal(t, 16, c.Current(character.PoolRES))
	assert.Equal(t, 2, c.Current(character.PoolHP), "resting does not restore Hope")
}

func TestStates(t *testing.T) {
	tests := []struct {
		name              string
		hp, sta, con, res int
		want              []character.State
	}{
		{name: "healthy", hp: 9, sta: 40, con: 32, res: 32, want: []character.State{}},
		{name: "exhausted and shaken", hp: 3, sta: 0, con: 5, res: 0,
			want: []character.State{character.StateExhausted, character.StateShaken}},
		{name: "distracted", hp: 9, sta: 1, con: 0, res: 1,
			want: []character.State{character.StateDistracted}},
		{name: "everything", hp: 0, sta: 0, con: 0, res: 0,
			want: []character.State{character.StateExhausted, character.StateDistracted, character.StateShaken, character.StateHopeless}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := withPools(tc.hp, tc.sta, tc.con, tc.res)
			assert.Equal(t, tc.want, c.States())
			assert.Equal(t, tc.sta <= 0, c.IsExhausted())
			assert.Equal(t, tc.con <= 0, c.IsDistracted())
			assert.Equal(t, tc.res <= 0, c.IsShaken())
			assert.Equal(t, tc.hp <= 0, c.IsHopeless())
			assert.Equal(t, tc.hp <= 0, c.IsDefeated())
		})
	}
}

// Property: after any sequence of damage and recovery, every pool stays within [0, max].
func TestProperty_PoolsStayWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := character.New(sampleConfig())
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			amount := rapid.IntRange(0, 200).Draw(rt, "amount")
			if rapid.Bool().Draw(rt, "damage") {
				p := rapid.SampledFrom(energyPools).Draw(rt, "damagePool")
				if err := c.TakeDamage(p, amount); err != nil {
					rt.Fatal(err)
				}
			} else {
				p := rapid.SampledFrom(allPools).Draw(rt, "recoverPool")
				if err := c.Recover(p, amount); err != nil {
					rt.Fatal(err)
				}
			}
			assertPoolsInBounds(rt, c)
		}
	})
}

// Property: damage beyond a pool's value empties it and costs exactly
// max(1, floor(overflow/2)) Hope, floored at zero.
func TestProperty_OverflowRule(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hp := rapid.IntRange(0, 9).Draw(rt, "hp")
		cur := rapid.IntRange(0, 32).Draw(rt, "cur")
		p := rapid.SampledFrom(energyPools).Draw(rt, "pool")
		amount := rapid.IntRange(cur+1, cur+100).Draw(rt, "amount")

		c := withPools(hp, cur, cur, cur)
		if err := c.TakeDamage(p, amount); err != nil {
			rt.Fatal(err)
		}
		if c.Current(p) != 0 {
			rt.Fatalf("pool %s = %d, want 0", p, c.Current(p))
		}
		want := max(0, hp-max(1, (amount-cur)/2))
		if c.Current(character.PoolHP) != want {
			rt.Fatalf("HP = %d, want %d (hp=%d cur=%d amount=%d)", c.Current(character.PoolHP), want, hp, cur, amount)
		}
	})
}

// Property: recovery never pushes a pool above its max.
func TestProperty_RecoverNeverExceedsMax(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := withPools(0, 0, 0, 0)
		p := rapid.SampledFrom(allPools).Draw(rt, "pool")
		amount := rapid.IntRange(0, math.MaxInt).Draw(rt, "amount")
		if err := c.Recover(p, amount); err != nil {
			rt.Fatal(err)
		}
		if c.Current(p) > c.Max(p) {
			rt.Fatalf("pool %s = %d exceeds max %d", p, c.Current(p), c.Max(p))
		}
	})
}
