package character_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/storyteller/internal/game/character"
)

func TestStatusReport_Sample(t *testing.T) {
	c := withPools(3, 0, 20, 32)
	s := c.StatusReport()

	assert.Equal(t, "Wren", s.Name)
	assert.Equal(t, "Body", s.Background)
	assert.Equal(t, "Drifter", s.Archetype)
	assert.Equal(t, character.Resources{
		HP: 3, MaxHP: 9, STA: 0, MaxSTA: 40, CON: 20, MaxCON: 32, RES: 32, MaxRES: 32,
	}, s.Resources)
	assert.Equal(t, character.Stats{MIG: 7, TEC: 6, INF: 6, AGI: 4, WIS: 3, CHA: 3, SPD: 7}, s.Stats)
	assert.Equal(t, []character.State{character.StateExhausted}, s.States)
}

func TestStatusReport_ReportsGuardedStats(t *testing.T) {
	c := character.New(sampleConfig())
	_, err := c.Guard()
	require.NoError(t, err)
	s := c.StatusReport()
	assert.Equal(t, 8, s.Stats.AGI)
	assert.Equal(t, 6, s.Stats.WIS)
	assert.Equal(t, 6, s.Stats.CHA)
}

func TestStatusReport_IsIdempotent(t *testing.T) {
	c := withPools(0, 0, 0, 0)
	assert.Equal(t, c.StatusReport(), c.StatusReport())
}

func TestStatusReport_IsDetached(t *testing.T) {
	cfg := sampleConfig()
	cfg.Equipment = &character.EquipmentConfig{Weapon: strp("Rusted Pipe")}
	sta := 0
	cfg.Resources = &character.ResourceConfig{STA: &sta}
	c := character.New(cfg)

	s := c.StatusReport()
	*s.Equipment.Weapon = "Stolen"
	s.States[0] = character.StateHopeless
	s.Resources.HP = -50

	again := c.StatusReport()
	require.NotNil(t, again.Equipment.Weapon)
	assert.Equal(t, "Rusted Pipe", *again.Equipment.Weapon)
	assert.Equal(t, []character.State{character.StateExhausted}, again.States)
	assert.Equal(t, 9, again.Resources.HP)
}

func TestSnapshotConfig_RoundTrip(t *testing.T) {
	cfg := sampleConfig()
	cfg.Equipment = &character.EquipmentConfig{Armor: strp("Patched Coat")}
	cfg.Experience = &character.ExperienceConfig{Current: intp(3), Total: intp(14)}
	c := character.New(cfg)
	require.NoError(t, c.TakeDamage(character.PoolCON, 40))

	s := c.StatusReport()
	assert.Equal(t, s, character.New(s.Config()).StatusReport())
}

func TestSnapshotConfig_DropsGuard(t *testing.T) {
	c := character.New(sampleConfig())
	_, err := c.Guard()
	require.NoError(t, err)
	restored := character.New(c.StatusReport().Config())
	assert.False(t, restored.Guarded())
	assert.Equal(t, 4, restored.AGI())
}

func TestParseConfig_JSONRoundTrip(t *testing.T) {
	c := withPools(5, 12, 0, 30)
	s := c.StatusReport()
	data, err := json.Marshal(s)
	require.NoError(t, err)

	assert.Equal(t, s, character.New(character.ParseConfig(data)).StatusReport())
}

func TestParseConfig_MalformedFieldsDefault(t *testing.T) {
	data := []byte(`{
		"name": 42,
		"background": "Mind",
		"attributes": {"BDY": "three", "MND": 2.5, "SOL": 4},
		"approaches": [1, 2, 3],
		"equipment": {"weapon": null, "armor": "Coat"},
		"experience": {"current": 1e12, "total": 9},
		"resources": {"HP": 2}
	}`)
	cfg := character.ParseConfig(data)
	c := character.New(cfg)

	assert.Equal(t, character.DefaultName, c.Name())
	assert.Equal(t, "Mind", c.Background())
	assert.Equal(t, character.Attributes{BDY: 1, MND: 1, SOL: 4}, c.Attributes())
	assert.Nil(t, cfg.Approaches)
	assert.Equal(t, character.Approaches{FRC: 1, FOC: 1, FNS: 1}, c.Approaches())
	assert.Nil(t, c.Equipment().Weapon)
	require.NotNil(t, c.Equipment().Armor)
	assert.Equal(t, "Coat", *c.Equipment().Armor)
	assert.Equal(t, character.Experience{Current: 0, Total: 9}, c.Experience())
	assert.Equal(t, 2, c.Current(character.PoolHP))
	assert.Equal(t, c.Max(character.PoolSTA), c.Current(character.PoolSTA))
}

func TestParseConfig_NonObjectYieldsDefaults(t *testing.T) {
	for _, in := range []string{``, `null`, `[]`, `"Wren"`, `12`, `{not json`} {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, character.Config{}, character.ParseConfig([]byte(in)))
		})
	}
}

// Property: a status report survives JSON encoding and reconstruction unchanged.
func TestProperty_SnapshotJSONRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bdy := rapid.IntRange(-5, 20).Draw(rt, "BDY")
		mnd := rapid.IntRange(-5, 20).Draw(rt, "MND")
		foc := rapid.IntRange(-5, 20).Draw(rt, "FOC")
		name := rapid.StringMatching(`[A-Za-z ]{1,16}`).Draw(rt, "name")
		c := character.New(character.Config{
			Name:       &name,
			Attributes: &character.AttributeConfig{BDY: &bdy, MND: &mnd},
			Approaches: &character.ApproachConfig{FOC: &foc},
		})
		if c.Max(character.PoolSTA) > 0 {
			dmg := rapid.IntRange(0, 200).Draw(rt, "damage")
			if err := c.TakeDamage(character.PoolSTA, dmg); err != nil {
				rt.Fatal(err)
			}
		}

		s := c.StatusReport()
		data, err := json.Marshal(s)
		if err != nil {
			rt.Fatal(err)
		}
		got := character.New(character.ParseConfig(data)).StatusReport()
		if !assert.ObjectsAreEqual(s, got) {
			rt.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, s)
		}
	})
}
