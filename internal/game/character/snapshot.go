package character

import (
	"math"

	"github.com/tidwall/gjson"
)

// Resources holds the current and maximum value of every pool.
type Resources struct {
	HP     int `json:"HP"`
	MaxHP  int `json:"maxHP"`
	STA    int `json:"STA"`
	MaxSTA int `json:"maxSTA"`
	CON    int `json:"CON"`
	MaxCON int `json:"maxCON"`
	RES    int `json:"RES"`
	MaxRES int `json:"maxRES"`
}

// Stats holds the offensive, defensive and initiative statistics.
type Stats struct {
	MIG int `json:"MIG"`
	TEC int `json:"TEC"`
	INF int `json:"INF"`
	AGI int `json:"AGI"`
	WIS int `json:"WIS"`
	CHA int `json:"CHA"`
	SPD int `json:"SPD"`
	IM  int `json:"IM"`
}

// Snapshot is a detached status report of a Character, used by renderers and as
// the persisted form of a character.
type Snapshot struct {
	Name       string     `json:"name"`
	Background string     `json:"background"`
	Archetype  string     `json:"archetype"`
	Experience Experience `json:"experience"`
	Attributes Attributes `json:"attributes"`
	Approaches Approaches `json:"approaches"`
	Equipment  Equipment  `json:"equipment"`
	Resources  Resources  `json:"resources"`
	Stats      Stats      `json:"stats"`
	Recovery   Recovery   `json:"recovery"`
	States     []State    `json:"states"`
}

// StatusReport returns a snapshot of the character. The snapshot shares no memory
// with the character; mutating it has no effect on later reports.
func (c *Character) StatusReport() Snapshot {
	return Snapshot{
		Name:       c.name,
		Background: c.background,
		Archetype:  c.archetype,
		Experience: c.experience,
		Attributes: c.attributes,
		Approaches: c.approaches,
		Equipment:  c.equipment.clone(),
		Resources: Resources{
			HP: c.hp, MaxHP: c.maxHP,
			STA: c.sta, MaxSTA: c.maxSTA,
			CON: c.con, MaxCON: c.maxCON,
			RES: c.res, MaxRES: c.maxRES,
		},
		Stats: Stats{
			MIG: c.mig, TEC: c.tec, INF: c.inf,
			AGI: c.AGI(), WIS: c.WIS(), CHA: c.CHA(),
			SPD: c.spd, IM: c.im,
		},
		Recovery: c.rec,
		States:   c.States(),
	}
}

// Config converts the snapshot back into construction input. New(s.Config())
// reproduces the snapshot, except that the result is unguarded with IM = 0.
func (s Snapshot) Config() Config {
	return Config{
		Name:       ptr(s.Name),
		Background: ptr(s.Background),
		Archetype:  ptr(s.Archetype),
		Attributes: &AttributeConfig{
			BDY: ptr(s.Attributes.BDY),
			MND: ptr(s.Attributes.MND),
			SOL: ptr(s.Attributes.SOL),
		},
		Approaches: &ApproachConfig{
			FRC: ptr(s.Approaches.FRC),
			FOC: ptr(s.Approaches.FOC),
			FNS: ptr(s.Approaches.FNS),
		},
		Equipment: &EquipmentConfig{
			Weapon:    cloneString(s.Equipment.Weapon),
			Armor:     cloneString(s.Equipment.Armor),
			Accessory: cloneString(s.Equipment.Accessory),
		},
		Experience: &ExperienceConfig{
			Current: ptr(s.Experience.Current),
			Total:   ptr(s.Experience.Total),
		},
		Resources: &ResourceConfig{
			HP:  ptr(s.Resources.HP),
			STA: ptr(s.Resources.STA),
			CON: ptr(s.Resources.CON),
			RES: ptr(s.Resources.RES),
		},
	}
}

// ParseConfig reads a JSON character record, such as a saved Snapshot, into a Config.
// Missing groups stay nil, and any field that is missing or of the wrong type is
// treated as absent so that New applies its default. ParseConfig never fails; input
// that is not a JSON object yields an all-default Config.
func ParseConfig(data []byte) Config {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Config{}
	}

	cfg := Config{
		Name:       stringField(root, "name"),
		Background: stringField(root, "background"),
		Archetype:  stringField(root, "archetype"),
	}
	if g := root.Get("attributes"); g.IsObject() {
		cfg.Attributes = &AttributeConfig{
			BDY: intField(g, "BDY"),
			MND: intField(g, "MND"),
			SOL: intField(g, "SOL"),
		}
	}
	if g := root.Get("approaches"); g.IsObject() {
		cfg.Approaches = &ApproachConfig{
			FRC: intField(g, "FRC"),
			FOC: intField(g, "FOC"),
			FNS: intField(g, "FNS"),
		}
	}
	if g := root.Get("equipment"); g.IsObject() {
		cfg.Equipment = &EquipmentConfig{
			Weapon:    stringField(g, "weapon"),
			Armor:     stringField(g, "armor"),
			Accessory: stringField(g, "accessory"),
		}
	}
	if g := root.Get("experience"); g.IsObject() {
		cfg.Experience = &ExperienceConfig{
			Current: intField(g, "current"),
			Total:   intField(g, "total"),
		}
	}
	if g := root.Get("resources"); g.IsObject() {
		cfg.Resources = &ResourceConfig{
			HP:  intField(g, "HP"),
			STA: intField(g, "STA"),
			CON: intField(g, "CON"),
			RES: intField(g, "RES"),
		}
	}
	return cfg
}

// intField returns the integer at key, or nil if it is missing, not a number, not
// whole, or out of int range.
func intField(g gjson.Result, key string) *int {
	r := g.Get(key)
	if r.Type != gjson.Number {
		return nil
	}
	if r.Num != math.Trunc(r.Num) || r.Num > math.MaxInt32 || r.Num < math.MinInt32 {
		return nil
	}
	v := int(r.Int())
	return &v
}

func stringField(g gjson.Result, key string) *string {
	r := g.Get(key)
	if r.Type != gjson.String {
		return nil
	}
	v := r.Str
	return &v
}

func ptr[T any](v T) *T {
	return &v
}
