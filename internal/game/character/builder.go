package character

// Defaults applied by New to absent configuration fields.
const (
	DefaultName       = "Unnamed"
	DefaultBackground = "—"
	DefaultArchetype  = "—"
	// DefaultScore is the value of an absent attribute or approach.
	DefaultScore = 1
)

// AttributeConfig carries optional attribute scores. A nil field defaults to DefaultScore.
type AttributeConfig struct {
	BDY *int
	MND *int
	SOL *int
}

// ApproachConfig carries optional approach scores. A nil field defaults to DefaultScore.
type ApproachConfig struct {
	FRC *int
	FOC *int
	FNS *int
}

// EquipmentConfig carries optional item names. A nil or empty field leaves the slot empty.
type EquipmentConfig struct {
	Weapon    *string
	Armor     *string
	Accessory *string
}

// ExperienceConfig carries optional experience counters. A nil or negative field defaults to 0.
type ExperienceConfig struct {
	Current *int
	Total   *int
}

// ResourceConfig carries optional current pool values, used when restoring a saved
// character. A nil field starts the pool full; other values are clamped to [0, max].
type ResourceConfig struct {
	HP  *int
	STA *int
	CON *int
	RES *int
}

// Config is the construction record for a Character. Every field is optional and is
// resolved independently by New; a nil group falls back to its own per-field defaults.
type Config struct {
	Name       *string
	Background *string
	Archetype  *string

	Attributes *AttributeConfig
	Approaches *ApproachConfig
	Equipment  *EquipmentConfig
	Experience *ExperienceConfig
	Resources  *ResourceConfig
}

// New builds a Character from cfg, resolving defaults once and deriving every
// resource and statistic in a single pass.
//
// Postcondition: Returns a non-nil, unguarded Character with IM = 0 and every pool
// within [0, max]. New never fails.
func New(cfg Config) *Character {
	c := &Character{
		name:       stringOr(cfg.Name, DefaultName),
		background: stringOr(cfg.Background, DefaultBackground),
		archetype:  stringOr(cfg.Archetype, DefaultArchetype),
	}

	var attrs AttributeConfig
	if cfg.Attributes != nil {
		attrs = *cfg.Attributes
	}
	c.attributes = Attributes{
		BDY: intOr(attrs.BDY, DefaultScore),
		MND: intOr(attrs.MND, DefaultScore),
		SOL: intOr(attrs.SOL, DefaultScore),
	}

	var apps ApproachConfig
	if cfg.Approaches != nil {
		apps = *cfg.Approaches
	}
	c.approaches = Approaches{
		FRC: intOr(apps.FRC, DefaultScore),
		FOC: intOr(apps.FOC, DefaultScore),
		FNS: intOr(apps.FNS, DefaultScore),
	}

	if cfg.Equipment != nil {
		c.equipment = Equipment{
			Weapon:    itemName(cfg.Equipment.Weapon),
			Armor:     itemName(cfg.Equipment.Armor),
			Accessory: itemName(cfg.Equipment.Accessory),
		}
	}

	if cfg.Experience != nil {
		c.experience = Experience{
			Current: max(0, intOr(cfg.Experience.Current, 0)),
			Total:   max(0, intOr(cfg.Experience.Total, 0)),
		}
	}

	c.derive()

	var res ResourceConfig
	if cfg.Resources != nil {
		res = *cfg.Resources
	}
	c.hp = restorePool(res.HP, c.maxHP)
	c.sta = restorePool(res.STA, c.maxSTA)
	c.con = restorePool(res.CON, c.maxCON)
	c.res = restorePool(res.RES, c.maxRES)
	return c
}

// derive computes every derived value from the base attributes and approaches.
// No value depends on one computed after it.
func (c *Character) derive() {
	bdy, mnd, sol := c.attributes.BDY, c.attributes.MND, c.attributes.SOL
	frc, foc, fns := c.approaches.FRC, c.approaches.FOC, c.approaches.FNS

	// floor((BDY+MND+SOL)/2 + 6)
	c.maxHP = floorDiv(bdy+mnd+sol+12, 2)

	c.maxSTA = (bdy*2 + foc) * 4
	c.maxCON = (mnd*2 + foc) * 4
	c.maxRES = (sol*2 + foc) * 4

	c.mig = bdy + frc*2
	c.tec = mnd + frc*2
	c.inf = sol + frc*2

	c.agi = max(1, floorDiv(bdy*3+fns*2, 3))
	c.wis = max(1, floorDiv(mnd*3+fns*2, 3))
	c.cha = max(1, floorDiv(sol*3+fns*2, 3))

	// floor((FRC+FOC+FNS)/2 + 3)
	c.spd = max(1, floorDiv(frc+foc+fns+6, 2))
	c.im = 0

	c.rec = Recovery{
		STA: max(1, 1+foc+floorDiv(bdy, 2)),
		CON: max(1, 1+foc+floorDiv(mnd, 2)),
		RES: max(1, 1+foc+floorDiv(sol, 2)),
	}
}

// floorDiv divides rounding toward negative infinity. Go's / truncates toward zero,
// which differs for negative operands.
//
// Precondition: b != 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// restorePool starts a pool full unless a saved value is given. Degenerate inputs can
// derive a negative max; the pool then starts empty.
func restorePool(v *int, maxValue int) int {
	hi := max(0, maxValue)
	if v == nil {
		return hi
	}
	return clamp(*v, 0, hi)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func stringOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func itemName(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return cloneString(s)
}
