package ruleset

import (
	"embed"

	"github.com/cory-johannsen/storyteller/internal/game/character"
)

//go:embed content/backgrounds/*.yaml
var builtin embed.FS

// DefaultBackgrounds returns the built-in body, mind, soul and nameless backgrounds.
//
// Postcondition: Returns a registry with four backgrounds or a non-nil error.
func DefaultBackgrounds() (*BackgroundRegistry, error) {
	return LoadBackgroundsFS(builtin, "content/backgrounds")
}

// Pregenerated returns the ready-made character offered by "Load Character" on
// the welcome screen.
func Pregenerated() character.Config {
	name, bg, arch := "Revulo Kosmaroj", "Nameless", "Harmonic Seeker"
	weapon, armor := "Worn Blade", "Leather Vest"
	bdy, mnd, sol := 3, 2, 2
	frc, foc, fns := 2, 4, 2
	cur, total := 5, 15
	return character.Config{
		Name:       &name,
		Background: &bg,
		Archetype:  &arch,
		Attributes: &character.AttributeConfig{BDY: &bdy, MND: &mnd, SOL: &sol},
		Approaches: &character.ApproachConfig{FRC: &frc, FOC: &foc, FNS: &fns},
		Equipment:  &character.EquipmentConfig{Weapon: &weapon, Armor: &armor},
		Experience: &character.ExperienceConfig{Current: &cur, Total: &total},
	}
}
