package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/storyteller/internal/game/character"
)

// ErrUnknownBackground is returned when a background ID is not registered.
var ErrUnknownBackground = errors.New("unknown background")

// Scores is a block of three ability scores as written in background YAML.
type Scores map[string]int

// Background is one answer to the creation question "What part of you always
// refused to be ignored?" and the starting character it grants.
//
// Precondition: ID, Name and Prompt must be non-empty after loading.
type Background struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Prompt     string            `yaml:"prompt"`
	Color      string            `yaml:"color"`
	Archetype  string            `yaml:"archetype"`
	Order      int               `yaml:"order"`
	Attributes Scores            `yaml:"attributes"`
	Approaches Scores            `yaml:"approaches"`
	Equipment  map[string]string `yaml:"equipment"`
}

var (
	attributeKeys = []string{"BDY", "MND", "SOL"}
	approachKeys  = []string{"FRC", "FOC", "FNS"}
	equipmentKeys = []string{"weapon", "armor", "accessory"}
)

// Validate checks that the background is complete and names only known scores.
//
// Postcondition: Returns nil, or an error describing every violation.
func (b *Background) Validate() error {
	var errs []string
	if b.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if b.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if b.Prompt == "" {
		errs = append(errs, "prompt must not be empty")
	}
	errs = append(errs, unknownKeys("attributes", b.Attributes, attributeKeys)...)
	errs = append(errs, unknownKeys("approaches", b.Approaches, approachKeys)...)
	for k := range b.Equipment {
		if !contains(equipmentKeys, k) {
			errs = append(errs, fmt.Sprintf("equipment.%s is not a slot", k))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("background %q: %s", b.ID, strings.Join(errs, "; "))
	}
	return nil
}

func unknownKeys(group string, s Scores, allowed []string) []string {
	var errs []string
	for k := range s {
		if !contains(allowed, k) {
			errs = append(errs, fmt.Sprintf("%s.%s is not a score", group, k))
		}
	}
	sort.Strings(errs)
	return errs
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Config returns the construction input for a new character of this background.
// Scores the background omits fall back to the character defaults.
//
// Postcondition: The returned Config shares no memory with b.
func (b *Background) Config(name string) character.Config {
	bg := b.Name
	cfg := character.Config{Name: &name, Background: &bg}
	if b.Archetype != "" {
		arch := b.Archetype
		cfg.Archetype = &arch
	}
	if len(b.Attributes) > 0 {
		cfg.Attributes = &character.AttributeConfig{
			BDY: score(b.Attributes, "BDY"),
			MND: score(b.Attributes, "MND"),
			SOL: score(b.Attributes, "SOL"),
		}
	}
	if len(b.Approaches) > 0 {
		cfg.Approaches = &character.ApproachConfig{
			FRC: score(b.Approaches, "FRC"),
			FOC: score(b.Approaches, "FOC"),
			FNS: score(b.Approaches, "FNS"),
		}
	}
	if len(b.Equipment) > 0 {
		cfg.Equipment = &character.EquipmentConfig{
			Weapon:    item(b.Equipment, "weapon"),
			Armor:     item(b.Equipment, "armor"),
			Accessory: item(b.Equipment, "accessory"),
		}
	}
	return cfg
}

func score(s Scores, key string) *int {
	v, ok := s[key]
	if !ok {
		return nil
	}
	return &v
}

func item(eq map[string]string, key string) *string {
	v, ok := eq[key]
	if !ok || v == "" {
		return nil
	}
	return &v
}

// BackgroundRegistry holds the backgrounds offered during character creation.
type BackgroundRegistry struct {
	byID    map[string]*Background
	ordered []*Background
}

// NewBackgroundRegistry validates and indexes bgs.
//
// Postcondition: Returns a registry, or an error if any background is invalid or
// an ID appears twice.
func NewBackgroundRegistry(bgs []*Background) (*BackgroundRegistry, error) {
	r := &BackgroundRegistry{byID: make(map[string]*Background, len(bgs))}
	for _, b := range bgs {
		if b == nil {
			return nil, errors.New("background must not be nil")
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate background id %q", b.ID)
		}
		r.byID[b.ID] = b
		r.ordered = append(r.ordered, b)
	}
	sort.SliceStable(r.ordered, func(i, j int) bool {
		if r.ordered[i].Order != r.ordered[j].Order {
			return r.ordered[i].Order < r.ordered[j].Order
		}
		return r.ordered[i].ID < r.ordered[j].ID
	})
	return r, nil
}

// Get returns the background with the given ID, matched case-insensitively.
//
// Postcondition: Returns the background, or an error wrapping ErrUnknownBackground.
func (r *BackgroundRegistry) Get(id string) (*Background, error) {
	if b, ok := r.byID[id]; ok {
		return b, nil
	}
	if b, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackground, id)
}

// All returns the backgrounds in presentation order.
func (r *BackgroundRegistry) All() []*Background {
	out := make([]*Background, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered backgrounds.
func (r *BackgroundRegistry) Len() int { return len(r.ordered) }

// LoadBackgrounds reads every .yaml file in dir and builds a registry from them.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns a registry or a non-nil error.
func LoadBackgrounds(dir string) (*BackgroundRegistry, error) {
	return LoadBackgroundsFS(os.DirFS(dir), ".")
}

// LoadBackgroundsFS reads every .yaml file in dir of fsys. Unknown YAML keys are
// rejected.
//
// Postcondition: Returns a registry or a non-nil error.
func LoadBackgroundsFS(fsys fs.FS, dir string) (*BackgroundRegistry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading background dir %q: %w", dir, err)
	}
	var bgs []*Background
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		var b Background
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&b); err != nil {
			return nil, fmt.Errorf("parsing background file %q: %w", p, err)
		}
		bgs = append(bgs, &b)
	}
	return NewBackgroundRegistry(bgs)
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
