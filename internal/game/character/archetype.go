package character

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/duel/internal/game/geom"
	"github.com/cory-johannsen/duel/internal/game/skill"
)

// Class tags the archetype a character was built from.
type Class string

const (
	Warrior Class = "warrior"
	Mage    Class = "mage"
)

// ResourceKind names the class resource and selects its generation rule.
type ResourceKind string

const (
	// Rage starts empty and is generated by attacking and by being hit.
	Rage ResourceKind = "rage"
	// Mana starts full and regenerates per second.
	Mana ResourceKind = "mana"
)

// ErrUnknownArchetype is returned when a class has no registered archetype.
var ErrUnknownArchetype = errors.New("unknown archetype")

// Archetype is the class descriptor every Character is built from: stat
// defaults, resource rule, basic attack presentation and skill table.
type Archetype struct {
	Class       Class   `yaml:"class"`
	Name        string  `yaml:"name"`
	MaxHealth   float64 `yaml:"max_health"`
	AttackPower float64 `yaml:"attack_power"`
	Defense     float64 `yaml:"defense"`
	Speed       float64 `yaml:"speed"`

	Resource         ResourceKind `yaml:"resource"`
	MaxResource      float64      `yaml:"max_resource"`
	StartResource    float64      `yaml:"start_resource"`
	ResourceRegen    float64      `yaml:"resource_regen"`     // per second, mana only
	ResourceOnAttack float64      `yaml:"resource_on_attack"` // flat gain per basic attack, rage only
	ResourceOnDamage float64      `yaml:"resource_on_damage"` // fraction of incoming amount, rage only

	AttackWindow    float64 `yaml:"attack_window"` // seconds the basic attack holds the attacking flag
	AttackAnimation string  `yaml:"attack_animation"`
	AttackVisual    string  `yaml:"attack_visual"`

	// HalfExtents is the hitbox half-size around the character position.
	HalfExtents geom.Vec3 `yaml:"half_extents"`

	Skills []skill.Definition `yaml:"skills"`
}

// Validate checks the archetype's invariants, aggregating every violation.
//
// Postcondition: nil return guarantees MaxHealth > 0, Defense >= 0, Speed > 0,
// a known resource kind with 0 <= StartResource <= MaxResource, and valid skills.
func (a *Archetype) Validate() error {
	var errs []error
	if a.Class == "" {
		errs = append(errs, errors.New("class must not be empty"))
	}
	if a.MaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("max_health must be > 0, got %v", a.MaxHealth))
	}
	if a.Defense < 0 {
		errs = append(errs, fmt.Errorf("defense must be >= 0, got %v", a.Defense))
	}
	if a.Speed <= 0 {
		errs = append(errs, fmt.Errorf("speed must be > 0, got %v", a.Speed))
	}
	switch a.Resource {
	case Rage, Mana:
	default:
		errs = append(errs, fmt.Errorf("resource must be one of [rage, mana], got %q", a.Resource))
	}
	if a.MaxResource <= 0 || a.StartResource < 0 || a.StartResource > a.MaxResource {
		errs = append(errs, fmt.Errorf("resource range invalid: start %v max %v", a.StartResource, a.MaxResource))
	}
	if a.AttackWindow <= 0 {
		errs = append(errs, fmt.Errorf("attack_window must be > 0, got %v", a.AttackWindow))
	}
	if len(a.Skills) == 0 {
		errs = append(errs, errors.New("at least one skill is required"))
	}
	for i := range a.Skills {
		if err := a.Skills[i].Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("archetype %q: %w", a.Class, errors.Join(errs...))
	}
	return nil
}

// WarriorArchetype returns the built-in Warrior descriptor.
func WarriorArchetype() *Archetype {
	return &Archetype{
		Class:            Warrior,
		Name:             "Warrior",
		MaxHealth:        120,
		AttackPower:      15,
		Defense:          8,
		Speed:            4,
		Resource:         Rage,
		MaxResource:      100,
		ResourceOnAttack: 10,
		ResourceOnDamage: 0.5,
		AttackWindow:     1.0,
		AttackAnimation:  "attack_basic",
		HalfExtents:      geom.V(0.6, 1.0, 0.6),
		Skills: []skill.Definition{
			{
				Name:        "Heavy Strike",
				Description: "A powerful strike that deals double damage",
				Cost:        30,
				Cooldown:    5,
				Effect: skill.Effect{
					Kind: skill.EffectDamage, Multiplier: 2, Delay: 0.6,
					LockFor: 1.2, Animation: "attack_heavy", Visual: "heavy_strike",
				},
			},
			{
				Name:        "Whirlwind",
				Description: "Spin attack that hits all nearby enemies",
				Cost:        50,
				Cooldown:    8,
				Effect: skill.Effect{
					Kind: skill.EffectDamage, Multiplier: 1.5, Area: true, Radius: 5, Delay: 0.5,
					LockFor: 1.5, Animation: "attack_spin", Visual: "whirlwind",
				},
			},
			{
				Name:        "Battle Cry",
				Description: "Increases attack power for a short duration",
				Cost:        70,
				Cooldown:    15,
				Effect: skill.Effect{
					Kind: skill.EffectBuff, Multiplier: 1.5, Stat: skill.StatAttackPower, Duration: 10,
					Animation: "special", Visual: "battle_cry",
				},
			},
		},
	}
}

// MageArchetype returns the built-in Mage descriptor.
func MageArchetype() *Archetype {
	return &Archetype{
		Class:           Mage,
		Name:            "Mage",
		MaxHealth:       80,
		AttackPower:     20,
		Defense:         3,
		Speed:           6,
		Resource:        Mana,
		MaxResource:     100,
		StartResource:   100,
		ResourceRegen:   2,
		AttackWindow:    0.8,
		AttackAnimation: "cast",
		AttackVisual:    "magic_bolt",
		HalfExtents:     geom.V(0.5, 1.0, 0.5),
		Skills: []skill.Definition{
			{
				Name:        "Fireball",
				Description: "Launch a fireball that deals high damage",
				Cost:        25,
				Cooldown:    2,
				Effect: skill.Effect{
					Kind: skill.EffectDamage, Multiplier: 2.5, Radius: 30, ProjectileSpeed: 15,
					LockFor: 1.0, Animation: "cast_fire", Visual: "fireball", ImpactVisual: "explosion",
				},
			},
			{
				Name:        "Ice Barrier",
				Description: "Create a shield that reduces incoming damage",
				Cost:        40,
				Cooldown:    10,
				Effect: skill.Effect{
					Kind: skill.EffectBuff, Multiplier: 3, Stat: skill.StatDefense, Duration: 8,
					Animation: "cast_ice", Visual: "ice_barrier",
				},
			},
			{
				Name:        "Lightning Storm",
				Description: "Call down lightning to damage all enemies in an area",
				Cost:        75,
				Cooldown:    15,
				Effect: skill.Effect{
					Kind: skill.EffectDamage, Multiplier: 2, Area: true, Radius: 8, Delay: 1.0, Jitter: 0.5,
					LockFor: 2.0, Animation: "cast_lightning", Visual: "storm_cloud", ImpactVisual: "lightning_bolt",
				},
			},
		},
	}
}

// Registry indexes archetypes by class.
type Registry struct {
	byClass map[Class]*Archetype
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byClass: make(map[Class]*Archetype)}
}

// DefaultRegistry returns a Registry holding the built-in Warrior and Mage.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.byClass[Warrior] = WarriorArchetype()
	r.byClass[Mage] = MageArchetype()
	return r
}

// Register validates a and stores it, replacing any archetype of the same class.
//
// Precondition: a must not be nil.
func (r *Registry) Register(a *Archetype) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.byClass[a.Class] = a
	return nil
}

// Get returns the archetype for class, or an error wrapping ErrUnknownArchetype.
func (r *Registry) Get(class Class) (*Archetype, error) {
	a, ok := r.byClass[class]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, class)
	}
	return a, nil
}

// Classes returns the registered classes in sorted order.
func (r *Registry) Classes() []Class {
	out := make([]Class, 0, len(r.byClass))
	for c := range r.byClass {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Opponent returns the class an opponent of class should play: Warrior faces
// Mage and vice versa. Other classes face the first registered class that
// differs from their own, or themselves if none does.
func (r *Registry) Opponent(class Class) Class {
	switch class {
	case Warrior:
		if _, ok := r.byClass[Mage]; ok {
			return Mage
		}
	case Mage:
		if _, ok := r.byClass[Warrior]; ok {
			return Warrior
		}
	}
	for _, c := range r.Classes() {
		if c != class {
			return c
		}
	}
	return class
}

// LoadArchetypes reads every *.yaml file in dir, validates each as an
// Archetype, and registers them over the built-in defaults.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry, or an error naming the first bad file.
func LoadArchetypes(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading archetype dir %q: %w", dir, err)
	}
	reg := DefaultRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var a Archetype
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&a); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
	}
	return reg, nil
}
