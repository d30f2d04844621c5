// Package skill defines data-driven skill definitions, their per-character
// cooldown state, and the temporary stat buffs some skills apply.
//
// Effects are a tagged variant interpreted by the character package; nothing in
// a Definition captures a character reference.
package skill

import (
	"errors"
	"fmt"
)

// EffectKind tags the variant held by an Effect.
type EffectKind string

const (
	// EffectDamage deals attackPower*Multiplier to one target or to every target in Radius.
	EffectDamage EffectKind = "damage"
	// EffectBuff multiplies one of the caster's stats for Duration seconds.
	EffectBuff EffectKind = "buff"
)

// Stat names a buffable character stat.
type Stat string

const (
	StatAttackPower Stat = "attack_power"
	StatDefense     Stat = "defense"
)

// Effect is the tagged effect payload of a skill. Fields not relevant to Kind are ignored.
type Effect struct {
	Kind       EffectKind `yaml:"kind"`
	Multiplier float64    `yaml:"multiplier"`

	// Damage fields.
	Area   bool    `yaml:"area"`   // true: every provided target is checked independently
	Radius float64 `yaml:"radius"` // hit range from the caster; 0 = unlimited
	Delay  float64 `yaml:"delay"`  // seconds between cast and damage landing
	Jitter float64 `yaml:"jitter"` // max extra random per-target delay (area only)
	// ProjectileSpeed > 0 adds distance/ProjectileSpeed to Delay, measured at cast time.
	ProjectileSpeed float64 `yaml:"projectile_speed"`

	// Buff fields.
	Stat     Stat    `yaml:"stat"`
	Duration float64 `yaml:"duration"`

	// Presentation.
	LockFor      float64 `yaml:"lock_for"` // seconds the caster is held in the attacking state
	Animation    string  `yaml:"animation"`
	Visual       string  `yaml:"visual"`
	ImpactVisual string  `yaml:"impact_visual"`
}

// NeedsTarget reports whether the effect cannot run without at least one target.
func (e Effect) NeedsTarget() bool { return e.Kind == EffectDamage }

// Definition is the static description of one skill.
type Definition struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Cost        float64 `yaml:"cost"`
	Cooldown    float64 `yaml:"cooldown"`
	Effect      Effect  `yaml:"effect"`
}

// Validate checks the definition's invariants.
//
// Postcondition: nil return guarantees non-empty Name, Cost >= 0, Cooldown >= 0,
// a known effect kind, and a positive multiplier; buffs name a stat and last > 0s.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return errors.New("skill: name must not be empty")
	}
	if d.Cost < 0 {
		return fmt.Errorf("skill %q: cost must be >= 0, got %v", d.Name, d.Cost)
	}
	if d.Cooldown < 0 {
		return fmt.Errorf("skill %q: cooldown must be >= 0, got %v", d.Name, d.Cooldown)
	}
	if d.Effect.Multiplier <= 0 {
		return fmt.Errorf("skill %q: effect multiplier must be > 0, got %v", d.Name, d.Effect.Multiplier)
	}
	switch d.Effect.Kind {
	case EffectDamage:
		if d.Effect.Radius < 0 || d.Effect.Delay < 0 || d.Effect.Jitter < 0 || d.Effect.ProjectileSpeed < 0 {
			return fmt.Errorf("skill %q: damage radius, delay, jitter and projectile_speed must be >= 0", d.Name)
		}
	case EffectBuff:
		if d.Effect.Stat != StatAttackPower && d.Effect.Stat != StatDefense {
			return fmt.Errorf("skill %q: buff stat must be one of [attack_power, defense], got %q", d.Name, d.Effect.Stat)
		}
		if d.Effect.Duration <= 0 {
			return fmt.Errorf("skill %q: buff duration must be > 0", d.Name)
		}
	default:
		return fmt.Errorf("skill %q: unknown effect kind %q", d.Name, d.Effect.Kind)
	}
	return nil
}

// Slot binds a Definition to one character and tracks its cooldown.
//
// Invariant: LastUsed() == 0 whenever the slot is off cooldown.
type Slot struct {
	Def        *Definition
	lastUsed   float64
	onCooldown bool
}

// NewSlot returns a ready Slot for def.
//
// Precondition: def must not be nil.
func NewSlot(def *Definition) *Slot {
	return &Slot{Def: def}
}

// LastUsed returns the activation time, or 0 when the skill is ready.
func (s *Slot) LastUsed() float64 { return s.lastUsed }

// Ready reports whether the cooldown has elapsed at time now.
//
// Postcondition: true iff never used, or now - LastUsed() >= Cooldown.
func (s *Slot) Ready(now float64) bool {
	return !s.onCooldown || now-s.lastUsed >= s.Def.Cooldown
}

// Remaining returns the seconds of cooldown left at now, never negative.
func (s *Slot) Remaining(now float64) float64 {
	if s.Ready(now) {
		return 0
	}
	return s.Def.Cooldown - (now - s.lastUsed)
}

// Activate stamps the slot as used at now.
//
// Postcondition: LastUsed() == now; Ready(now) is false when Cooldown > 0.
func (s *Slot) Activate(now float64) {
	s.lastUsed = now
	s.onCooldown = true
}

// Tick clears an expired cooldown so the slot reads as ready again.
//
// Postcondition: when Ready(now), LastUsed() == 0.
func (s *Slot) Tick(now float64) {
	if s.onCooldown && now-s.lastUsed >= s.Def.Cooldown {
		s.onCooldown = false
		s.lastUsed = 0
	}
}

// Status is the HUD-facing view of one skill slot.
type Status struct {
	Name      string
	Cost      float64
	Cooldown  float64
	Ready     bool
	Remaining float64
}

// Status returns the slot's HUD view at now.
func (s *Slot) Status(now float64) Status {
	return Status{
		Name:      s.Def.Name,
		Cost:      s.Def.Cost,
		Cooldown:  s.Def.Cooldown,
		Ready:     s.Ready(now),
		Remaining: s.Remaining(now),
	}
}
