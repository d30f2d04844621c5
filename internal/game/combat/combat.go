// Package combat resolves basic melee hits and hitbox overlap between two
// combatants. Skill damage is applied by the character package; this package
// owns the distance-gated, block-aware basic attack path.
package combat

import "github.com/google/uuid"

// Outcome classifies a resolved melee hit.
type Outcome int

const (
	// Hit means damage was applied through TakeDamage.
	Hit Outcome = iota
	// Blocked means the defender was blocking when the hit resolved.
	Blocked
	// OutOfRange means the combatants were at least the melee range apart.
	OutOfRange
	// Missed means either side was dead when the hit resolved.
	Missed
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Blocked:
		return "blocked"
	case OutOfRange:
		return "out of range"
	case Missed:
		return "missed"
	default:
		return "unknown"
	}
}

// HitEvent describes one resolved melee hit.
type HitEvent struct {
	Attacker uuid.UUID
	Defender uuid.UUID
	// Damage is the attack's damage potential before mitigation.
	Damage float64
	// Dealt is the health the defender actually lost.
	Dealt    float64
	Distance float64
	Outcome  Outcome
	// At is the simulation time the hit resolved.
	At float64
}

// Config holds the resolver's tuning constants.
type Config struct {
	MeleeRange         float64 `mapstructure:"melee_range"`
	MeleeDelay         float64 `mapstructure:"melee_delay"`
	SeparationDistance float64 `mapstructure:"separation_distance"`
}

// DefaultConfig returns the standard melee range of 4, hit delay of 0.3s and
// separation push of 0.1.
func DefaultConfig() Config {
	return Config{MeleeRange: 4, MeleeDelay: 0.3, SeparationDistance: 0.1}
}
