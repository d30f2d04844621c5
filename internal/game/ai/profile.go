// Package ai implements the enemy's periodic decision loop: a gated, jittered
// tick that chooses to move, attack or use a skill from distance thresholds
// and weighted random draws.
package ai

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// weightTolerance bounds the rounding error accepted when weights are summed.
const weightTolerance = 1e-9

// Weights are the mid-range action probabilities.
type Weights struct {
	Move   float64 `yaml:"move"`
	Attack float64 `yaml:"attack"`
	Skill  float64 `yaml:"skill"`
}

// MoveMix splits the move weight between approach, retreat and strafe.
type MoveMix struct {
	Toward float64 `yaml:"toward"`
	Away   float64 `yaml:"away"`
	Strafe float64 `yaml:"strafe"`
}

// Profile tunes one AI personality.
//
// Invariant: Weights and MoveMix each sum to 1; NearThreshold < FarThreshold;
// 0 < BurstMin <= BurstMax.
type Profile struct {
	ID               string  `yaml:"id"`
	DecisionCooldown float64 `yaml:"decision_cooldown"`
	FarThreshold     float64 `yaml:"far_threshold"`
	NearThreshold    float64 `yaml:"near_threshold"`
	Weights          Weights `yaml:"weights"`
	MoveMix          MoveMix `yaml:"move_mix"`
	BurstMin         float64 `yaml:"burst_min"`
	BurstMax         float64 `yaml:"burst_max"`
}

// DefaultProfile returns the standard opponent: decisions every 0.5-1.5s,
// approach beyond 7 units, retreat inside 3, and 0.6/0.3/0.1 move/attack/skill.
func DefaultProfile() Profile {
	return Profile{
		ID:               "default",
		DecisionCooldown: 1,
		FarThreshold:     7,
		NearThreshold:    3,
		Weights:          Weights{Move: 0.6, Attack: 0.3, Skill: 0.1},
		MoveMix:          MoveMix{Toward: 0.4, Away: 0.4, Strafe: 0.2},
		BurstMin:         0.5,
		BurstMax:         1.5,
	}
}

// Validate checks every profile invariant, aggregating violations.
//
// Postcondition: nil return guarantees the Profile invariant holds and every
// weight is non-negative.
func (p *Profile) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if p.DecisionCooldown <= 0 {
		errs = append(errs, fmt.Errorf("decision_cooldown must be > 0, got %v", p.DecisionCooldown))
	}
	if p.NearThreshold < 0 || p.NearThreshold >= p.FarThreshold {
		errs = append(errs, fmt.Errorf("thresholds must satisfy 0 <= near < far, got near %v far %v", p.NearThreshold, p.FarThreshold))
	}
	w := p.Weights
	if w.Move < 0 || w.Attack < 0 || w.Skill < 0 {
		errs = append(errs, errors.New("weights must be >= 0"))
	}
	if sum := w.Move + w.Attack + w.Skill; math.Abs(sum-1) > weightTolerance {
		errs = append(errs, fmt.Errorf("weights must sum to 1, got %v", sum))
	}
	m := p.MoveMix
	if m.Toward < 0 || m.Away < 0 || m.Strafe < 0 {
		errs = append(errs, errors.New("move_mix must be >= 0"))
	}
	if sum := m.Toward + m.Away + m.Strafe; math.Abs(sum-1) > weightTolerance {
		errs = append(errs, fmt.Errorf("move_mix must sum to 1, got %v", sum))
	}
	if p.BurstMin <= 0 || p.BurstMax < p.BurstMin {
		errs = append(errs, fmt.Errorf("burst range must satisfy 0 < min <= max, got %v..%v", p.BurstMin, p.BurstMax))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ai profile %q: %w", p.ID, errors.Join(errs...))
	}
	return nil
}

// Registry indexes profiles by ID.
//
// Invariant: each profile ID is registered at most once.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry returns a Registry holding only the default profile.
func NewRegistry() *Registry {
	def := DefaultProfile()
	return &Registry{profiles: map[string]Profile{def.ID: def}}
}

// Register validates and stores p.
//
// Postcondition: returns error on an invalid profile or an ID collision.
func (r *Registry) Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := r.profiles[p.ID]; exists {
		return fmt.Errorf("ai.Registry: profile %q already registered", p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// ProfileFor returns the profile for id, or false if not registered.
func (r *Registry) ProfileFor(id string) (Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// yamlProfileFile wraps the YAML top-level key.
type yamlProfileFile struct {
	Profile *Profile `yaml:"profile"`
}

// LoadProfiles reads every *.yaml file in dir into a Registry that also holds
// the default profile.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any file fails to parse or validate, or
// reuses an ID.
func LoadProfiles(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadProfiles: reading %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: reading %s: %w", e.Name(), err)
		}
		var f yamlProfileFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: parsing %s: %w", e.Name(), err)
		}
		if f.Profile == nil {
			return nil, fmt.Errorf("ai.LoadProfiles: %s missing top-level 'profile' key", e.Name())
		}
		if err := reg.Register(*f.Profile); err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: %s: %w", e.Name(), err)
		}
	}
	return reg, nil
}
