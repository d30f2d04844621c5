// Package environment defines the arena bounds combatants are confined to.
package environment

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cory-johannsen/duel/internal/game/geom"
)

// ErrUnknownEnvironment is returned when a preset name is not registered.
var ErrUnknownEnvironment = errors.New("unknown environment")

// Environment is an axis-aligned play area centred on the origin with its floor at Y=0.
//
// Invariant: Width, Height and Depth are > 0 for a valid Environment.
type Environment struct {
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
	// WindSpeed drives the cosmetic sway reported by Wind; 0 for indoor arenas.
	WindSpeed float64 `yaml:"wind_speed"`

	elapsed float64
}

// Arena returns the 40x20x40 walled arena preset.
func Arena() *Environment {
	return &Environment{Name: "arena", Width: 40, Height: 20, Depth: 40}
}

// Forest returns the 60x30x60 forest clearing preset.
func Forest() *Environment {
	return &Environment{Name: "forest", Width: 60, Height: 30, Depth: 60, WindSpeed: 0.5}
}

// Validate checks that every extent is positive.
func (e *Environment) Validate() error {
	if e.Width <= 0 || e.Height <= 0 || e.Depth <= 0 {
		return fmt.Errorf("environment %q: extents must be > 0, got %vx%vx%v", e.Name, e.Width, e.Height, e.Depth)
	}
	return nil
}

// Bounds returns min (-w/2, 0, -d/2) and max (w/2, h, d/2).
func (e *Environment) Bounds() geom.Box {
	return geom.Box{
		Min: geom.V(-e.Width/2, 0, -e.Depth/2),
		Max: geom.V(e.Width/2, e.Height, e.Depth/2),
	}
}

// ClampToBounds clamps p into the bounds one axis at a time.
//
// Postcondition: ClampToBounds(ClampToBounds(p)) == ClampToBounds(p).
func (e *Environment) ClampToBounds(p geom.Vec3) geom.Vec3 {
	return e.Bounds().Clamp(p)
}

// Update advances cosmetic animation time.
func (e *Environment) Update(delta float64) {
	if delta > 0 {
		e.elapsed += delta
	}
}

// Wind returns the horizontal foliage sway offset at the current cosmetic time.
func (e *Environment) Wind() geom.Vec3 {
	if e.WindSpeed == 0 {
		return geom.Zero
	}
	return geom.V(math.Sin(e.elapsed)*e.WindSpeed, 0, math.Cos(e.elapsed*0.7)*e.WindSpeed)
}

// Registry maps preset names to constructors so every match gets a fresh Environment.
type Registry struct {
	presets map[string]func() *Environment
}

// DefaultRegistry returns a Registry holding the arena and forest presets.
func DefaultRegistry() *Registry {
	return &Registry{presets: map[string]func() *Environment{
		"arena":  Arena,
		"forest": Forest,
	}}
}

// Register adds or replaces a preset.
//
// Precondition: name must be non-empty and fn must not be nil.
func (r *Registry) Register(name string, fn func() *Environment) {
	r.presets[strings.ToLower(name)] = fn
}

// New builds the named preset. Names are case-insensitive.
func (r *Registry) New(name string) (*Environment, error) {
	fn, ok := r.presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
	}
	return fn(), nil
}

// Names returns the registered preset names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.presets))
	for n := range r.presets {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
