package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/environment"
	"github.com/cory-johannsen/duel/internal/game/geom"
)

func TestPresets_Bounds(t *testing.T) {
	a := environment.Arena()
	require.NoError(t, a.Validate())
	assert.Equal(t, geom.V(-20, 0, -20), a.Bounds().Min)
	assert.Equal(t, geom.V(20, 20, 20), a.Bounds().Max)

	f := environment.Forest()
	assert.Equal(t, geom.V(30, 30, 30), f.Bounds().Max)
}

func TestClampToBounds_PerAxis(t *testing.T) {
	a := environment.Arena()
	assert.Equal(t, geom.V(20, 0, -3), a.ClampToBounds(geom.V(25, -1, -3)))
}

func TestClampToBounds_Property_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := &environment.Environment{
			Name:   "gen",
			Width:  rapid.Float64Range(0.1, 200).Draw(rt, "w"),
			Height: rapid.Float64Range(0.1, 200).Draw(rt, "h"),
			Depth:  rapid.Float64Range(0.1, 200).Draw(rt, "d"),
		}
		p := geom.V(
			rapid.Float64Range(-1e4, 1e4).Draw(rt, "x"),
			rapid.Float64Range(-1e4, 1e4).Draw(rt, "y"),
			rapid.Float64Range(-1e4, 1e4).Draw(rt, "z"),
		)
		once := e.ClampToBounds(p)
		assert.Equal(rt, once, e.ClampToBounds(once))
		assert.True(rt, e.Bounds().Contains(once))
	})
}

func TestValidate_RejectsNonPositive(t *testing.T) {
	assert.Error(t, (&environment.Environment{Name: "flat", Width: 10, Depth: 10}).Validate())
}

func TestUpdate_Cosmetic(t *testing.T) {
	a := environment.Arena()
	a.Update(0.5)
	assert.Equal(t, geom.Zero, a.Wind())

	f := environment.Forest()
	f.Update(1)
	w := f.Wind()
	assert.NotEqual(t, geom.Zero, w)
	f.Update(-1)
	assert.Equal(t, w, f.Wind(), "negative delta must not move cosmetic time")
}

func TestRegistry(t *testing.T) {
	r := environment.DefaultRegistry()
	assert.Equal(t, []string{"arena", "forest"}, r.Names())

	e, err := r.New("Forest")
	require.NoError(t, err)
	assert.Equal(t, "forest", e.Name)

	_, err = r.New("volcano")
	assert.ErrorIs(t, err, environment.ErrUnknownEnvironment)

	r.Register("pit", func() *environment.Environment {
		return &environment.Environment{Name: "pit", Width: 10, Height: 5, Depth: 10}
	})
	assert.Contains(t, r.Names(), "pit")
}
