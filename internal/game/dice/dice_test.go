package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/dice"
)

// TestCryptoSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Float64_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

// TestCryptoSource_Intn_PanicsOnZero verifies the precondition:
// Intn panics when called with n <= 0.
func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		a := dice.NewSeededSource(seed)
		b := dice.NewSeededSource(seed)
		for i := 0; i < 20; i++ {
			assert.Equal(rt, a.Float64(), b.Float64())
			assert.Equal(rt, a.Intn(100), b.Intn(100))
		}
	})
}

func TestFixed_WrapsAndReduces(t *testing.T) {
	f := &dice.Fixed{Floats: []float64{0.1, 0.9}, Ints: []int{7}}
	assert.Equal(t, 0.1, f.Float64())
	assert.Equal(t, 0.9, f.Float64())
	assert.Equal(t, 0.1, f.Float64())
	assert.Equal(t, 1, f.Intn(3))
}

func TestBetween(t *testing.T) {
	f := &dice.Fixed{Floats: []float64{0, 0.5}}
	assert.Equal(t, 0.5, dice.Between(f, 0.5, 1.5))
	assert.Equal(t, 1.0, dice.Between(f, 0.5, 1.5))
}

func TestLoggedSource_PassesThrough(t *testing.T) {
	f := &dice.Fixed{Floats: []float64{0.25}, Ints: []int{2}}
	l := dice.NewLoggedSource(f, zaptest.NewLogger(t))
	assert.Equal(t, 0.25, l.Float64())
	assert.Equal(t, 2, l.Intn(5))
}
