package sched_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/sched"
)

func TestScheduler_FiresWhenDue(t *testing.T) {
	s := sched.New()
	var called int
	s.After(0.3, "hit", func() { called++ })

	s.Advance(0.2)
	assert.Equal(t, 0, called)
	s.Advance(0.1)
	assert.Equal(t, 1, called)
	s.Advance(1)
	assert.Equal(t, 1, called, "callback must fire exactly once")
}

func TestScheduler_NowReportsScheduledTimeDuringCallback(t *testing.T) {
	s := sched.New()
	var seen float64
	s.After(0.25, "peek", func() { seen = s.Now() })
	s.Advance(1)
	assert.Equal(t, 0.25, seen)
	assert.Equal(t, 1.0, s.Now())
}

func TestScheduler_CancelAll(t *testing.T) {
	s := sched.New()
	var called int
	s.After(0.1, "a", func() { called++ })
	h := s.After(0.2, "b", func() { called++ })
	s.Advance(0.05)

	assert.Equal(t, 2, s.CancelAll())
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 0.05, s.Now())
	assert.False(t, s.Cancel(h))
	s.Advance(1)
	assert.Equal(t, 0, called)

	s.After(0.1, "c", func() { called++ })
	s.Advance(0.1)
	assert.Equal(t, 1, called, "scheduler stays usable after CancelAll")
}

func TestScheduler_OrderByTimeThenInsertion(t *testing.T) {
	s := sched.New()
	var order []string
	s.After(0.5, "c", func() { order = append(order, "c") })
	s.After(0.1, "a", func() { order = append(order, "a") })
	s.After(0.5, "d", func() { order = append(order, "d") })
	s.After(0.2, "b", func() { order = append(order, "b") })
	s.Advance(1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
}

func TestScheduler_Cancel(t *testing.T) {
	s := sched.New()
	var called bool
	h := s.After(0.1, "x", func() { called = true })
	require.True(t, s.Cancel(h))
	assert.False(t, s.Cancel(h), "second cancel is a no-op")
	s.Advance(1)
	assert.False(t, called)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_NestedSchedulingWithinSameAdvance(t *testing.T) {
	s := sched.New()
	var fired []float64
	s.After(0.1, "outer", func() {
		fired = append(fired, s.Now())
		s.After(0.2, "inner", func() { fired = append(fired, s.Now()) })
	})
	s.Advance(0.5)
	require.Len(t, fired, 2)
	assert.InDelta(t, 0.1, fired[0], 1e-12)
	assert.InDelta(t, 0.3, fired[1], 1e-12)
}

func TestScheduler_NoAdvanceNoFire(t *testing.T) {
	s := sched.New()
	var called bool
	s.After(0, "immediate", func() { called = true })
	assert.False(t, called, "callbacks only run inside Advance")
	s.Advance(0)
	assert.True(t, called)
}

func TestScheduler_Property_ClockMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := sched.New()
		steps := rapid.SliceOfN(rapid.Float64Range(-1, 1), 1, 50).Draw(rt, "steps")
		prev := s.Now()
		for i, d := range steps {
			if i%3 == 0 {
				s.After(d, "noise", func() {})
			}
			s.Advance(d)
			assert.GreaterOrEqual(rt, s.Now(), prev)
			prev = s.Now()
		}
	})
}
