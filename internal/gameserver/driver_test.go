package gameserver_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/input"
	"github.com/cory-johannsen/duel/internal/game/match"
	"github.com/cory-johannsen/duel/internal/gameserver"
)

// fakeSim ends after endAfter ticks when endAfter > 0.
type fakeSim struct {
	mu       sync.Mutex
	deltas   []float64
	paused   bool
	endAfter int
	ended    bool
}

func (f *fakeSim) Tick(delta float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.paused || f.ended {
		return
	}
	f.deltas = append(f.deltas, delta)
	if f.endAfter > 0 && len(f.deltas) >= f.endAfter {
		f.ended = true
	}
}

func (f *fakeSim) Pause()  { f.mu.Lock(); f.paused = true; f.mu.Unlock() }
func (f *fakeSim) Resume() { f.mu.Lock(); f.paused = false; f.mu.Unlock() }

func (f *fakeSim) State() match.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ended {
		return match.Ended
	}
	return match.Active
}

func (f *fakeSim) Result() (match.Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ended {
		return match.Result{}, false
	}
	return match.Result{Outcome: match.Victory, Duration: 3}, true
}

func (f *fakeSim) Snapshot() match.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return match.Snapshot{Paused: f.paused}
}

func (f *fakeSim) DrainEffects() []character.EffectRequest { return nil }

func (f *fakeSim) tickCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deltas)
}

// steppedClock advances by step on every read.
type steppedClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *steppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func TestDriverConfig_Validate(t *testing.T) {
	assert.NoError(t, gameserver.DriverConfig{FrameRate: 60, MaxDelta: 0.1}.Validate())
	assert.Error(t, gameserver.DriverConfig{FrameRate: 0, MaxDelta: 0.1}.Validate())
	assert.Error(t, gameserver.DriverConfig{FrameRate: 60, MaxDelta: 0}.Validate())
}

func TestNewFrameDriver_RejectsInvalidConfig(t *testing.T) {
	_, err := gameserver.NewFrameDriver(&fakeSim{}, gameserver.DriverConfig{}, nil)
	assert.Error(t, err)
}

func TestFrameDriver_DeliversResultWhenSimulationEnds(t *testing.T) {
	sim := &fakeSim{endAfter: 3}
	d, err := gameserver.NewFrameDriver(sim, gameserver.DriverConfig{FrameRate: 500, MaxDelta: 0.1}, zaptest.NewLogger(t))
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- d.Run(context.Background()) }()

	select {
	case r, ok := <-d.Done():
		require.True(t, ok)
		assert.Equal(t, match.Victory, r.Outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for result")
	}
	require.NoError(t, <-errc)
	assert.Equal(t, 3, sim.tickCount())
	assert.Equal(t, uint64(3), d.Frames())
}

func TestFrameDriver_StopsOnContextCancel(t *testing.T) {
	sim := &fakeSim{}
	d, err := gameserver.NewFrameDriver(sim, gameserver.DriverConfig{FrameRate: 500, MaxDelta: 0.1}, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()
	cancel()

	select {
	case _, ok := <-d.Done():
		assert.False(t, ok, "no result when cancelled")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for driver to stop")
	}
	assert.NoError(t, <-errc)

	// Commands after stop must not block.
	d.Pause()
	d.Resume()
}

func TestFrameDriver_CapsDelta(t *testing.T) {
	sim := &fakeSim{endAfter: 5}
	clk := &steppedClock{t: time.Unix(0, 0), step: time.Second}
	d, err := gameserver.NewFrameDriver(sim, gameserver.DriverConfig{FrameRate: 500, MaxDelta: 0.1}, nil,
		gameserver.WithNow(clk.Now))
	require.NoError(t, err)
	require.NoError(t, d.Run(context.Background()))

	sim.mu.Lock()
	defer sim.mu.Unlock()
	require.Len(t, sim.deltas, 5)
	for _, delta := range sim.deltas {
		assert.Equal(t, 0.1, delta)
	}
}

func TestFrameDriver_PassesMeasuredDelta(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		stepMs := rapid.IntRange(1, 99).Draw(rt, "step_ms")
		sim := &fakeSim{endAfter: 2}
		clk := &steppedClock{t: time.Unix(0, 0), step: time.Duration(stepMs) * time.Millisecond}
		d, err := gameserver.NewFrameDriver(sim, gameserver.DriverConfig{FrameRate: 1000, MaxDelta: 0.1}, nil,
			gameserver.WithNow(clk.Now))
		require.NoError(rt, err)
		require.NoError(rt, d.Run(context.Background()))

		sim.mu.Lock()
		defer sim.mu.Unlock()
		for _, delta := range sim.deltas {
			assert.InDelta(rt, float64(stepMs)/1000, delta, 1e-9)
		}
	})
}

func TestFrameDriver_PauseStopsTicks(t *testing.T) {
	sim := &fakeSim{}
	d, err := gameserver.NewFrameDriver(sim, gameserver.DriverConfig{FrameRate: 500, MaxDelta: 0.1}, zaptest.NewLogger(t))
	require.NoError(t, err)

	snaps := make(chan match.Snapshot, 64)
	d.Subscribe(snaps)
	defer d.Unsubscribe(snaps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	d.Pause()
	require.Eventually(t, func() bool {
		select {
		case s := <-snaps:
			return s.Paused
		default:
			return false
		}
	}, 2*time.Second, time.Millisecond)

	frozen := d.Frames()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frozen, d.Frames())

	d.Resume()
	require.Eventually(t, func() bool { return d.Frames() > frozen }, 2*time.Second, time.Millisecond)
}

func TestFrameDriver_DeliversEffectRequests(t *testing.T) {
	cfg := match.DefaultConfig()
	cfg.PlayerClass = character.Mage
	keys := input.NewState()
	m, err := match.New(cfg, match.Deps{
		Input:  keys,
		Rand:   &dice.Fixed{Floats: []float64{0.5}},
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	require.NoError(t, m.Start())
	caster := m.Player().ID
	keys.Pulse(input.Skill1)

	d, err := gameserver.NewFrameDriver(m, gameserver.DriverConfig{FrameRate: 500, MaxDelta: 0.1}, zaptest.NewLogger(t))
	require.NoError(t, err)
	snaps := make(chan match.Snapshot, 64)
	d.Subscribe(snaps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	var fireballs int
	deadline := time.After(2 * time.Second)
	for fireballs == 0 {
		select {
		case s := <-snaps:
			for _, e := range s.Effects {
				if e.Name == "fireball" {
					assert.Equal(t, caster, e.Source)
					fireballs++
				}
			}
		case <-deadline:
			t.Fatal("timeout waiting for fireball effect")
		}
	}

	// Each request is delivered once.
	for i := 0; i < 10; i++ {
		select {
		case s := <-snaps:
			for _, e := range s.Effects {
				assert.NotEqual(t, "fireball", e.Name)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for snapshot")
		}
	}
}
