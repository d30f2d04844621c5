package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/game/geom"
	"github.com/cory-johannsen/duel/internal/game/sched"
)

type fixture struct {
	clock    *sched.Scheduler
	resolver *combat.Resolver
	events   []combat.HitEvent
	attacker *character.Character
	defender *character.Character
}

func newFixture(t *testing.T, distance float64) *fixture {
	clock := sched.New()
	f := &fixture{clock: clock}
	f.resolver = combat.NewResolver(combat.DefaultConfig(), clock, zaptest.NewLogger(t))
	f.resolver.OnHit(func(ev combat.HitEvent) { f.events = append(f.events, ev) })
	deps := character.Deps{Clock: clock}
	f.attacker = character.New(character.WarriorArchetype(), "attacker", deps)
	f.defender = character.New(character.MageArchetype(), "defender", deps)
	f.defender.Position = geom.V(distance, 0, 0)
	return f
}

func TestDeclareMelee_LandsWithinRange(t *testing.T) {
	f := newFixture(t, 3.9)
	dmg := f.attacker.Attack(character.AttackBasic)
	require.NotZero(t, f.resolver.DeclareMelee(f.attacker, f.defender, dmg))

	f.clock.Advance(0.29)
	assert.Equal(t, 80.0, f.defender.Health(), "damage is not instantaneous")
	f.clock.Advance(0.02)
	assert.Equal(t, 68.0, f.defender.Health())

	require.Len(t, f.events, 1)
	assert.Equal(t, combat.Hit, f.events[0].Outcome)
	assert.Equal(t, 12.0, f.events[0].Dealt)
}

func TestDeclareMelee_OutOfRangeConsumesTimer(t *testing.T) {
	f := newFixture(t, 4.1)
	f.resolver.DeclareMelee(f.attacker, f.defender, f.attacker.Attack(character.AttackBasic))
	pending := f.clock.Pending()

	f.clock.Advance(0.3)
	assert.Equal(t, 80.0, f.defender.Health())
	assert.Less(t, f.clock.Pending(), pending)
	require.Len(t, f.events, 1)
	assert.Equal(t, combat.OutOfRange, f.events[0].Outcome)
}

func TestDeclareMelee_ExactlyAtRangeMisses(t *testing.T) {
	f := newFixture(t, 4)
	f.resolver.DeclareMelee(f.attacker, f.defender, 15)
	f.clock.Advance(0.3)
	assert.Equal(t, 80.0, f.defender.Health())
}

func TestDeclareMelee_RangeCheckedAtResolution(t *testing.T) {
	f := newFixture(t, 3)
	f.resolver.DeclareMelee(f.attacker, f.defender, 15)
	f.defender.Position = geom.V(6, 0, 0)

	f.clock.Advance(0.3)
	assert.Equal(t, 80.0, f.defender.Health())
}

func TestDeclareMelee_BlockNegatesFully(t *testing.T) {
	f := newFixture(t, 2)
	f.resolver.DeclareMelee(f.attacker, f.defender, 500)
	f.defender.Block()

	f.clock.Advance(0.3)
	assert.Equal(t, 80.0, f.defender.Health())
	require.Len(t, f.events, 1)
	assert.Equal(t, combat.Blocked, f.events[0].Outcome)
}

func TestDeclareMelee_DeadDefenderMissed(t *testing.T) {
	f := newFixture(t, 2)
	f.resolver.DeclareMelee(f.attacker, f.defender, 15)
	f.defender.Die()

	f.clock.Advance(0.3)
	require.Len(t, f.events, 1)
	assert.Equal(t, combat.Missed, f.events[0].Outcome)
}

func TestDeclareMelee_RefusedAttackSchedulesNothing(t *testing.T) {
	f := newFixture(t, 2)
	f.attacker.Attack(character.AttackBasic)
	dmg := f.attacker.Attack(character.AttackBasic)
	pending := f.clock.Pending()

	assert.Zero(t, f.resolver.DeclareMelee(f.attacker, f.defender, dmg))
	assert.Equal(t, pending, f.clock.Pending())
	assert.Zero(t, f.resolver.DeclareMelee(nil, f.defender, 10))
}

func TestDeclareMelee_Property_RangeGate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dist := rapid.Float64Range(0, 10).Draw(rt, "distance")
		dmg := rapid.Float64Range(1, 200).Draw(rt, "damage")
		clock := sched.New()
		r := combat.NewResolver(combat.DefaultConfig(), clock, nil)
		deps := character.Deps{Clock: clock}
		a := character.New(character.WarriorArchetype(), "a", deps)
		d := character.New(character.MageArchetype(), "d", deps)
		d.Position = geom.V(0, 0, dist)

		r.DeclareMelee(a, d, dmg)
		clock.Advance(0.3)

		if dist < 4 {
			assert.Less(rt, d.Health(), 80.0)
		} else {
			assert.Equal(rt, 80.0, d.Health())
		}
	})
}

func TestSeparate_PushesApartAlongAxis(t *testing.T) {
	f := newFixture(t, 0.5)
	require.True(t, f.resolver.Separate(f.attacker, f.defender))

	assert.InDelta(t, -0.1, f.attacker.Position.X, 1e-12)
	assert.InDelta(t, 0.6, f.defender.Position.X, 1e-12)
}

func TestSeparate_CoincidentUsesPositiveX(t *testing.T) {
	f := newFixture(t, 0)
	require.True(t, f.resolver.Separate(f.attacker, f.defender))
	assert.InDelta(t, 0.1, f.attacker.Position.X, 1e-12)
	assert.InDelta(t, -0.1, f.defender.Position.X, 1e-12)
}

func TestSeparate_NoOverlapNoPush(t *testing.T) {
	f := newFixture(t, 3)
	assert.False(t, f.resolver.Separate(f.attacker, f.defender))
	assert.Equal(t, geom.Zero, f.attacker.Position)
}

func TestAnyDead(t *testing.T) {
	f := newFixture(t, 1)
	assert.False(t, combat.AnyDead(f.attacker, f.defender))
	f.defender.TakeDamage(1000)
	assert.True(t, combat.AnyDead(f.attacker, f.defender))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "hit", combat.Hit.String())
	assert.Equal(t, "blocked", combat.Blocked.String())
	assert.Equal(t, "out of range", combat.OutOfRange.String())
	assert.Equal(t, "missed", combat.Missed.String())
	assert.Equal(t, "unknown", combat.Outcome(42).String())
}
