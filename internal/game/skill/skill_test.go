package skill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/skill"
)

func fireball() *skill.Definition {
	return &skill.Definition{
		Name:     "Fireball",
		Cost:     25,
		Cooldown: 2,
		Effect:   skill.Effect{Kind: skill.EffectDamage, Multiplier: 2.5},
	}
}

func TestDefinition_Validate(t *testing.T) {
	assert.NoError(t, fireball().Validate())

	bad := fireball()
	bad.Name = ""
	assert.Error(t, bad.Validate())

	bad = fireball()
	bad.Effect.Kind = "teleport"
	assert.Error(t, bad.Validate())

	buff := &skill.Definition{
		Name: "Ice Barrier", Cost: 40, Cooldown: 10,
		Effect: skill.Effect{Kind: skill.EffectBuff, Multiplier: 3, Stat: skill.StatDefense},
	}
	assert.Error(t, buff.Validate(), "buff without duration is invalid")
	buff.Effect.Duration = 8
	assert.NoError(t, buff.Validate())
}

func TestSlot_Lifecycle(t *testing.T) {
	s := skill.NewSlot(fireball())
	assert.True(t, s.Ready(0))
	assert.Equal(t, 0.0, s.LastUsed())

	s.Activate(10)
	assert.Equal(t, 10.0, s.LastUsed())
	assert.False(t, s.Ready(11))
	assert.InDelta(t, 1.0, s.Remaining(11), 1e-12)

	s.Tick(11.5)
	assert.Equal(t, 10.0, s.LastUsed(), "not yet expired")

	s.Tick(12)
	assert.True(t, s.Ready(12))
	assert.Equal(t, 0.0, s.LastUsed(), "expired cooldown resets lastUsed to 0")
}

func TestSlot_ActivatedAtTimeZeroIsStillOnCooldown(t *testing.T) {
	s := skill.NewSlot(fireball())
	s.Activate(0)
	assert.False(t, s.Ready(1))
}

func TestSlot_Property_ReadyIffCooldownElapsed(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cd := rapid.Float64Range(0, 30).Draw(rt, "cooldown")
		at := rapid.Float64Range(0, 100).Draw(rt, "at")
		later := rapid.Float64Range(0, 60).Draw(rt, "later")
		s := skill.NewSlot(&skill.Definition{Name: "x", Cooldown: cd, Effect: skill.Effect{Kind: skill.EffectDamage, Multiplier: 1}})
		s.Activate(at)
		now := at + later
		assert.Equal(rt, later >= cd, s.Ready(now))
		assert.GreaterOrEqual(rt, s.Remaining(now), 0.0)
	})
}

func TestBuffSet_OnePerStat(t *testing.T) {
	set := skill.NewBuffSet()
	require.NoError(t, set.Add(&skill.Buff{Skill: "Ice Barrier", Stat: skill.StatDefense, Multiplier: 3, Original: 8}))
	assert.Error(t, set.Add(&skill.Buff{Skill: "Ice Barrier", Stat: skill.StatDefense, Multiplier: 3, Original: 24}))

	b, ok := set.Get(skill.StatDefense)
	require.True(t, ok)
	assert.Equal(t, 8.0, b.Original, "second add must not overwrite the captured original")

	require.NoError(t, set.Add(&skill.Buff{Skill: "Battle Cry", Stat: skill.StatAttackPower, Multiplier: 1.5, Original: 15}))
	assert.Len(t, set.All(), 2)

	_, ok = set.Remove(skill.StatDefense)
	assert.True(t, ok)
	assert.False(t, set.Has(skill.StatDefense))
	assert.Len(t, set.Clear(), 1)
	assert.Empty(t, set.All())
}
