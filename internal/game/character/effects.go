package character

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/geom"
	"github.com/cory-johannsen/duel/internal/game/skill"
)

// applyEffect interprets def.Effect on behalf of c.
//
// Precondition: targets contains only living characters and is non-empty for damage effects.
// Postcondition: Returns true when the effect was started.
func (c *Character) applyEffect(def *skill.Definition, targets []*Character) bool {
	e := def.Effect
	c.animate(e.Animation)
	if e.LockFor > 0 {
		c.lock(e.LockFor)
	}
	switch e.Kind {
	case skill.EffectDamage:
		if e.Area {
			return c.applyAreaDamage(def, targets)
		}
		return c.applySingleDamage(def, targets[0])
	case skill.EffectBuff:
		return c.applyBuff(def)
	default:
		c.logger.Error("unknown effect kind", zap.String("skill", def.Name), zap.String("kind", string(e.Kind)))
		return false
	}
}

// applySingleDamage lands attackPower*multiplier on t after the effect delay.
// Projectiles travel at ProjectileSpeed and are range-gated at cast; other
// single-target effects are range-gated when they land.
func (c *Character) applySingleDamage(def *skill.Definition, t *Character) bool {
	e := def.Effect
	dmg := c.attackPower * e.Multiplier
	c.spawn(e.Visual, c.Position, t.Position)

	if e.ProjectileSpeed > 0 {
		dist := c.Position.Dist(t.Position)
		if e.Radius > 0 && dist > e.Radius {
			c.logger.Debug("projectile out of range", zap.String("skill", def.Name), zap.Float64("distance", dist))
			return true
		}
		c.clock.After(e.Delay+dist/e.ProjectileSpeed, def.Name, func() {
			c.strike(t, dmg, e.ImpactVisual)
		})
		return true
	}

	c.clock.After(e.Delay, def.Name, func() {
		if e.Radius > 0 && c.Position.Dist(t.Position) > e.Radius {
			return
		}
		c.strike(t, dmg, e.ImpactVisual)
	})
	return true
}

// applyAreaDamage checks every target independently against Radius when the
// effect lands. Jitter staggers each hit by a random extra delay.
func (c *Character) applyAreaDamage(def *skill.Definition, targets []*Character) bool {
	e := def.Effect
	dmg := c.attackPower * e.Multiplier
	c.spawn(e.Visual, c.Position, c.Position)

	c.clock.After(e.Delay, def.Name, func() {
		for _, t := range targets {
			if t.dead {
				continue
			}
			if e.Radius > 0 && c.Position.Dist(t.Position) > e.Radius {
				continue
			}
			if e.Jitter <= 0 {
				c.strike(t, dmg, e.ImpactVisual)
				continue
			}
			c.spawn(e.ImpactVisual, t.Position.Add(geom.V(0, 5, 0)), t.Position)
			target := t
			c.clock.After(c.rng.Float64()*e.Jitter, def.Name, func() {
				c.strike(target, dmg, "")
			})
		}
	})
	return true
}

func (c *Character) strike(t *Character, dmg float64, impact string) {
	if t.dead {
		return
	}
	c.spawn(impact, t.Position, t.Position)
	t.TakeDamage(dmg)
}

// applyBuff multiplies the buffed stat and restores the value captured at cast
// once Duration elapses.
func (c *Character) applyBuff(def *skill.Definition) bool {
	e := def.Effect
	b := &skill.Buff{
		Skill:      def.Name,
		Stat:       e.Stat,
		Multiplier: e.Multiplier,
		Original:   c.stat(e.Stat),
		ExpiresAt:  c.clock.Now() + e.Duration,
	}
	if err := c.buffs.Add(b); err != nil {
		c.logger.Debug("buff refused", zap.Error(err))
		return false
	}
	c.setStat(e.Stat, b.Original*e.Multiplier)
	c.spawn(e.Visual, c.Position, c.Position)
	c.clock.After(e.Duration, def.Name+" expiry", func() {
		if active, ok := c.buffs.Get(e.Stat); ok && active == b {
			c.buffs.Remove(e.Stat)
			c.setStat(e.Stat, active.Original)
		}
	})
	return true
}

// ClearBuffs removes every active buff, restoring each stat to its value at cast.
//
// Postcondition: ActiveBuffs() is empty.
func (c *Character) ClearBuffs() {
	for _, b := range c.buffs.Clear() {
		c.setStat(b.Stat, b.Original)
	}
}

// ActiveBuffs returns the buffs currently applied to c.
func (c *Character) ActiveBuffs() []*skill.Buff { return c.buffs.All() }

func (c *Character) stat(s skill.Stat) float64 {
	switch s {
	case skill.StatAttackPower:
		return c.attackPower
	case skill.StatDefense:
		return c.defense
	}
	return 0
}

func (c *Character) setStat(s skill.Stat, v float64) {
	switch s {
	case skill.StatAttackPower:
		c.attackPower = v
	case skill.StatDefense:
		c.defense = v
	}
}
