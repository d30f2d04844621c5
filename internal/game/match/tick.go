package match

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/game/geom"
	"github.com/cory-johannsen/duel/internal/game/input"
)

// Tick advances the match by delta seconds.
//
// Precondition: delta >= 0.
// Postcondition: does nothing unless the match is Active and not paused.
// Advances the clock by min(delta, MaxDelta). The phases run in a fixed
// order: player input, enemy AI, character updates, boundary clamp,
// environment update, combat resolution, terminal check. Both combatants
// are inside the environment bounds when Tick returns.
func (m *Match) Tick(delta float64) {
	if m.state != Active || m.paused || delta < 0 {
		return
	}
	delta = math.Min(delta, m.cfg.MaxDelta)

	m.applyInput()
	m.enemyAI.Tick(m.player)

	m.player.Update(delta)
	m.enemy.Update(delta)

	m.clamp()
	m.env.Update(delta)

	m.clock.Advance(delta)
	if m.resolver.Separate(m.player, m.enemy) {
		m.clamp()
	}

	m.checkEnd()
}

// applyInput translates the polled action state into player operations.
// Movement follows held keys; jump, block, attack and skills fire on the
// press edge; releasing block stops blocking.
func (m *Match) applyInput() {
	if f, ok := m.input.(Framer); ok {
		f.Frame()
	}
	m.edges.Poll(m.input)
	e := &m.edges
	p := m.player

	var dir geom.Vec3
	if e.Active(input.Forward) {
		dir.Z--
	}
	if e.Active(input.Back) {
		dir.Z++
	}
	if e.Active(input.Left) {
		dir.X--
	}
	if e.Active(input.Right) {
		dir.X++
	}
	// No held direction, or opposing keys cancelling out, means stop.
	if err := p.Move(dir, 0); errors.Is(err, character.ErrZeroDirection) {
		if p.IsMoving() || p.Velocity.X != 0 || p.Velocity.Z != 0 {
			p.StopMoving()
		}
	}
	p.Face(m.enemy.Position)

	if e.Pressed(input.Jump) {
		p.Jump()
	}
	if e.Pressed(input.Block) {
		p.Block()
	} else if e.Released(input.Block) {
		p.StopBlocking()
	}
	if e.Pressed(input.Attack) {
		if dmg := p.Attack(character.AttackBasic); dmg > 0 {
			m.resolver.DeclareMelee(p, m.enemy, dmg)
		}
	}
	for i := 0; i < p.SkillCount(); i++ {
		a, ok := input.SkillAction(i)
		if !ok || !e.Pressed(a) {
			continue
		}
		if p.UseSkill(i, m.enemy) {
			m.stats.SkillsUsed++
		}
	}
}

func (m *Match) clamp() {
	m.player.Position = m.env.ClampToBounds(m.player.Position)
	m.enemy.Position = m.env.ClampToBounds(m.enemy.Position)
}

func (m *Match) checkEnd() {
	if !combat.AnyDead(m.player, m.enemy) {
		return
	}
	m.state = Ended
	m.stats.EndTime = m.clock.Now()
	outcome := Defeat
	if m.player.Health() > 0 {
		outcome = Victory
	}
	r := newResult(outcome, m.stats)
	m.result = &r
	m.logger.Info("match ended",
		zap.Stringer("outcome", outcome),
		zap.Int("duration", r.Duration),
		zap.Int("damage_dealt", r.DamageDealt),
		zap.Int("damage_taken", r.DamageTaken),
		zap.Int("skills_used", r.SkillsUsed),
	)
}
