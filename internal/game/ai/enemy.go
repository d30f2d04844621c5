package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/sched"
)

// MeleeDeclarer schedules a basic melee hit.
type MeleeDeclarer interface {
	DeclareMelee(attacker, defender *character.Character, damage float64) sched.Handle
}

// Deps are the collaborators an EnemyAI needs.
type Deps struct {
	Clock  *sched.Scheduler
	Rand   dice.Source
	Melee  MeleeDeclarer
	Logger *zap.Logger
}

// EnemyAI drives one character with a Brain, executing each decision directly
// on the character.
type EnemyAI struct {
	self   *character.Character
	brain  *Brain
	clock  *sched.Scheduler
	melee  MeleeDeclarer
	logger *zap.Logger
	stop   sched.Handle
}

// NewEnemyAI binds a decision loop to self.
//
// Precondition: self, deps.Clock and deps.Melee must not be nil; profile must pass Validate.
func NewEnemyAI(self *character.Character, profile Profile, deps Deps) *EnemyAI {
	if deps.Rand == nil {
		deps.Rand = dice.NewCryptoSource()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &EnemyAI{
		self:   self,
		brain:  NewBrain(profile, deps.Rand),
		clock:  deps.Clock,
		melee:  deps.Melee,
		logger: deps.Logger.With(zap.String("ai", profile.ID), zap.String("character", self.Name)),
	}
}

// NextActionTime returns the earliest time of the next decision.
func (a *EnemyAI) NextActionTime() float64 { return a.brain.NextActionTime() }

// Tick runs one decision if it is due and executes it against target.
//
// Postcondition: returns a Decision with Kind ActionNone when no decision was
// due, or when either side is dead.
func (a *EnemyAI) Tick(target *character.Character) Decision {
	if a.self.IsDead() || target == nil || target.IsDead() {
		return Decision{}
	}
	d, ok := a.brain.Decide(a.clock.Now(), a.self.Position, target.Position, a.self.SkillCount())
	if !ok {
		return Decision{}
	}
	a.self.Face(target.Position)

	switch {
	case d.Kind.IsMove():
		d.Success = a.burst(d)
	case d.Kind == Attack:
		dmg := a.self.Attack(character.AttackBasic)
		if dmg > 0 {
			a.melee.DeclareMelee(a.self, target, dmg)
			d.Success = true
		}
	case d.Kind == Skill:
		d.Success = a.self.UseSkill(d.SkillIndex, target)
	}
	a.logger.Debug("ai decision",
		zap.Stringer("action", d.Kind),
		zap.Float64("distance", d.Distance),
		zap.Int("skill", d.SkillIndex),
		zap.Bool("success", d.Success),
		zap.Float64("next", a.brain.NextActionTime()),
	)
	return d
}

// burst starts moving along d.Direction and stops after d.Burst seconds. A new
// burst replaces the pending stop of the previous one.
func (a *EnemyAI) burst(d Decision) bool {
	if err := a.self.Move(d.Direction, 0); err != nil {
		a.logger.Debug("ai move skipped", zap.Error(err))
		return false
	}
	if a.stop != 0 {
		a.clock.Cancel(a.stop)
	}
	a.stop = a.clock.After(d.Burst, "ai-stop", func() {
		a.stop = 0
		a.self.StopMoving()
	})
	return true
}
