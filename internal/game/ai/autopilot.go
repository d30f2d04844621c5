package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/geom"
	"github.com/cory-johannsen/duel/internal/game/input"
	"github.com/cory-johannsen/duel/internal/game/sched"
)

// axisThreshold is the minimum heading component that holds a direction key.
const axisThreshold = 0.3

// Autopilot plays a character through the input interface, so headless
// matches exercise the same input path as a human player.
type Autopilot struct {
	brain   *Brain
	state   *input.State
	logger  *zap.Logger
	clock   *sched.Scheduler
	self    *character.Character
	target  *character.Character
	release sched.Handle
}

// NewAutopilot returns an unbound Autopilot. Until Bind is called it holds nothing.
func NewAutopilot(profile Profile, rng dice.Source, logger *zap.Logger) *Autopilot {
	if rng == nil {
		rng = dice.NewCryptoSource()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autopilot{
		brain:  NewBrain(profile, rng),
		state:  input.NewState(),
		logger: logger.With(zap.String("autopilot", profile.ID)),
	}
}

// Bind attaches the autopilot to the clock and combatants of a match.
//
// Precondition: clock, self and target must not be nil.
func (p *Autopilot) Bind(clock *sched.Scheduler, self, target *character.Character) {
	p.clock, p.self, p.target = clock, self, target
}

// IsActionActive implements input.Source.
func (p *Autopilot) IsActionActive(a input.Action) bool { return p.state.IsActionActive(a) }

// Frame runs a decision when due and latches the resulting actions. The match
// calls it once per tick before polling.
func (p *Autopilot) Frame() {
	if p.clock != nil && !p.self.IsDead() && !p.target.IsDead() {
		if d, ok := p.brain.Decide(p.clock.Now(), p.self.Position, p.target.Position, p.self.SkillCount()); ok {
			p.apply(d)
		}
	}
	p.state.Frame()
}

func (p *Autopilot) apply(d Decision) {
	switch {
	case d.Kind.IsMove():
		p.hold(d.Direction, d.Burst)
	case d.Kind == Attack:
		p.state.Pulse(input.Attack)
	case d.Kind == Skill:
		if a, ok := input.SkillAction(d.SkillIndex); ok {
			p.state.Pulse(a)
		}
	}
	p.logger.Debug("autopilot decision", zap.Stringer("action", d.Kind), zap.Float64("distance", d.Distance))
}

// hold presses the direction keys closest to dir for burst seconds.
func (p *Autopilot) hold(dir geom.Vec3, burst float64) {
	p.releaseMovement()
	p.state.Set(input.Right, dir.X > axisThreshold)
	p.state.Set(input.Left, dir.X < -axisThreshold)
	p.state.Set(input.Back, dir.Z > axisThreshold)
	p.state.Set(input.Forward, dir.Z < -axisThreshold)
	if p.release != 0 {
		p.clock.Cancel(p.release)
	}
	p.release = p.clock.After(burst, "autopilot-release", func() {
		p.release = 0
		p.releaseMovement()
	})
}

func (p *Autopilot) releaseMovement() {
	for _, a := range []input.Action{input.Forward, input.Back, input.Left, input.Right} {
		p.state.Release(a)
	}
}
