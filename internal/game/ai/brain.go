package ai

import (
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/geom"
)

// Kind is the action chosen at a decision tick.
type Kind int

const (
	ActionNone Kind = iota
	MoveToward
	MoveAway
	Strafe
	Attack
	Skill
)

// String returns a human-readable action label.
func (k Kind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case MoveToward:
		return "move_toward"
	case MoveAway:
		return "move_away"
	case Strafe:
		return "strafe"
	case Attack:
		return "attack"
	case Skill:
		return "skill"
	default:
		return "unknown"
	}
}

// IsMove reports whether k is a movement burst.
func (k Kind) IsMove() bool { return k == MoveToward || k == MoveAway || k == Strafe }

// Decision is the outcome of one decision tick.
type Decision struct {
	Kind Kind
	// Direction is the unit horizontal heading for movement kinds.
	Direction geom.Vec3
	// Burst is how long a movement lasts before stopping.
	Burst      float64
	SkillIndex int
	Distance   float64
	At         float64
	// Success reports whether an attack or skill actually started.
	Success bool
}

// Brain is the decision loop shared by the enemy driver and the autopilot.
// It only chooses; executing the choice is the caller's job.
type Brain struct {
	profile Profile
	rng     dice.Source
	next    float64
}

// NewBrain returns a Brain ready to decide at time 0.
//
// Precondition: profile must pass Validate; rng must not be nil.
func NewBrain(profile Profile, rng dice.Source) *Brain {
	return &Brain{profile: profile, rng: rng}
}

// Profile returns the tuning in use.
func (b *Brain) Profile() Profile { return b.profile }

// NextActionTime returns the earliest time the next decision may be made.
func (b *Brain) NextActionTime() float64 { return b.next }

// Decide makes a decision at now for an actor at self facing a target at
// target with skills skill slots.
//
// Postcondition: returns false and draws nothing when now < NextActionTime().
// Otherwise NextActionTime() is now + DecisionCooldown*(0.5+r) for r in [0,1),
// and a target beyond FarThreshold always yields MoveToward.
func (b *Brain) Decide(now float64, self, target geom.Vec3, skills int) (Decision, bool) {
	if now < b.next {
		return Decision{}, false
	}
	p := b.profile
	b.next = now + p.DecisionCooldown*(0.5+b.rng.Float64())

	dist := self.Dist(target)
	flat := target.Sub(self)
	flat.Y = 0
	toward := flat.Normalize()

	d := Decision{At: now, Distance: dist}
	switch {
	case dist > p.FarThreshold:
		d.Kind = MoveToward
	case dist < p.NearThreshold:
		d.Kind = MoveAway
	default:
		r := b.rng.Float64()
		switch {
		case r < p.Weights.Move:
			d.Kind = b.pickMove()
		case r < p.Weights.Move+p.Weights.Attack:
			d.Kind = Attack
		default:
			d.Kind = Skill
		}
	}

	switch d.Kind {
	case MoveToward:
		d.Direction = toward
	case MoveAway:
		d.Direction = toward.Neg()
	case Strafe:
		side := toward.Perp()
		if b.rng.Float64() >= 0.5 {
			side = side.Neg()
		}
		d.Direction = side
	case Skill:
		if skills <= 0 {
			d.Kind = ActionNone
			return d, true
		}
		d.SkillIndex = b.rng.Intn(skills)
	}
	if d.Kind.IsMove() {
		d.Burst = dice.Between(b.rng, p.BurstMin, p.BurstMax)
	}
	return d, true
}

func (b *Brain) pickMove() Kind {
	m := b.profile.MoveMix
	r := b.rng.Float64()
	switch {
	case r < m.Toward:
		return MoveToward
	case r < m.Toward+m.Away:
		return MoveAway
	default:
		return Strafe
	}
}
