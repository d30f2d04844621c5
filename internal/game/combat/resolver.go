package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/geom"
	"github.com/cory-johannsen/duel/internal/game/sched"
)

// Resolver schedules and resolves basic melee hits on the shared simulation clock.
// It is not safe for concurrent use.
type Resolver struct {
	cfg    Config
	clock  *sched.Scheduler
	logger *zap.Logger
	onHit  func(HitEvent)
}

// NewResolver creates a Resolver.
//
// Precondition: clock must not be nil.
func NewResolver(cfg Config, clock *sched.Scheduler, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cfg: cfg, clock: clock, logger: logger}
}

// Config returns the resolver's configuration.
func (r *Resolver) Config() Config { return r.cfg }

// OnHit registers the observer invoked for every resolved hit. Nil disables it.
func (r *Resolver) OnHit(fn func(HitEvent)) { r.onHit = fn }

// DeclareMelee schedules attacker's basic hit on defender MeleeDelay seconds
// from now. Range, death and blocking are evaluated when the hit resolves.
//
// Postcondition: Returns 0 and schedules nothing when damage <= 0 or either
// side is nil; otherwise returns the handle of the pending hit.
func (r *Resolver) DeclareMelee(attacker, defender *character.Character, damage float64) sched.Handle {
	if attacker == nil || defender == nil || damage <= 0 {
		return 0
	}
	return r.clock.After(r.cfg.MeleeDelay, "melee-hit", func() {
		r.resolve(attacker, defender, damage)
	})
}

func (r *Resolver) resolve(attacker, defender *character.Character, damage float64) {
	ev := HitEvent{
		Attacker: attacker.ID,
		Defender: defender.ID,
		Damage:   damage,
		Distance: attacker.Position.Dist(defender.Position),
		At:       r.clock.Now(),
	}
	switch {
	case attacker.IsDead() || defender.IsDead():
		ev.Outcome = Missed
	case ev.Distance >= r.cfg.MeleeRange:
		ev.Outcome = OutOfRange
	case defender.IsBlocking():
		ev.Outcome = Blocked
	default:
		before := defender.Health()
		defender.TakeDamage(damage)
		ev.Dealt = before - defender.Health()
		ev.Outcome = Hit
	}
	r.logger.Debug("melee resolved",
		zap.String("attacker", attacker.Name),
		zap.String("defender", defender.Name),
		zap.Stringer("outcome", ev.Outcome),
		zap.Float64("distance", ev.Distance),
		zap.Float64("dealt", ev.Dealt),
	)
	if r.onHit != nil {
		r.onHit(ev)
	}
}

// Separate pushes a and b apart by SeparationDistance each along the b→a axis
// when their hitboxes overlap. Coincident positions separate along +X.
//
// Postcondition: Returns true iff the hitboxes overlapped and were pushed.
func (r *Resolver) Separate(a, b *character.Character) bool {
	if !a.Hitbox().Intersects(b.Hitbox()) {
		return false
	}
	dir := a.Position.Sub(b.Position).Normalize()
	if dir == geom.Zero {
		dir = geom.V(1, 0, 0)
	}
	push := dir.Scale(r.cfg.SeparationDistance)
	a.Position = a.Position.Add(push)
	b.Position = b.Position.Sub(push)
	return true
}

// AnyDead reports whether any of cs has reached zero health.
func AnyDead(cs ...*character.Character) bool {
	for _, c := range cs {
		if c.Health() <= 0 {
			return true
		}
	}
	return false
}
