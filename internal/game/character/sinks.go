package character

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/duel/internal/game/geom"
)

// Animation intents shared by every class. Attack and skill animations come
// from the archetype and skill definitions.
const (
	AnimIdle  = "idle"
	AnimWalk  = "walk"
	AnimBlock = "block"
	AnimJump  = "jump"
	AnimHit   = "hit"
	AnimDeath = "death"
)

// AnimationSink receives animation intents. Implementations must not call back
// into the character.
type AnimationSink interface {
	PlayAnimation(id uuid.UUID, name string)
}

// EffectRequest asks the renderer for a fire-and-forget visual effect.
type EffectRequest struct {
	Name   string
	Source uuid.UUID
	Origin geom.Vec3
	Target geom.Vec3
}

// EffectSink receives visual effect requests.
type EffectSink interface {
	SpawnEffect(req EffectRequest)
}

type nopSink struct{}

func (nopSink) PlayAnimation(uuid.UUID, string) {}
func (nopSink) SpawnEffect(EffectRequest)       {}
