package match

import (
	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/geom"
)

// Snapshot is the read-only state a HUD renders each tick.
type Snapshot struct {
	State   State
	Paused  bool
	Time    float64
	Player  character.View
	Enemy   character.View
	Banner  string
	Outcome Outcome
	Wind    geom.Vec3
	// Effects holds the visual effect requests raised since the previous
	// published snapshot. Snapshot leaves it empty; the publisher fills it
	// from DrainEffects so each request is delivered once.
	Effects []character.EffectRequest
}

// Snapshot captures the current match state.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		State:  m.state,
		Paused: m.paused,
		Time:   m.clock.Now(),
		Player: m.player.View(),
		Enemy:  m.enemy.View(),
		Wind:   m.env.Wind(),
	}
	if m.state == Active && s.Time-m.stats.StartTime < FightBannerDuration {
		s.Banner = "Fight!"
	}
	if m.result != nil {
		s.Outcome = m.result.Outcome
	}
	return s
}
