// Package match orchestrates one duel: it owns both combatants, the
// simulation clock and the enemy AI, and advances them in a fixed order each
// tick until one side falls.
//
// A Match is not safe for concurrent use. The frame driver's goroutine is
// its only caller.
package match

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/ai"
	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/environment"
	"github.com/cory-johannsen/duel/internal/game/geom"
	"github.com/cory-johannsen/duel/internal/game/input"
	"github.com/cory-johannsen/duel/internal/game/sched"
)

var (
	// ErrMatchEnded is returned when an operation needs a match that has not ended.
	ErrMatchEnded = errors.New("match has ended")
	// ErrAlreadyStarted is returned by Start on an active match.
	ErrAlreadyStarted = errors.New("match already started")
)

// State is the match lifecycle phase.
type State int

const (
	Setup State = iota
	Active
	Ended
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case Setup:
		return "setup"
	case Active:
		return "active"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Starting positions. The player stands on -X facing +X; the enemy mirrors it.
var (
	PlayerStart = geom.V(-5, 0, 0)
	EnemyStart  = geom.V(5, 0, 0)
)

// FightBannerDuration is how long the "Fight!" banner shows after Start.
const FightBannerDuration = 2.0

// Environment is the boundary collaborator. It is owned outside the match.
type Environment interface {
	ClampToBounds(p geom.Vec3) geom.Vec3
	Update(delta float64)
	// Wind returns the cosmetic sway offset a renderer applies to foliage.
	Wind() geom.Vec3
}

// Framer is implemented by input sources that latch their state once per tick.
type Framer interface {
	Frame()
}

// Config selects the combatants and tuning for one match.
type Config struct {
	PlayerClass character.Class
	// EnemyClass defaults to the player's opponent class when empty.
	EnemyClass character.Class
	PlayerName string
	// MaxDelta caps the seconds a single Tick may advance.
	MaxDelta float64
	Combat   combat.Config
	AI       ai.Profile
}

// DefaultConfig returns a Warrior-versus-Mage match with standard tuning.
func DefaultConfig() Config {
	return Config{
		PlayerClass: character.Warrior,
		PlayerName:  "Player",
		MaxDelta:    0.1,
		Combat:      combat.DefaultConfig(),
		AI:          ai.DefaultProfile(),
	}
}

// Deps are the collaborators a match is built with.
type Deps struct {
	// Archetypes defaults to character.DefaultRegistry().
	Archetypes *character.Registry
	// Environment defaults to the arena preset.
	Environment Environment
	// Input defaults to an idle input.State.
	Input      input.Source
	Rand       dice.Source
	Logger     *zap.Logger
	Animations character.AnimationSink
}

// Match is one duel between the player and an AI-driven enemy.
type Match struct {
	ID uuid.UUID

	cfg      Config
	state    State
	paused   bool
	clock    *sched.Scheduler
	env      Environment
	player   *character.Character
	enemy    *character.Character
	enemyAI  *ai.EnemyAI
	resolver *combat.Resolver
	input    input.Source
	edges    input.Edges
	stats    Stats
	result   *Result
	effects  []character.EffectRequest
	logger   *zap.Logger
}

// New wires a match in the Setup state.
//
// Precondition: cfg.MaxDelta > 0 and cfg.AI must pass Validate.
// Postcondition: Returns a match with both combatants at their start
// positions, or an error wrapping character.ErrUnknownArchetype.
func New(cfg Config, deps Deps) (*Match, error) {
	if cfg.MaxDelta <= 0 {
		return nil, fmt.Errorf("match: max delta must be > 0, got %v", cfg.MaxDelta)
	}
	if err := cfg.AI.Validate(); err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	if deps.Archetypes == nil {
		deps.Archetypes = character.DefaultRegistry()
	}
	if deps.Environment == nil {
		deps.Environment = environment.Arena()
	}
	if deps.Input == nil {
		deps.Input = input.NewState()
	}
	if deps.Rand == nil {
		deps.Rand = dice.NewCryptoSource()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.EnemyClass == "" {
		cfg.EnemyClass = deps.Archetypes.Opponent(cfg.PlayerClass)
	}
	playerArch, err := deps.Archetypes.Get(cfg.PlayerClass)
	if err != nil {
		return nil, fmt.Errorf("match: player: %w", err)
	}
	enemyArch, err := deps.Archetypes.Get(cfg.EnemyClass)
	if err != nil {
		return nil, fmt.Errorf("match: enemy: %w", err)
	}

	m := &Match{
		ID:     uuid.New(),
		cfg:    cfg,
		clock:  sched.New(),
		env:    deps.Environment,
		input:  deps.Input,
		logger: deps.Logger,
	}
	m.logger = m.logger.With(zap.String("match", m.ID.String()))
	m.clock.OnFired(func(label string, at float64) {
		m.logger.Debug("deferred fired", zap.String("label", label), zap.Float64("at", at))
	})

	charDeps := character.Deps{
		Clock:      m.clock,
		Rand:       deps.Rand,
		Logger:     m.logger,
		Animations: deps.Animations,
		Effects:    m,
	}
	m.player = character.New(playerArch, cfg.PlayerName, charDeps)
	m.player.Position = PlayerStart
	m.player.Yaw = math.Pi / 2
	m.enemy = character.New(enemyArch, enemyArch.Name, charDeps)
	m.enemy.Position = EnemyStart
	m.enemy.Yaw = -math.Pi / 2

	m.player.OnDamaged(func(_ *character.Character, dealt float64) { m.stats.DamageTaken += dealt })
	m.enemy.OnDamaged(func(_ *character.Character, dealt float64) { m.stats.DamageDealt += dealt })

	m.resolver = combat.NewResolver(cfg.Combat, m.clock, m.logger)
	m.resolver.OnHit(m.recordHit)
	m.enemyAI = ai.NewEnemyAI(m.enemy, cfg.AI, ai.Deps{
		Clock:  m.clock,
		Rand:   deps.Rand,
		Melee:  m.resolver,
		Logger: m.logger,
	})
	return m, nil
}

// Start records the start time and enters Active.
//
// Postcondition: returns ErrMatchEnded after the match ended and
// ErrAlreadyStarted when already active.
func (m *Match) Start() error {
	switch m.state {
	case Ended:
		return ErrMatchEnded
	case Active:
		return ErrAlreadyStarted
	}
	m.state = Active
	m.stats.StartTime = m.clock.Now()
	m.logger.Info("Fight!",
		zap.String("player", string(m.player.Class())),
		zap.String("enemy", string(m.enemy.Class())),
	)
	return nil
}

// Pause freezes the match: ticks neither advance time nor fire deferred callbacks.
func (m *Match) Pause() {
	if m.state == Active && !m.paused {
		m.paused = true
		m.logger.Debug("paused", zap.Float64("at", m.clock.Now()))
	}
}

// Resume continues from the frozen clock. Nothing missed while paused is replayed.
func (m *Match) Resume() {
	if m.paused {
		m.paused = false
		m.logger.Debug("resumed", zap.Float64("at", m.clock.Now()))
	}
}

func (m *Match) State() State                 { return m.state }
func (m *Match) Paused() bool                 { return m.paused }
func (m *Match) Now() float64                 { return m.clock.Now() }
func (m *Match) Clock() *sched.Scheduler      { return m.clock }
func (m *Match) Player() *character.Character { return m.player }
func (m *Match) Enemy() *character.Character  { return m.enemy }
func (m *Match) Stats() Stats                 { return m.stats }

// Result returns the outcome once the match has ended.
func (m *Match) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// Close tears the match down. Pending timers are cancelled, buffs are
// stripped from both combatants and queued effects are discarded. An
// unfinished match ends without a result. Calling Close again is a no-op.
//
// Postcondition: State() == Ended; Clock().Pending() == 0.
func (m *Match) Close() {
	cancelled := m.clock.CancelAll()
	m.player.ClearBuffs()
	m.enemy.ClearBuffs()
	m.effects = nil
	if m.state == Ended && cancelled == 0 {
		return
	}
	m.state = Ended
	m.logger.Info("match closed", zap.Int("cancelled_timers", cancelled))
}

// SpawnEffect implements character.EffectSink by queueing the request for the renderer.
func (m *Match) SpawnEffect(req character.EffectRequest) {
	m.effects = append(m.effects, req)
}

// DrainEffects returns the visual effect requests queued since the last drain.
func (m *Match) DrainEffects() []character.EffectRequest {
	out := m.effects
	m.effects = nil
	return out
}

func (m *Match) recordHit(ev combat.HitEvent) {
	switch ev.Outcome {
	case combat.Hit:
		m.stats.MeleeHits++
	case combat.Blocked:
		m.stats.MeleeBlocked++
	}
}
