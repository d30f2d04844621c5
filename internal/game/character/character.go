// Package character holds the per-combatant state machine: vitals, class
// resource, movement and action flags, skill slots and buffs.
//
// A Character never reads wall-clock time. Every "now" comes from the shared
// simulation scheduler and every delayed transition is a scheduled callback.
package character

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/geom"
	"github.com/cory-johannsen/duel/internal/game/sched"
	"github.com/cory-johannsen/duel/internal/game/skill"
)

// ErrZeroDirection is returned by Move for a zero-length direction; callers
// wanting to halt must use StopMoving.
var ErrZeroDirection = errors.New("move direction has zero length")

// ErrInvalidSkillIndex is logged when UseSkill is called with an out-of-range index.
var ErrInvalidSkillIndex = errors.New("invalid skill index")

const (
	// JumpImpulse is the upward velocity applied by Jump.
	JumpImpulse = 10.0
	// JumpDuration is how long a jump lasts before the character lands.
	JumpDuration = 1.0
	// FaceThreshold is the minimum displacement for Face to change yaw.
	FaceThreshold = 0.1
)

// AttackKind selects the attack animation; only AttackBasic uses the class override.
type AttackKind string

const AttackBasic AttackKind = "basic"

// Deps are the collaborators a Character needs.
type Deps struct {
	// Clock is required; it supplies now and runs every deferred transition.
	Clock *sched.Scheduler
	// Rand drives per-target jitter. Nil means a crypto source.
	Rand       dice.Source
	Logger     *zap.Logger
	Animations AnimationSink
	Effects    EffectSink
}

// Character is one combatant.
//
// Invariant: 0 <= Health() <= MaxHealth(); 0 <= Resource() <= MaxResource().
// Invariant: IsAttacking() and IsBlocking() are never both entered from the other.
type Character struct {
	ID   uuid.UUID
	Name string

	// Position, Velocity and Yaw are mutated by the match for clamping and separation.
	Position geom.Vec3
	Velocity geom.Vec3
	Yaw      float64

	arch        *Archetype
	health      float64
	maxHealth   float64
	attackPower float64
	defense     float64
	speed       float64
	resource    float64
	maxResource float64

	moving    bool
	attacking bool
	blocking  bool
	jumping   bool
	dead      bool
	anim      string

	slots []*skill.Slot
	buffs *skill.BuffSet

	lockHandle sched.Handle
	jumpHandle sched.Handle

	clock      *sched.Scheduler
	rng        dice.Source
	logger     *zap.Logger
	animations AnimationSink
	effects    EffectSink
	onDamaged  func(c *Character, dealt float64)
}

// New builds a Character at full health from arch.
//
// Precondition: arch must have passed Validate; deps.Clock must not be nil.
// Postcondition: Returns an idle, living Character with every skill ready.
func New(arch *Archetype, name string, deps Deps) *Character {
	if name == "" {
		name = arch.Name
	}
	c := &Character{
		ID:          uuid.New(),
		Name:        name,
		arch:        arch,
		health:      arch.MaxHealth,
		maxHealth:   arch.MaxHealth,
		attackPower: arch.AttackPower,
		defense:     arch.Defense,
		speed:       arch.Speed,
		resource:    arch.StartResource,
		maxResource: arch.MaxResource,
		anim:        AnimIdle,
		buffs:       skill.NewBuffSet(),
		clock:       deps.Clock,
		rng:         deps.Rand,
		logger:      deps.Logger,
		animations:  deps.Animations,
		effects:     deps.Effects,
	}
	if c.rng == nil {
		c.rng = dice.NewCryptoSource()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.animations == nil {
		c.animations = nopSink{}
	}
	if c.effects == nil {
		c.effects = nopSink{}
	}
	c.logger = c.logger.With(zap.String("character", name), zap.String("class", string(arch.Class)))
	c.slots = make([]*skill.Slot, len(arch.Skills))
	for i := range arch.Skills {
		c.slots[i] = skill.NewSlot(&arch.Skills[i])
	}
	return c
}

// OnDamaged registers the observer invoked with the actual health lost on
// every successful damage application. Nil disables it.
func (c *Character) OnDamaged(fn func(c *Character, dealt float64)) { c.onDamaged = fn }

func (c *Character) Archetype() *Archetype { return c.arch }
func (c *Character) Class() Class          { return c.arch.Class }
func (c *Character) Health() float64       { return c.health }
func (c *Character) MaxHealth() float64    { return c.maxHealth }
func (c *Character) AttackPower() float64  { return c.attackPower }
func (c *Character) Defense() float64      { return c.defense }
func (c *Character) Speed() float64        { return c.speed }
func (c *Character) Resource() float64     { return c.resource }
func (c *Character) MaxResource() float64  { return c.maxResource }
func (c *Character) IsMoving() bool        { return c.moving }
func (c *Character) IsAttacking() bool     { return c.attacking }
func (c *Character) IsBlocking() bool      { return c.blocking }
func (c *Character) IsJumping() bool       { return c.jumping }
func (c *Character) IsDead() bool          { return c.dead }

// Animation returns the most recent animation intent.
func (c *Character) Animation() string { return c.anim }

// SkillCount returns the number of skill slots.
func (c *Character) SkillCount() int { return len(c.slots) }

// Slot returns the skill slot at index, or nil when out of range.
func (c *Character) Slot(index int) *skill.Slot {
	if index < 0 || index >= len(c.slots) {
		return nil
	}
	return c.slots[index]
}

// Hitbox returns the character's axis-aligned bounds at its current position.
func (c *Character) Hitbox() geom.Box {
	he := c.arch.HalfExtents
	return geom.BoxAround(c.Position, he.X, 2*he.Y, he.Z)
}

// Forward returns the unit horizontal facing vector.
func (c *Character) Forward() geom.Vec3 {
	return geom.V(math.Sin(c.Yaw), 0, math.Cos(c.Yaw))
}

// Face turns the character toward target when it is more than FaceThreshold away.
func (c *Character) Face(target geom.Vec3) {
	d := target.Sub(c.Position)
	if d.Len() > FaceThreshold {
		c.Yaw = d.Yaw()
	}
}

// Move sets velocity along dir at speed, or the class speed when speed <= 0.
// A jump in progress keeps its vertical velocity.
//
// Precondition: dir must have non-zero length.
// Postcondition: Returns ErrZeroDirection and changes nothing for a zero dir.
func (c *Character) Move(dir geom.Vec3, speed float64) error {
	if dir.Len() == 0 {
		return ErrZeroDirection
	}
	if c.dead {
		return nil
	}
	if speed <= 0 {
		speed = c.speed
	}
	v := dir.Normalize().Scale(speed)
	if c.jumping {
		v.Y = c.Velocity.Y
	}
	c.Velocity = v
	if !c.moving && !c.attacking && !c.blocking {
		c.moving = true
		c.animate(AnimWalk)
	}
	return nil
}

// StopMoving zeroes velocity, keeping the vertical part of a jump in progress.
func (c *Character) StopMoving() {
	vy := 0.0
	if c.jumping {
		vy = c.Velocity.Y
	}
	c.Velocity = geom.V(0, vy, 0)
	if c.moving && !c.attacking && !c.blocking {
		c.moving = false
		c.animate(AnimIdle)
	}
}

// Attack starts an attack and returns its damage potential.
//
// Postcondition: Returns 0 and changes nothing when already attacking or dead.
// Otherwise IsAttacking() is true until the class attack window elapses.
func (c *Character) Attack(kind AttackKind) float64 {
	if c.dead || c.attacking {
		return 0
	}
	c.attacking = true
	if kind == AttackBasic || kind == "" {
		c.animate(c.arch.AttackAnimation)
		if c.arch.AttackVisual != "" {
			c.spawn(c.arch.AttackVisual, c.Position, c.Position.Add(c.Forward().Scale(20)))
		}
	} else {
		c.animate("attack_" + string(kind))
	}
	if c.arch.Resource == Rage {
		c.addResource(c.arch.ResourceOnAttack)
	}
	c.lock(c.arch.AttackWindow)
	return c.attackPower
}

// lock holds the attacking flag for d seconds, replacing any earlier release.
func (c *Character) lock(d float64) {
	c.attacking = true
	if c.lockHandle != 0 {
		c.clock.Cancel(c.lockHandle)
	}
	c.lockHandle = c.clock.After(d, "attack-release", func() {
		c.lockHandle = 0
		if c.dead {
			return
		}
		c.attacking = false
		if !c.moving && !c.blocking {
			c.animate(AnimIdle)
		}
	})
}

// Block raises the guard. Refused while attacking.
func (c *Character) Block() {
	if c.dead || c.attacking {
		return
	}
	c.blocking = true
	c.animate(AnimBlock)
}

// StopBlocking lowers the guard. No-op unless blocking.
func (c *Character) StopBlocking() {
	if !c.blocking {
		return
	}
	c.blocking = false
	c.resumeLocomotion()
}

// Jump applies JumpImpulse and lands after JumpDuration. Refused while jumping.
func (c *Character) Jump() {
	if c.dead || c.jumping {
		return
	}
	c.jumping = true
	c.animate(AnimJump)
	c.Velocity.Y = JumpImpulse
	c.jumpHandle = c.clock.After(JumpDuration, "jump-land", func() {
		c.jumpHandle = 0
		c.jumping = false
		c.Velocity.Y = 0
		c.Position.Y = 0
		if !c.attacking && !c.blocking && !c.dead {
			c.resumeLocomotion()
		}
	})
}

func (c *Character) resumeLocomotion() {
	if c.moving {
		c.animate(AnimWalk)
	} else {
		c.animate(AnimIdle)
	}
}

// TakeDamage applies amount after defense mitigation and returns the resulting health.
//
// Postcondition: health' = max(0, health - max(1, amount - defense)). A dead
// character is unaffected.
func (c *Character) TakeDamage(amount float64) float64 {
	if c.dead {
		return c.health
	}
	if c.arch.Resource == Rage {
		c.addResource(amount * c.arch.ResourceOnDamage)
	}
	actual := math.Max(1, amount-c.defense)
	before := c.health
	c.health = math.Max(0, c.health-actual)
	c.animate(AnimHit)
	c.logger.Debug("damage taken",
		zap.Float64("amount", amount),
		zap.Float64("actual", before-c.health),
		zap.Float64("health", c.health),
	)
	if c.onDamaged != nil {
		c.onDamaged(c, before-c.health)
	}
	if c.health <= 0 {
		c.Die()
	}
	return c.health
}

// Heal restores amount health, capped at MaxHealth, and returns the result.
// A dead character is not healed.
func (c *Character) Heal(amount float64) float64 {
	if c.dead || amount <= 0 {
		return c.health
	}
	c.health = math.Min(c.maxHealth, c.health+amount)
	return c.health
}

// Die clears every action flag, zeroes velocity and marks the character dead.
//
// Postcondition: IsDead() and Health() == 0.
func (c *Character) Die() {
	if c.dead {
		return
	}
	c.dead = true
	c.health = 0
	c.moving, c.attacking, c.blocking, c.jumping = false, false, false, false
	c.Velocity = geom.Zero
	if c.lockHandle != 0 {
		c.clock.Cancel(c.lockHandle)
		c.lockHandle = 0
	}
	if c.jumpHandle != 0 {
		c.clock.Cancel(c.jumpHandle)
		c.jumpHandle = 0
	}
	c.animate(AnimDeath)
	c.logger.Info("character died")
}

// Update integrates position, regenerates resource and expires cooldowns.
//
// Precondition: delta >= 0.
func (c *Character) Update(delta float64) {
	if delta <= 0 {
		return
	}
	c.Position = c.Position.Add(c.Velocity.Scale(delta))
	if c.dead {
		return
	}
	if c.arch.Resource == Mana {
		c.addResource(c.arch.ResourceRegen * delta)
	}
	now := c.clock.Now()
	for _, s := range c.slots {
		s.Tick(now)
	}
}

// UseSkill activates the skill at index against targets and reports whether
// the effect ran.
//
// Postcondition: On false, resource and the slot's cooldown are unchanged.
// On true, cost is deducted and the slot's LastUsed() == now.
func (c *Character) UseSkill(index int, targets ...*Character) bool {
	if index < 0 || index >= len(c.slots) {
		c.logger.Warn("skill use rejected", zap.Error(ErrInvalidSkillIndex), zap.Int("index", index))
		return false
	}
	if c.dead {
		return false
	}
	slot := c.slots[index]
	def := slot.Def
	now := c.clock.Now()
	if !slot.Ready(now) {
		c.logger.Debug("skill on cooldown", zap.String("skill", def.Name), zap.Float64("remaining", slot.Remaining(now)))
		return false
	}
	if c.resource < def.Cost {
		c.logger.Debug("insufficient resource",
			zap.String("skill", def.Name),
			zap.String("resource", string(c.arch.Resource)),
			zap.Float64("have", c.resource),
			zap.Float64("cost", def.Cost),
		)
		return false
	}
	live := liveTargets(targets)
	if def.Effect.NeedsTarget() && len(live) == 0 {
		c.logger.Debug("skill has no living target", zap.String("skill", def.Name))
		return false
	}
	if def.Effect.Kind == skill.EffectBuff && c.buffs.Has(def.Effect.Stat) {
		c.logger.Debug("buff already active", zap.String("skill", def.Name))
		return false
	}
	c.resource -= def.Cost
	slot.Activate(now)
	ok := c.applyEffect(def, live)
	c.logger.Debug("skill used", zap.String("skill", def.Name), zap.Bool("effect", ok))
	return ok
}

// SkillStatus returns the HUD view of every skill slot.
func (c *Character) SkillStatus() []skill.Status {
	now := c.clock.Now()
	out := make([]skill.Status, len(c.slots))
	for i, s := range c.slots {
		out[i] = s.Status(now)
	}
	return out
}

// View is a read-only snapshot of a character for renderers and the HUD.
type View struct {
	ID           uuid.UUID
	Name         string
	Class        Class
	Health       float64
	MaxHealth    float64
	ResourceKind ResourceKind
	Resource     float64
	MaxResource  float64
	Position     geom.Vec3
	Yaw          float64
	Animation    string
	Moving       bool
	Attacking    bool
	Blocking     bool
	Jumping      bool
	Dead         bool
	Skills       []skill.Status
}

// View returns a snapshot of c.
func (c *Character) View() View {
	return View{
		ID:           c.ID,
		Name:         c.Name,
		Class:        c.arch.Class,
		Health:       c.health,
		MaxHealth:    c.maxHealth,
		ResourceKind: c.arch.Resource,
		Resource:     c.resource,
		MaxResource:  c.maxResource,
		Position:     c.Position,
		Yaw:          c.Yaw,
		Animation:    c.anim,
		Moving:       c.moving,
		Attacking:    c.attacking,
		Blocking:     c.blocking,
		Jumping:      c.jumping,
		Dead:         c.dead,
		Skills:       c.SkillStatus(),
	}
}

func (c *Character) addResource(n float64) {
	c.resource = math.Min(c.maxResource, math.Max(0, c.resource+n))
}

func (c *Character) animate(name string) {
	if name == "" {
		return
	}
	c.anim = name
	c.animations.PlayAnimation(c.ID, name)
}

func (c *Character) spawn(name string, origin, target geom.Vec3) {
	if name == "" {
		return
	}
	c.effects.SpawnEffect(EffectRequest{Name: name, Source: c.ID, Origin: origin, Target: target})
}

func liveTargets(targets []*Character) []*Character {
	out := make([]*Character, 0, len(targets))
	for _, t := range targets {
		if t != nil && !t.dead {
			out = append(out, t)
		}
	}
	return out
}
