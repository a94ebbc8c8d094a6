package world

import (
	"github.com/KirkDiggler/rpg-action/internal/entities"
)

// Kind says what an entity is
type Kind uint8

// Entity kinds
const (
	KindPlayer Kind = iota + 1
	KindEnemy
	KindBoss
	KindNPC
	KindProjectile
	KindArea
	KindSelf
	KindItem
)

var kindNames = map[Kind]string{
	KindPlayer:     "player",
	KindEnemy:      "enemy",
	KindBoss:       "boss",
	KindNPC:        "npc",
	KindProjectile: "projectile",
	KindArea:       "area_attack",
	KindSelf:       "self_target",
	KindItem:       "item",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Identity is held by every entity
type Identity struct {
	// Serial is unique for the lifetime of a Store and is what clients see
	Serial uint64
	Kind   Kind
	DataID string
	Name   string

	removed bool
}

// Body is a physical presence in the stage. Pos is at the feet.
type Body struct {
	Pos      entities.Vec3
	Vel      entities.Vec3
	Yaw      float64
	OnGround bool
	Height   float64
	Radius   float64
	Speed    float64
}

// Forward is the horizontal facing direction
func (b *Body) Forward() entities.Vec3 {
	return entities.Forward(b.Yaw)
}

// FlashDuration is how long the hit flash lasts
const FlashDuration = 0.15

// Health tracks hit points. Dead never flips back.
type Health struct {
	HP           int
	MaxHP        int
	Dead         bool
	FlashTimer   float64
	DeathHandled bool
}

// TakeDamage subtracts amount, clamps to [0, MaxHP] and reports whether
// this call killed the character. It is a no-op on the dead.
func (h *Health) TakeDamage(amount int) bool {
	if h.Dead {
		return false
	}
	if amount < 0 {
		amount = 0
	}

	h.HP -= amount
	h.clamp()
	h.FlashTimer = FlashDuration

	if h.HP == 0 {
		h.Dead = true
		return true
	}
	return false
}

// Heal adds hp up to MaxHP. The dead cannot be healed.
func (h *Health) Heal(amount int) {
	if h.Dead || amount <= 0 {
		return
	}
	h.HP += amount
	h.clamp()
}

// SetMax changes MaxHP, keeping HP within range
func (h *Health) SetMax(maxHP int) {
	h.MaxHP = maxHP
	h.clamp()
}

func (h *Health) clamp() {
	if h.HP < 0 {
		h.HP = 0
	}
	if h.HP > h.MaxHP {
		h.HP = h.MaxHP
	}
}

// AnimState is the character state machine state
type AnimState uint8

// Animation states
const (
	AnimIdle AnimState = iota
	AnimWalk
	AnimDash
	AnimAttackWeak
	AnimAttackStrong
	AnimRolling
	AnimGuarding
	AnimCasting
	AnimDead
)

var animNames = [...]string{"idle", "walk", "dash", "attack_weak", "attack_strong", "rolling", "guarding", "casting", "dead"}

func (a AnimState) String() string {
	if int(a) < len(animNames) {
		return animNames[a]
	}
	return "unknown"
}

// Animation durations for the one-shot states
const (
	WeakAttackDuration   = 0.4
	StrongAttackDuration = 0.6
	RollDuration         = 0.6
	CastDuration         = 0.5
	// DeathFadeDuration is the enemy opacity fade after death
	DeathFadeDuration = 2.0
)

// Animation is the current clip of a character
type Animation struct {
	State    AnimState
	Elapsed  float64
	Duration float64
	Opacity  float64
}

// Play switches to state. A zero duration loops until replaced.
func (a *Animation) Play(state AnimState, duration float64) {
	if a.State == AnimDead {
		return
	}
	a.State = state
	a.Elapsed = 0
	a.Duration = duration
}

// Loop switches to a looping state unless it is already playing, so
// held inputs do not restart the clip every frame
func (a *Animation) Loop(state AnimState) {
	if a.State == state {
		return
	}
	a.Play(state, 0)
}

// Busy reports whether a one-shot clip is still running
func (a *Animation) Busy() bool {
	return a.Duration > 0 && a.Elapsed < a.Duration
}

// Tick advances the clip. A finished one-shot returns to idle and Tick
// reports true for that frame.
func (a *Animation) Tick(dt float64) bool {
	a.Elapsed += dt
	if a.State == AnimDead || a.Duration <= 0 || a.Elapsed < a.Duration {
		return false
	}
	a.State = AnimIdle
	a.Elapsed = 0
	a.Duration = 0
	return true
}

// Die switches to the dead clip permanently
func (a *Animation) Die() {
	a.State = AnimDead
	a.Elapsed = 0
	a.Duration = 0
}

// Buff is one active multiplier
type Buff struct {
	Multiplier float64
	Remaining  float64
}

// Buffs holds timed stat multipliers. Reapplying a stat replaces it.
type Buffs struct {
	Active map[entities.Stat]Buff
}

// Apply sets or refreshes the buff on stat
func (b *Buffs) Apply(stat entities.Stat, multiplier, duration float64) {
	if b.Active == nil {
		b.Active = make(map[entities.Stat]Buff)
	}
	b.Active[stat] = Buff{Multiplier: multiplier, Remaining: duration}
}

// Multiplier returns the active multiplier for stat, 1 when none
func (b *Buffs) Multiplier(stat entities.Stat) float64 {
	if buff, ok := b.Active[stat]; ok {
		return buff.Multiplier
	}
	return 1
}

// Tick counts buffs down and drops expired ones, returning them
func (b *Buffs) Tick(dt float64) []entities.Stat {
	var expired []entities.Stat
	for stat, buff := range b.Active {
		buff.Remaining -= dt
		if buff.Remaining <= 0 {
			expired = append(expired, stat)
			delete(b.Active, stat)
			continue
		}
		b.Active[stat] = buff
	}
	return expired
}

// StrideLength is the distance between footstep cues
const StrideLength = 1.6

// Footsteps accumulates walked distance
type Footsteps struct {
	Accum float64
}

// Advance adds distance and returns how many strides completed
func (f *Footsteps) Advance(distance float64) int {
	if distance <= 0 {
		return 0
	}
	f.Accum += distance
	steps := 0
	for f.Accum >= StrideLength {
		f.Accum -= StrideLength
		steps++
	}
	return steps
}

// StatusStat is a stat status points can be spent on
type StatusStat string

// Status allocation targets
const (
	StatusVitality  StatusStat = "vitality"
	StatusEndurance StatusStat = "endurance"
	StatusStrength  StatusStat = "strength"
	StatusMind      StatusStat = "mind"
)

// AllocatedStats counts spent status points
type AllocatedStats struct {
	Vitality  int
	Endurance int
	Strength  int
	Mind      int
}

// Player holds resources, progression, equipment and transient combat
// flags of the controlled character
type Player struct {
	Name string

	Stamina    float64
	MaxStamina float64
	FP         float64
	MaxFP      float64

	Level        int
	Experience   int
	StatusPoints int
	Stats        AllocatedStats
	// AttackBonus is the strength multiplier from allocated points
	AttackBonus float64

	Inventory    []string
	SelectedItem int

	Weapons        []string
	Shields        []string
	Skills         []string
	EquippedWeapon int
	EquippedShield int
	EquippedSkill  int

	LockOn    Handle
	Charging  bool
	ChargeFor float64
	Guarding  bool
	// GuardBroken holds the guard down until the guard input is released
	GuardBroken bool
	Dashing     bool
	Rolling     bool
	RollTimer   float64
	RollDir     entities.Vec3

	EnemiesDefeated int
}

// CurrentWeapon returns the equipped weapon id or ""
func (p *Player) CurrentWeapon() string { return pick(p.Weapons, p.EquippedWeapon) }

// CurrentShield returns the equipped shield id or ""
func (p *Player) CurrentShield() string { return pick(p.Shields, p.EquippedShield) }

// CurrentSkill returns the equipped skill id or ""
func (p *Player) CurrentSkill() string { return pick(p.Skills, p.EquippedSkill) }

// CurrentItem returns the selected inventory item or ""
func (p *Player) CurrentItem() string { return pick(p.Inventory, p.SelectedItem) }

func pick(list []string, idx int) string {
	if idx < 0 || idx >= len(list) {
		return ""
	}
	return list[idx]
}

// AttackKind is an enemy's chosen next attack
type AttackKind uint8

// Attack kinds
const (
	AttackNone AttackKind = iota
	AttackWeak
	AttackStrong
)

// EnemyAI is the brain state of enemies and bosses
type EnemyAI struct {
	IsBoss                  bool
	AggroRange              float64
	StrongAttackProbability int
	Weak                    entities.AttackDef
	Strong                  entities.AttackDef
	Experience              int
	Drops                   []string

	Cooldown        float64
	NextAttack      AttackKind
	Attacking       bool
	FadeTimer       float64
	ReadyForRemoval bool
}

// Attack returns the definition of kind
func (e *EnemyAI) Attack(kind AttackKind) entities.AttackDef {
	if kind == AttackStrong {
		return e.Strong
	}
	return e.Weak
}

// MinRange is the shorter of the two attack ranges
func (e *EnemyAI) MinRange() float64 {
	if e.Weak.Range < e.Strong.Range {
		return e.Weak.Range
	}
	return e.Strong.Range
}

// NPC holds dialogue
type NPC struct {
	Lines  []string
	Cursor int
}

// Next returns the next line and advances, wrapping at the end
func (n *NPC) Next() string {
	if len(n.Lines) == 0 {
		return ""
	}
	line := n.Lines[n.Cursor%len(n.Lines)]
	n.Cursor = (n.Cursor + 1) % len(n.Lines)
	return line
}

// Faction decides who a skill can hit
type Faction uint8

// Factions
const (
	FactionPlayer Faction = iota + 1
	FactionEnemy
)

// Skill is a live projectile, area attack or self-target buff
type Skill struct {
	Caster   Handle
	Faction  Faction
	Damage   int
	Lifespan float64
	Elapsed  float64
	Speed    float64
	Dir      entities.Vec3
	Radius   float64
	CastTime float64
	Duration float64
	Pulsed   bool
	Buff     *entities.BuffDef
	Applied  bool
	Sound    string
}

// Pickup is an item lying on the ground
type Pickup struct {
	ItemID string
	Amount int
}
