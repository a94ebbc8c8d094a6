// Package skills updates live projectiles, area attacks and self-target
// buffs. Damage is routed back through an Env so the game applies guard
// rules, death hooks and cues in one place.
package skills

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// Env is what a skill needs from the running game
type Env interface {
	Store() *world.Store
	// DamagePlayer hits the player with an enemy skill coming from 'from'
	DamagePlayer(source world.Handle, from entities.Vec3, amount int)
	// HitEnemy hits an enemy with a player skill
	HitEnemy(source world.Handle, target world.Handle, amount int)
	// Buffed reports a self-target buff landing on its caster
	Buffed(caster world.Handle, buff entities.BuffDef)
}

// Config configures the skill system
type Config struct {
	Logger logrus.FieldLogger
}

// Validate checks the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Logger == nil {
		vb.RequiredField("Logger")
	}
	return vb.Build()
}

// System updates skill entities
type System struct {
	logger logrus.FieldLogger
}

// New creates a skill system
func New(cfg *Config) (*System, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &System{logger: cfg.Logger.WithField("component", "skills")}, nil
}

// KindOf maps a data-table skill kind to its entity kind
func KindOf(kind entities.SkillKind) (world.Kind, bool) {
	switch kind {
	case entities.SkillKindProjectile:
		return world.KindProjectile, true
	case entities.SkillKindAreaAttack:
		return world.KindArea, true
	case entities.SkillKindSelfTarget:
		return world.KindSelf, true
	}
	return 0, false
}

// SpawnInput describes one cast
type SpawnInput struct {
	Def     *entities.Skill
	Caster  world.Handle
	Faction world.Faction
	Origin  entities.Vec3
	// Dir is only used by projectiles
	Dir entities.Vec3
}

// Spawn creates the skill entity for a cast
func Spawn(store *world.Store, in SpawnInput) (world.Handle, error) {
	if in.Def == nil {
		return world.NoHandle, errors.InvalidArgument("skill definition is required")
	}
	kind, ok := KindOf(in.Def.Kind)
	if !ok {
		return world.NoHandle, errors.InvalidArgumentf("unknown skill kind %q", in.Def.Kind)
	}

	dir := in.Dir.Flat().Normalize()
	if dir == (entities.Vec3{}) {
		dir = entities.Vec3{Z: 1}
	}

	sk := world.Skill{
		Caster:   in.Caster,
		Faction:  in.Faction,
		Damage:   in.Def.Damage,
		Lifespan: in.Def.Lifespan,
		Speed:    in.Def.Speed,
		Dir:      dir,
		Radius:   in.Def.Radius,
		CastTime: in.Def.CastTime,
		Duration: in.Def.Duration,
		Sound:    in.Def.Sound,
	}
	if in.Def.Buff != nil {
		buff := *in.Def.Buff
		sk.Buff = &buff
		if sk.Duration <= 0 {
			sk.Duration = buff.Duration
		}
	}
	// area and self skills wait out their own cast time
	if kind == world.KindProjectile {
		sk.CastTime = 0
	}

	body := world.Body{Pos: in.Origin, Yaw: math.Atan2(dir.X, dir.Z), Radius: in.Def.Radius}
	return store.SpawnSkill(kind, in.Def.ID, body, sk), nil
}

// Scale is the visual growth of an area attack, 0 to 1
func Scale(sk *world.Skill) float64 {
	if sk.Duration <= 0 {
		return 1
	}
	return math.Min(sk.Elapsed/sk.Duration, 1)
}

// Update advances one skill entity by dt, removing it when spent
func (s *System) Update(env Env, h world.Handle, dt float64) {
	store := env.Store()
	id := store.Identity(h)
	if id == nil || store.Skill(h) == nil {
		return
	}

	switch id.Kind {
	case world.KindProjectile:
		s.updateProjectile(env, h, dt)
	case world.KindArea:
		s.updateArea(env, h, dt)
	case world.KindSelf:
		s.updateSelf(env, h, dt)
	default:
		s.logger.WithField("kind", id.Kind.String()).Warn("skill entity with unexpected kind")
		store.Despawn(h)
	}
}

func (s *System) updateProjectile(env Env, h world.Handle, dt float64) {
	store := env.Store()
	sk := store.Skill(h)
	body := store.Body(h)

	sk.Lifespan -= dt
	sk.Elapsed += dt
	body.Pos = body.Pos.Add(sk.Dir.Scale(sk.Speed * dt))

	pos := body.Pos
	damage := sk.Damage
	radius := sk.Radius
	expired := sk.Lifespan <= 0

	if target, ok := s.firstHit(store, sk.Faction, pos, radius); ok {
		s.hit(env, h, target, pos, damage)
		store.Despawn(h)
		return
	}
	if expired {
		store.Despawn(h)
	}
}

func (s *System) updateArea(env Env, h world.Handle, dt float64) {
	store := env.Store()
	sk := store.Skill(h)
	sk.Elapsed += dt

	if !sk.Pulsed && sk.Elapsed >= sk.CastTime {
		sk.Pulsed = true
		pos := store.Body(h).Pos
		damage := sk.Damage
		radius := sk.Radius
		faction := sk.Faction
		caster := sk.Caster

		if store.Living(caster) {
			for _, target := range s.targets(store, faction, pos, radius, false) {
				s.hit(env, h, target, pos, damage)
			}
		}
		// hits may have spawned or moved components
		sk = store.Skill(h)
		if sk == nil {
			return
		}
	}

	if sk.Elapsed >= sk.Duration {
		store.Despawn(h)
	}
}

func (s *System) updateSelf(env Env, h world.Handle, dt float64) {
	store := env.Store()
	sk := store.Skill(h)
	sk.Elapsed += dt

	if casterBody := store.Body(sk.Caster); casterBody != nil {
		store.Body(h).Pos = casterBody.Pos
	}

	if !sk.Applied && sk.Elapsed >= sk.CastTime {
		sk.Applied = true
		if sk.Buff != nil && store.Living(sk.Caster) {
			buff := *sk.Buff
			caster := sk.Caster
			if buffs := store.Buffs(caster); buffs != nil {
				buffs.Apply(buff.Stat, buff.Multiplier, buff.Duration)
				env.Buffed(caster, buff)
			}
		}
		sk = store.Skill(h)
		if sk == nil {
			return
		}
	}

	if sk.Elapsed >= sk.CastTime+sk.Duration {
		store.Despawn(h)
	}
}

func (s *System) hit(env Env, source, target world.Handle, from entities.Vec3, damage int) {
	if target == env.Store().PlayerHandle() {
		env.DamagePlayer(source, from, damage)
		return
	}
	env.HitEnemy(source, target, damage)
}

func (s *System) firstHit(store *world.Store, faction world.Faction, pos entities.Vec3, radius float64) (world.Handle, bool) {
	hits := s.targets(store, faction, pos, radius, true)
	if len(hits) == 0 {
		return world.NoHandle, false
	}
	return hits[0], true
}

// targets lists living characters of the opposing faction touching a
// circle at pos, in list order
func (s *System) targets(store *world.Store, faction world.Faction, pos entities.Vec3, radius float64, first bool) []world.Handle {
	var candidates []world.Handle
	switch faction {
	case world.FactionPlayer:
		candidates = store.Enemies()
	case world.FactionEnemy:
		if p := store.PlayerHandle(); p != world.NoHandle {
			candidates = []world.Handle{p}
		}
	}

	var out []world.Handle
	for _, c := range candidates {
		if !store.Living(c) {
			continue
		}
		body := store.Body(c)
		if body == nil || pos.HorizontalDist(body.Pos) > radius+body.Radius {
			continue
		}
		out = append(out, c)
		if first {
			break
		}
	}
	return out
}
