// Package ai drives enemies and bosses: chase, stand and attack with a
// cached weighted choice, and the death fade.
package ai

import (
	"math"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// Env is what the brain needs from the running game
type Env interface {
	Store() *world.Store
	Now() float64
	Schedule(at float64, owner world.Handle, fn func())
	// DamagePlayer applies a melee hit coming from 'from'
	DamagePlayer(source world.Handle, from entities.Vec3, amount int)
	// CastSkill spawns an enemy-cast skill aimed at the player
	CastSkill(caster world.Handle, skillID string)
}

// Config configures the brain
type Config struct {
	Roller dice.Roller
	Logger logrus.FieldLogger
}

// Validate checks the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.Logger == nil {
		vb.RequiredField("Logger")
	}
	return vb.Build()
}

// Brain updates enemy entities
type Brain struct {
	roller dice.Roller
	logger logrus.FieldLogger
}

// New creates a brain
func New(cfg *Config) (*Brain, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Brain{
		roller: cfg.Roller,
		logger: cfg.Logger.WithField("component", "ai"),
	}, nil
}

// Update runs one frame of enemy e. It sets the horizontal velocity; the
// caller integrates the body.
func (b *Brain) Update(env Env, e world.Handle, dt float64) {
	store := env.Store()
	ai := store.EnemyAI(e)
	hp := store.Health(e)
	body := store.Body(e)
	anim := store.Animation(e)
	if ai == nil || hp == nil || body == nil || anim == nil {
		return
	}

	body.Vel.X, body.Vel.Z = 0, 0

	if hp.Dead {
		ai.FadeTimer += dt
		anim.Opacity = math.Max(0, 1-ai.FadeTimer/world.DeathFadeDuration)
		if anim.Opacity <= 0 {
			ai.ReadyForRemoval = true
		}
		return
	}

	if ai.Cooldown > 0 {
		ai.Cooldown = math.Max(0, ai.Cooldown-dt)
	}

	player := store.PlayerHandle()
	if !store.Living(player) {
		if !anim.Busy() {
			anim.Loop(world.AnimIdle)
		}
		return
	}
	target := store.Body(player).Pos
	d := body.Pos.HorizontalDist(target)

	if ai.Attacking {
		body.Yaw = body.Pos.YawToward(target)
		return
	}

	switch {
	case d <= ai.MinRange():
		body.Yaw = body.Pos.YawToward(target)
		if !anim.Busy() {
			anim.Loop(world.AnimIdle)
		}
	case d <= ai.AggroRange:
		body.Yaw = body.Pos.YawToward(target)
		dir := target.Sub(body.Pos).Flat().Normalize()
		body.Vel.X = dir.X * body.Speed
		body.Vel.Z = dir.Z * body.Speed
		if !anim.Busy() {
			anim.Loop(world.AnimWalk)
		}
	default:
		if !anim.Busy() {
			anim.Loop(world.AnimIdle)
		}
		return
	}

	if ai.Cooldown > 0 {
		return
	}
	if ai.NextAttack == world.AttackNone {
		ai.NextAttack = b.choose(ai.StrongAttackProbability)
	}
	if d <= ai.Attack(ai.NextAttack).Range {
		b.execute(env, e)
	}
}

func (b *Brain) choose(strongProbability int) world.AttackKind {
	roll, err := b.roller.Roll(100)
	if err != nil {
		b.logger.WithError(err).Warn("attack roll failed, using weak attack")
		return world.AttackWeak
	}
	if roll <= strongProbability {
		return world.AttackStrong
	}
	return world.AttackWeak
}

func (b *Brain) execute(env Env, e world.Handle) {
	store := env.Store()
	ai := store.EnemyAI(e)
	kind := ai.NextAttack
	atk := ai.Attack(kind)

	ai.Attacking = true
	store.Body(e).Vel = entities.Vec3{Y: store.Body(e).Vel.Y}

	anim := store.Animation(e)
	if kind == world.AttackStrong {
		anim.Play(world.AnimAttackStrong, math.Max(world.StrongAttackDuration, atk.CastTime))
	} else {
		anim.Play(world.AnimAttackWeak, math.Max(world.WeakAttackDuration, atk.CastTime))
	}

	env.Schedule(env.Now()+atk.CastTime, e, func() {
		b.resolve(env, e, kind)
	})
}

// resolve lands a cached attack once its cast time has passed
func (b *Brain) resolve(env Env, e world.Handle, kind world.AttackKind) {
	store := env.Store()
	ai := store.EnemyAI(e)
	if ai == nil {
		return
	}
	atk := ai.Attack(kind)

	player := store.PlayerHandle()
	if store.Living(e) && store.Living(player) {
		from := store.Body(e).Pos
		if from.HorizontalDist(store.Body(player).Pos) <= atk.Range {
			if kind == world.AttackStrong && atk.Skill != "" {
				env.CastSkill(e, atk.Skill)
			} else {
				env.DamagePlayer(e, from, atk.Damage)
			}
		}
	}

	if ai = store.EnemyAI(e); ai != nil {
		ai.Cooldown = atk.Cooldown
		ai.NextAttack = world.AttackNone
		ai.Attacking = false
	}
}
