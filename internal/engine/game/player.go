package game

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/engine/combat"
	"github.com/KirkDiggler/rpg-action/internal/engine/input"
	"github.com/KirkDiggler/rpg-action/internal/engine/skills"
	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

func (g *Game) updatePlayer(in input.Intent, dt float64) {
	p := g.store.PlayerHandle()
	if p == world.NoHandle {
		return
	}
	if !g.store.Living(p) {
		body := g.store.Body(p)
		body.Vel.X, body.Vel.Z = 0, 0
		g.integrate(p, dt)
		return
	}

	if in.LockOn {
		g.toggleLockOn(p)
	}
	g.validateLockOn()

	g.cycleEquipment(p, in)
	if in.UseItem {
		g.useItem(p)
	}
	if in.Interact {
		g.interact(p)
	}

	g.move(p, in, dt)

	if in.WeakAttack {
		g.weakAttack(p)
	}
	if in.StrongAttack {
		g.strongAttack(p, in.StrongCharge)
	}
	if in.CastSkill {
		g.castPlayerSkill(p)
	}

	g.regenerate(p, dt)
	g.integrate(p, dt)
}

func (g *Game) move(p world.Handle, in input.Intent, dt float64) {
	pl := g.store.Player(p)
	body := g.store.Body(p)
	anim := g.store.Animation(p)
	stats := g.hero.Player

	speed := body.Speed * g.store.Buffs(p).Multiplier(entities.StatSpeed)
	pl.Dashing = false
	if !in.Guard {
		pl.GuardBroken = false
	} else if pl.Stamina <= 0 {
		pl.GuardBroken = true
	}
	pl.Guarding = in.Guard && !pl.GuardBroken && pl.Stamina > 0 && !pl.Rolling && pl.CurrentShield() != ""
	pl.Charging = in.Charging && !pl.Rolling
	pl.ChargeFor = in.ChargeSeconds

	switch {
	case pl.Rolling:
		pl.RollTimer -= dt
		body.Vel.X = pl.RollDir.X * speed * RollMultiplier
		body.Vel.Z = pl.RollDir.Z * speed * RollMultiplier
		if pl.RollTimer <= 0 {
			pl.Rolling = false
		}
	case in.Roll && body.OnGround:
		if pl.Stamina < stats.RollStaminaCost {
			g.logger.WithField("stamina", pl.Stamina).Debug("not enough stamina to roll")
			break
		}
		pl.Stamina -= stats.RollStaminaCost
		pl.Rolling = true
		pl.Guarding = false
		pl.RollTimer = world.RollDuration
		pl.RollDir = in.Move
		if pl.RollDir == (entities.Vec3{}) {
			pl.RollDir = body.Forward()
		}
		body.Yaw = math.Atan2(pl.RollDir.X, pl.RollDir.Z)
		body.Vel.X = pl.RollDir.X * speed * RollMultiplier
		body.Vel.Z = pl.RollDir.Z * speed * RollMultiplier
		anim.Play(world.AnimRolling, world.RollDuration)
	case in.Move != (entities.Vec3{}):
		if in.Dash && pl.Stamina > 0 {
			pl.Dashing = true
			speed *= DashMultiplier
			pl.Stamina = math.Max(0, pl.Stamina-stats.DashStaminaPerSecond*dt)
		}
		body.Vel.X = in.Move.X * speed
		body.Vel.Z = in.Move.Z * speed
		body.Yaw = math.Atan2(in.Move.X, in.Move.Z)
		if !anim.Busy() {
			if pl.Dashing {
				anim.Loop(world.AnimDash)
			} else {
				anim.Loop(world.AnimWalk)
			}
		}
	default:
		body.Vel.X, body.Vel.Z = 0, 0
		if !anim.Busy() {
			if pl.Guarding {
				anim.Loop(world.AnimGuarding)
			} else {
				anim.Loop(world.AnimIdle)
			}
		}
	}

	if target := g.lockTarget(p); target != world.NoHandle {
		body.Yaw = body.Pos.YawToward(g.store.Body(target).Pos)
	}

	if in.Jump && body.OnGround && !pl.Rolling {
		if pl.Stamina < stats.JumpStaminaCost {
			g.logger.WithField("stamina", pl.Stamina).Debug("not enough stamina to jump")
			return
		}
		pl.Stamina -= stats.JumpStaminaCost
		body.Vel.Y = stats.JumpSpeed
	}
}

func (g *Game) regenerate(p world.Handle, dt float64) {
	pl := g.store.Player(p)
	anim := g.store.Animation(p)
	stats := g.hero.Player

	attacking := anim.Busy() && (anim.State == world.AnimAttackWeak || anim.State == world.AnimAttackStrong)
	if !pl.Dashing && !pl.Guarding && !pl.Rolling && !pl.Charging && !attacking {
		pl.Stamina = math.Min(pl.MaxStamina, pl.Stamina+stats.StaminaRegen*dt)
	}
	pl.FP = math.Min(pl.MaxFP, pl.FP+stats.FPRegen*dt)
}

// attackMultiplier combines the attack buff with allocated strength
func (g *Game) attackMultiplier(p world.Handle) float64 {
	return g.store.Buffs(p).Multiplier(entities.StatAttack) * (1 + g.store.Player(p).AttackBonus)
}

func (g *Game) equippedWeapon(p world.Handle) (*entities.Weapon, bool) {
	id := g.store.Player(p).CurrentWeapon()
	w, err := g.data.GetWeapon(id)
	if err != nil {
		g.logger.WithError(err).WithField("weapon", id).Warn("no usable weapon equipped")
		return nil, false
	}
	return w, true
}

func (g *Game) weakAttack(p world.Handle) {
	w, ok := g.equippedWeapon(p)
	if !ok {
		return
	}
	pl := g.store.Player(p)
	if pl.Stamina < w.WeakStaminaCost {
		g.logger.WithFields(logrus.Fields{
			"stamina": pl.Stamina,
			"cost":    w.WeakStaminaCost,
		}).Warn("not enough stamina for weak attack")
		return
	}
	pl.Stamina -= w.WeakStaminaCost
	g.store.Animation(p).Play(world.AnimAttackWeak, world.WeakAttackDuration)
	g.meleeSweep(p, w.Range, combat.WeakDamage(w, g.attackMultiplier(p)))
}

func (g *Game) strongAttack(p world.Handle, charge float64) {
	w, ok := g.equippedWeapon(p)
	if !ok {
		return
	}
	damage := combat.ChargeDamage(w, charge, g.attackMultiplier(p))
	cost := float64(combat.StrongAttackCost(damage))

	pl := g.store.Player(p)
	pl.Charging = false
	if pl.Stamina < cost {
		g.logger.WithFields(logrus.Fields{
			"stamina": pl.Stamina,
			"cost":    cost,
		}).Warn("not enough stamina for strong attack")
		return
	}
	pl.Stamina -= cost
	g.store.Animation(p).Play(world.AnimAttackStrong, world.StrongAttackDuration)
	g.meleeSweep(p, w.Range, damage)
}

// meleeSweep hits every living enemy within reach, in list order
func (g *Game) meleeSweep(p world.Handle, reach float64, damage int) {
	origin := g.store.Body(p).Pos
	for _, e := range g.store.Enemies() {
		if !g.store.Living(e) {
			continue
		}
		if combat.InRange(origin, g.store.Body(e).Pos, reach) {
			g.HitEnemy(p, e, damage)
		}
	}
}

func (g *Game) castPlayerSkill(p world.Handle) {
	pl := g.store.Player(p)
	id := pl.CurrentSkill()
	def, err := g.data.GetSkill(id)
	if err != nil {
		g.logger.WithError(err).WithField("skill", id).Warn("no usable skill equipped")
		return
	}
	if pl.FP < def.FPCost {
		g.logger.WithFields(logrus.Fields{
			"skill": id,
			"fp":    pl.FP,
			"cost":  def.FPCost,
		}).Warn("not enough fp to cast")
		return
	}
	pl.FP -= def.FPCost
	g.store.Animation(p).Play(world.AnimCasting, world.CastDuration)
	g.sfx(SFXCast, def.Sound, p)

	if def.Kind != entities.SkillKindProjectile {
		g.spawnSkill(def, p, world.FactionPlayer)
		return
	}
	g.Schedule(g.now+def.CastTime, p, func() {
		if g.store.Living(p) {
			g.spawnSkill(def, p, world.FactionPlayer)
		}
	})
}

// spawnSkill creates a skill at the caster, aimed at its target: the
// lock-on target for the player, the player for enemies
func (g *Game) spawnSkill(def *entities.Skill, caster world.Handle, faction world.Faction) {
	body := g.store.Body(caster)
	if body == nil {
		return
	}
	origin := body.Pos
	dir := body.Forward()

	var target world.Handle
	if faction == world.FactionPlayer {
		target = g.lockTarget(caster)
	} else {
		target = g.store.PlayerHandle()
	}
	if target != world.NoHandle {
		if to := g.store.Body(target).Pos.Sub(origin).Flat(); to != (entities.Vec3{}) {
			dir = to
		}
	}
	if def.Kind == entities.SkillKindProjectile {
		origin.Y += body.Height / 2
	}

	_, err := skills.Spawn(g.store, skills.SpawnInput{
		Def:     def,
		Caster:  caster,
		Faction: faction,
		Origin:  origin,
		Dir:     dir,
	})
	if err != nil {
		g.logger.WithError(err).WithField("skill", def.ID).Warn("skill spawn failed")
	}
}

func (g *Game) cycleEquipment(p world.Handle, in input.Intent) {
	pl := g.store.Player(p)
	if in.NextWeapon {
		pl.EquippedWeapon = next(pl.EquippedWeapon, len(pl.Weapons))
	}
	if in.NextShield {
		pl.EquippedShield = next(pl.EquippedShield, len(pl.Shields))
	}
	if in.NextSkill {
		pl.EquippedSkill = next(pl.EquippedSkill, len(pl.Skills))
	}
	if in.NextItem {
		pl.SelectedItem = next(pl.SelectedItem, len(pl.Inventory))
	}
}

func next(idx, n int) int {
	if n == 0 {
		return 0
	}
	return (idx + 1) % n
}

// useItem consumes the selected inventory item
func (g *Game) useItem(p world.Handle) {
	pl := g.store.Player(p)
	id := pl.CurrentItem()
	if id == "" {
		return
	}
	item, err := g.data.GetItem(id)
	if err != nil {
		g.logger.WithError(err).WithField("item", id).Warn("cannot use unknown item")
		return
	}
	if item.Kind != entities.ItemKindConsumable {
		g.logger.WithField("item", id).Warn("item is not consumable")
		return
	}

	g.store.Health(p).Heal(item.Heal)
	pl.FP = math.Min(pl.MaxFP, pl.FP+item.RestoreFP)
	pl.Stamina = math.Min(pl.MaxStamina, pl.Stamina+item.RestoreStamina)

	pl.Inventory = append(pl.Inventory[:pl.SelectedItem], pl.Inventory[pl.SelectedItem+1:]...)
	if pl.SelectedItem >= len(pl.Inventory) {
		pl.SelectedItem = 0
	}
}

// interact speaks with the nearest npc in reach
func (g *Game) interact(p world.Handle) {
	pos := g.store.Body(p).Pos
	best := world.NoHandle
	bestDist := InteractRange
	for _, n := range g.store.NPCs() {
		if !g.store.Alive(n) {
			continue
		}
		if d := g.store.Body(n).Pos.HorizontalDist(pos); d <= bestDist {
			best, bestDist = n, d
		}
	}
	if best == world.NoHandle {
		return
	}
	g.text(g.store.NPC(best).Next())
}

func (g *Game) toggleLockOn(p world.Handle) {
	pl := g.store.Player(p)
	if pl.LockOn != world.NoHandle {
		pl.LockOn = world.NoHandle
		return
	}
	pos := g.store.Body(p).Pos
	bestDist := LockOnRange
	for _, e := range g.store.Enemies() {
		if !g.store.Living(e) {
			continue
		}
		if d := g.store.Body(e).Pos.HorizontalDist(pos); d <= bestDist {
			pl.LockOn, bestDist = e, d
		}
	}
}

// validateLockOn clears a lock whose target died or left the world
func (g *Game) validateLockOn() {
	p := g.store.PlayerHandle()
	if p == world.NoHandle {
		return
	}
	pl := g.store.Player(p)
	if pl.LockOn != world.NoHandle && !g.store.Living(pl.LockOn) {
		pl.LockOn = world.NoHandle
	}
}

func (g *Game) lockTarget(p world.Handle) world.Handle {
	pl := g.store.Player(p)
	if pl == nil || !g.store.Living(pl.LockOn) {
		return world.NoHandle
	}
	return pl.LockOn
}

// gainExperience adds exp and applies every level crossed
func (g *Game) gainExperience(p world.Handle, exp int) {
	if exp <= 0 {
		return
	}
	pl := g.store.Player(p)
	pl.Experience += exp

	for _, lvl := range g.data.Levels() {
		if lvl.Level <= pl.Level || lvl.Experience > pl.Experience {
			continue
		}
		pl.Level = lvl.Level
		pl.StatusPoints += StatusPointsPerLevel

		hp := g.store.Health(p)
		hp.Heal(hp.MaxHP)
		pl.Stamina = pl.MaxStamina
		pl.FP = pl.MaxFP

		g.sfx(SFXLevelUp, "", p)
		g.publish(EventPlayerLevelUp, p, world.NoHandle, map[string]interface{}{
			"level":         pl.Level,
			"status_points": pl.StatusPoints,
		})
		g.logger.WithField("level", pl.Level).Info("player leveled up")
	}
}

// AllocateStatus spends one status point on stat
func (g *Game) AllocateStatus(stat world.StatusStat) error {
	p := g.store.PlayerHandle()
	if p == world.NoHandle {
		return errors.FailedPrecondition("no player in the game")
	}
	pl := g.store.Player(p)
	if pl.StatusPoints <= 0 {
		return errors.FailedPrecondition("no status points to spend")
	}

	switch stat {
	case world.StatusVitality:
		hp := g.store.Health(p)
		hp.SetMax(hp.MaxHP + VitalityHP)
		hp.Heal(VitalityHP)
		pl.Stats.Vitality++
	case world.StatusEndurance:
		pl.MaxStamina += EnduranceStamina
		pl.Stamina += EnduranceStamina
		pl.Stats.Endurance++
	case world.StatusStrength:
		pl.AttackBonus += StrengthAttack
		pl.Stats.Strength++
	case world.StatusMind:
		pl.MaxFP += MindFP
		pl.FP += MindFP
		pl.Stats.Mind++
	default:
		return errors.InvalidArgumentf("unknown status stat %q", stat)
	}
	pl.StatusPoints--
	return nil
}

func (g *Game) allocate(stats []string) {
	for _, stat := range stats {
		if err := g.AllocateStatus(world.StatusStat(stat)); err != nil {
			g.logger.WithError(err).WithField("stat", stat).Warn("status allocation ignored")
		}
	}
}

// DamagePlayer applies an enemy hit coming from 'from' through the
// defense buff and the guard rules
func (g *Game) DamagePlayer(source world.Handle, from entities.Vec3, amount int) {
	p := g.store.PlayerHandle()
	if !g.store.Living(p) {
		return
	}
	pl := g.store.Player(p)
	body := g.store.Body(p)

	defense := 0
	if id := pl.CurrentShield(); id != "" {
		shield, err := g.data.GetShield(id)
		if err != nil {
			g.logger.WithError(err).WithField("shield", id).Warn("equipped shield unknown")
		} else {
			defense = shield.Defense
		}
	}

	res := combat.ResolveGuard(combat.GuardInput{
		Damage:        combat.ApplyDefense(amount, g.store.Buffs(p).Multiplier(entities.StatDefense)),
		Guarding:      pl.Guarding,
		InFront:       combat.InFront(body.Pos, body.Forward(), from),
		ShieldDefense: defense,
		Stamina:       pl.Stamina,
	})

	pl.Stamina = math.Max(0, pl.Stamina-res.StaminaLoss)
	if res.Blocked > 0 {
		g.sfx(SFXGuardBlock, "", p)
	}
	if res.GuardBroken {
		pl.Guarding = false
		pl.GuardBroken = true
		g.logger.Debug("guard broken")
	}
	g.applyDamage(source, p, res.HPDamage)
}

// HitEnemy applies a player hit to an enemy through its defense buff
func (g *Game) HitEnemy(source world.Handle, target world.Handle, amount int) {
	if !g.store.Living(target) {
		return
	}
	g.applyDamage(source, target, combat.ApplyDefense(amount, g.store.Buffs(target).Multiplier(entities.StatDefense)))
}

// CastSkill spawns an enemy-cast skill aimed at the player
func (g *Game) CastSkill(caster world.Handle, skillID string) {
	def, err := g.data.GetSkill(skillID)
	if err != nil {
		g.logger.WithError(err).WithField("skill", skillID).Warn("enemy skill unknown")
		return
	}
	g.sfx(SFXCast, def.Sound, caster)
	g.spawnSkill(def, caster, world.FactionEnemy)
}

// Buffed is called when a self-target skill lands
func (g *Game) Buffed(caster world.Handle, buff entities.BuffDef) {
	g.logger.WithFields(logrus.Fields{
		"entity_serial": g.store.Serial(caster),
		"stat":          buff.Stat,
		"multiplier":    buff.Multiplier,
	}).Debug("buff applied")
}

func (g *Game) applyDamage(source, target world.Handle, amount int) {
	hp := g.store.Health(target)
	if hp == nil {
		return
	}
	died := hp.TakeDamage(amount)
	g.sfx(SFXHit, g.characterSound(target, SFXHit), target)
	g.publish(EventEntityDamaged, source, target, map[string]interface{}{
		"amount": amount,
		"hp":     hp.HP,
	})
	if died {
		g.onDeath(target)
	}
}

// onDeath runs once per character when its hp reaches zero
func (g *Game) onDeath(h world.Handle) {
	hp := g.store.Health(h)
	if hp == nil || hp.DeathHandled {
		return
	}
	hp.DeathHandled = true
	g.store.Animation(h).Die()
	g.sfx(SFXDeath, g.characterSound(h, SFXDeath), h)
	g.publish(EventEntityDied, world.NoHandle, h, nil)

	id := g.store.Identity(h)
	switch id.Kind {
	case world.KindPlayer:
		g.logger.Info("player died")
		g.Schedule(g.now+DeathReturnDelay, world.NoHandle, func() {
			g.finishRun(ResultDefeated)
			g.enterTitle()
		})
	case world.KindBoss:
		g.bossDefeated = true
		g.endingTimer = EndingDelay
		g.publish(EventBossDefeated, world.NoHandle, h, nil)
		g.logger.WithField("boss", id.DataID).Info("boss defeated")
	}
}
