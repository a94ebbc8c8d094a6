package game

import (
	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/engine/physics"
	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// loadPending performs the queued stage load and enters PLAYING. Missing
// stage or player data sends the game back to TITLE.
func (g *Game) loadPending() {
	id := g.pendingStage
	g.pendingStage = ""

	if err := g.loadStage(id); err != nil {
		g.logger.WithError(err).WithField("stage", id).Error("stage load failed")
		g.enterTitle()
		return
	}
	g.setState(StatePlaying)
	g.bgm(g.stage.BGM)
}

func (g *Game) loadStage(id string) error {
	if id == "" {
		return errors.InvalidArgument("no stage to load")
	}
	stage, err := g.data.GetStage(id)
	if err != nil {
		return err
	}

	g.timers.Clear()
	g.store.ClearStage()

	p := g.store.PlayerHandle()
	if p == world.NoHandle {
		if p, err = g.spawnPlayer(); err != nil {
			return err
		}
	}

	body := g.store.Body(p)
	body.Pos = stage.PlayerSpawn
	body.Vel = entities.Vec3{}
	pl := g.store.Player(p)
	pl.LockOn = world.NoHandle
	pl.Rolling = false
	pl.Dashing = false
	pl.Charging = false

	for _, placement := range stage.Enemies {
		if err := g.spawnPlaced(placement); err != nil {
			g.logger.WithError(err).WithField("character", placement.Character).Warn("skipping enemy")
		}
	}
	for _, placement := range stage.NPCs {
		if err := g.spawnPlaced(placement); err != nil {
			g.logger.WithError(err).WithField("character", placement.Character).Warn("skipping npc")
		}
	}
	for _, placement := range stage.Items {
		g.store.SpawnPickup(placement.Item, world.Body{Pos: placement.Position, Radius: 0.3}, placement.Amount)
	}

	g.stage = stage
	g.lastStage = stage.ID
	g.ground = physics.HeightFieldGround(stage.Ground)
	g.gravity = stage.Gravity
	g.bossDefeated = false
	g.endingTimer = 0

	g.logger.WithFields(logrus.Fields{
		"stage":    stage.ID,
		"entities": g.store.Count(),
	}).Info("stage loaded")
	return nil
}

func (g *Game) spawnPlayer() (world.Handle, error) {
	id := g.data.Settings().PlayerCharacter
	c, err := g.data.GetCharacter(id)
	if err != nil {
		return world.NoHandle, err
	}
	if c.Player == nil {
		return world.NoHandle, errors.InvalidArgumentf("character %s is not playable", id)
	}
	g.hero = c

	name := g.playerName
	if name == "" {
		name = c.Name
	}
	level := 1
	if levels := g.data.Levels(); len(levels) > 0 {
		level = levels[0].Level
	}

	stats := c.Player
	h := g.store.SpawnCharacter(world.CharacterSpec{
		Kind:   world.KindPlayer,
		DataID: c.ID,
		Name:   name,
		Body:   world.Body{Height: c.Height, Radius: c.Radius, Speed: c.Speed},
		Health: world.Health{HP: c.MaxHP, MaxHP: c.MaxHP},
		Player: &world.Player{
			Name:       name,
			Stamina:    stats.MaxStamina,
			MaxStamina: stats.MaxStamina,
			FP:         stats.MaxFP,
			MaxFP:      stats.MaxFP,
			Level:      level,
			Inventory:  append([]string(nil), stats.Items...),
			Weapons:    append([]string(nil), stats.Weapons...),
			Shields:    append([]string(nil), stats.Shields...),
			Skills:     append([]string(nil), stats.Skills...),
		},
	})
	return h, nil
}

func (g *Game) spawnPlaced(placement entities.Placement) error {
	c, err := g.data.GetCharacter(placement.Character)
	if err != nil {
		return err
	}

	spec := world.CharacterSpec{
		DataID: c.ID,
		Name:   c.Name,
		Body: world.Body{
			Pos:    placement.Position,
			Yaw:    placement.Yaw,
			Height: c.Height,
			Radius: c.Radius,
			Speed:  c.Speed,
		},
		Health: world.Health{HP: c.MaxHP, MaxHP: c.MaxHP},
	}

	switch c.Kind {
	case entities.CharacterKindEnemy, entities.CharacterKindBoss:
		if c.Enemy == nil {
			return errors.InvalidArgumentf("character %s has no enemy stats", c.ID)
		}
		spec.Kind = world.KindEnemy
		if c.Kind == entities.CharacterKindBoss {
			spec.Kind = world.KindBoss
		}
		spec.Enemy = &world.EnemyAI{
			IsBoss:                  c.Kind == entities.CharacterKindBoss,
			AggroRange:              c.Enemy.AggroRange,
			StrongAttackProbability: c.Enemy.StrongAttackProbability,
			Weak:                    c.Enemy.WeakAttack,
			Strong:                  c.Enemy.StrongAttack,
			Experience:              c.Enemy.Experience,
			Drops:                   append([]string(nil), c.Enemy.Drops...),
		}
	case entities.CharacterKindNPC:
		spec.Kind = world.KindNPC
		spec.NPC = &world.NPC{Lines: append([]string(nil), c.Dialogue...)}
		// npcs cannot be damaged; max hp only keeps the health invariant
		if spec.Health.MaxHP <= 0 {
			spec.Health = world.Health{HP: 1, MaxHP: 1}
		}
	default:
		return errors.InvalidArgumentf("character %s of kind %s cannot be placed", c.ID, c.Kind)
	}

	g.store.SpawnCharacter(spec)
	return nil
}

// resolvePickups collects items the player is standing on
func (g *Game) resolvePickups() {
	p := g.store.PlayerHandle()
	if !g.store.Living(p) {
		return
	}
	pos := g.store.Body(p).Pos
	reach := PickupRange + g.store.Body(p).Radius

	for _, h := range g.store.Items() {
		if !g.store.Alive(h) {
			continue
		}
		if g.store.Body(h).Pos.HorizontalDist(pos) > reach {
			continue
		}
		pickup := *g.store.Pickup(h)
		g.store.Despawn(h)
		g.collect(p, pickup)
	}
}

func (g *Game) collect(p world.Handle, pickup world.Pickup) {
	item, err := g.data.GetItem(pickup.ItemID)
	if err != nil {
		g.logger.WithError(err).WithField("item", pickup.ItemID).Warn("picked up unknown item")
		return
	}

	pl := g.store.Player(p)
	switch item.Kind {
	case entities.ItemKindConsumable:
		for i := 0; i < pickup.Amount; i++ {
			pl.Inventory = append(pl.Inventory, item.ID)
		}
	case entities.ItemKindWeapon:
		pl.Weapons = appendUnique(pl.Weapons, item.Grants)
	case entities.ItemKindShield:
		pl.Shields = appendUnique(pl.Shields, item.Grants)
	case entities.ItemKindSkill:
		pl.Skills = appendUnique(pl.Skills, item.Grants)
	}

	g.sfx(SFXPickup, "", p)
	g.publish(EventItemPickedUp, p, world.NoHandle, map[string]interface{}{
		"item":   item.ID,
		"amount": pickup.Amount,
	})
}

func appendUnique(list []string, id string) []string {
	if id == "" {
		return list
	}
	for _, have := range list {
		if have == id {
			return list
		}
	}
	return append(list, id)
}

// removeDefeated despawns faded enemies, awarding experience and drops
func (g *Game) removeDefeated() {
	for _, e := range g.store.Enemies() {
		ai := g.store.EnemyAI(e)
		if ai == nil || !ai.ReadyForRemoval {
			continue
		}
		exp := ai.Experience
		drops := append([]string(nil), ai.Drops...)
		pos := g.store.Body(e).Pos

		g.store.Despawn(e)
		for _, item := range drops {
			g.store.SpawnPickup(item, world.Body{Pos: pos, Radius: 0.3}, 1)
		}

		if p := g.store.PlayerHandle(); p != world.NoHandle {
			g.store.Player(p).EnemiesDefeated++
			g.gainExperience(p, exp)
		}
	}
}

// checkExits moves the player on when they step into an open exit
func (g *Game) checkExits() {
	p := g.store.PlayerHandle()
	if g.stage == nil || !g.store.Living(p) {
		return
	}
	pos := g.store.Body(p).Pos
	for _, exit := range g.stage.Exits {
		if exit.RequiresBossDefeated && !g.bossDefeated {
			continue
		}
		if pos.HorizontalDist(exit.Position) > exit.Radius {
			continue
		}
		g.logger.WithFields(logrus.Fields{
			"from": g.stage.ID,
			"to":   exit.NextStage,
		}).Info("stage exit reached")
		g.pendingStage = exit.NextStage
		g.setState(StateLoading)
		return
	}
}
