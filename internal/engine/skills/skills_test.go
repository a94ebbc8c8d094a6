package skills_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-action/internal/engine/skills"
	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
)

type playerHit struct {
	from        entities.Vec3
	amount      int
	sourceAlive bool
}

type enemyHit struct {
	target      world.Handle
	amount      int
	sourceAlive bool
}

type fakeEnv struct {
	store      *world.Store
	playerHits []playerHit
	enemyHits  []enemyHit
	buffs      []entities.BuffDef
}

func (f *fakeEnv) Store() *world.Store { return f.store }

func (f *fakeEnv) DamagePlayer(source world.Handle, from entities.Vec3, amount int) {
	f.playerHits = append(f.playerHits, playerHit{from: from, amount: amount, sourceAlive: f.store.Alive(source)})
}

func (f *fakeEnv) HitEnemy(source world.Handle, target world.Handle, amount int) {
	f.enemyHits = append(f.enemyHits, enemyHit{target: target, amount: amount, sourceAlive: f.store.Alive(source)})
	if hp := f.store.Health(target); hp != nil {
		hp.TakeDamage(amount)
	}
}

func (f *fakeEnv) Buffed(_ world.Handle, buff entities.BuffDef) {
	f.buffs = append(f.buffs, buff)
}

type SkillsTestSuite struct {
	suite.Suite
	env    *fakeEnv
	system *skills.System
	player world.Handle
}

func (s *SkillsTestSuite) SetupTest() {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var err error
	s.system, err = skills.New(&skills.Config{Logger: logger})
	s.Require().NoError(err)

	s.env = &fakeEnv{store: world.NewStore()}
	s.player = s.env.store.SpawnCharacter(world.CharacterSpec{
		Kind:   world.KindPlayer,
		Body:   world.Body{Radius: 0.5},
		Health: world.Health{HP: 100, MaxHP: 100},
		Player: &world.Player{},
	})
}

func (s *SkillsTestSuite) spawnEnemy(pos entities.Vec3, hp int) world.Handle {
	return s.env.store.SpawnCharacter(world.CharacterSpec{
		Kind:   world.KindEnemy,
		Body:   world.Body{Pos: pos, Radius: 0.5},
		Health: world.Health{HP: hp, MaxHP: hp},
		Enemy:  &world.EnemyAI{},
	})
}

func (s *SkillsTestSuite) spawn(def *entities.Skill, caster world.Handle, faction world.Faction, origin, dir entities.Vec3) world.Handle {
	h, err := skills.Spawn(s.env.store, skills.SpawnInput{
		Def:     def,
		Caster:  caster,
		Faction: faction,
		Origin:  origin,
		Dir:     dir,
	})
	s.Require().NoError(err)
	return h
}

func fireball() *entities.Skill {
	return &entities.Skill{
		ID: "fireball", Kind: entities.SkillKindProjectile,
		CastTime: 0.2, Damage: 25, Speed: 10, Lifespan: 1, Radius: 0.5,
	}
}

func (s *SkillsTestSuite) TestProjectileExpiresAfterLifespan() {
	h := s.spawn(fireball(), s.player, world.FactionPlayer, entities.Vec3{}, entities.Vec3{Z: 1})

	for i := 0; i < 3; i++ {
		s.system.Update(s.env, h, 0.25)
	}
	s.Require().True(s.env.store.Alive(h))
	s.InDelta(7.5, s.env.store.Body(h).Pos.Z, 1e-9)
	s.InDelta(0.25, s.env.store.Skill(h).Lifespan, 1e-9)

	s.system.Update(s.env, h, 0.25)
	s.False(s.env.store.Alive(h))
	s.Empty(s.env.enemyHits)
}

func (s *SkillsTestSuite) TestProjectileRemovedOnFirstHit() {
	near := s.spawnEnemy(entities.Vec3{Z: 2.5}, 50)
	far := s.spawnEnemy(entities.Vec3{Z: 2.7}, 50)
	h := s.spawn(fireball(), s.player, world.FactionPlayer, entities.Vec3{}, entities.Vec3{Z: 1})

	s.system.Update(s.env, h, 0.1)
	s.Empty(s.env.enemyHits)

	s.system.Update(s.env, h, 0.1)
	s.False(s.env.store.Alive(h))
	s.Require().Len(s.env.enemyHits, 1)
	s.Equal(near, s.env.enemyHits[0].target)
	s.Equal(25, s.env.enemyHits[0].amount)
	s.True(s.env.enemyHits[0].sourceAlive, "projectile must still exist when its hit lands")
	s.Equal(50, s.env.store.Health(far).HP)
}

func (s *SkillsTestSuite) TestProjectileIgnoresDeadEnemies() {
	dead := s.spawnEnemy(entities.Vec3{Z: 1}, 10)
	s.env.store.Health(dead).TakeDamage(10)
	h := s.spawn(fireball(), s.player, world.FactionPlayer, entities.Vec3{}, entities.Vec3{Z: 1})

	s.system.Update(s.env, h, 0.1)
	s.True(s.env.store.Alive(h))
	s.Empty(s.env.enemyHits)
}

func (s *SkillsTestSuite) TestEnemyProjectileHitsPlayer() {
	archer := s.spawnEnemy(entities.Vec3{Z: 5}, 20)
	arrow := &entities.Skill{ID: "arrow", Kind: entities.SkillKindProjectile, Damage: 12, Speed: 20, Lifespan: 1.5, Radius: 0.3}
	h := s.spawn(arrow, archer, world.FactionEnemy, entities.Vec3{Z: 5}, entities.Vec3{Z: -1})

	for i := 0; i < 5 && s.env.store.Alive(h); i++ {
		s.system.Update(s.env, h, 0.05)
	}
	s.False(s.env.store.Alive(h))
	s.Require().Len(s.env.playerHits, 1)
	s.Equal(12, s.env.playerHits[0].amount)
	s.True(s.env.playerHits[0].sourceAlive)
	s.Empty(s.env.enemyHits)
}

func (s *SkillsTestSuite) TestAreaPulsesOnceAfterCastTime() {
	inside := s.spawnEnemy(entities.Vec3{X: 3}, 100)
	edge := s.spawnEnemy(entities.Vec3{X: 5.4}, 100)
	outside := s.spawnEnemy(entities.Vec3{X: 8}, 100)
	quake := &entities.Skill{ID: "quake", Kind: entities.SkillKindAreaAttack, CastTime: 0.5, Damage: 30, Radius: 5, Duration: 1}
	h := s.spawn(quake, s.player, world.FactionPlayer, entities.Vec3{}, entities.Vec3{})

	s.system.Update(s.env, h, 0.25)
	s.Empty(s.env.enemyHits)
	s.InDelta(0.25, skills.Scale(s.env.store.Skill(h)), 1e-9)

	s.system.Update(s.env, h, 0.25)
	s.Require().Len(s.env.enemyHits, 2)
	s.Equal(inside, s.env.enemyHits[0].target)
	s.Equal(edge, s.env.enemyHits[1].target)
	s.Equal(100, s.env.store.Health(outside).HP)

	s.system.Update(s.env, h, 0.25)
	s.Len(s.env.enemyHits, 2)
	s.True(s.env.store.Alive(h))

	s.system.Update(s.env, h, 0.25)
	s.False(s.env.store.Alive(h))
	s.Equal(1.0, skills.Scale(&world.Skill{Elapsed: 2, Duration: 1}))
}

func (s *SkillsTestSuite) TestAreaFizzlesWhenCasterDies() {
	enemy := s.spawnEnemy(entities.Vec3{X: 1}, 100)
	quake := &entities.Skill{ID: "quake", Kind: entities.SkillKindAreaAttack, CastTime: 0.5, Damage: 30, Radius: 5, Duration: 1}
	h := s.spawn(quake, s.player, world.FactionPlayer, entities.Vec3{}, entities.Vec3{})

	s.env.store.Health(s.player).TakeDamage(100)
	s.system.Update(s.env, h, 0.6)

	s.Empty(s.env.enemyHits)
	s.Equal(100, s.env.store.Health(enemy).HP)
}

func (s *SkillsTestSuite) TestSelfTargetAppliesBuffThenExpires() {
	rage := &entities.Skill{
		ID: "rage", Kind: entities.SkillKindSelfTarget, CastTime: 0.3,
		Buff: &entities.BuffDef{Stat: entities.StatAttack, Multiplier: 1.5, Duration: 2},
	}
	h := s.spawn(rage, s.player, world.FactionPlayer, entities.Vec3{}, entities.Vec3{})

	s.system.Update(s.env, h, 0.2)
	s.Equal(1.0, s.env.store.Buffs(s.player).Multiplier(entities.StatAttack))

	s.system.Update(s.env, h, 0.2)
	s.Equal(1.5, s.env.store.Buffs(s.player).Multiplier(entities.StatAttack))
	s.Len(s.env.buffs, 1)

	s.system.Update(s.env, h, 1.5)
	s.True(s.env.store.Alive(h))
	s.system.Update(s.env, h, 0.5)
	s.False(s.env.store.Alive(h))

	// the entity never strips the buff itself
	s.Equal(1.5, s.env.store.Buffs(s.player).Multiplier(entities.StatAttack))
	s.Len(s.env.buffs, 1)
}

func (s *SkillsTestSuite) TestSpawnRejectsUnknownKind() {
	_, err := skills.Spawn(s.env.store, skills.SpawnInput{Def: &entities.Skill{ID: "x", Kind: "laser"}})
	s.Error(err)

	_, err = skills.Spawn(s.env.store, skills.SpawnInput{})
	s.Error(err)
}

func TestSkillsSuite(t *testing.T) {
	suite.Run(t, new(SkillsTestSuite))
}
