package world_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
)

type StoreTestSuite struct {
	suite.Suite
	store *world.Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.store = world.NewStore()
}

func (s *StoreTestSuite) spawnSlime(x float64) world.Handle {
	return s.store.SpawnCharacter(world.CharacterSpec{
		Kind:   world.KindEnemy,
		DataID: "slime",
		Name:   "Slime",
		Body:   world.Body{Pos: entities.Vec3{X: x}, Height: 1, Radius: 0.5},
		Health: world.Health{HP: 30, MaxHP: 30},
		Enemy:  &world.EnemyAI{Experience: 10},
	})
}

func (s *StoreTestSuite) TestSpawnCharacterComponents() {
	h := s.spawnSlime(3)

	s.Require().True(s.store.Alive(h))
	s.Assert().Equal(uint64(1), s.store.Serial(h))
	s.Assert().Equal(world.KindEnemy, s.store.Identity(h).Kind)
	s.Assert().Equal(3.0, s.store.Body(h).Pos.X)
	s.Assert().Equal(30, s.store.Health(h).HP)
	s.Assert().Equal(world.AnimIdle, s.store.Animation(h).State)
	s.Assert().Equal(1.0, s.store.Animation(h).Opacity)
	s.Assert().NotNil(s.store.Buffs(h))
	s.Assert().NotNil(s.store.Footsteps(h))
	s.Assert().NotNil(s.store.EnemyAI(h))
	s.Assert().Nil(s.store.Player(h))
	s.Assert().Nil(s.store.Skill(h))
	s.Assert().Equal([]world.Handle{h}, s.store.Enemies())
}

func (s *StoreTestSuite) TestDespawnTombstonesUntilCompact() {
	a := s.spawnSlime(1)
	b := s.spawnSlime(2)

	s.store.Despawn(a)
	s.Assert().False(s.store.Alive(a))
	s.Assert().Nil(s.store.Body(a))
	s.Assert().Len(s.store.Enemies(), 2, "lists are not spliced before compaction")

	s.store.Compact()
	s.Assert().Equal([]world.Handle{b}, s.store.Enemies())
	s.Assert().Equal(1, s.store.Count())
}

func (s *StoreTestSuite) TestStaleHandleNeverResolves() {
	old := s.spawnSlime(1)
	s.store.Despawn(old)
	s.store.Compact()

	fresh := s.spawnSlime(5)
	s.Assert().False(s.store.Alive(old))
	s.Assert().True(s.store.Alive(fresh))
	s.Assert().NotEqual(s.store.Serial(fresh), uint64(1))
	s.Assert().Nil(s.store.Health(old))
}

func (s *StoreTestSuite) TestClearStageKeepsPlayer() {
	p := s.store.SpawnCharacter(world.CharacterSpec{
		Kind:   world.KindPlayer,
		Body:   world.Body{Height: 1.8},
		Health: world.Health{HP: 100, MaxHP: 100},
		Player: &world.Player{Level: 1},
	})
	e := s.spawnSlime(1)
	item := s.store.SpawnPickup("potion", world.Body{}, 0)
	sk := s.store.SpawnSkill(world.KindProjectile, "fireball", world.Body{}, world.Skill{Caster: p})

	s.store.ClearStage()

	s.Assert().Equal(p, s.store.PlayerHandle())
	s.Assert().False(s.store.Alive(e))
	s.Assert().False(s.store.Alive(item))
	s.Assert().False(s.store.Alive(sk))
	s.Assert().Empty(s.store.Enemies())
	s.Assert().Equal(1, s.store.Count())

	s.store.Reset()
	s.Assert().Equal(world.NoHandle, s.store.PlayerHandle())
	s.Assert().Equal(0, s.store.Count())
}

func (s *StoreTestSuite) TestPickupDefaultsAmount() {
	h := s.store.SpawnPickup("potion", world.Body{}, 0)
	s.Assert().Equal(1, s.store.Pickup(h).Amount)
	s.Assert().Equal(world.KindItem, s.store.Identity(h).Kind)
}

func (s *StoreTestSuite) TestLivingAndRef() {
	h := s.spawnSlime(0)
	s.Assert().True(s.store.Living(h))

	s.store.Health(h).TakeDamage(100)
	s.Assert().True(s.store.Alive(h))
	s.Assert().False(s.store.Living(h))

	ref := s.store.Ref(h)
	s.Require().NotNil(ref)
	s.Assert().Equal("1", ref.GetID())
	s.Assert().Equal("enemy", ref.GetType())
	s.Assert().Nil(s.store.Ref(world.NoHandle))
	s.Assert().False(s.store.Alive(world.NoHandle))
}
