package game

import (
	"context"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-action/internal/clients/gamedata"
	gamedatamock "github.com/KirkDiggler/rpg-action/internal/clients/gamedata/mock"
	"github.com/KirkDiggler/rpg-action/internal/engine/input"
	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/pkg/i18n"
	"github.com/KirkDiggler/rpg-action/internal/testutils"
	"github.com/KirkDiggler/rpg-action/internal/testutils/mocks"
)

// frame is an exact binary fraction so accumulated time stays exact
const frame = 1.0 / 16

type fixedRoller struct{ value int }

func (r *fixedRoller) Roll(_ int) (int, error) { return r.value, nil }
func (r *fixedRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = r.value
	}
	return out, nil
}

type GameTestSuite struct {
	suite.Suite
	ctx    context.Context
	bus    events.EventBus
	data   gamedata.Client
	game   *Game
	events map[string]int
}

func (s *GameTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.bus = events.NewBus()
	s.data = testutils.GameData(s.T())
	s.events = make(map[string]int)

	for _, eventType := range []string{
		EventEntityDamaged, EventEntityDied, EventBossDefeated,
		EventPlayerLevelUp, EventItemPickedUp, EventStateChanged,
	} {
		eventType := eventType
		s.bus.SubscribeFunc(eventType, 0, func(_ context.Context, _ events.Event) error {
			s.events[eventType]++
			return nil
		})
	}

	s.game = s.newGame(nil)
}

func (s *GameTestSuite) newGame(mutate func(*Config)) *Game {
	logger, _ := test.NewNullLogger()
	catalog, err := i18n.New(testutils.Messages())
	s.Require().NoError(err)

	cfg := &Config{
		Data:       s.data,
		EventBus:   s.bus,
		Roller:     &fixedRoller{value: 100},
		Logger:     logger,
		Localizer:  catalog.Localizer("en-US"),
		PlayerName: "tester",
		SkipIntro:  true,
	}
	if mutate != nil {
		mutate(cfg)
	}
	g, err := New(cfg)
	s.Require().NoError(err)
	return g
}

func (s *GameTestSuite) run(g *Game, seconds float64) {
	for t := 0.0; t < seconds; t += frame {
		g.Update(s.ctx, frame)
	}
}

func (s *GameTestSuite) startPlaying(g *Game) world.Handle {
	s.Require().NoError(g.NewGame())
	g.Update(s.ctx, frame)
	s.Require().Equal(StateLoading, g.State())
	g.Update(s.ctx, frame)
	s.Require().Equal(StatePlaying, g.State())

	p := g.store.PlayerHandle()
	s.Require().NotEqual(world.NoHandle, p)
	return p
}

func (s *GameTestSuite) enemyByData(g *Game, dataID string) world.Handle {
	for _, e := range g.store.Enemies() {
		if id := g.store.Identity(e); id != nil && id.DataID == dataID {
			return e
		}
	}
	s.FailNow("enemy not found", dataID)
	return world.NoHandle
}

func cuesOf(snap *Snapshot, kind CueKind) []Cue {
	var out []Cue
	for _, c := range snap.Cues {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (s *GameTestSuite) TestSplashOpeningTitle() {
	g := s.newGame(func(cfg *Config) { cfg.SkipIntro = false })
	s.Equal(StateSplash, g.State())

	s.run(g, 2.5)
	s.Equal(StateOpening, g.State())

	g.Update(s.ctx, frame)
	snap := g.Snapshot()
	texts := cuesOf(snap, CueText)
	s.Require().Len(texts, 1)
	s.Equal("Long ago, the keep fell silent.", texts[0].Text)
	s.Len(cuesOf(snap, CueCamera), 1)
	s.Contains(cuesOf(snap, CueBGM), Cue{Kind: CueBGM, Sound: "assets/audio/opening.mp3"})

	s.run(g, 3)
	s.Equal(StateTitle, g.State())
	s.Contains(cuesOf(g.Snapshot(), CueBGM), Cue{Kind: CueBGM, Sound: "assets/audio/title.mp3"})
	_, ok := g.TakeOutcome()
	s.False(ok)
}

func (s *GameTestSuite) TestSkipJumpsThroughIntro() {
	g := s.newGame(func(cfg *Config) { cfg.SkipIntro = false })
	press := func() {
		s.Require().NoError(g.HandleInput(input.Event{Type: input.EventKeyDown, Code: "Enter"}))
		s.Require().NoError(g.HandleInput(input.Event{Type: input.EventKeyUp, Code: "Enter"}))
		g.Update(s.ctx, frame)
	}

	press()
	s.Equal(StateOpening, g.State())
	press()
	s.Equal(StateTitle, g.State())
	press()
	s.Equal(StateLoading, g.State())
	g.Update(s.ctx, frame)
	s.Equal(StatePlaying, g.State())
}

func (s *GameTestSuite) TestNewGameLoadsStartStage() {
	p := s.startPlaying(s.game)

	snap := s.game.Snapshot()
	s.Equal(testutils.FieldID, snap.Stage)
	s.Len(snap.Enemies, 1)
	s.Len(snap.NPCs, 1)
	s.Len(snap.Items, 1)
	s.Require().NotNil(snap.Player)
	s.Equal("tester", snap.Player.Name)
	s.Equal(100, snap.Player.HP)
	s.Equal(testutils.SwordID, snap.Player.Weapon)
	s.Equal([]string{testutils.PotionID, testutils.EtherID}, snap.Player.Inventory)
	s.Contains(cuesOf(snap, CueBGM), Cue{Kind: CueBGM, Sound: "assets/audio/field.mp3"})

	s.game.Update(s.ctx, frame)
	s.True(s.game.store.Body(p).OnGround)

	s.Error(s.game.NewGame(), "new game outside TITLE")
}

func (s *GameTestSuite) TestLoadFailureReturnsToTitle() {
	g := s.newGame(func(cfg *Config) { cfg.StartStage = "nowhere" })
	s.Require().NoError(g.NewGame())
	g.Update(s.ctx, frame)
	g.Update(s.ctx, frame)
	s.Equal(StateTitle, g.State())
}

func (s *GameTestSuite) TestStrongAttackAbortsOnShortStamina() {
	p := s.startPlaying(s.game)
	slime := s.enemyByData(s.game, testutils.SlimeID)
	s.game.store.Body(slime).Pos = entities.Vec3{X: 1}
	s.game.store.Player(p).Stamina = 5

	// sword 10 + 10*1.4 = 24 damage, 12 stamina
	s.game.strongAttack(p, 1.4)

	s.Equal(5.0, s.game.store.Player(p).Stamina)
	s.Equal(30, s.game.store.Health(slime).HP)

	s.game.store.Player(p).Stamina = 12
	s.game.strongAttack(p, 1.4)
	s.Equal(0.0, s.game.store.Player(p).Stamina)
	s.Equal(6, s.game.store.Health(slime).HP)
}

func (s *GameTestSuite) TestStrongAttackCapsAtMaxChargeDamage() {
	p := s.startPlaying(s.game)
	slime := s.enemyByData(s.game, testutils.SlimeID)
	s.game.store.Body(slime).Pos = entities.Vec3{X: 1}
	s.game.store.Health(slime).SetMax(100)
	s.game.store.Health(slime).HP = 100

	s.game.strongAttack(p, 30)

	s.Equal(60, s.game.store.Health(slime).HP)
	s.Equal(80.0, s.game.store.Player(p).Stamina)
}

func (s *GameTestSuite) TestWeakAttackByTap() {
	p := s.startPlaying(s.game)
	slime := s.enemyByData(s.game, testutils.SlimeID)
	s.game.store.Body(slime).Pos = entities.Vec3{X: 2}

	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventMouseDown, Code: input.MouseLeft}))
	s.game.Update(s.ctx, frame)
	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventMouseUp, Code: input.MouseLeft}))
	s.game.Update(s.ctx, frame)

	s.Equal(20, s.game.store.Health(slime).HP)
	s.Equal(world.AnimAttackWeak, s.game.store.Animation(p).State)
	s.InDelta(92.0, s.game.store.Player(p).Stamina, 1e-9)
	s.Equal(1, s.events[EventEntityDamaged])
}

func (s *GameTestSuite) TestEnemyRemovalAwardsExperienceAndDrops() {
	p := s.startPlaying(s.game)
	slime := s.enemyByData(s.game, testutils.SlimeID)

	s.game.HitEnemy(p, slime, 30)
	s.True(s.game.store.Health(slime).Dead)
	s.Equal(1, s.events[EventEntityDied])

	s.run(s.game, 1)
	s.True(s.game.store.Alive(slime), "still fading")

	s.run(s.game, 1.1)
	s.False(s.game.store.Alive(slime))

	pl := s.game.store.Player(p)
	s.Equal(60, pl.Experience)
	s.Equal(2, pl.Level)
	s.Equal(StatusPointsPerLevel, pl.StatusPoints)
	s.Equal(1, pl.EnemiesDefeated)
	s.Equal(1, s.events[EventPlayerLevelUp])

	var drops []string
	for _, it := range s.game.Snapshot().Items {
		drops = append(drops, it.ItemID)
	}
	s.Contains(drops, testutils.PotionID)
}

func (s *GameTestSuite) TestAllocateStatus() {
	p := s.startPlaying(s.game)
	pl := s.game.store.Player(p)
	pl.StatusPoints = 4

	s.Require().NoError(s.game.AllocateStatus(world.StatusVitality))
	s.Require().NoError(s.game.AllocateStatus(world.StatusEndurance))
	s.Require().NoError(s.game.AllocateStatus(world.StatusStrength))
	s.Require().NoError(s.game.AllocateStatus(world.StatusMind))

	pl = s.game.store.Player(p)
	s.Equal(110, s.game.store.Health(p).MaxHP)
	s.Equal(110.0, pl.MaxStamina)
	s.InDelta(0.05, pl.AttackBonus, 1e-9)
	s.Equal(55.0, pl.MaxFP)
	s.Equal(0, pl.StatusPoints)

	s.Error(s.game.AllocateStatus(world.StatusMind))

	pl.StatusPoints = 1
	s.Error(s.game.AllocateStatus("luck"))
	s.Equal(1, pl.StatusPoints)
}

func (s *GameTestSuite) TestGuardBlocksFrontalHit() {
	p := s.startPlaying(s.game)
	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventMouseDown, Code: input.MouseRight}))
	s.game.Update(s.ctx, frame)

	pl := s.game.store.Player(p)
	s.Require().True(pl.Guarding)
	before := pl.Stamina

	// player faces +Z
	s.game.DamagePlayer(world.NoHandle, entities.Vec3{Z: 2}, 20)
	s.Equal(90, s.game.store.Health(p).HP)
	s.Equal(before-5, s.game.store.Player(p).Stamina)

	s.game.DamagePlayer(world.NoHandle, entities.Vec3{Z: -2}, 20)
	s.Equal(70, s.game.store.Health(p).HP)
}

func (s *GameTestSuite) TestExhaustedGuardStaysBroken() {
	p := s.startPlaying(s.game)
	s.game.store.Player(p).Stamina = 0
	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventMouseDown, Code: input.MouseRight}))

	for i := 0; i < 5; i++ {
		s.game.Update(s.ctx, frame)
		s.False(s.game.store.Player(p).Guarding, "hit %d", i)
		s.game.DamagePlayer(world.NoHandle, entities.Vec3{Z: 2}, 20)
	}

	s.Equal(0, s.game.store.Health(p).HP)
	s.True(s.game.store.Health(p).Dead)
}

func (s *GameTestSuite) TestGuardReleaseClearsBreak() {
	p := s.startPlaying(s.game)
	pl := s.game.store.Player(p)
	pl.Stamina = 0
	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventMouseDown, Code: input.MouseRight}))
	s.game.Update(s.ctx, frame)
	s.True(pl.GuardBroken)

	pl.Stamina = pl.MaxStamina
	s.game.Update(s.ctx, frame)
	s.False(pl.Guarding)

	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventMouseUp, Code: input.MouseRight}))
	s.game.Update(s.ctx, frame)
	s.False(pl.GuardBroken)

	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventMouseDown, Code: input.MouseRight}))
	s.game.Update(s.ctx, frame)
	s.True(pl.Guarding)
}

func (s *GameTestSuite) TestPlayerDeathReturnsToTitle() {
	p := s.startPlaying(s.game)
	s.game.DamagePlayer(world.NoHandle, entities.Vec3{Z: -1}, 1000)
	s.Require().True(s.game.store.Health(p).Dead)

	s.run(s.game, 2.5)
	s.Equal(StatePlaying, s.game.State())

	s.run(s.game, 0.5)
	s.Equal(StateTitle, s.game.State())

	out, ok := s.game.TakeOutcome()
	s.Require().True(ok)
	s.Equal(ResultDefeated, out.Result)
	s.Equal(testutils.FieldID, out.Stage)
	s.Equal("tester", out.PlayerName)

	_, ok = s.game.TakeOutcome()
	s.False(ok)
	s.Equal(ResultDefeated, s.game.Snapshot().Outcome.Result)
}

func (s *GameTestSuite) TestBossDeathEntersEndingOnce() {
	g := s.newGame(func(cfg *Config) { cfg.StartStage = testutils.KeepID })
	p := s.startPlaying(g)
	golem := s.enemyByData(g, testutils.GolemID)

	g.HitEnemy(p, golem, 200)
	s.True(g.bossDefeated)
	s.Equal(1, s.events[EventBossDefeated])

	s.run(g, 0.9375)
	s.Equal(StatePlaying, g.State())

	g.Update(s.ctx, frame)
	s.Equal(StateEnding, g.State())
	s.True(g.endingReady)

	s.run(g, 2)
	s.Equal(StateTitle, g.State())
	out, ok := g.TakeOutcome()
	s.Require().True(ok)
	s.Equal(ResultCompleted, out.Result)
	s.Equal(testutils.KeepID, out.Stage)
}

func (s *GameTestSuite) TestPlayerDeathAfterBossIsDefeat() {
	g := s.newGame(func(cfg *Config) { cfg.StartStage = testutils.KeepID })
	p := s.startPlaying(g)
	golem := s.enemyByData(g, testutils.GolemID)

	g.HitEnemy(p, golem, 200)
	s.run(g, 0.5)
	g.DamagePlayer(world.NoHandle, entities.Vec3{Z: -1}, 1000)
	s.Require().True(g.store.Health(p).Dead)

	s.run(g, 5)
	s.Equal(StateTitle, g.State())
	s.False(g.endingReady)
	out, ok := g.TakeOutcome()
	s.Require().True(ok)
	s.Equal(ResultDefeated, out.Result)
}

func (s *GameTestSuite) TestEndingWaitsForStatusPoints() {
	g := s.newGame(func(cfg *Config) { cfg.StartStage = testutils.KeepID })
	p := s.startPlaying(g)
	golem := s.enemyByData(g, testutils.GolemID)
	g.store.Player(p).StatusPoints = 1

	g.HitEnemy(p, golem, 200)
	s.run(g, 1.5)
	s.Equal(StatePlaying, g.State())
	s.Equal(EndingDelay, g.endingTimer)

	// the boss has faded by now and its experience brought more points
	s.run(g, 1)
	for g.store.Player(p).StatusPoints > 0 {
		s.Require().NoError(g.AllocateStatus(world.StatusVitality))
	}
	s.run(g, 0.9375)
	s.Equal(StatePlaying, g.State())
	g.Update(s.ctx, frame)
	s.Equal(StateEnding, g.State())
}

func (s *GameTestSuite) TestPickupGrantsWeapon() {
	p := s.startPlaying(s.game)
	s.game.store.Body(p).Pos = entities.Vec3{Z: 5}
	s.game.Update(s.ctx, frame)

	pl := s.game.store.Player(p)
	s.Equal([]string{testutils.SwordID, testutils.AxeID}, pl.Weapons)
	s.Equal(1, s.events[EventItemPickedUp])
	s.Empty(s.game.Snapshot().Items)

	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventKeyDown, Code: "Digit1"}))
	s.game.Update(s.ctx, frame)
	s.Equal(testutils.AxeID, s.game.store.Player(p).CurrentWeapon())
}

func (s *GameTestSuite) TestStageExitCarriesPlayer() {
	p := s.startPlaying(s.game)
	s.game.store.Player(p).Experience = 42
	s.game.store.Body(p).Pos = entities.Vec3{Z: 40}

	s.game.Update(s.ctx, frame)
	s.Equal(StateLoading, s.game.State())
	s.game.Update(s.ctx, frame)
	s.Equal(StatePlaying, s.game.State())

	s.Equal(p, s.game.store.PlayerHandle())
	s.Equal(42, s.game.store.Player(p).Experience)
	snap := s.game.Snapshot()
	s.Equal(testutils.KeepID, snap.Stage)
	s.Require().Len(snap.Enemies, 1)
	s.Equal(testutils.GolemID, snap.Enemies[0].DataID)
	s.Empty(snap.NPCs)
}

func (s *GameTestSuite) TestPauseFreezesGameplay() {
	p := s.startPlaying(s.game)
	slime := s.enemyByData(s.game, testutils.SlimeID)
	before := s.game.store.Body(slime).Pos

	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventKeyDown, Code: "Escape"}))
	s.game.Update(s.ctx, frame)
	s.Equal(StatePaused, s.game.State())

	s.run(s.game, 1)
	s.Equal(before, s.game.store.Body(slime).Pos)

	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventKeyUp, Code: "Escape"}))
	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventKeyDown, Code: "Escape"}))
	s.game.Update(s.ctx, frame)
	s.Equal(StatePlaying, s.game.State())
	s.True(s.game.store.Living(p))
}

func (s *GameTestSuite) TestPointerLockLossPauses() {
	s.startPlaying(s.game)
	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventPointerLock, Locked: true}))
	s.game.Update(s.ctx, frame)
	s.Require().NoError(s.game.HandleInput(input.Event{Type: input.EventPointerLock, Locked: false}))
	s.game.Update(s.ctx, frame)
	s.Equal(StatePaused, s.game.State())
}

func (s *GameTestSuite) TestCastFireballAfterCastTime() {
	p := s.startPlaying(s.game)
	s.game.store.Body(s.enemyByData(s.game, testutils.SlimeID)).Pos = entities.Vec3{X: 40}

	s.game.castPlayerSkill(p)
	s.Equal(40.0, s.game.store.Player(p).FP)
	s.Empty(s.game.Snapshot().Skills)

	s.run(s.game, 0.25)
	skills := s.game.Snapshot().Skills
	s.Require().Len(skills, 1)
	s.Equal(testutils.FireballID, skills[0].DataID)

	s.run(s.game, 2.25)
	s.Empty(s.game.Snapshot().Skills)
}

func (s *GameTestSuite) TestCastWithoutFPIsNoop() {
	p := s.startPlaying(s.game)
	s.game.store.Player(p).FP = 5

	s.game.castPlayerSkill(p)
	s.Equal(5.0, s.game.store.Player(p).FP)
	s.Zero(s.game.timers.Len())
}

func (s *GameTestSuite) TestUseItemConsumesIt() {
	p := s.startPlaying(s.game)
	s.game.store.Health(p).HP = 50

	s.game.useItem(p)
	s.Equal(80, s.game.store.Health(p).HP)
	s.Equal([]string{testutils.EtherID}, s.game.store.Player(p).Inventory)
}

func (s *GameTestSuite) TestInteractLocalizesDialogue() {
	g := s.newGame(func(cfg *Config) {
		catalog, err := i18n.New(testutils.Messages())
		s.Require().NoError(err)
		cfg.Localizer = catalog.Localizer("ja")
	})
	p := s.startPlaying(g)
	g.Snapshot()

	g.interact(p)
	g.interact(p)
	texts := cuesOf(g.Snapshot(), CueText)
	s.Require().Len(texts, 2)
	s.Equal("城は北にある。", texts[0].Text)
	s.Equal("Only the strong return.", texts[1].Text)
}

func (s *GameTestSuite) TestLockOnPicksNearestAndClearsOnDeath() {
	p := s.startPlaying(s.game)
	slime := s.enemyByData(s.game, testutils.SlimeID)

	s.game.toggleLockOn(p)
	s.Equal(slime, s.game.store.Player(p).LockOn)
	s.Equal(s.game.store.Serial(slime), s.game.Snapshot().LockOn)

	s.game.HitEnemy(p, slime, 30)
	s.game.validateLockOn()
	s.Equal(world.NoHandle, s.game.store.Player(p).LockOn)
}

func TestGameSuite(t *testing.T) {
	suite.Run(t, new(GameTestSuite))
}

func TestMissingPlayerCharacterReturnsToTitle(t *testing.T) {
	ctrl := gomock.NewController(t)
	tables := testutils.GameTables()
	tables.Characters = tables.Characters[1:]

	data := gamedatamock.NewMockClient(ctrl)
	mocks.ExpectTables(data, tables)

	logger, _ := test.NewNullLogger()
	g, err := New(&Config{
		Data:      data,
		EventBus:  events.NewBus(),
		Roller:    &fixedRoller{value: 1},
		Logger:    logger,
		SkipIntro: true,
	})
	require.NoError(t, err)
	require.NoError(t, g.NewGame())

	g.Update(context.Background(), frame)
	g.Update(context.Background(), frame)

	assert.Equal(t, StateTitle, g.State())
	assert.Equal(t, world.NoHandle, g.Store().PlayerHandle())
	assert.Zero(t, g.Store().Count())
}
