// Package game runs one play session: the state machine from splash
// screen to ending and the fixed-order frame update of every entity.
// A Game is not safe for concurrent use; its owner serializes calls.
package game

import (
	"context"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/clients/gamedata"
	"github.com/KirkDiggler/rpg-action/internal/engine/ai"
	"github.com/KirkDiggler/rpg-action/internal/engine/input"
	"github.com/KirkDiggler/rpg-action/internal/engine/physics"
	"github.com/KirkDiggler/rpg-action/internal/engine/sequence"
	"github.com/KirkDiggler/rpg-action/internal/engine/skills"
	"github.com/KirkDiggler/rpg-action/internal/engine/timers"
	"github.com/KirkDiggler/rpg-action/internal/engine/world"
	"github.com/KirkDiggler/rpg-action/internal/entities"
	"github.com/KirkDiggler/rpg-action/internal/errors"
	"github.com/KirkDiggler/rpg-action/internal/pkg/i18n"
)

// Config holds the dependencies of a game
type Config struct {
	Data     gamedata.Client
	EventBus events.EventBus
	Roller   dice.Roller
	Logger   logrus.FieldLogger

	// Localizer resolves text cues; keys pass through when nil
	Localizer *i18n.Localizer
	// Bindings overrides default key bindings, action -> code
	Bindings map[string]string

	PlayerName string
	// StartStage overrides the settings start stage
	StartStage string
	// SkipIntro starts at TITLE instead of the splash screen
	SkipIntro bool
}

// Validate checks the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Data == nil {
		vb.RequiredField("Data")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.Logger == nil {
		vb.RequiredField("Logger")
	}
	return vb.Build()
}

// Game is one session's simulation
type Game struct {
	data      gamedata.Client
	bus       events.EventBus
	logger    logrus.FieldLogger
	localizer *i18n.Localizer

	ctrl   *input.Controller
	brain  *ai.Brain
	skills *skills.System
	store  *world.Store
	timers *timers.Queue

	ctx   context.Context
	tick  uint64
	now   float64
	state State

	splashTimer float64
	seq         *sequence.Manager

	playerName   string
	startStage   string
	pendingStage string
	hero         *entities.Character

	stage   *entities.Stage
	ground  physics.GroundFunc
	gravity float64

	bossDefeated bool
	endingTimer  float64
	endingReady  bool
	newGame      bool
	runStarted   float64
	lastStage    string
	pending      *Outcome
	lastOutcome  *Outcome
	music        string
	cues         []Cue
}

// New creates a game at the splash screen, or at TITLE with SkipIntro
func New(cfg *Config) (*Game, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ctrl, err := input.NewController(&input.Config{Bindings: cfg.Bindings})
	if err != nil {
		return nil, err
	}
	brain, err := ai.New(&ai.Config{Roller: cfg.Roller, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}
	skillSystem, err := skills.New(&skills.Config{Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}

	g := &Game{
		data:       cfg.Data,
		bus:        cfg.EventBus,
		logger:     cfg.Logger.WithField("component", "game"),
		localizer:  cfg.Localizer,
		ctrl:       ctrl,
		brain:      brain,
		skills:     skillSystem,
		store:      world.NewStore(),
		timers:     timers.New(),
		ctx:        context.Background(),
		playerName: cfg.PlayerName,
		startStage: cfg.StartStage,
		ground:     physics.NoGround,
	}
	if g.startStage == "" {
		g.startStage = cfg.Data.Settings().StartStage
	}

	if cfg.SkipIntro {
		g.enterTitle()
	} else {
		g.setState(StateSplash)
		g.splashTimer = cfg.Data.Settings().SplashDuration
		if g.splashTimer <= 0 {
			g.splashTimer = DefaultSplashDuration
		}
	}
	return g, nil
}

// State is the current state
func (g *Game) State() State { return g.state }

// Store exposes the entity store
func (g *Game) Store() *world.Store { return g.store }

// Now is the gameplay clock. It only runs while PLAYING.
func (g *Game) Now() float64 { return g.now }

// Tick is the number of updates so far
func (g *Game) Tick() uint64 { return g.tick }

// Schedule queues fn at gameplay time at. It is dropped if owner is gone
// by then; a zero owner always runs.
func (g *Game) Schedule(at float64, owner world.Handle, fn func()) {
	g.timers.Schedule(at, owner, fn)
}

// HandleInput queues one raw client event for the next frame
func (g *Game) HandleInput(ev input.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	g.ctrl.Handle(ev)
	return nil
}

// NewGame leaves TITLE and loads the start stage on the next frame
func (g *Game) NewGame() error {
	if g.state != StateTitle {
		return errors.FailedPreconditionf("new game is only available at %s, game is %s", StateTitle, g.state)
	}
	g.newGame = true
	return nil
}

// TakeOutcome returns the outcome of a run that finished since the last
// call
func (g *Game) TakeOutcome() (*Outcome, bool) {
	out := g.pending
	g.pending = nil
	return out, out != nil
}

// Update advances the game by dt seconds
func (g *Game) Update(ctx context.Context, dt float64) {
	if dt <= 0 {
		return
	}
	if ctx != nil {
		g.ctx = ctx
	}
	g.tick++

	if g.state == StatePlaying {
		g.now += dt
		g.timers.RunDue(g.now, g.store.Alive)
	}

	in := g.ctrl.Intent(dt)

	switch g.state {
	case StateSplash:
		g.splashTimer -= dt
		if g.splashTimer <= 0 || in.Skip {
			g.enterSequence(StateOpening, g.data.Settings().OpeningSequence)
		}
	case StateOpening, StateEnding:
		g.updateSequence(in, dt)
	case StateTitle:
		if in.Skip || g.newGame {
			g.startNewGame()
		}
	case StateLoading:
		g.loadPending()
	case StatePaused:
		g.validateLockOn()
		g.allocate(in.Allocate)
		if in.Pause {
			g.setState(StatePlaying)
		}
	case StatePlaying:
		g.updatePlaying(in, dt)
	}
}

func (g *Game) setState(s State) {
	if g.state == s {
		return
	}
	from := g.state
	g.state = s
	g.ctrl.Reset()
	g.logger.WithFields(logrus.Fields{"from": from, "to": s}).Debug("state changed")
	g.publish(EventStateChanged, world.NoHandle, world.NoHandle, map[string]interface{}{
		"from": string(from),
		"to":   string(s),
	})
}

func (g *Game) enterSequence(state State, id string) {
	var seq *entities.Sequence
	if id != "" {
		var err error
		seq, err = g.data.GetSequence(id)
		if err != nil {
			g.logger.WithError(err).WithField("sequence", id).Warn("sequence unavailable, skipping it")
			seq = nil
		}
	}
	g.seq = sequence.New(seq)
	g.setState(state)
	if music := g.seq.BGM(); music != "" {
		g.bgm(music)
	}
}

func (g *Game) updateSequence(in input.Intent, dt float64) {
	if in.Skip {
		g.seq.Skip()
	}
	for _, step := range g.seq.Advance(dt) {
		g.text(step.Text)
		if step.Camera != nil {
			shot := *step.Camera
			g.cue(Cue{Kind: CueCamera, Camera: &shot})
		}
		if step.Audio != "" {
			g.sfx(step.Audio, step.Audio, world.NoHandle)
		}
	}
	if !g.seq.Done() {
		return
	}
	if g.state == StateEnding {
		g.finishRun(ResultCompleted)
		g.enterTitle()
		return
	}
	g.enterTitle()
}

func (g *Game) enterTitle() {
	g.store.Reset()
	g.timers.Clear()
	g.stage = nil
	g.seq = nil
	g.newGame = false
	g.setState(StateTitle)
	g.bgm(g.data.Settings().TitleBGM)
}

func (g *Game) startNewGame() {
	g.store.Reset()
	g.timers.Clear()
	g.newGame = false
	g.hero = nil
	g.stage = nil
	g.endingReady = false
	g.bossDefeated = false
	g.endingTimer = 0
	g.lastOutcome = nil
	g.runStarted = g.now
	g.pendingStage = g.startStage
	g.setState(StateLoading)
}

// finishRun records the outcome of the current run for TakeOutcome
func (g *Game) finishRun(result Result) {
	out := &Outcome{
		Result:     result,
		PlayerName: g.playerName,
		Stage:      g.lastStage,
		PlayTime:   g.now - g.runStarted,
	}
	if p := g.store.PlayerHandle(); p != world.NoHandle {
		pl := g.store.Player(p)
		out.Level = pl.Level
		out.Experience = pl.Experience
		out.EnemiesDefeated = pl.EnemiesDefeated
		if out.PlayerName == "" {
			out.PlayerName = pl.Name
		}
	}
	g.pending = out
	g.lastOutcome = out
	g.logger.WithFields(logrus.Fields{
		"result":           result,
		"stage":            out.Stage,
		"level":            out.Level,
		"enemies_defeated": out.EnemiesDefeated,
	}).Info("run finished")
}

func (g *Game) updatePlaying(in input.Intent, dt float64) {
	g.updatePlayer(in, dt)
	g.allocate(in.Allocate)

	if g.state != StatePlaying {
		return
	}
	if in.Pause || in.PointerLockLost {
		g.setState(StatePaused)
		return
	}

	for _, e := range g.store.Enemies() {
		if !g.store.Alive(e) {
			continue
		}
		g.brain.Update(g, e, dt)
		g.integrate(e, dt)
	}
	for _, s := range g.store.Skills() {
		if g.store.Alive(s) {
			g.skills.Update(g, s, dt)
		}
	}
	for _, n := range g.store.NPCs() {
		if g.store.Alive(n) {
			g.updateNPC(n, dt)
		}
	}

	g.resolvePickups()
	g.removeDefeated()
	if g.state != StatePlaying {
		return
	}
	g.checkExits()
	if g.state != StatePlaying {
		return
	}
	g.updateEndingGate(dt)
	g.store.Compact()
}

// updateEndingGate counts down after the boss dies, holding while the
// player still has status points to spend. A dead player never reaches
// the ending.
func (g *Game) updateEndingGate(dt float64) {
	if !g.bossDefeated || g.endingReady {
		return
	}
	p := g.store.PlayerHandle()
	if !g.store.Living(p) {
		return
	}
	if g.store.Player(p).StatusPoints == 0 {
		g.endingTimer -= dt
	}
	if g.endingTimer <= 0 {
		g.endingReady = true
		g.lastStage = g.stageID()
		g.enterSequence(StateEnding, g.data.Settings().EndingSequence)
	}
}

func (g *Game) stageID() string {
	if g.stage == nil {
		return ""
	}
	return g.stage.ID
}

func (g *Game) updateNPC(n world.Handle, dt float64) {
	if p := g.store.PlayerHandle(); p != world.NoHandle {
		body := g.store.Body(n)
		pb := g.store.Body(p)
		if body.Pos.HorizontalDist(pb.Pos) <= InteractRange {
			body.Yaw = body.Pos.YawToward(pb.Pos)
		}
	}
	g.integrate(n, dt)
}

// integrate runs physics, footsteps and the per-frame timers of a
// character
func (g *Game) integrate(h world.Handle, dt float64) {
	body := g.store.Body(h)
	if body == nil {
		return
	}
	before := body.Pos
	physics.Step(body, g.gravity, groundSnap, g.ground, dt)
	moved := body.Pos.HorizontalDist(before)

	anim := g.store.Animation(h)
	if anim != nil {
		walking := anim.State == world.AnimWalk || anim.State == world.AnimDash || anim.State == world.AnimRolling
		if fs := g.store.Footsteps(h); fs != nil && body.OnGround && walking {
			for i := fs.Advance(moved); i > 0; i-- {
				g.sfx(SFXFootstep, g.characterSound(h, SFXFootstep), h)
			}
		}
		anim.Tick(dt)
	}
	if hp := g.store.Health(h); hp != nil && hp.FlashTimer > 0 {
		hp.FlashTimer -= dt
		if hp.FlashTimer < 0 {
			hp.FlashTimer = 0
		}
	}
	if buffs := g.store.Buffs(h); buffs != nil {
		buffs.Tick(dt)
	}
}

func (g *Game) characterSound(h world.Handle, name string) string {
	id := g.store.Identity(h)
	if id == nil {
		return ""
	}
	if id.Kind == world.KindPlayer && g.hero != nil {
		return soundOf(g.hero, name)
	}
	c, err := g.data.GetCharacter(id.DataID)
	if err != nil {
		return ""
	}
	return soundOf(c, name)
}

func soundOf(c *entities.Character, name string) string {
	switch name {
	case SFXHit:
		return c.Sounds.Hit
	case SFXDeath:
		return c.Sounds.Death
	case SFXFootstep:
		return c.Sounds.Footstep
	}
	return ""
}
