// Package simulation runs a game headless at a fixed step against a
// scripted input timeline
package simulation

//go:generate mockgen -destination=mock/mock_service.go -package=simulationmock github.com/KirkDiggler/rpg-action/internal/services/simulation Service

import (
	"context"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/clients/gamedata"
	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/errors"
	"github.com/KirkDiggler/rpg-action/internal/pkg/i18n"
)

// DefaultTickHz is the fixed step when RunInput leaves it unset
const DefaultTickHz = 30

// Service defines headless simulation
type Service interface {
	Run(ctx context.Context, input *RunInput) (*RunOutput, error)
}

// RunInput defines a simulation
type RunInput struct {
	// StartStage defaults to the data set's start stage
	StartStage string
	PlayerName string
	// Seconds of wall time to simulate, counted from the new game
	Seconds float64
	TickHz  int
	Script  *Script
	// StopOnOutcome ends the run as soon as a run finishes
	StopOnOutcome bool
}

// RunOutput summarizes a simulation
type RunOutput struct {
	Ticks   uint64
	Elapsed float64
	State   game.State
	Stage   string
	Player  *game.PlayerView
	// EnemiesAlive counts living enemies on the final stage
	EnemiesAlive int
	// Events counts domain events by type
	Events   map[string]int
	Outcomes []*game.Outcome
}

// Config holds the dependencies for the simulation service
type Config struct {
	Data   gamedata.Client
	Logger logrus.FieldLogger
	// Roller defaults to dice.DefaultRoller
	Roller dice.Roller
	// Localizer is optional
	Localizer *i18n.Localizer
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Data == nil {
		vb.RequiredField("Data")
	}
	if c.Logger == nil {
		vb.RequiredField("Logger")
	}

	return vb.Build()
}

type service struct {
	data      gamedata.Client
	logger    logrus.FieldLogger
	roller    dice.Roller
	localizer *i18n.Localizer
}

// NewService creates a simulation service
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}
	return &service{
		data:      cfg.Data,
		logger:    cfg.Logger.WithField("component", "simulation"),
		roller:    roller,
		localizer: cfg.Localizer,
	}, nil
}

var countedEvents = []string{
	game.EventEntityDamaged,
	game.EventEntityDied,
	game.EventBossDefeated,
	game.EventPlayerLevelUp,
	game.EventItemPickedUp,
	game.EventStateChanged,
}

func (s *service) Run(ctx context.Context, input *RunInput) (*RunOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Seconds <= 0 {
		return nil, errors.InvalidArgument("seconds must be positive")
	}
	if input.TickHz < 0 {
		return nil, errors.InvalidArgument("tick rate cannot be negative")
	}
	if input.Script != nil {
		if err := input.Script.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid script")
		}
	}
	if input.StartStage != "" {
		if _, err := s.data.GetStage(input.StartStage); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "unknown start stage")
		}
	}

	tickHz := input.TickHz
	if tickHz == 0 {
		tickHz = DefaultTickHz
	}
	dt := 1 / float64(tickHz)

	out := &RunOutput{Events: make(map[string]int)}

	bus := events.NewBus()
	for _, eventType := range countedEvents {
		eventType := eventType
		bus.SubscribeFunc(eventType, 0, func(_ context.Context, _ events.Event) error {
			out.Events[eventType]++
			return nil
		})
	}

	g, err := game.New(&game.Config{
		Data:       s.data,
		EventBus:   bus,
		Roller:     s.roller,
		Logger:     s.logger,
		Localizer:  s.localizer,
		PlayerName: input.PlayerName,
		StartStage: input.StartStage,
		SkipIntro:  true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create game")
	}
	if err := g.NewGame(); err != nil {
		return nil, err
	}

	var steps []Step
	if input.Script != nil {
		steps = input.Script.Steps
	}

	totalTicks := int(input.Seconds*float64(tickHz) + 0.5)
	for i := 0; i < totalTicks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.FromContext(err, "simulation cancelled")
		}

		elapsed := float64(i) * dt
		for len(steps) > 0 && steps[0].At <= elapsed {
			for _, ev := range steps[0].Events {
				if err := g.HandleInput(ev); err != nil {
					return nil, err
				}
			}
			steps = steps[1:]
		}

		g.Update(ctx, dt)
		out.Ticks++
		out.Elapsed = float64(i+1) * dt

		if outcome, ok := g.TakeOutcome(); ok {
			out.Outcomes = append(out.Outcomes, outcome)
			if input.StopOnOutcome {
				break
			}
		}
	}

	snap := g.Snapshot()
	out.State = snap.State
	out.Stage = snap.Stage
	out.Player = snap.Player
	for _, e := range snap.Enemies {
		if !e.Dead {
			out.EnemiesAlive++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"ticks":    out.Ticks,
		"state":    out.State,
		"outcomes": len(out.Outcomes),
	}).Info("simulation finished")

	return out, nil
}
