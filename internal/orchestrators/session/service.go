// Package session runs games on fixed tick loops and fans their
// snapshots out to subscribers
package session

//go:generate mockgen -destination=mock/mock_service.go -package=sessionmock github.com/KirkDiggler/rpg-action/internal/orchestrators/session Service

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/clients/gamedata"
	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/errors"
	"github.com/KirkDiggler/rpg-action/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-action/internal/pkg/i18n"
	"github.com/KirkDiggler/rpg-action/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-action/internal/repositories/runs"
)

const (
	// DefaultTickHz is the simulation rate when none is configured
	DefaultTickHz = 30
	// DefaultSubscriberBuffer is how many snapshots a slow subscriber may
	// fall behind before frames are dropped
	DefaultSubscriberBuffer = 8
	// DefaultIdleTimeout ends sessions nobody has watched for this long
	DefaultIdleTimeout = 5 * time.Minute

	inboxSize = 256
)

// Service defines the interface for session operations
type Service interface {
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)
	SubmitInput(ctx context.Context, input *SubmitInputInput) (*SubmitInputOutput, error)
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)
	EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error)
	ListRuns(ctx context.Context, input *ListRunsInput) (*ListRunsOutput, error)

	// Shutdown ends every session and stops accepting new ones
	Shutdown(ctx context.Context) error
}

// Config holds the dependencies for the session service
type Config struct {
	Data        gamedata.Client
	Runs        runs.Repository
	IDGenerator idgen.Generator
	Clock       clock.Clock
	Logger      logrus.FieldLogger

	// RunIDs names run records; defaults to run_<uuid>
	RunIDs idgen.Generator

	// Catalog localizes text cues; nil leaves keys untranslated
	Catalog *i18n.Catalog
	// DefaultLocale applies when a session asks for none
	DefaultLocale string
	// Roller defaults to dice.DefaultRoller
	Roller dice.Roller
	// Bindings overrides default key bindings for every session
	Bindings map[string]string

	TickHz      int
	BroadcastHz int
	MaxSessions int

	SubscriberBuffer int
	IdleTimeout      time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Data == nil {
		vb.RequiredField("Data")
	}
	if c.Runs == nil {
		vb.RequiredField("Runs")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.Logger == nil {
		vb.RequiredField("Logger")
	}
	if c.MaxSessions <= 0 {
		vb.Field("MaxSessions", "must be positive")
	}
	if c.TickHz < 0 {
		vb.Field("TickHz", "cannot be negative")
	}
	if c.BroadcastHz < 0 {
		vb.Field("BroadcastHz", "cannot be negative")
	}

	return vb.Build()
}

type service struct {
	data     gamedata.Client
	runs     runs.Repository
	idGen    idgen.Generator
	runIDs   idgen.Generator
	clock    clock.Clock
	logger   logrus.FieldLogger
	catalog  *i18n.Catalog
	locale   string
	roller   dice.Roller
	bindings map[string]string

	tickHz         int
	broadcastEvery int
	subBuffer      int
	idleTimeout    time.Duration

	pool *ants.Pool

	mu       sync.RWMutex
	sessions map[string]*session
	closed   bool
}

// NewService creates a session service with a worker pool sized to
// MaxSessions
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	logger := cfg.Logger.WithField("component", "session")

	pool, err := ants.NewPool(cfg.MaxSessions,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			logger.WithField("panic", p).Error("session loop panicked")
		}),
	)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to create session pool")
	}

	tickHz := cfg.TickHz
	if tickHz == 0 {
		tickHz = DefaultTickHz
	}
	broadcastEvery := 1
	if cfg.BroadcastHz > 0 && cfg.BroadcastHz < tickHz {
		broadcastEvery = tickHz / cfg.BroadcastHz
	}
	subBuffer := cfg.SubscriberBuffer
	if subBuffer <= 0 {
		subBuffer = DefaultSubscriberBuffer
	}
	idle := cfg.IdleTimeout
	if idle == 0 {
		idle = DefaultIdleTimeout
	}
	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}
	runIDs := cfg.RunIDs
	if runIDs == nil {
		runIDs = idgen.NewUUID("run")
	}

	return &service{
		data:           cfg.Data,
		runs:           cfg.Runs,
		idGen:          cfg.IDGenerator,
		runIDs:         runIDs,
		clock:          cfg.Clock,
		logger:         logger,
		catalog:        cfg.Catalog,
		locale:         cfg.DefaultLocale,
		roller:         roller,
		bindings:       cfg.Bindings,
		tickHz:         tickHz,
		broadcastEvery: broadcastEvery,
		subBuffer:      subBuffer,
		idleTimeout:    idle,
		pool:           pool,
		sessions:       make(map[string]*session),
	}, nil
}

func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.StartStage != "" {
		if _, err := s.data.GetStage(input.StartStage); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "unknown start stage")
		}
	}

	id := s.idGen.Generate()
	logger := s.logger.WithField("session_id", id)

	var localizer *i18n.Localizer
	locale := input.Locale
	if locale == "" {
		locale = s.locale
	}
	if s.catalog != nil {
		localizer = s.catalog.Localizer(locale)
		locale = localizer.Locale()
	}

	bus := events.NewBus()
	watchEvents(bus, logger)

	g, err := game.New(&game.Config{
		Data:       s.data,
		EventBus:   bus,
		Roller:     s.roller,
		Logger:     logger,
		Localizer:  localizer,
		Bindings:   s.bindings,
		PlayerName: input.PlayerName,
		StartStage: input.StartStage,
		SkipIntro:  input.SkipIntro,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create game")
	}

	sess := newSession(s, id, g, logger, Info{
		ID:         id,
		PlayerName: input.PlayerName,
		Locale:     locale,
		State:      g.State(),
		CreatedAt:  s.clock.Now(),
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.Unavailable("session service is shutting down")
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	if err := s.pool.Submit(sess.run); err != nil {
		s.forget(id)
		sess.closeSubscribers()
		close(sess.done)
		if stderrors.Is(err, ants.ErrPoolOverload) {
			return nil, errors.ResourceExhausted("session capacity reached").
				WithMeta("max_sessions", s.pool.Cap())
		}
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to start session")
	}

	logger.WithFields(logrus.Fields{
		"player": input.PlayerName,
		"locale": locale,
	}).Info("session created")

	return &CreateSessionOutput{Session: sess.snapshotInfo()}, nil
}

func (s *service) GetSession(_ context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	sess, err := s.lookup(input.sessionID())
	if err != nil {
		return nil, err
	}
	return &GetSessionOutput{Session: sess.snapshotInfo()}, nil
}

func (s *service) ListSessions(_ context.Context, _ *ListSessionsInput) (*ListSessionsOutput, error) {
	s.mu.RLock()
	infos := make([]*Info, 0, len(s.sessions))
	for _, sess := range s.sessions {
		infos = append(infos, sess.snapshotInfo())
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return &ListSessionsOutput{Sessions: infos}, nil
}

func (s *service) SubmitInput(ctx context.Context, input *SubmitInputInput) (*SubmitInputOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	for i, ev := range input.Events {
		if err := ev.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid event").WithMeta("index", i)
		}
	}

	sess, err := s.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}
	if len(input.Events) == 0 {
		return &SubmitInputOutput{}, nil
	}

	if err := sess.send(ctx, inputCmd{events: input.Events}); err != nil {
		return nil, err
	}
	return &SubmitInputOutput{Accepted: len(input.Events)}, nil
}

func (s *service) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	sess, err := s.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	sub := &subscriber{
		ch: make(chan *game.Snapshot, s.subBuffer),
	}
	if err := sess.send(ctx, subscribeCmd{sub: sub}); err != nil {
		return nil, err
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			// the loop closes sub.ch; if it already exited it did so on
			// the way out
			_ = sess.send(context.Background(), unsubscribeCmd{sub: sub})
		})
	}
	stop := context.AfterFunc(ctx, unsubscribe)
	cancel := func() {
		stop()
		unsubscribe()
	}

	return &SubscribeOutput{Updates: sub.ch, Cancel: cancel}, nil
}

func (s *service) EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error) {
	sess, err := s.lookup(input.sessionID())
	if err != nil {
		return nil, err
	}
	s.forget(sess.id)

	if err := sess.stop(ctx); err != nil {
		return nil, err
	}
	sess.logger.Info("session ended")
	return &EndSessionOutput{Session: sess.snapshotInfo()}, nil
}

func (s *service) ListRuns(ctx context.Context, input *ListRunsInput) (*ListRunsOutput, error) {
	limit := 0
	if input != nil {
		limit = input.Limit
	}
	out, err := s.runs.ListRecent(ctx, &runs.ListRecentInput{Limit: limit})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	return &ListRunsOutput{Runs: out.Records}, nil
}

func (s *service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	var firstErr error
	for _, sess := range all {
		if err := sess.stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.pool.Release()

	s.logger.WithField("sessions", len(all)).Info("session service stopped")
	return firstErr
}

func (s *service) lookup(id string) (*session, error) {
	if id == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundf("session %s not found", id)
	}
	return sess, nil
}

func (s *service) forget(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// saveRun records a finished run. A failed write is logged; the session
// keeps going.
func (s *service) saveRun(ctx context.Context, sessionID string, outcome *game.Outcome, logger logrus.FieldLogger) {
	record := &runs.Record{
		ID:              s.runIDs.Generate(),
		SessionID:       sessionID,
		Result:          string(outcome.Result),
		PlayerName:      outcome.PlayerName,
		Stage:           outcome.Stage,
		Level:           outcome.Level,
		Experience:      outcome.Experience,
		EnemiesDefeated: outcome.EnemiesDefeated,
		PlayTime:        outcome.PlayTime,
		FinishedAt:      s.clock.Now(),
	}
	if _, err := s.runs.Save(ctx, &runs.SaveInput{Record: record}); err != nil {
		logger.WithError(err).WithField("run_id", record.ID).Error("failed to save run record")
		return
	}
	logger.WithFields(logrus.Fields{
		"run_id": record.ID,
		"result": record.Result,
		"level":  record.Level,
	}).Info("run recorded")
}

// watchEvents logs the milestones of a run
func watchEvents(bus events.EventBus, logger logrus.FieldLogger) {
	for _, eventType := range []string{game.EventBossDefeated, game.EventPlayerLevelUp} {
		bus.SubscribeFunc(eventType, 100, func(_ context.Context, ev events.Event) error {
			logger.WithField("event", ev.Type()).Info("milestone")
			return nil
		})
	}
}

func (in *GetSessionInput) sessionID() string {
	if in == nil {
		return ""
	}
	return in.SessionID
}

func (in *EndSessionInput) sessionID() string {
	if in == nil {
		return ""
	}
	return in.SessionID
}
