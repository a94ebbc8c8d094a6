package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/engine/input"
	"github.com/KirkDiggler/rpg-action/internal/errors"
	"github.com/KirkDiggler/rpg-action/internal/orchestrators/session"
	"github.com/KirkDiggler/rpg-action/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-action/internal/pkg/i18n"
	"github.com/KirkDiggler/rpg-action/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-action/internal/repositories/runs"
	"github.com/KirkDiggler/rpg-action/internal/testutils"
)

const (
	tickHz = 10
	period = time.Second / tickHz
	wait   = time.Second
	poll   = 5 * time.Millisecond
)

type ServiceTestSuite struct {
	suite.Suite
	clock *clock.Manual
	cfg   *session.Config
	svc   session.Service
	ctx   context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	catalog, err := i18n.New(testutils.Messages())
	s.Require().NoError(err)

	logger, _ := test.NewNullLogger()
	s.cfg = &session.Config{
		Data:        testutils.GameData(s.T()),
		Runs:        runs.NewInMemory(10),
		IDGenerator: idgen.NewSequential("s"),
		Clock:       s.clock,
		Logger:      logger,
		Catalog:     catalog,
		TickHz:      tickHz,
		BroadcastHz: tickHz,
		MaxSessions: 2,
	}
	s.svc = s.newService()
}

func (s *ServiceTestSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	_ = s.svc.Shutdown(ctx)
}

func (s *ServiceTestSuite) newService() session.Service {
	svc, err := session.NewService(s.cfg)
	s.Require().NoError(err)
	return svc
}

// restart replaces the service after a config change
func (s *ServiceTestSuite) restart() {
	s.Require().NoError(s.svc.Shutdown(s.ctx))
	s.svc = s.newService()
}

func (s *ServiceTestSuite) create(in *session.CreateSessionInput) *session.Info {
	out, err := s.svc.CreateSession(s.ctx, in)
	s.Require().NoError(err)
	return out.Session
}

func (s *ServiceTestSuite) info(id string) *session.Info {
	out, err := s.svc.GetSession(s.ctx, &session.GetSessionInput{SessionID: id})
	s.Require().NoError(err)
	return out.Session
}

// tick advances one period and waits for the loop to run it
func (s *ServiceTestSuite) tick(id string) {
	want := s.info(id).Tick + 1
	s.clock.Advance(period)
	s.Require().Eventually(func() bool {
		return s.info(id).Tick >= want
	}, wait, poll)
}

func (s *ServiceTestSuite) subscribe(id string) *session.SubscribeOutput {
	out, err := s.svc.Subscribe(s.ctx, &session.SubscribeInput{SessionID: id})
	s.Require().NoError(err)
	s.Require().Eventually(func() bool {
		return s.info(id).Subscribers > 0
	}, wait, poll)
	return out
}

func next(s *ServiceTestSuite, ch <-chan *game.Snapshot) *game.Snapshot {
	select {
	case snap, ok := <-ch:
		s.Require().True(ok, "updates closed")
		return snap
	case <-time.After(wait):
		s.FailNow("no snapshot received")
		return nil
	}
}

func (s *ServiceTestSuite) TestCreateSession() {
	info := s.create(&session.CreateSessionInput{PlayerName: "Ayu", Locale: "ja"})

	s.Equal("s_1", info.ID)
	s.Equal("Ayu", info.PlayerName)
	s.Equal("ja-JP", info.Locale)
	s.Equal(game.StateSplash, info.State)

	listed, err := s.svc.ListSessions(s.ctx, &session.ListSessionsInput{})
	s.Require().NoError(err)
	s.Require().Len(listed.Sessions, 1)
	s.Equal(info.ID, listed.Sessions[0].ID)
}

func (s *ServiceTestSuite) TestCreateSessionSkipIntro() {
	info := s.create(&session.CreateSessionInput{SkipIntro: true})
	s.Equal(game.StateTitle, info.State)
}

func (s *ServiceTestSuite) TestCreateSessionUnknownStage() {
	_, err := s.svc.CreateSession(s.ctx, &session.CreateSessionInput{StartStage: "nowhere"})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *ServiceTestSuite) TestCapacity() {
	s.create(&session.CreateSessionInput{})
	s.create(&session.CreateSessionInput{})

	_, err := s.svc.CreateSession(s.ctx, &session.CreateSessionInput{})
	s.Require().Error(err)
	s.True(errors.IsResourceExhausted(err))

	listed, err := s.svc.ListSessions(s.ctx, &session.ListSessionsInput{})
	s.Require().NoError(err)
	s.Len(listed.Sessions, 2)
}

func (s *ServiceTestSuite) TestSubscribeReceivesSnapshots() {
	info := s.create(&session.CreateSessionInput{SkipIntro: true})
	sub := s.subscribe(info.ID)
	defer sub.Cancel()

	s.clock.Advance(period)
	snap := next(s, sub.Updates)
	s.Equal(uint64(1), snap.Tick)
	s.Equal(game.StateTitle, snap.State)

	s.clock.Advance(period)
	snap = next(s, sub.Updates)
	s.Equal(uint64(2), snap.Tick)
}

func (s *ServiceTestSuite) TestBroadcastRate() {
	s.cfg.BroadcastHz = tickHz / 2
	s.restart()

	info := s.create(&session.CreateSessionInput{SkipIntro: true})
	sub := s.subscribe(info.ID)
	defer sub.Cancel()

	s.tick(info.ID)
	s.Empty(sub.Updates)

	s.clock.Advance(period)
	snap := next(s, sub.Updates)
	s.Equal(uint64(2), snap.Tick)
}

func (s *ServiceTestSuite) TestSubmitInputSkipsSplash() {
	info := s.create(&session.CreateSessionInput{})

	out, err := s.svc.SubmitInput(s.ctx, &session.SubmitInputInput{
		SessionID: info.ID,
		Events:    []input.Event{{Type: input.EventKeyDown, Code: "Enter"}},
	})
	s.Require().NoError(err)
	s.Equal(1, out.Accepted)

	for i := 0; i < 5 && s.info(info.ID).State == game.StateSplash; i++ {
		s.tick(info.ID)
	}
	s.Equal(game.StateOpening, s.info(info.ID).State)
}

func (s *ServiceTestSuite) TestSubmitInputRejectsBadEvents() {
	info := s.create(&session.CreateSessionInput{})

	_, err := s.svc.SubmitInput(s.ctx, &session.SubmitInputInput{
		SessionID: info.ID,
		Events:    []input.Event{{Type: input.EventKeyDown}},
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Equal(0, errors.GetMeta(err)["index"])
}

func (s *ServiceTestSuite) TestUnknownSession() {
	_, err := s.svc.GetSession(s.ctx, &session.GetSessionInput{SessionID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.svc.SubmitInput(s.ctx, &session.SubmitInputInput{SessionID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.svc.Subscribe(s.ctx, &session.SubscribeInput{SessionID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.svc.EndSession(s.ctx, &session.EndSessionInput{SessionID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.svc.GetSession(s.ctx, &session.GetSessionInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *ServiceTestSuite) TestEndSessionClosesSubscribers() {
	info := s.create(&session.CreateSessionInput{})
	sub := s.subscribe(info.ID)

	_, err := s.svc.EndSession(s.ctx, &session.EndSessionInput{SessionID: info.ID})
	s.Require().NoError(err)

	s.Eventually(func() bool {
		select {
		case _, ok := <-sub.Updates:
			return !ok
		default:
			return false
		}
	}, wait, poll)

	_, err = s.svc.GetSession(s.ctx, &session.GetSessionInput{SessionID: info.ID})
	s.True(errors.IsNotFound(err))

	// cancelling after the session ended is harmless
	sub.Cancel()
}

func (s *ServiceTestSuite) TestCancelSubscription() {
	info := s.create(&session.CreateSessionInput{})
	sub := s.subscribe(info.ID)

	sub.Cancel()
	sub.Cancel()

	s.Eventually(func() bool {
		return s.info(info.ID).Subscribers == 0
	}, wait, poll)
	_, ok := <-sub.Updates
	s.False(ok)
}

func (s *ServiceTestSuite) TestSubscriptionEndsWithContext() {
	info := s.create(&session.CreateSessionInput{})

	ctx, cancel := context.WithCancel(s.ctx)
	_, err := s.svc.Subscribe(ctx, &session.SubscribeInput{SessionID: info.ID})
	s.Require().NoError(err)
	s.Require().Eventually(func() bool {
		return s.info(info.ID).Subscribers == 1
	}, wait, poll)

	cancel()
	s.Eventually(func() bool {
		return s.info(info.ID).Subscribers == 0
	}, wait, poll)
}

func (s *ServiceTestSuite) TestSlowSubscriberDoesNotBlock() {
	s.cfg.SubscriberBuffer = 1
	s.restart()

	info := s.create(&session.CreateSessionInput{SkipIntro: true})
	sub := s.subscribe(info.ID)
	defer sub.Cancel()

	for i := 0; i < 4; i++ {
		s.tick(info.ID)
	}

	s.Equal(uint64(4), s.info(info.ID).Tick)
	snap := next(s, sub.Updates)
	s.Equal(uint64(1), snap.Tick)
	s.Empty(sub.Updates)
}

func (s *ServiceTestSuite) TestIdleSessionEnds() {
	s.cfg.IdleTimeout = 3 * period
	s.restart()

	info := s.create(&session.CreateSessionInput{})
	for i := 0; i < 2; i++ {
		s.tick(info.ID)
	}

	s.clock.Advance(period)
	s.Eventually(func() bool {
		_, err := s.svc.GetSession(s.ctx, &session.GetSessionInput{SessionID: info.ID})
		return errors.IsNotFound(err)
	}, wait, poll)
}

func (s *ServiceTestSuite) TestShutdown() {
	info := s.create(&session.CreateSessionInput{})
	sub := s.subscribe(info.ID)

	s.Require().NoError(s.svc.Shutdown(s.ctx))

	_, ok := <-sub.Updates
	s.False(ok)

	_, err := s.svc.CreateSession(s.ctx, &session.CreateSessionInput{})
	s.Require().Error(err)
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
}

func (s *ServiceTestSuite) TestListRunsEmpty() {
	out, err := s.svc.ListRuns(s.ctx, &session.ListRunsInput{Limit: 5})
	s.Require().NoError(err)
	s.Empty(out.Runs)
}

func (s *ServiceTestSuite) TestNewServiceValidation() {
	testCases := []struct {
		name   string
		mutate func(c *session.Config)
	}{
		{name: "missing data", mutate: func(c *session.Config) { c.Data = nil }},
		{name: "missing runs", mutate: func(c *session.Config) { c.Runs = nil }},
		{name: "missing clock", mutate: func(c *session.Config) { c.Clock = nil }},
		{name: "no capacity", mutate: func(c *session.Config) { c.MaxSessions = 0 }},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			cfg := *s.cfg
			tc.mutate(&cfg)
			_, err := session.NewService(&cfg)
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
		})
	}

	_, err := session.NewService(nil)
	s.True(errors.IsInvalidArgument(err))
}
