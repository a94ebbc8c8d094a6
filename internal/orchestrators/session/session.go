package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/engine/input"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// Commands processed by the session loop
type (
	inputCmd struct {
		events []input.Event
	}
	subscribeCmd struct {
		sub *subscriber
	}
	unsubscribeCmd struct {
		sub *subscriber
	}
)

type subscriber struct {
	ch      chan *game.Snapshot
	dropped int
}

// session owns one Game. Only the loop goroutine touches the game and
// the subscriber set; info is shared under mu.
type session struct {
	svc    *service
	id     string
	game   *game.Game
	logger logrus.FieldLogger

	inbox   chan any
	quit    chan struct{}
	closing chan struct{}
	done    chan struct{}

	// sendMu lets the loop wait out in-flight sends before its final drain
	sendMu sync.RWMutex

	stopOnce sync.Once
	subs     map[*subscriber]struct{}
	idleFor  time.Duration

	mu   sync.RWMutex
	info Info
}

func newSession(svc *service, id string, g *game.Game, logger logrus.FieldLogger, info Info) *session {
	return &session{
		svc:     svc,
		id:      id,
		game:    g,
		logger:  logger,
		inbox:   make(chan any, inboxSize),
		quit:    make(chan struct{}),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
		subs:    make(map[*subscriber]struct{}),
		info:    info,
	}
}

func (s *session) run() {
	defer close(s.done)
	defer s.closeSubscribers()

	period := time.Second / time.Duration(s.svc.tickHz)
	dt := 1 / float64(s.svc.tickHz)
	ticker := s.svc.clock.NewTicker(period)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		select {
		case <-s.quit:
			return
		case cmd := <-s.inbox:
			s.handle(cmd)
		case <-ticker.C():
			s.step(ctx, dt)
			if len(s.subs) > 0 {
				s.idleFor = 0
				continue
			}
			s.idleFor += period
			if s.svc.idleTimeout > 0 && s.idleFor >= s.svc.idleTimeout {
				s.logger.WithField("idle", s.idleFor.String()).Info("session idle, ending")
				s.svc.forget(s.id)
				return
			}
		}
	}
}

func (s *session) handle(cmd any) {
	switch c := cmd.(type) {
	case inputCmd:
		for _, ev := range c.events {
			if err := s.game.HandleInput(ev); err != nil {
				s.logger.WithError(err).Warn("dropped input event")
			}
		}
	case subscribeCmd:
		s.subs[c.sub] = struct{}{}
		s.setSubscribers()
	case unsubscribeCmd:
		if _, ok := s.subs[c.sub]; ok {
			delete(s.subs, c.sub)
			close(c.sub.ch)
			s.setSubscribers()
		}
	}
}

func (s *session) step(ctx context.Context, dt float64) {
	s.game.Update(ctx, dt)

	if outcome, ok := s.game.TakeOutcome(); ok {
		s.svc.saveRun(ctx, s.id, outcome, s.logger)
	}

	s.mu.Lock()
	s.info.State = s.game.State()
	s.info.Tick = s.game.Tick()
	s.mu.Unlock()

	if s.game.Tick()%uint64(s.svc.broadcastEvery) == 0 {
		s.broadcast()
	}
}

// broadcast hands the same snapshot to every subscriber. A subscriber
// whose buffer is full misses this frame.
func (s *session) broadcast() {
	snap := s.game.Snapshot()
	for sub := range s.subs {
		select {
		case sub.ch <- snap:
		default:
			sub.dropped++
			if sub.dropped%100 == 1 {
				s.logger.WithField("dropped", sub.dropped).Debug("slow subscriber, dropping frames")
			}
		}
	}
}

// closeSubscribers closes every subscriber channel, including those whose
// subscribe command was still queued when the loop stopped
func (s *session) closeSubscribers() {
	close(s.closing)
	s.sendMu.Lock()
	s.sendMu.Unlock()
	s.drainInbox()

	for sub := range s.subs {
		close(sub.ch)
		delete(s.subs, sub)
	}
	s.setSubscribers()
}

func (s *session) drainInbox() {
	for {
		select {
		case cmd := <-s.inbox:
			if c, ok := cmd.(subscribeCmd); ok {
				close(c.sub.ch)
			}
		default:
			return
		}
	}
}

func (s *session) setSubscribers() {
	s.mu.Lock()
	s.info.Subscribers = len(s.subs)
	s.mu.Unlock()
}

// send delivers a command to the loop
func (s *session) send(ctx context.Context, cmd any) error {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()

	select {
	case <-s.closing:
		return errors.NotFoundf("session %s has ended", s.id)
	default:
	}

	select {
	case s.inbox <- cmd:
		return nil
	case <-s.closing:
		return errors.NotFoundf("session %s has ended", s.id)
	case <-ctx.Done():
		return errors.FromContext(ctx.Err(), "input not delivered")
	}
}

// stop ends the loop and waits for it to exit
func (s *session) stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.quit) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return errors.FromContext(ctx.Err(), "session did not stop in time")
	}
}

func (s *session) snapshotInfo() *Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := s.info
	return &info
}
