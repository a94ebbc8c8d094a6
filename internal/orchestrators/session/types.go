package session

import (
	"time"

	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/engine/input"
	"github.com/KirkDiggler/rpg-action/internal/repositories/runs"
)

// Info describes a running session
type Info struct {
	ID          string
	PlayerName  string
	Locale      string
	State       game.State
	Tick        uint64
	Subscribers int
	CreatedAt   time.Time
}

// CreateSessionInput defines the request for starting a session
type CreateSessionInput struct {
	PlayerName string
	// Locale is matched against the loaded catalogs; empty uses the default
	Locale string
	// StartStage overrides the data set's start stage
	StartStage string
	// SkipIntro starts at the title screen
	SkipIntro bool
}

// CreateSessionOutput defines the response for starting a session
type CreateSessionOutput struct {
	Session *Info
}

// GetSessionInput defines the request for looking up a session
type GetSessionInput struct {
	SessionID string
}

// GetSessionOutput defines the response for looking up a session
type GetSessionOutput struct {
	Session *Info
}

// ListSessionsInput defines the request for listing sessions
type ListSessionsInput struct{}

// ListSessionsOutput defines the response for listing sessions, ordered
// by creation time
type ListSessionsOutput struct {
	Sessions []*Info
}

// SubmitInputInput carries raw client events for one session
type SubmitInputInput struct {
	SessionID string
	Events    []input.Event
}

// SubmitInputOutput defines the response for submitting input
type SubmitInputOutput struct {
	Accepted int
}

// SubscribeInput defines the request for receiving snapshots
type SubscribeInput struct {
	SessionID string
}

// SubscribeOutput holds the snapshot stream. Updates is closed when the
// subscription is cancelled or the session ends. Cancel is idempotent.
type SubscribeOutput struct {
	Updates <-chan *game.Snapshot
	Cancel  func()
}

// EndSessionInput defines the request for stopping a session
type EndSessionInput struct {
	SessionID string
}

// EndSessionOutput defines the response for stopping a session
type EndSessionOutput struct {
	Session *Info
}

// ListRunsInput defines the request for recent run records
type ListRunsInput struct {
	Limit int
}

// ListRunsOutput holds run records, newest first
type ListRunsOutput struct {
	Runs []*runs.Record
}
