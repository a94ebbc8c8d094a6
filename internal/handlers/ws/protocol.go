package ws

import (
	"github.com/KirkDiggler/rpg-action/internal/engine/input"
)

// Message types
const (
	// client -> server
	TypeInput = "input"

	// server -> client
	TypeSession  = "session"
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

// Envelope is the only frame shape on the socket in either direction
type Envelope struct {
	Type    string        `json:"type"`
	Events  []input.Event `json:"events,omitempty"`
	Payload interface{}   `json:"payload,omitempty"`
}

// SessionPayload tells a client which session it is attached to
type SessionPayload struct {
	SessionID  string `json:"sessionId"`
	PlayerName string `json:"playerName,omitempty"`
	Locale     string `json:"locale,omitempty"`
	State      string `json:"state"`
}

// ErrorPayload reports a rejected message; the connection stays open
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
