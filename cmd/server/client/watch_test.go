package client

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/engine/input"
	"github.com/KirkDiggler/rpg-action/internal/handlers/ws"
)

// scriptedConn replays envelopes and then reports EOF
type scriptedConn struct {
	frames []ws.Envelope
}

func (c *scriptedConn) ReadJSON(v interface{}) error {
	if len(c.frames) == 0 {
		return io.EOF
	}
	data, err := json.Marshal(c.frames[0])
	if err != nil {
		return err
	}
	c.frames = c.frames[1:]
	return json.Unmarshal(data, v)
}

func TestTaps(t *testing.T) {
	events := taps([]string{"Enter", " ", "KeyE"})
	require.Len(t, events, 4)
	assert.Equal(t, input.Event{Type: input.EventKeyDown, Code: "Enter"}, events[0])
	assert.Equal(t, input.Event{Type: input.EventKeyUp, Code: "Enter"}, events[1])
	assert.Equal(t, "KeyE", events[3].Code)
}

func TestPrintFrames(t *testing.T) {
	conn := &scriptedConn{frames: []ws.Envelope{
		{Type: ws.TypeSession, Payload: ws.SessionPayload{SessionID: "s_1", State: "TITLE", Locale: "en-US"}},
		{Type: ws.TypeSnapshot, Payload: &game.Snapshot{
			Tick:  3,
			State: game.StatePlaying,
			Stage: "field",
			Player: &game.PlayerView{
				CharacterView: game.CharacterView{HP: 90, MaxHP: 100, Animation: "idle"},
				Stamina:       50,
				Level:         1,
			},
			Cues: []game.Cue{{Kind: game.CueText, Text: "The keep lies north."}},
		}},
		{Type: ws.TypeError, Payload: ws.ErrorPayload{Code: "INVALID_ARGUMENT", Message: "bad event"}},
		{Type: ws.TypeSnapshot, Payload: &game.Snapshot{Tick: 4, State: game.StatePaused}},
	}}

	var buf bytes.Buffer
	require.NoError(t, printFrames(&buf, conn, 2))

	out := buf.String()
	assert.Contains(t, out, "Attached to session s_1 (TITLE, en-US)")
	assert.Contains(t, out, "stage field")
	assert.Contains(t, out, "hp 90/100")
	assert.Contains(t, out, "  > The keep lies north.")
	assert.Contains(t, out, "Server error INVALID_ARGUMENT: bad event")
	assert.Contains(t, out, "PAUSED")
}

func TestPrintFramesReadError(t *testing.T) {
	var buf bytes.Buffer
	err := printFrames(&buf, &scriptedConn{}, 0)
	require.Error(t, err)
}
