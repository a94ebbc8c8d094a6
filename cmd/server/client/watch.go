package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/engine/input"
	"github.com/KirkDiggler/rpg-action/internal/handlers/ws"
)

var (
	watchSession string
	watchName    string
	watchLocale  string
	watchFrames  int
	watchPress   []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Attach to a session over the websocket and print snapshots",
	Long: `Join --session or start a new one, optionally press keys, then print
one line per snapshot plus any text cues. Examples:

  watch --name Ayu --press Enter
  watch --session s_1 --frames 30`,
	RunE: watch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSession, "session", "", "session to join (new session when empty)")
	watchCmd.Flags().StringVar(&watchName, "name", "", "player name for a new session")
	watchCmd.Flags().StringVar(&watchLocale, "locale", "", "locale for a new session")
	watchCmd.Flags().IntVar(&watchFrames, "frames", 0, "stop after this many snapshots (0 runs until interrupted)")
	watchCmd.Flags().StringSliceVar(&watchPress, "press", nil, "key codes to tap after connecting, e.g. Enter,KeyE")
}

func watch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	query := url.Values{}
	if watchSession != "" {
		query.Set("session", watchSession)
	}
	if watchName != "" {
		query.Set("name", watchName)
	}
	if watchLocale != "" {
		query.Set("locale", watchLocale)
	}
	u := url.URL{Scheme: "ws", Host: httpAddr, Path: "/ws", RawQuery: query.Encode()}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect (%s): %w", resp.Status, err)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	if len(watchPress) > 0 {
		if err := conn.WriteJSON(ws.Envelope{Type: ws.TypeInput, Events: taps(watchPress)}); err != nil {
			return fmt.Errorf("failed to send keys: %w", err)
		}
	}

	return printFrames(cmd.OutOrStdout(), conn, watchFrames)
}

// taps turns key codes into down/up pairs
func taps(codes []string) []input.Event {
	events := make([]input.Event, 0, len(codes)*2)
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		events = append(events,
			input.Event{Type: input.EventKeyDown, Code: code},
			input.Event{Type: input.EventKeyUp, Code: code},
		)
	}
	return events
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type frameReader interface {
	ReadJSON(v interface{}) error
}

func printFrames(w io.Writer, conn frameReader, limit int) error {
	snapshots := 0
	for limit <= 0 || snapshots < limit {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				fmt.Fprintln(w, "Connection closed")
				return nil
			}
			return fmt.Errorf("failed to read: %w", err)
		}

		switch f.Type {
		case ws.TypeSession:
			var info ws.SessionPayload
			if err := json.Unmarshal(f.Payload, &info); err != nil {
				return err
			}
			fmt.Fprintf(w, "Attached to session %s (%s, %s)\n", info.SessionID, info.State, info.Locale)
		case ws.TypeSnapshot:
			var snap game.Snapshot
			if err := json.Unmarshal(f.Payload, &snap); err != nil {
				return err
			}
			snapshots++
			fmt.Fprintln(w, describe(&snap))
			for _, c := range snap.Cues {
				if c.Kind == game.CueText && c.Text != "" {
					fmt.Fprintf(w, "  > %s\n", c.Text)
				}
			}
		case ws.TypeError:
			var e ws.ErrorPayload
			if err := json.Unmarshal(f.Payload, &e); err != nil {
				return err
			}
			fmt.Fprintf(w, "Server error %s: %s\n", e.Code, e.Message)
		}
	}
	return nil
}

func describe(s *game.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %-6d %-14s", s.Tick, s.State)
	if s.Stage != "" {
		fmt.Fprintf(&b, " stage %-8s", s.Stage)
	}
	if p := s.Player; p != nil {
		fmt.Fprintf(&b, " hp %d/%d sp %.0f fp %.0f lv %d pos (%.1f, %.1f, %.1f) %s",
			p.HP, p.MaxHP, p.Stamina, p.FP, p.Level, p.Pos.X, p.Pos.Y, p.Pos.Z, p.Animation)
	}
	if len(s.Enemies) > 0 {
		fmt.Fprintf(&b, " enemies %d", len(s.Enemies))
	}
	if s.Outcome != nil {
		fmt.Fprintf(&b, " [%s]", s.Outcome.Result)
	}
	return b.String()
}
