package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/errors"
	"github.com/KirkDiggler/rpg-action/internal/orchestrators/session"
)

// client pumps one websocket. readPump owns reads, writePump owns every
// write including pings.
type client struct {
	service session.Service
	conn    *websocket.Conn
	session string
	updates <-chan *game.Snapshot
	errs    chan ErrorPayload
	logger  logrus.FieldLogger
}

func (c *client) readPump(ctx context.Context) {
	defer func() {
		if err := c.conn.Close(); err != nil {
			c.logger.WithError(err).Debug("failed to close websocket")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Envelope
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WithError(err).Warn("websocket read failed")
			}
			return
		}

		switch msg.Type {
		case TypeInput:
			_, err := c.service.SubmitInput(ctx, &session.SubmitInputInput{
				SessionID: c.session,
				Events:    msg.Events,
			})
			if err != nil {
				c.reject(err)
			}
		default:
			c.reject(errors.InvalidArgumentf("unknown message type %q", msg.Type))
		}
	}
}

// reject reports err to the client unless the error queue is full
func (c *client) reject(err error) {
	select {
	case c.errs <- ErrorPayload{Code: errors.GetCode(err).String(), Message: errors.GetMessage(err)}:
	default:
	}
}

func (c *client) writePump(ctx context.Context, cancel context.CancelFunc, hello Envelope) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = c.conn.Close()
	}()

	if err := c.write(hello); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-c.updates:
			if !ok {
				// the session ended
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := c.write(Envelope{Type: TypeSnapshot, Payload: snap}); err != nil {
				return
			}
		case payload := <-c.errs:
			if err := c.write(Envelope{Type: TypeError, Payload: payload}); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}

func (c *client) write(env Envelope) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(env); err != nil {
		c.logger.WithError(err).Debug("websocket write failed")
		return err
	}
	return nil
}
