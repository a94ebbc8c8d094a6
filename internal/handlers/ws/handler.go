// Package ws serves the game over websockets plus a small HTTP surface
// for health and run history.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/rpg-action/internal/errors"
	"github.com/KirkDiggler/rpg-action/internal/orchestrators/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	defaultRunsLimit = 20
	maxRunsLimit     = 500
)

// Config holds the dependencies for the websocket handler
type Config struct {
	Service session.Service
	Logger  logrus.FieldLogger

	// AllowedOrigins limits browser origins; empty allows any
	AllowedOrigins []string
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Service == nil {
		vb.RequiredField("Service")
	}
	if c.Logger == nil {
		vb.RequiredField("Logger")
	}

	return vb.Build()
}

// Handler serves /ws, /healthz and /runs
type Handler struct {
	service  session.Service
	logger   logrus.FieldLogger
	upgrader websocket.Upgrader
}

// NewHandler creates a new websocket handler
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &Handler{
		service: cfg.Service,
		logger:  cfg.Logger.WithField("component", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}, nil
}

// Routes returns the HTTP routes
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", h.handleWS)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /runs", h.handleRuns)
	return mux
}

func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	query := r.URL.Query()
	info, err := h.attach(ctx, query.Get("session"), query.Get("name"), query.Get("locale"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	sub, err := h.service.Subscribe(ctx, &session.SubscribeInput{SessionID: info.ID})
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer sub.Cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request
		h.logger.WithError(err).Debug("websocket upgrade failed")
		return
	}

	c := &client{
		service: h.service,
		conn:    conn,
		session: info.ID,
		updates: sub.Updates,
		errs:    make(chan ErrorPayload, 16),
		logger:  h.logger.WithField("session_id", info.ID),
	}
	c.logger.Info("client connected")

	hello := Envelope{Type: TypeSession, Payload: SessionPayload{
		SessionID:  info.ID,
		PlayerName: info.PlayerName,
		Locale:     info.Locale,
		State:      string(info.State),
	}}

	go c.writePump(ctx, cancel, hello)
	c.readPump(ctx)
	c.logger.Info("client disconnected")
}

// attach joins the named session or creates a new one
func (h *Handler) attach(ctx context.Context, sessionID, name, locale string) (*session.Info, error) {
	if sessionID != "" {
		out, err := h.service.GetSession(ctx, &session.GetSessionInput{SessionID: sessionID})
		if err != nil {
			return nil, err
		}
		return out.Session, nil
	}

	out, err := h.service.CreateSession(ctx, &session.CreateSessionInput{
		PlayerName: name,
		Locale:     locale,
	})
	if err != nil {
		return nil, err
	}
	return out.Session, nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListSessions(r.Context(), &session.ListSessionsInput{})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": len(out.Sessions),
	})
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRunsLimit {
			h.writeError(w, errors.InvalidArgumentf("limit must be between 1 and %d", maxRunsLimit))
			return
		}
		limit = n
	}

	out, err := h.service.ListRuns(r.Context(), &session.ListRunsInput{Limit: limit})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": out.Runs})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
	}
	h.writeJSON(w, status, ErrorPayload{Code: code.String(), Message: errors.GetMessage(err)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Debug("failed to write response")
	}
}
