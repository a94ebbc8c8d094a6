// Package admin exposes session and run administration over gRPC
package admin

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-action/internal/errors"
	"github.com/KirkDiggler/rpg-action/internal/orchestrators/session"
	"github.com/KirkDiggler/rpg-action/internal/repositories/runs"
)

// HandlerConfig holds dependencies for the admin handler
type HandlerConfig struct {
	Service session.Service
	Logger  logrus.FieldLogger
}

// Validate ensures all required dependencies are provided
func (c *HandlerConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Service == nil {
		vb.RequiredField("Service")
	}
	if c.Logger == nil {
		vb.RequiredField("Logger")
	}

	return vb.Build()
}

// Handler implements AdminServer
type Handler struct {
	service session.Service
	logger  logrus.FieldLogger
}

// NewHandler creates a new admin handler
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Handler{
		service: cfg.Service,
		logger:  cfg.Logger.WithField("component", "admin"),
	}, nil
}

var _ AdminServer = (*Handler)(nil)

// ListSessions returns {"sessions": [...]}
func (h *Handler) ListSessions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	out, err := h.service.ListSessions(ctx, &session.ListSessionsInput{})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	list := make([]interface{}, len(out.Sessions))
	for i, info := range out.Sessions {
		list[i] = sessionDoc(info)
	}
	return toStruct(map[string]interface{}{"sessions": list})
}

// EndSession stops {"sessionId"} and returns its final {"session"}
func (h *Handler) EndSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := req.GetFields()["sessionId"].GetStringValue()
	if id == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("sessionId is required"))
	}

	out, err := h.service.EndSession(ctx, &session.EndSessionInput{SessionID: id})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	h.logger.WithField("session_id", id).Info("session ended by admin")
	return toStruct(map[string]interface{}{"session": sessionDoc(out.Session)})
}

// ListRuns returns {"runs": [...]} newest first, limited by {"limit"}
func (h *Handler) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := int(req.GetFields()["limit"].GetNumberValue())
	if limit < 0 {
		return nil, errors.ToGRPCError(errors.InvalidArgument("limit cannot be negative"))
	}

	out, err := h.service.ListRuns(ctx, &session.ListRunsInput{Limit: limit})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	list := make([]interface{}, len(out.Runs))
	for i, record := range out.Runs {
		list[i] = runDoc(record)
	}
	return toStruct(map[string]interface{}{"runs": list})
}

func sessionDoc(info *session.Info) map[string]interface{} {
	if info == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}{
		"id":          info.ID,
		"playerName":  info.PlayerName,
		"locale":      info.Locale,
		"state":       string(info.State),
		"tick":        float64(info.Tick),
		"subscribers": info.Subscribers,
		"createdAt":   info.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func runDoc(r *runs.Record) map[string]interface{} {
	return map[string]interface{}{
		"id":              r.ID,
		"sessionId":       r.SessionID,
		"result":          r.Result,
		"playerName":      r.PlayerName,
		"stage":           r.Stage,
		"level":           r.Level,
		"experience":      r.Experience,
		"enemiesDefeated": r.EnemiesDefeated,
		"playTime":        r.PlayTime,
		"finishedAt":      r.FinishedAt.UTC().Format(time.RFC3339),
	}
}

func toStruct(doc map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, errors.ToGRPCError(errors.WrapWithCode(err, errors.CodeInternal, "failed to encode response"))
	}
	return s, nil
}
