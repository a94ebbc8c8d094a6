package admin_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/errors"
	"github.com/KirkDiggler/rpg-action/internal/handlers/admin"
	"github.com/KirkDiggler/rpg-action/internal/orchestrators/session"
	sessionmock "github.com/KirkDiggler/rpg-action/internal/orchestrators/session/mock"
	"github.com/KirkDiggler/rpg-action/internal/repositories/runs"
)

type HandlerTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *sessionmock.MockService
	server  *grpc.Server
	conn    *grpc.ClientConn
	client  *admin.AdminClient
	ctx     context.Context
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = sessionmock.NewMockService(s.ctrl)
	s.ctx = context.Background()

	logger, _ := test.NewNullLogger()
	h, err := admin.NewHandler(&admin.HandlerConfig{Service: s.service, Logger: logger})
	s.Require().NoError(err)

	lis := bufconn.Listen(1 << 20)
	s.server = grpc.NewServer()
	admin.RegisterAdminServer(s.server, h)
	go func() { _ = s.server.Serve(lis) }()

	s.conn, err = grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.client = admin.NewAdminClient(s.conn)
}

func (s *HandlerTestSuite) TearDownTest() {
	_ = s.conn.Close()
	s.server.Stop()
	s.ctrl.Finish()
}

func (s *HandlerTestSuite) TestListSessions() {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.service.EXPECT().
		ListSessions(gomock.Any(), gomock.Any()).
		Return(&session.ListSessionsOutput{Sessions: []*session.Info{
			{ID: "s_1", PlayerName: "Hero", Locale: "en-US", State: game.StatePlaying, Tick: 120, Subscribers: 1, CreatedAt: created},
		}}, nil)

	out, err := s.client.ListSessions(s.ctx, nil)
	s.Require().NoError(err)

	list := out.GetFields()["sessions"].GetListValue().GetValues()
	s.Require().Len(list, 1)
	doc := list[0].GetStructValue().GetFields()
	s.Equal("s_1", doc["id"].GetStringValue())
	s.Equal("PLAYING", doc["state"].GetStringValue())
	s.Equal(120.0, doc["tick"].GetNumberValue())
	s.Equal(1.0, doc["subscribers"].GetNumberValue())
	s.Equal("2026-03-01T12:00:00Z", doc["createdAt"].GetStringValue())
}

func (s *HandlerTestSuite) TestEndSession() {
	s.service.EXPECT().
		EndSession(gomock.Any(), &session.EndSessionInput{SessionID: "s_1"}).
		Return(&session.EndSessionOutput{Session: &session.Info{ID: "s_1", State: game.StateTitle}}, nil)

	req, err := structpb.NewStruct(map[string]interface{}{"sessionId": "s_1"})
	s.Require().NoError(err)

	out, err := s.client.EndSession(s.ctx, req)
	s.Require().NoError(err)
	s.Equal("s_1", out.GetFields()["session"].GetStructValue().GetFields()["id"].GetStringValue())
}

func (s *HandlerTestSuite) TestEndSessionErrors() {
	_, err := s.client.EndSession(s.ctx, &structpb.Struct{})
	s.Equal(codes.InvalidArgument, status.Code(err))

	s.service.EXPECT().
		EndSession(gomock.Any(), gomock.Any()).
		Return(nil, errors.NotFound("session s_9 not found"))

	req, err := structpb.NewStruct(map[string]interface{}{"sessionId": "s_9"})
	s.Require().NoError(err)
	_, err = s.client.EndSession(s.ctx, req)
	s.Equal(codes.NotFound, status.Code(err))
	s.True(errors.IsNotFound(errors.FromGRPCError(err)))
}

func (s *HandlerTestSuite) TestListRuns() {
	finished := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	s.service.EXPECT().
		ListRuns(gomock.Any(), &session.ListRunsInput{Limit: 2}).
		Return(&session.ListRunsOutput{Runs: []*runs.Record{
			{ID: "run_2", Result: "completed", Level: 4, PlayTime: 300.5, FinishedAt: finished},
			{ID: "run_1", Result: "defeated", Level: 1, FinishedAt: finished.Add(-time.Hour)},
		}}, nil)

	req, err := structpb.NewStruct(map[string]interface{}{"limit": 2})
	s.Require().NoError(err)

	out, err := s.client.ListRuns(s.ctx, req)
	s.Require().NoError(err)

	list := out.GetFields()["runs"].GetListValue().GetValues()
	s.Require().Len(list, 2)
	first := list[0].GetStructValue().GetFields()
	s.Equal("run_2", first["id"].GetStringValue())
	s.Equal(4.0, first["level"].GetNumberValue())
	s.Equal(300.5, first["playTime"].GetNumberValue())
	s.Equal("2026-03-01T13:00:00Z", first["finishedAt"].GetStringValue())
}

func (s *HandlerTestSuite) TestListRunsNegativeLimit() {
	req, err := structpb.NewStruct(map[string]interface{}{"limit": -1})
	s.Require().NoError(err)

	_, err = s.client.ListRuns(s.ctx, req)
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *HandlerTestSuite) TestServiceUnavailable() {
	s.service.EXPECT().
		ListSessions(gomock.Any(), gomock.Any()).
		Return(nil, errors.Unavailable("shutting down"))

	_, err := s.client.ListSessions(s.ctx, nil)
	s.Equal(codes.Unavailable, status.Code(err))
}

func TestNewHandlerValidation(t *testing.T) {
	_, err := admin.NewHandler(nil)
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument for nil config, got %v", err)
	}

	_, err = admin.NewHandler(&admin.HandlerConfig{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument for empty config, got %v", err)
	}
}
