package session

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-action/internal/engine/game"
	"github.com/KirkDiggler/rpg-action/internal/errors"
	mockclock "github.com/KirkDiggler/rpg-action/internal/pkg/clock/mock"
	"github.com/KirkDiggler/rpg-action/internal/pkg/idgen"
	idgenmock "github.com/KirkDiggler/rpg-action/internal/pkg/idgen/mock"
	"github.com/KirkDiggler/rpg-action/internal/repositories/runs"
	runsmock "github.com/KirkDiggler/rpg-action/internal/repositories/runs/mock"
	"github.com/KirkDiggler/rpg-action/internal/testutils"
)

type RunRecordTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRuns *runsmock.MockRepository
	mockIDs  *idgenmock.MockGenerator
	mockTime *mockclock.MockClock
	logHook  *test.Hook
	svc      *service
	finished time.Time
}

func TestRunRecordSuite(t *testing.T) {
	suite.Run(t, new(RunRecordTestSuite))
}

func (s *RunRecordTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRuns = runsmock.NewMockRepository(s.ctrl)
	s.mockIDs = idgenmock.NewMockGenerator(s.ctrl)
	s.mockTime = mockclock.NewMockClock(s.ctrl)
	s.finished = time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	logger, hook := test.NewNullLogger()
	s.logHook = hook

	svc, err := NewService(&Config{
		Data:        testutils.GameData(s.T()),
		Runs:        s.mockRuns,
		IDGenerator: idgen.NewSequential("s"),
		RunIDs:      s.mockIDs,
		Clock:       s.mockTime,
		Logger:      logger,
		MaxSessions: 1,
	})
	s.Require().NoError(err)
	s.svc = svc.(*service)
}

func (s *RunRecordTestSuite) TearDownTest() {
	s.svc.pool.Release()
	s.ctrl.Finish()
}

func (s *RunRecordTestSuite) outcome() *game.Outcome {
	return &game.Outcome{
		Result:          game.ResultCompleted,
		PlayerName:      "Hero",
		Stage:           testutils.KeepID,
		Level:           3,
		Experience:      250,
		EnemiesDefeated: 7,
		PlayTime:        412.5,
	}
}

func (s *RunRecordTestSuite) expectRecordStamp(id string) {
	s.mockIDs.EXPECT().Generate().Return(id)
	s.mockTime.EXPECT().Now().Return(s.finished)
}

func (s *RunRecordTestSuite) TestSaveRun() {
	s.expectRecordStamp("run_1")
	s.mockRuns.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *runs.SaveInput) (*runs.SaveOutput, error) {
			s.Equal("run_1", in.Record.ID)
			s.Equal("s_9", in.Record.SessionID)
			s.Equal("completed", in.Record.Result)
			s.Equal(testutils.KeepID, in.Record.Stage)
			s.Equal(3, in.Record.Level)
			s.Equal(7, in.Record.EnemiesDefeated)
			s.Equal(412.5, in.Record.PlayTime)
			s.True(s.finished.Equal(in.Record.FinishedAt))
			return &runs.SaveOutput{Record: in.Record}, nil
		})

	s.svc.saveRun(context.Background(), "s_9", s.outcome(), s.svc.logger)
	s.Equal("run recorded", s.logHook.LastEntry().Message)
}

func (s *RunRecordTestSuite) TestSaveRunFailureIsLogged() {
	s.expectRecordStamp("run_2")
	s.mockRuns.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Return(nil, errors.Unavailable("redis down"))

	s.svc.saveRun(context.Background(), "s_9", s.outcome(), s.svc.logger)
	s.Equal("failed to save run record", s.logHook.LastEntry().Message)
	s.Equal("run_2", s.logHook.LastEntry().Data["run_id"])
}

func (s *RunRecordTestSuite) TestListRunsPassesLimit() {
	s.mockRuns.EXPECT().
		ListRecent(gomock.Any(), &runs.ListRecentInput{Limit: 3}).
		Return(&runs.ListRecentOutput{Records: []*runs.Record{{ID: "run_1"}}}, nil)

	out, err := s.svc.ListRuns(context.Background(), &ListRunsInput{Limit: 3})
	s.Require().NoError(err)
	s.Require().Len(out.Runs, 1)
	s.Equal("run_1", out.Runs[0].ID)
}
