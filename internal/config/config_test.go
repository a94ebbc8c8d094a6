package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-action/internal/config"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := config.Load("")
	s.Require().NoError(err)

	s.Assert().Equal(":8080", cfg.HTTPAddr)
	s.Assert().Equal(50051, cfg.GRPCPort)
	s.Assert().Equal("data", cfg.DataDir)
	s.Assert().Equal(30, cfg.TickHz)
	s.Assert().Equal(15, cfg.BroadcastHz)
	s.Assert().Equal(64, cfg.MaxSessions)
	s.Assert().Empty(cfg.RedisAddr)
	s.Assert().Equal(100, cfg.RunHistory)
	s.Assert().Equal("en-US", cfg.Locale)
	s.Assert().Equal(2, cfg.BroadcastEvery())
	s.Assert().NoError(cfg.Validate())
}

func (s *ConfigTestSuite) TestEnvironmentOverrides() {
	s.T().Setenv("RPG_TICK_HZ", "60")
	s.T().Setenv("RPG_BINDINGS", "jump:KeyJ,roll:KeyX")

	cfg, err := config.Load("")
	s.Require().NoError(err)
	s.Assert().Equal(60, cfg.TickHz)
	s.Assert().Equal(map[string]string{"jump": "KeyJ", "roll": "KeyX"}, cfg.Bindings)
	s.Assert().Equal(4, cfg.BroadcastEvery())
}

func (s *ConfigTestSuite) TestEnvFile() {
	path := filepath.Join(s.T().TempDir(), ".env")
	s.Require().NoError(os.WriteFile(path, []byte("RPG_MAX_SESSIONS=3\n"), 0o600))
	s.T().Cleanup(func() { _ = os.Unsetenv("RPG_MAX_SESSIONS") })

	cfg, err := config.Load(path)
	s.Require().NoError(err)
	s.Assert().Equal(3, cfg.MaxSessions)
}

func (s *ConfigTestSuite) TestMissingEnvFileIgnored() {
	_, err := config.Load(filepath.Join(s.T().TempDir(), "nope.env"))
	s.Assert().NoError(err)
}

func (s *ConfigTestSuite) TestValidate() {
	cfg := &config.Config{
		HTTPAddr:    ":8080",
		GRPCPort:    0,
		DataDir:     "data",
		TickHz:      10,
		BroadcastHz: 20,
		MaxSessions: 1,
		RunHistory:  1,
		Locale:      "en-US",
		LogFormat:   "xml",
	}

	err := cfg.Validate()
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	fields := errors.GetMeta(err)["validation_errors"].(map[string][]string)
	s.Assert().Contains(fields, "GRPCPort")
	s.Assert().Contains(fields, "BroadcastHz")
	s.Assert().Contains(fields, "LogFormat")
}
