// Package config loads server configuration from the environment, an
// optional .env file and command line overrides.
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// Config is the full server configuration
type Config struct {
	HTTPAddr    string `env:"RPG_HTTP_ADDR" envDefault:":8080"`
	GRPCPort    int    `env:"RPG_GRPC_PORT" envDefault:"50051"`
	DataDir     string `env:"RPG_DATA_DIR" envDefault:"data"`
	TickHz      int    `env:"RPG_TICK_HZ" envDefault:"30"`
	BroadcastHz int    `env:"RPG_BROADCAST_HZ" envDefault:"15"`
	MaxSessions int    `env:"RPG_MAX_SESSIONS" envDefault:"64"`
	RedisAddr   string `env:"RPG_REDIS_ADDR"`
	RunHistory  int    `env:"RPG_RUN_HISTORY" envDefault:"100"`
	Locale      string `env:"RPG_LOCALE" envDefault:"en-US"`

	// Bindings overrides default input bindings, e.g. "jump:KeyJ,roll:KeyX"
	Bindings map[string]string `env:"RPG_BINDINGS"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads envFile when it exists and then parses the environment.
// A missing .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, statErr := os.Stat(envFile); statErr == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to load env file")
			}
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	return cfg, nil
}

// Validate checks ranges and relationships between fields
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("HTTPAddr", c.HTTPAddr, vb)
	errors.ValidateRequired("DataDir", c.DataDir, vb)
	errors.ValidateRequired("Locale", c.Locale, vb)
	errors.ValidateRange("GRPCPort", c.GRPCPort, 1, 65535, vb)
	errors.ValidateRange("TickHz", c.TickHz, 1, 240, vb)
	errors.ValidateRange("BroadcastHz", c.BroadcastHz, 1, 240, vb)
	errors.ValidateRange("MaxSessions", c.MaxSessions, 1, 10000, vb)
	errors.ValidateRange("RunHistory", c.RunHistory, 1, 100000, vb)
	errors.ValidateEnum("LogFormat", c.LogFormat, []string{"text", "json"}, vb)

	if c.BroadcastHz > c.TickHz {
		vb.Field("BroadcastHz", "must not exceed TickHz")
	}

	return vb.Build()
}

// BroadcastEvery is the number of ticks between snapshot broadcasts
func (c *Config) BroadcastEvery() int {
	if c.BroadcastHz <= 0 || c.BroadcastHz >= c.TickHz {
		return 1
	}
	return c.TickHz / c.BroadcastHz
}
