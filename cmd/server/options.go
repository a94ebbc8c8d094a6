package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-action/internal/clients/gamedata"
	"github.com/KirkDiggler/rpg-action/internal/config"
	"github.com/KirkDiggler/rpg-action/internal/errors"
	"github.com/KirkDiggler/rpg-action/internal/pkg/i18n"
	"github.com/KirkDiggler/rpg-action/internal/pkg/logger"
)

const localesDir = "locales"

var envFile string

// addConfigFlags registers overrides for values that otherwise come from
// the environment
func addConfigFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "optional .env file")
	flags.String("data-dir", "", "data table directory (RPG_DATA_DIR)")
	flags.String("locale", "", "default locale (RPG_LOCALE)")
	flags.String("log-level", "", "log level (LOG_LEVEL)")
	flags.String("log-format", "", "text or json (LOG_FORMAT)")
}

// loadConfig reads the environment and applies any flags the user set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	overrides := map[string]*string{
		"data-dir":   &cfg.DataDir,
		"locale":     &cfg.Locale,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
		"http-addr":  &cfg.HTTPAddr,
		"redis-addr": &cfg.RedisAddr,
	}
	for name, target := range overrides {
		if flag := flags.Lookup(name); flag != nil && flag.Changed {
			*target = flag.Value.String()
		}
	}
	if flag := flags.Lookup("grpc-port"); flag != nil && flag.Changed {
		port, err := flags.GetInt("grpc-port")
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid grpc port")
		}
		cfg.GRPCPort = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// loadData loads the tables and the locale catalog from the data directory
func loadData(cfg *config.Config, log logrus.FieldLogger) (gamedata.Client, *i18n.Catalog, error) {
	fsys := os.DirFS(cfg.DataDir)

	data, err := gamedata.Load(&gamedata.Config{FS: fsys, Dir: ".", Logger: log})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load data tables")
	}

	catalog, err := i18n.Load(fsys, localesDir)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load locales")
	}
	return data, catalog, nil
}
