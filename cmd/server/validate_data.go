package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var validateDataCmd = &cobra.Command{
	Use:   "validate-data",
	Short: "Load and cross-check the data tables and locales",
	Long: `Load every data table from the data directory, check that all
references resolve and that the locale catalogs parse. Exits non-zero
with the list of problems otherwise.`,
	RunE: runValidateData,
}

func runValidateData(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	data, catalog, err := loadData(cfg, log)
	if err != nil {
		return err
	}

	settings := data.Settings()
	if _, err := data.GetStage(settings.StartStage); err != nil {
		return fmt.Errorf("start stage: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Data in %s is valid\n", cfg.DataDir)
	fmt.Fprintf(w, "  start stage: %s\n", settings.StartStage)
	fmt.Fprintf(w, "  levels:      %d\n", len(data.Levels()))
	fmt.Fprintf(w, "  locales:     %s\n", strings.Join(catalog.Locales(), ", "))
	return nil
}
