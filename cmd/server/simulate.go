package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-action/internal/services/simulation"
)

var (
	simStage   string
	simSeconds float64
	simScript  string
	simName    string
	simStop    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless game against a scripted input timeline",
	Long: `Start a new game, feed it the input events from --script at their
timestamps and print a summary after --seconds of simulated time.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simStage, "stage", "", "start stage (defaults to the data set's start stage)")
	simulateCmd.Flags().Float64Var(&simSeconds, "seconds", 10, "seconds to simulate")
	simulateCmd.Flags().StringVar(&simScript, "script", "", "YAML or JSON input script")
	simulateCmd.Flags().StringVar(&simName, "name", "Hero", "player name")
	simulateCmd.Flags().BoolVar(&simStop, "stop-on-outcome", false, "stop when a run finishes")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	data, catalog, err := loadData(cfg, log)
	if err != nil {
		return err
	}

	var script *simulation.Script
	if simScript != "" {
		raw, err := os.ReadFile(simScript)
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		if script, err = simulation.ParseScript(raw); err != nil {
			return err
		}
	}

	svc, err := simulation.NewService(&simulation.Config{
		Data:      data,
		Logger:    log,
		Localizer: catalog.Localizer(cfg.Locale),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return simulate(ctx, svc, cmd.OutOrStdout(), &simulation.RunInput{
		StartStage:    simStage,
		PlayerName:    simName,
		Seconds:       simSeconds,
		TickHz:        cfg.TickHz,
		Script:        script,
		StopOnOutcome: simStop,
	})
}

// simulate runs the simulation and prints its summary to w
func simulate(ctx context.Context, svc simulation.Service, w io.Writer, input *simulation.RunInput) error {
	out, err := svc.Run(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Simulated %.2fs (%d ticks)\n", out.Elapsed, out.Ticks)
	fmt.Fprintf(w, "State: %s\n", out.State)
	if out.Stage != "" {
		fmt.Fprintf(w, "Stage: %s\n", out.Stage)
	}
	if p := out.Player; p != nil {
		fmt.Fprintf(w, "Player: %s level %d, HP %d/%d, exp %d, at (%.2f, %.2f, %.2f)\n",
			p.Name, p.Level, p.HP, p.MaxHP, p.Experience, p.Pos.X, p.Pos.Y, p.Pos.Z)
	}
	fmt.Fprintf(w, "Enemies alive: %d\n", out.EnemiesAlive)

	if len(out.Events) > 0 {
		names := make([]string, 0, len(out.Events))
		for name := range out.Events {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "Events:")
		for _, name := range names {
			fmt.Fprintf(w, "  %-20s %d\n", name, out.Events[name])
		}
	}

	for _, o := range out.Outcomes {
		fmt.Fprintf(w, "Run %s on %s: level %d, %d enemies defeated, %.1fs\n",
			o.Result, o.Stage, o.Level, o.EnemiesDefeated, o.PlayTime)
	}
	return nil
}
