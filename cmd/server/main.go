// Package main is the entry point for the rpg-action server and tools
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-action/cmd/server/client"
)

var rootCmd = &cobra.Command{
	Use:   "rpg-action",
	Short: "Server-authoritative action RPG simulation",
	Long: `rpg-action runs action RPG sessions on fixed tick loops and streams
snapshots to websocket clients. It also runs headless simulations and
validates data tables.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	addConfigFlags(rootCmd)

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(validateDataCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
