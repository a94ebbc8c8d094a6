// Package client provides debug commands against a running rpg-action
// server: a websocket watcher and gRPC admin calls.
package client

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/KirkDiggler/rpg-action/internal/handlers/admin"
)

var (
	// Connection flags
	serverAddr string
	httpAddr   string
	timeout    time.Duration
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Debug client commands for the rpg-action server",
	Long:  `Client commands watch a session over the websocket or call the gRPC admin service.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC admin address")
	ClientCmd.PersistentFlags().StringVar(&httpAddr, "http", "localhost:8080", "websocket server host:port")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	ClientCmd.AddCommand(watchCmd)
	ClientCmd.AddCommand(runsCmd)
	ClientCmd.AddCommand(sessionsCmd)
	ClientCmd.AddCommand(endSessionCmd)
}

// createAdminClient creates an admin service client
func createAdminClient() (*admin.AdminClient, func(), error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}
	return admin.NewAdminClient(conn), cleanup, nil
}
