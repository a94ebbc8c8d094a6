package client

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List running sessions",
	RunE:  listSessions,
}

var endSessionCmd = &cobra.Command{
	Use:   "end-session [session-id]",
	Short: "End a running session",
	Args:  cobra.ExactArgs(1),
	RunE:  endSession,
}

func listSessions(cmd *cobra.Command, _ []string) error {
	client, cleanup, err := createAdminClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.ListSessions(ctx, &structpb.Struct{})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	list := resp.GetFields()["sessions"].GetListValue().GetValues()
	w := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(w, "No running sessions")
		return nil
	}
	for _, v := range list {
		printSession(w, v.GetStructValue())
	}
	return nil
}

func endSession(cmd *cobra.Command, args []string) error {
	client, cleanup, err := createAdminClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]interface{}{"sessionId": args[0]})
	if err != nil {
		return err
	}
	resp, err := client.EndSession(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Session ended:")
	printSession(w, resp.GetFields()["session"].GetStructValue())
	return nil
}

func printSession(w io.Writer, s *structpb.Struct) {
	f := s.GetFields()
	fmt.Fprintf(w, "%s  %-14s tick %-8.0f player %-12q locale %-6s watchers %.0f  since %s\n",
		f["id"].GetStringValue(),
		f["state"].GetStringValue(),
		f["tick"].GetNumberValue(),
		f["playerName"].GetStringValue(),
		f["locale"].GetStringValue(),
		f["subscribers"].GetNumberValue(),
		f["createdAt"].GetStringValue(),
	)
}
