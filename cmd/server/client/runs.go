package client

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recently finished runs",
	RunE:  listRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to show")
}

func listRuns(cmd *cobra.Command, _ []string) error {
	client, cleanup, err := createAdminClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]interface{}{"limit": runsLimit})
	if err != nil {
		return err
	}
	resp, err := client.ListRuns(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	printRuns(cmd.OutOrStdout(), resp)
	return nil
}

func printRuns(w io.Writer, resp *structpb.Struct) {
	list := resp.GetFields()["runs"].GetListValue().GetValues()
	if len(list) == 0 {
		fmt.Fprintln(w, "No runs recorded yet")
		return
	}

	fmt.Fprintf(w, "%-40s %-10s %-12s %-10s %5s %7s %9s  %s\n",
		"ID", "RESULT", "PLAYER", "STAGE", "LEVEL", "KILLS", "TIME", "FINISHED")
	for _, v := range list {
		f := v.GetStructValue().GetFields()
		fmt.Fprintf(w, "%-40s %-10s %-12s %-10s %5.0f %7.0f %8.1fs  %s\n",
			f["id"].GetStringValue(),
			f["result"].GetStringValue(),
			f["playerName"].GetStringValue(),
			f["stage"].GetStringValue(),
			f["level"].GetNumberValue(),
			f["enemiesDefeated"].GetNumberValue(),
			f["playTime"].GetNumberValue(),
			f["finishedAt"].GetStringValue(),
		)
	}
}
