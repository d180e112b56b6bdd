package main

import (
	"context"
	"fmt"
	"os"

	"github.com/courtlab/gavel/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetStringSlice("status")
		tournament, _ := cmd.Flags().GetString("tournament")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := api.ListSessions(context.Background(), &client.ListSessionsRequest{
			Status:       status,
			TournamentID: tournament,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp.Sessions)
		} else {
			printSessionListTable(resp.Sessions, resp.Total)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	listCmd.Flags().StringP("tournament", "t", "", "filter by tournament")
	listCmd.Flags().Int("limit", 20, "maximum number of sessions to return")
	listCmd.Flags().Int("offset", 0, "offset for pagination")
}
