package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := api.GetSession(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(session)
		} else {
			printSessionTable(session)
		}
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <session-id>",
	Short: "Show a session's full state (turns, objections, exhibits, ledger position)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := api.GetSnapshot(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(snap)
		} else {
			printSnapshotTable(snap)
		}
		return nil
	},
}
