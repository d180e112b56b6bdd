package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events <session-id>",
	Short: "Show a session's event ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		after, _ := cmd.Flags().GetUint64("after")

		entries, err := api.Events(context.Background(), args[0], after)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(entries)
		} else {
			printEventsTable(entries)
		}
		return nil
	},
}

var hashesCmd = &cobra.Command{
	Use:   "hashes <session-id>",
	Short: "Show a session's event hashes in sequence order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hashes, err := api.Hashes(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(hashes)
			return nil
		}
		for i, h := range hashes {
			fmt.Printf("%d %s\n", i+1, h)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().Uint64("after", 0, "return only events with sequence greater than this")
}
