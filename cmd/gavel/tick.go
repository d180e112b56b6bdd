package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var tickCmd = &cobra.Command{
	Use:   "tick <session-id>",
	Short: "Advance a session's turn countdown by the elapsed wall-clock time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := api.Tick(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(result)
			return nil
		}
		if result.TurnID == "" {
			fmt.Println("no active turn")
			return nil
		}
		if result.Expired {
			fmt.Printf("turn %s expired\n", result.TurnID)
			return nil
		}
		fmt.Printf("turn %s: %.1fs remaining\n", result.TurnID, result.RemainingSeconds)
		return nil
	},
}
