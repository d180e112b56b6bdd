package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var viewersCmd = &cobra.Command{
	Use:   "viewers <session-id>",
	Short: "List spectators connected to a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.Viewers(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printViewersTable(args[0], resp.Viewers)
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := api.Health(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(status)
		return nil
	},
}
