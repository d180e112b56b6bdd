package main

import (
	"context"
	"fmt"
	"os"

	"github.com/courtlab/gavel/internal/client"
	"github.com/courtlab/gavel/internal/model"
	"github.com/spf13/cobra"
)

var turnCmd = &cobra.Command{
	Use:   "turn",
	Short: "Manage speaking turns",
}

var turnStartCmd = &cobra.Command{
	Use:   "start <session-id>",
	Short: "Start a speaking turn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		side, _ := cmd.Flags().GetString("side")
		turnType, _ := cmd.Flags().GetString("type")
		seconds, _ := cmd.Flags().GetInt("seconds")

		turn, err := api.StartTurn(context.Background(), args[0], &client.StartTurnRequest{
			Side:             model.Side(side),
			Type:             model.TurnType(turnType),
			AllocatedSeconds: seconds,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(turn)
		} else {
			printTurnTable(turn)
		}
		return nil
	},
}

var turnEndCmd = &cobra.Command{
	Use:   "end <turn-id>",
	Short: "End the active turn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")

		var score *float64
		if cmd.Flags().Changed("score") {
			v, _ := cmd.Flags().GetFloat64("score")
			score = &v
		}

		turn, err := api.EndTurn(context.Background(), args[0], reason, score)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(turn)
		} else {
			printTurnTable(turn)
		}
		return nil
	},
}

func init() {
	turnStartCmd.Flags().String("side", "", "speaking side (petitioner or respondent)")
	turnStartCmd.Flags().StringP("type", "t", "opening", "turn type (opening, rebuttal, closing, ...)")
	turnStartCmd.Flags().Int("seconds", 300, "allocated speaking time in seconds")
	turnStartCmd.MarkFlagRequired("side")

	turnEndCmd.Flags().String("reason", "finished", "end reason")
	turnEndCmd.Flags().Float64("score", 0, "optional speaker score")

	turnCmd.AddCommand(turnStartCmd)
	turnCmd.AddCommand(turnEndCmd)
}
