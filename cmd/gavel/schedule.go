package main

import (
	"context"
	"fmt"
	"os"

	"github.com/courtlab/gavel/internal/courtroom"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <tournament-id>",
	Short: "Schedule a new argument session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		round, _ := cmd.Flags().GetString("round")
		institution, _ := cmd.Flags().GetString("institution")
		judge, _ := cmd.Flags().GetString("judge")

		if judge == "" {
			judge = actor
		}

		session, err := api.ScheduleSession(context.Background(), &courtroom.ScheduleInput{
			TournamentID:   args[0],
			Round:          round,
			Institution:    institution,
			PresidingJudge: judge,
		})
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

func init() {
	scheduleCmd.Flags().StringP("round", "r", "", "round name (e.g. quarterfinal)")
	scheduleCmd.Flags().StringP("institution", "i", "", "hosting institution")
	scheduleCmd.Flags().StringP("judge", "j", "", "presiding judge (defaults to --actor)")
}
