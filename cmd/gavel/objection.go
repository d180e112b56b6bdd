package main

import (
	"context"
	"fmt"
	"os"

	"github.com/courtlab/gavel/internal/model"
	"github.com/spf13/cobra"
)

var objectionCmd = &cobra.Command{
	Use:   "objection",
	Short: "Raise and rule on objections",
}

var objectionRaiseCmd = &cobra.Command{
	Use:   "raise <turn-id>",
	Short: "Raise an objection against the active turn (pauses the clock)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		objType, _ := cmd.Flags().GetString("type")

		objection, err := api.RaiseObjection(context.Background(), args[0], model.ObjectionType(objType), actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(objection)
		} else {
			printObjectionTable(objection)
		}
		return nil
	},
}

var objectionRuleCmd = &cobra.Command{
	Use:   "rule <objection-id> <sustained|overruled>",
	Short: "Rule on a pending objection (resumes the clock)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		objection, err := api.RuleObjection(context.Background(), args[0], model.ObjectionState(args[1]), actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(objection)
		} else {
			printObjectionTable(objection)
		}
		return nil
	},
}

func init() {
	objectionRaiseCmd.Flags().StringP("type", "t", "relevance", "objection type (relevance, foundation, scope, misstatement, time_violation, ...)")

	objectionCmd.AddCommand(objectionRaiseCmd)
	objectionCmd.AddCommand(objectionRuleCmd)
}
