package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [session-id]",
	Short: "Verify ledger integrity for one session, or all with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		if all {
			reports, err := api.VerifyAll(context.Background())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			if jsonOutput {
				printJSON(reports)
				return nil
			}
			failed := 0
			for i, r := range reports {
				if i > 0 {
					fmt.Println()
				}
				printReportTable(r)
				if len(r.Findings) > 0 {
					failed++
				}
			}
			fmt.Printf("\n%d sessions verified, %d with findings\n", len(reports), failed)
			if failed > 0 {
				os.Exit(1)
			}
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("session id required unless --all is set")
		}

		report, err := api.VerifySession(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(report)
		} else {
			printReportTable(report)
		}
		if len(report.Findings) > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().Bool("all", false, "verify every session")
}
