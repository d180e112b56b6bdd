package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/courtlab/gavel/internal/client"
	"github.com/courtlab/gavel/internal/model"
	"github.com/spf13/cobra"
)

var exhibitCmd = &cobra.Command{
	Use:   "exhibit",
	Short: "Manage evidentiary exhibits",
}

var exhibitUploadCmd = &cobra.Command{
	Use:   "upload <session-id> <file>",
	Short: "Upload an exhibit file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		side, _ := cmd.Flags().GetString("side")

		data, err := os.ReadFile(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		exhibit, err := api.UploadExhibit(context.Background(), args[0], &client.UploadExhibitRequest{
			Side:       model.Side(side),
			Filename:   filepath.Base(args[1]),
			Data:       data,
			UploadedBy: actor,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(exhibit)
		} else {
			printExhibitTable(exhibit)
		}
		return nil
	},
}

var exhibitListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List a session's exhibits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exhibits, err := api.ListExhibits(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(exhibits)
		} else {
			printExhibitListTable(exhibits)
		}
		return nil
	},
}

// exhibitActionCmd builds a command for the single-argument exhibit
// transitions (mark, tender).
func exhibitActionCmd(use, short string, op func(ctx context.Context, id string) (*model.Exhibit, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <exhibit-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exhibit, err := op(context.Background(), args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			if jsonOutput {
				printJSON(exhibit)
			} else {
				printExhibitTable(exhibit)
			}
			return nil
		},
	}
}

var exhibitMarkCmd = exhibitActionCmd("mark", "Mark an exhibit for identification", func(ctx context.Context, id string) (*model.Exhibit, error) {
	return api.MarkExhibit(ctx, id)
})

var exhibitTenderCmd = exhibitActionCmd("tender", "Tender a marked exhibit into evidence", func(ctx context.Context, id string) (*model.Exhibit, error) {
	return api.TenderExhibit(ctx, id)
})

var exhibitRuleCmd = &cobra.Command{
	Use:   "rule <exhibit-id> <admitted|rejected>",
	Short: "Rule on a tendered exhibit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exhibit, err := api.RuleExhibit(context.Background(), args[0], model.ExhibitState(args[1]), actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(exhibit)
		} else {
			printExhibitTable(exhibit)
		}
		return nil
	},
}

var exhibitGetCmd = &cobra.Command{
	Use:   "get <exhibit-id>",
	Short: "Download an exhibit's file content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		data, contentType, err := api.ExhibitContent(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if output == "" || output == "-" {
			os.Stdout.Write(data)
			return nil
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %d bytes (%s) to %s\n", len(data), contentType, output)
		return nil
	},
}

func init() {
	exhibitUploadCmd.Flags().String("side", "", "submitting side (petitioner or respondent)")
	exhibitUploadCmd.MarkFlagRequired("side")

	exhibitGetCmd.Flags().StringP("output", "o", "", "write content to file instead of stdout")

	exhibitCmd.AddCommand(exhibitUploadCmd)
	exhibitCmd.AddCommand(exhibitListCmd)
	exhibitCmd.AddCommand(exhibitMarkCmd)
	exhibitCmd.AddCommand(exhibitTenderCmd)
	exhibitCmd.AddCommand(exhibitRuleCmd)
	exhibitCmd.AddCommand(exhibitGetCmd)
}
