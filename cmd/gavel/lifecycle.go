package main

import (
	"context"
	"fmt"
	"os"

	"github.com/courtlab/gavel/internal/model"
	"github.com/spf13/cobra"
)

// lifecycleCmd builds a command that applies one session lifecycle
// transition. All four transitions share the same shape.
func lifecycleCmd(use, short string, op func(ctx context.Context, id string) (*model.Session, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := op(context.Background(), args[0])
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
}

var (
	startCmd = lifecycleCmd("start", "Start a scheduled session", func(ctx context.Context, id string) (*model.Session, error) {
		return api.StartSession(ctx, id)
	})
	pauseCmd = lifecycleCmd("pause", "Pause a live session", func(ctx context.Context, id string) (*model.Session, error) {
		return api.PauseSession(ctx, id)
	})
	resumeCmd = lifecycleCmd("resume", "Resume a paused session", func(ctx context.Context, id string) (*model.Session, error) {
		return api.ResumeSession(ctx, id)
	})
	completeCmd = lifecycleCmd("complete", "Complete a live session", func(ctx context.Context, id string) (*model.Session, error) {
		return api.CompleteSession(ctx, id)
	})
)
