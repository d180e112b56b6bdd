package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/courtlab/gavel/internal/client"
	"github.com/spf13/cobra"
)

var (
	serverAddr string
	authToken  string
	jsonOutput bool
	actor      string

	api client.GavelClient
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

func defaultServer() string {
	if s := os.Getenv("GAVEL_SERVER"); s != "" {
		return s
	}
	if s := activeRemoteURL(); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if t := os.Getenv("GAVEL_AUTH_TOKEN"); t != "" {
		return t
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:   "gavel",
	Short: "CLI client for the gavel oral-argument session service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		api = client.NewHTTPClient(serverAddr, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if api != nil {
			api.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", defaultServer(), "server base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authentication")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor name for raised_by/uploaded_by/ruled_by fields")

	rootCmd.SetHelpFunc(colorizedHelpFunc())

	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(turnCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(objectionCmd)
	rootCmd.AddCommand(exhibitCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(hashesCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(viewersCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
