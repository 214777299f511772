// Package cli implements the Tether command-line interface using Cobra.
// Each subcommand maps to an engine capability (serve, status, checkin, reset).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tether",
	Short: "Tether — Keep your friendships in orbit",
	Long: `Tether is the engine behind the Tether relationship app.
It tracks streaks, XP, achievements, weekly challenges, and relationship
milestones, stores everything locally, and mirrors progress to the cloud
when you are signed in.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
