package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tether-app/tether/internal/daemon"
)

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Skip confirmation")
	rootCmd.AddCommand(resetCmd)
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all local progression (streaks, XP, achievements, milestones)",
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Print("This wipes all local progression. Type 'yes' to continue: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Engine.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Println("All local progression wiped.")
	return nil
}
