package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tether-app/tether/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, streak, and progression at a glance",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	state := d.Engine.LoadState(cmd.Context())
	streak := d.Engine.Streak()

	fmt.Printf("Level %d — %s\n", state.Level.Level, state.Level.Title)
	fmt.Printf("XP: %d total (%d/%d to next level)\n",
		state.Level.TotalXP, state.Level.CurrentXP, state.Level.XPToNextLevel)
	fmt.Printf("Streak: %d days (longest %d)\n", streak.Current, streak.Longest)
	fmt.Printf("Garden: %s (health %d)\n\n", state.Garden.Stage, state.Garden.Health)

	unlocked := 0
	for _, a := range state.Achievements {
		if a.Unlocked() {
			unlocked++
		}
	}
	fmt.Printf("Achievements: %d/%d unlocked\n", unlocked, len(state.Achievements))

	if len(state.Challenges) > 0 {
		fmt.Println("\nThis week's challenges:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CHALLENGE\tPROGRESS\tREWARD\tDONE")
		for _, c := range state.Challenges {
			done := ""
			if c.Completed {
				done = "✓"
			}
			fmt.Fprintf(w, "%s\t%d/%d\t%d XP\t%s\n",
				c.Description, c.Progress, c.Target, c.RewardXP, done)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
