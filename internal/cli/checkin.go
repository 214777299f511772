package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tether-app/tether/internal/app/gamification"
	"github.com/tether-app/tether/internal/daemon"
)

func init() {
	checkinCmd.Flags().StringVar(&checkinAction, "action", "log_call",
		"Activity type: log_call, log_message, log_meetup, add_friend, write_note, nudge_acted, or a challenge id")
	rootCmd.AddCommand(checkinCmd)
}

var checkinAction string

var checkinCmd = &cobra.Command{
	Use:   "checkin [friend-id]",
	Short: "Record an activity (advances streak, challenges, achievements)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheckin,
}

func runCheckin(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	friendID := ""
	if len(args) > 0 {
		friendID = args[0]
	}

	d.Engine.LoadState(cmd.Context())

	before := d.Engine.State()
	var state = before
	switch checkinAction {
	case "add_friend":
		state = d.Engine.RecordFriendAdded()
	case "write_note":
		state = d.Engine.RecordNoteWritten()
	case "nudge_acted":
		state = d.Engine.RecordNudgeActedOn()
	default:
		if _, err := gamification.ResolveChallengeAction(checkinAction); err != nil {
			return fmt.Errorf("%w: %q", err, checkinAction)
		}
		state = d.Engine.RecordInteraction(friendID, checkinAction)
	}

	fmt.Printf("Recorded %s.\n", checkinAction)
	fmt.Printf("Streak: %d days  XP: %d  Level: %d (%s)\n",
		state.Stats.CurrentStreak, state.Level.TotalXP, state.Level.Level, state.Level.Title)

	if gained := state.Level.TotalXP - before.Level.TotalXP; gained > 0 {
		fmt.Printf("+%d XP\n", gained)
	}
	return nil
}
