package gamification

import (
	"time"

	"github.com/tether-app/tether/internal/domain"
)

// ChallengeCatalog returns the fixed weekly challenge set. One instance per
// entry is created each calendar week; prior-week progress never carries
// over.
func ChallengeCatalog() []domain.ChallengeDef {
	return []domain.ChallengeDef{
		{ID: "weekly_calls", Type: domain.ChallengeCalls, Description: "Call 3 friends this week", Target: 3, RewardXP: 100},
		{ID: "weekly_messages", Type: domain.ChallengeMessages, Description: "Message 5 friends this week", Target: 5, RewardXP: 75},
		{ID: "weekly_meetup", Type: domain.ChallengeMeetups, Description: "Meet up with a friend this week", Target: 1, RewardXP: 150},
		{ID: "weekly_new_friend", Type: domain.ChallengeNewFriends, Description: "Add a new friend this week", Target: 1, RewardXP: 125},
		{ID: "weekly_notes", Type: domain.ChallengeNotes, Description: "Write 3 notes this week", Target: 3, RewardXP: 75},
	}
}

// actionAliases maps external action names from UI event handlers to
// challenge types. Challenges are matched by exact id first, then by alias.
var actionAliases = map[string]domain.ChallengeType{
	"make_calls":    domain.ChallengeCalls,
	"log_call":      domain.ChallengeCalls,
	"send_messages": domain.ChallengeMessages,
	"log_message":   domain.ChallengeMessages,
	"meet_up":       domain.ChallengeMeetups,
	"log_meetup":    domain.ChallengeMeetups,
	"add_friend":    domain.ChallengeNewFriends,
	"write_note":    domain.ChallengeNotes,
}

// ResolveChallengeAction maps a challenge id or external action name to its
// challenge type. Names matching neither the catalog nor the alias table
// return domain.ErrChallengeUnknown.
func ResolveChallengeAction(idOrAction string) (domain.ChallengeType, error) {
	if t, ok := actionAliases[idOrAction]; ok {
		return t, nil
	}
	for _, def := range ChallengeCatalog() {
		if def.ID == idOrAction {
			return def.Type, nil
		}
	}
	return "", domain.ErrChallengeUnknown
}

// WeekBounds returns the challenge week containing now: Sunday 00:00:00.000
// local through the following Saturday 23:59:59.999 local.
func WeekBounds(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	start = midnight.AddDate(0, 0, -int(midnight.Weekday()))
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// InitializeWeeklyChallenges produces a fresh cycle instance for every
// catalog entry, scoped to the week containing now.
func InitializeWeeklyChallenges(now time.Time) []domain.WeeklyChallenge {
	start, end := WeekBounds(now)
	catalog := ChallengeCatalog()
	challenges := make([]domain.WeeklyChallenge, len(catalog))
	for i, def := range catalog {
		challenges[i] = domain.WeeklyChallenge{
			ID:          def.ID,
			Type:        def.Type,
			Description: def.Description,
			Target:      def.Target,
			RewardXP:    def.RewardXP,
			StartDate:   start,
			EndDate:     end,
		}
	}
	return challenges
}

// UpdateChallengeProgress adds increment to every challenge matching
// idOrAction, by exact id or through the action alias table. Completed
// challenges are frozen. Progress is clamped to target, and Completed flips
// exactly when progress reaches target in this update (edge-triggered).
// Returns the ids of challenges completed by this call.
func UpdateChallengeProgress(challenges []domain.WeeklyChallenge, idOrAction string, increment int) []string {
	aliasType, hasAlias := actionAliases[idOrAction]

	var completed []string
	for i := range challenges {
		c := &challenges[i]
		if c.ID != idOrAction && !(hasAlias && c.Type == aliasType) {
			continue
		}
		if c.Completed {
			continue
		}

		c.Progress += increment
		if c.Progress >= c.Target {
			c.Progress = c.Target
			c.Completed = true
			completed = append(completed, c.ID)
		}
	}
	return completed
}

// spliceChallengeProgress carries progress and completion from a persisted
// cycle into freshly instantiated challenges, matching by id. Only a cycle
// from the current week is spliced; a stale-week cycle is discarded, which
// repairs its dates without resurrecting last week's counts.
func spliceChallengeProgress(fresh, stored []domain.WeeklyChallenge, now time.Time) {
	start, _ := WeekBounds(now)

	byID := make(map[string]domain.WeeklyChallenge, len(stored))
	for _, c := range stored {
		if c.StartDate.Equal(start) {
			byID[c.ID] = c
		}
	}
	for i := range fresh {
		if prev, ok := byID[fresh[i].ID]; ok {
			fresh[i].Progress = prev.Progress
			fresh[i].Completed = prev.Completed
			if fresh[i].Progress > fresh[i].Target {
				fresh[i].Progress = fresh[i].Target
			}
		}
	}
}
