package gamification

import (
	"time"

	"github.com/google/uuid"

	"github.com/tether-app/tether/internal/domain"
)

// XP rewards for relationship milestones.
const (
	XPMilestoneFirstConnection = 25
	XPMilestoneSteadyOrbit     = 50
	XPMilestoneReconnected     = 40
	XPMilestoneFriendversary   = 100
)

// steadyOrbitThreshold is the per-friend connection count that earns the
// steady_orbit milestone.
const steadyOrbitThreshold = 10

// newMilestone creates an immutable milestone record. Milestones are
// append-only and never deleted.
func newMilestone(friendID string, typ domain.MilestoneType, rewardXP int, now time.Time) domain.RelationshipMilestone {
	return domain.RelationshipMilestone{
		ID:         uuid.NewString(),
		FriendID:   friendID,
		Type:       typ,
		AchievedAt: now,
		RewardXP:   rewardXP,
	}
}

// hasMilestone reports whether a milestone of the given type already exists
// for the friend. Qualifying events create at most one record each.
func hasMilestone(milestones []domain.RelationshipMilestone, friendID string, typ domain.MilestoneType) bool {
	for _, m := range milestones {
		if m.FriendID == friendID && m.Type == typ {
			return true
		}
	}
	return false
}

// connectionMilestones returns any milestones newly earned by a connection
// with the given friend, based on the post-increment per-friend count.
func connectionMilestones(state *domain.GamificationState, friendID string, now time.Time) []domain.RelationshipMilestone {
	var earned []domain.RelationshipMilestone

	count := state.Stats.ConnectionsPerFriend[friendID]
	if count == 1 && !hasMilestone(state.Milestones, friendID, domain.MilestoneFirstConnection) {
		earned = append(earned, newMilestone(friendID, domain.MilestoneFirstConnection, XPMilestoneFirstConnection, now))
	}
	if count >= steadyOrbitThreshold && !hasMilestone(state.Milestones, friendID, domain.MilestoneSteadyOrbit) {
		earned = append(earned, newMilestone(friendID, domain.MilestoneSteadyOrbit, XPMilestoneSteadyOrbit, now))
	}
	return earned
}
