package gamification

import (
	"time"

	"github.com/tether-app/tether/internal/domain"
)

// AchievementCatalog returns the full static achievement catalog. IDs are
// stable keys; per-user progress lives in domain.AchievementState.
func AchievementCatalog() []domain.AchievementDef {
	return []domain.AchievementDef{

		// ── Connections ────────────────────────────────────────────────
		{
			ID: "first_steps", Name: "First Steps",
			Description: "Log your first connection",
			Category:    domain.CatConnections, Tier: domain.TierBronze,
			Requirement: 1, RewardXP: 50,
		},
		{
			ID: "staying_close", Name: "Staying Close",
			Description: "Log 10 connections",
			Category:    domain.CatConnections, Tier: domain.TierBronze,
			Requirement: 10, RewardXP: 75,
		},
		{
			ID: "social_butterfly", Name: "Social Butterfly",
			Description: "Log 50 connections",
			Category:    domain.CatConnections, Tier: domain.TierSilver,
			Requirement: 50, RewardXP: 150,
		},
		{
			ID: "century_of_care", Name: "Century of Care",
			Description: "Log 100 connections",
			Category:    domain.CatConnections, Tier: domain.TierGold,
			Requirement: 100, RewardXP: 250,
		},

		// ── Friends ────────────────────────────────────────────────────
		{
			ID: "inner_circle", Name: "Inner Circle",
			Description: "Add 5 friends to your orbits",
			Category:    domain.CatFriends, Tier: domain.TierBronze,
			Requirement: 5, RewardXP: 75,
		},
		{
			ID: "full_orbit", Name: "Full Orbit",
			Description: "Add 25 friends to your orbits",
			Category:    domain.CatFriends, Tier: domain.TierSilver,
			Requirement: 25, RewardXP: 150,
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "spark", Name: "Spark",
			Description: "Reach a 3-day streak",
			Category:    domain.CatStreaks, Tier: domain.TierBronze,
			Requirement: 3, RewardXP: 50,
		},
		{
			ID: "week_together", Name: "Week Together",
			Description: "Reach a 7-day streak",
			Category:    domain.CatStreaks, Tier: domain.TierSilver,
			Requirement: 7, RewardXP: 100,
		},
		{
			ID: "monthly_devotion", Name: "Monthly Devotion",
			Description: "Reach a 30-day streak",
			Category:    domain.CatStreaks, Tier: domain.TierGold,
			Requirement: 30, RewardXP: 200,
		},
		{
			ID: "hundred_days", Name: "Hundred Days",
			Description: "Reach a 100-day streak",
			Category:    domain.CatStreaks, Tier: domain.TierPlatinum,
			Requirement: 100, RewardXP: 400,
		},

		// ── Notes ──────────────────────────────────────────────────────
		{
			ID: "first_note", Name: "First Note",
			Description: "Write a note about a friend",
			Category:    domain.CatNotes, Tier: domain.TierBronze,
			Requirement: 1, RewardXP: 25,
		},
		{
			ID: "biographer", Name: "Biographer",
			Description: "Write 25 notes",
			Category:    domain.CatNotes, Tier: domain.TierSilver,
			Requirement: 25, RewardXP: 125,
		},

		// ── Habits ─────────────────────────────────────────────────────
		{
			ID: "nudge_taker", Name: "Nudge Taker",
			Description: "Act on 10 nudges",
			Category:    domain.CatHabits, Tier: domain.TierBronze,
			Requirement: 10, RewardXP: 75,
		},
		{
			ID: "early_bird", Name: "Early Bird",
			Description: "Reach out before 9 AM",
			Category:    domain.CatHabits, Tier: domain.TierBronze,
			Requirement: 1, RewardXP: 50,
		},
		{
			ID: "night_owl", Name: "Night Owl",
			Description: "Reach out after 10 PM",
			Category:    domain.CatHabits, Tier: domain.TierBronze,
			Requirement: 1, RewardXP: 50,
		},
	}
}

// achievementDefByID returns the catalog entry for id, or ok=false.
func achievementDefByID(id string) (domain.AchievementDef, bool) {
	for _, def := range AchievementCatalog() {
		if def.ID == id {
			return def, true
		}
	}
	return domain.AchievementDef{}, false
}

// AchievementByID returns the catalog entry for id. Ids absent from the
// catalog return domain.ErrAchievementUnknown.
func AchievementByID(id string) (domain.AchievementDef, error) {
	if def, ok := achievementDefByID(id); ok {
		return def, nil
	}
	return domain.AchievementDef{}, domain.ErrAchievementUnknown
}

// UpdateAchievementProgress sets an achievement's progress to newProgress,
// clamped to [0, requirement]. No-op once unlocked: progress and unlockedAt
// are frozen. Returns true if this call unlocked the achievement.
func UpdateAchievementProgress(st *domain.AchievementState, def domain.AchievementDef, newProgress int, now time.Time) bool {
	if st.Unlocked() {
		return false
	}

	if newProgress < 0 {
		newProgress = 0
	}
	if newProgress > def.Requirement {
		newProgress = def.Requirement
	}

	st.Progress = newProgress
	if newProgress >= def.Requirement {
		// Frozen at exactly Requirement, not the possibly-larger raw input.
		st.Progress = def.Requirement
		at := now
		st.UnlockedAt = &at
		return true
	}
	return false
}

// CheckAndUpdateAchievements evaluates the full catalog against a lifetime
// stats snapshot, setting each achievement's progress to the current stat
// value (direct comparison, not delta accumulation). The two time-of-day
// achievements are evaluated against the hour of the now parameter.
// Returns the ids of newly unlocked achievements.
func CheckAndUpdateAchievements(states []domain.AchievementState, stats domain.LifetimeStats, now time.Time) []string {
	targets := map[string]int{
		"first_steps":      stats.TotalConnections,
		"staying_close":    stats.TotalConnections,
		"social_butterfly": stats.TotalConnections,
		"century_of_care":  stats.TotalConnections,
		"inner_circle":     stats.TotalFriends,
		"full_orbit":       stats.TotalFriends,
		"spark":            stats.CurrentStreak,
		"week_together":    stats.CurrentStreak,
		"monthly_devotion": stats.CurrentStreak,
		"hundred_days":     stats.CurrentStreak,
		"first_note":       stats.NotesWritten,
		"biographer":       stats.NotesWritten,
		"nudge_taker":      stats.NudgesActedOn,
	}
	if now.Hour() < 9 {
		targets["early_bird"] = 1
	}
	if now.Hour() >= 22 {
		targets["night_owl"] = 1
	}

	var unlocked []string
	for i := range states {
		st := &states[i]
		value, ok := targets[st.ID]
		if !ok {
			continue
		}
		def, ok := achievementDefByID(st.ID)
		if !ok {
			continue
		}
		if UpdateAchievementProgress(st, def, value, now) {
			unlocked = append(unlocked, st.ID)
		}
	}
	return unlocked
}

// freshAchievementStates instantiates one zero-progress state per catalog
// entry, guaranteeing new catalog entries appear after an app update.
func freshAchievementStates() []domain.AchievementState {
	catalog := AchievementCatalog()
	states := make([]domain.AchievementState, len(catalog))
	for i, def := range catalog {
		states[i] = domain.AchievementState{ID: def.ID}
	}
	return states
}
