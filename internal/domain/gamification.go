// Package domain holds the core types of the Tether gamification engine:
// levels, achievements, weekly challenges, streaks, milestones, and the
// aggregate state that ties them together.
package domain

import "time"

// ─── Level / XP Types ───────────────────────────────────────────────────────

// Level is the user's derived progression tier. It is always recomputed
// from TotalXP and never stored as an independent source of truth.
type Level struct {
	Level         int    `json:"level"`
	Title         string `json:"title"`
	CurrentXP     int    `json:"current_xp"`
	XPToNextLevel int    `json:"xp_to_next_level"`
	TotalXP       int    `json:"total_xp"`
}

// ─── Achievement Types ──────────────────────────────────────────────────────

// Tier represents an achievement's difficulty level.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// AchievementCategory groups achievements by theme.
type AchievementCategory string

const (
	CatConnections AchievementCategory = "connections"
	CatFriends     AchievementCategory = "friends"
	CatStreaks     AchievementCategory = "streaks"
	CatNotes       AchievementCategory = "notes"
	CatHabits      AchievementCategory = "habits"
)

// AchievementDef is a static catalog entry. The catalog ships with the app
// and is distinct from per-user progress.
type AchievementDef struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Tier        Tier                `json:"tier"`
	Requirement int                 `json:"requirement"`
	RewardXP    int                 `json:"reward_xp"`
}

// AchievementState is the mutable per-user progress for one catalog entry.
// Once UnlockedAt is set, Progress is frozen at Requirement.
type AchievementState struct {
	ID         string     `json:"id"`
	Progress   int        `json:"progress"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// Unlocked reports whether this achievement has been earned.
func (a AchievementState) Unlocked() bool {
	return a.UnlockedAt != nil
}

// RemoteUnlock is an achievement-unlock record fetched from the cloud mirror.
type RemoteUnlock struct {
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// RemoteProfile is the cloud mirror's view of the user's progression fields.
type RemoteProfile struct {
	TotalXP       int `json:"total_xp"`
	StreakCurrent int `json:"streak_current"`
	StreakLongest int `json:"streak_longest"`
}

// ─── Weekly Challenge Types ─────────────────────────────────────────────────

// ChallengeType categorizes the kind of weekly challenge.
type ChallengeType string

const (
	ChallengeCalls      ChallengeType = "calls"
	ChallengeMessages   ChallengeType = "messages"
	ChallengeMeetups    ChallengeType = "meetups"
	ChallengeNewFriends ChallengeType = "new_friends"
	ChallengeNotes      ChallengeType = "notes"
)

// ChallengeDef is a static weekly challenge catalog entry.
type ChallengeDef struct {
	ID          string        `json:"id"`
	Type        ChallengeType `json:"type"`
	Description string        `json:"description"`
	Target      int           `json:"target"`
	RewardXP    int           `json:"reward_xp"`
}

// WeeklyChallenge is a per-cycle instance of a catalog entry, scoped to one
// calendar week (Sunday through Saturday, local time). Progress never
// exceeds Target, and completed challenges accept no further progress.
type WeeklyChallenge struct {
	ID          string        `json:"id"`
	Type        ChallengeType `json:"type"`
	Description string        `json:"description"`
	Target      int           `json:"target"`
	Progress    int           `json:"progress"`
	RewardXP    int           `json:"reward_xp"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	Completed   bool          `json:"completed"`
}

// ProgressPct returns completion percentage (0-100).
func (c WeeklyChallenge) ProgressPct() float64 {
	if c.Target <= 0 {
		return 100.0
	}
	pct := float64(c.Progress) / float64(c.Target) * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	return pct
}

// ─── Streak Types ───────────────────────────────────────────────────────────

// StreakData tracks consecutive calendar days with at least one recorded
// activity. LastActiveDate is a "YYYY-MM-DD" date string in the user's
// local timezone, or "" if no activity was ever recorded.
// Invariant: Longest >= Current.
type StreakData struct {
	Current        int    `json:"current_streak"`
	Longest        int    `json:"longest_streak"`
	LastActiveDate string `json:"last_active_date,omitempty"`
}

// Garden is the plant display derived from the streak. It carries no
// independent state: stage and health are pure functions of the streak.
type Garden struct {
	Stage  string `json:"stage"`
	Health int    `json:"health"`
}

// ─── Milestone Types ────────────────────────────────────────────────────────

// MilestoneType categorizes relationship milestones.
type MilestoneType string

const (
	MilestoneFirstConnection MilestoneType = "first_connection"
	MilestoneSteadyOrbit     MilestoneType = "steady_orbit"
	MilestoneReconnected     MilestoneType = "reconnected"
	MilestoneFriendversary   MilestoneType = "friendversary"
)

// RelationshipMilestone is an immutable append-only record of a qualifying
// per-friend event. Celebrated transitions false→true exactly once when the
// UI acknowledges it; milestones are never deleted.
type RelationshipMilestone struct {
	ID         string        `json:"id"`
	FriendID   string        `json:"friend_id"`
	Type       MilestoneType `json:"type"`
	AchievedAt time.Time     `json:"achieved_at"`
	RewardXP   int           `json:"reward_xp"`
	Celebrated bool          `json:"celebrated"`
}

// ─── Aggregate State ────────────────────────────────────────────────────────

// LifetimeStats is the snapshot of lifetime counters fed to the achievement
// evaluator. Achievements compare directly against these values rather than
// accumulating deltas.
type LifetimeStats struct {
	TotalConnections     int            `json:"total_connections"`
	TotalFriends         int            `json:"total_friends"`
	NotesWritten         int            `json:"notes_written"`
	NudgesActedOn        int            `json:"nudges_acted_on"`
	ConnectionsPerFriend map[string]int `json:"connections_per_friend"`
	CurrentStreak        int            `json:"current_streak"`
	LongestStreak        int            `json:"longest_streak"`
}

// GamificationState is the aggregate root persisted to the local store and
// mirrored (best-effort) to the cloud. Level.TotalXP is not an independent
// input: it is recomputed from unlocked achievements, completed challenges,
// and milestones on every load and mutation.
type GamificationState struct {
	Version          int                     `json:"version"`
	Level            Level                   `json:"level"`
	Achievements     []AchievementState      `json:"achievements"`
	Challenges       []WeeklyChallenge       `json:"challenges"`
	Milestones       []RelationshipMilestone `json:"milestones"`
	Garden           Garden                  `json:"garden"`
	Stats            LifetimeStats           `json:"stats"`
	LeaderboardOptIn bool                    `json:"leaderboard_opt_in"`
	LastUpdated      time.Time               `json:"last_updated"`
}
