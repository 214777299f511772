// Package gamification implements the Tether engagement engine: XP and
// levels, the achievement catalog and evaluator, day-granularity streaks,
// weekly challenges, relationship milestones, and the reconciler that merges
// local state with the cloud mirror.
package gamification

import (
	"math"
	"time"

	"github.com/tether-app/tether/internal/domain"
)

// dateLayout is the calendar-day format used for streak comparisons.
// All comparisons are calendar-day differences in the activity's local
// timezone, never elapsed hours.
const dateLayout = "2006-01-02"

// RecordDailyActivity advances the streak for an activity at the given time.
// Returns false if today was already recorded (at-most-once-per-day).
//
// Exactly one calendar day after LastActiveDate extends the streak; any
// larger gap (or no prior activity) resets it to 1. Longest never decreases.
func RecordDailyActivity(s *domain.StreakData, now time.Time) bool {
	today := now.Format(dateLayout)
	if s.LastActiveDate == today {
		return false
	}

	if s.LastActiveDate != "" && daysSince(s.LastActiveDate, now) == 1 {
		s.Current++
	} else {
		s.Current = 1
	}

	s.LastActiveDate = today
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return true
}

// ExpireIfStale zeroes the current streak when the last activity is more
// than one calendar day in the past. Called on load — streak decay is
// detected lazily, not by a background timer. Longest is untouched.
// Returns true if the streak was expired.
func ExpireIfStale(s *domain.StreakData, now time.Time) bool {
	if s.Current == 0 || s.LastActiveDate == "" {
		return false
	}
	if daysSince(s.LastActiveDate, now) > 1 {
		s.Current = 0
		return true
	}
	return false
}

// MergeStreak raises local streak fields to match remote, never lowers them.
// A stale remote read must not erase local progress. Returns true if any
// field changed.
func MergeStreak(local *domain.StreakData, remote domain.RemoteProfile) bool {
	changed := false
	if remote.StreakCurrent > local.Current {
		local.Current = remote.StreakCurrent
		changed = true
	}
	if remote.StreakLongest > local.Longest {
		local.Longest = remote.StreakLongest
		changed = true
	}
	if local.Longest < local.Current {
		local.Longest = local.Current
		changed = true
	}
	return changed
}

// daysSince returns the calendar-day difference between a stored
// "YYYY-MM-DD" date and now, both taken in now's location. Midnight-to-
// midnight rounding keeps DST transitions from miscounting a day.
func daysSince(date string, now time.Time) int {
	last, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		// Unparseable date is treated as ancient: the streak resets.
		return math.MaxInt32
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return int(math.Round(today.Sub(last).Hours() / 24))
}

// ─── Garden ─────────────────────────────────────────────────────────────────

// gardenStages maps a minimum streak to a plant stage. Ascending order; the
// largest threshold at or below the streak wins.
var gardenStages = []struct {
	MinStreak int
	Stage     string
}{
	{0, "seed"},
	{3, "sprout"},
	{7, "seedling"},
	{14, "bloom"},
	{30, "flourishing"},
	{100, "grove"},
}

// GardenForStreak derives the garden display from the streak. Health is 100
// for an active streak today, decays with the gap since the last activity,
// and bottoms out at 20.
func GardenForStreak(s domain.StreakData, now time.Time) domain.Garden {
	stage := gardenStages[0].Stage
	for _, g := range gardenStages {
		if s.Current < g.MinStreak {
			break
		}
		stage = g.Stage
	}

	health := 100
	if s.LastActiveDate == "" {
		health = 50
	} else if gap := daysSince(s.LastActiveDate, now); gap > 0 {
		health = 100 - gap*20
		if health < 20 {
			health = 20
		}
	}
	return domain.Garden{Stage: stage, Health: health}
}
