package gamification_test

import (
	"errors"
	"testing"
	"time"

	"github.com/tether-app/tether/internal/app/gamification"
	"github.com/tether-app/tether/internal/domain"
)

// ═══════════════════════════════════════════════════════════════════════════
// Level Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		totalXP   int
		level     int
		currentXP int
	}{
		{0, 1, 0},
		{50, 1, 50},
		{99, 1, 99},
		{100, 2, 0},
		{150, 2, 50},
		{250, 3, 50},
		{1000, 11, 0},
	}

	for _, tt := range tests {
		got := gamification.CalculateLevel(tt.totalXP)
		if got.Level != tt.level {
			t.Errorf("CalculateLevel(%d).Level = %d, want %d", tt.totalXP, got.Level, tt.level)
		}
		if got.CurrentXP != tt.currentXP {
			t.Errorf("CalculateLevel(%d).CurrentXP = %d, want %d", tt.totalXP, got.CurrentXP, tt.currentXP)
		}
		if got.XPToNextLevel != 100 {
			t.Errorf("CalculateLevel(%d).XPToNextLevel = %d, want 100", tt.totalXP, got.XPToNextLevel)
		}
		if got.TotalXP != tt.totalXP {
			t.Errorf("CalculateLevel(%d).TotalXP = %d", tt.totalXP, got.TotalXP)
		}
	}
}

func TestCalculateLevel_NegativeClamped(t *testing.T) {
	got := gamification.CalculateLevel(-500)
	if got.Level != 1 || got.TotalXP != 0 {
		t.Errorf("negative XP: got level %d totalXP %d, want level 1 totalXP 0", got.Level, got.TotalXP)
	}
}

func TestTitleForLevel(t *testing.T) {
	tests := []struct {
		level int
		title string
	}{
		{1, "New Orbit"},
		{2, "New Orbit"},
		{3, "Circle Keeper"},
		{4, "Circle Keeper"},
		{5, "Connector"},
		{12, "Constellation Builder"},
		{25, "Tether Legend"},
		{99, "Tether Legend"},
	}

	for _, tt := range tests {
		if got := gamification.TitleForLevel(tt.level); got != tt.title {
			t.Errorf("TitleForLevel(%d) = %q, want %q", tt.level, got, tt.title)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestStreak_FirstActivity(t *testing.T) {
	s := domain.StreakData{}
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	if !gamification.RecordDailyActivity(&s, day) {
		t.Fatal("first activity should change the streak")
	}
	if s.Current != 1 || s.Longest != 1 {
		t.Errorf("got current %d longest %d, want 1/1", s.Current, s.Longest)
	}
	if s.LastActiveDate != "2024-01-01" {
		t.Errorf("LastActiveDate = %q, want 2024-01-01", s.LastActiveDate)
	}
}

func TestStreak_ConsecutiveDayExtends(t *testing.T) {
	s := domain.StreakData{Current: 5, Longest: 5, LastActiveDate: "2024-01-01"}
	next := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

	gamification.RecordDailyActivity(&s, next)
	if s.Current != 6 {
		t.Errorf("current = %d, want 6", s.Current)
	}
	if s.Longest != 6 {
		t.Errorf("longest = %d, want 6", s.Longest)
	}
}

func TestStreak_SameDayIdempotent(t *testing.T) {
	s := domain.StreakData{}
	day := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	gamification.RecordDailyActivity(&s, day)
	if gamification.RecordDailyActivity(&s, day.Add(2*time.Hour)) {
		t.Error("same-day activity should be a no-op")
	}
	if s.Current != 1 {
		t.Errorf("current = %d, want 1 (idempotent)", s.Current)
	}
}

func TestStreak_GapResets(t *testing.T) {
	s := domain.StreakData{Current: 5, Longest: 8, LastActiveDate: "2024-01-01"}
	later := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	gamification.RecordDailyActivity(&s, later)
	if s.Current != 1 {
		t.Errorf("current = %d, want 1 after 9-day gap", s.Current)
	}
	if s.Longest != 8 {
		t.Errorf("longest = %d, want 8 preserved", s.Longest)
	}
}

func TestStreak_ExpireIfStale(t *testing.T) {
	s := domain.StreakData{Current: 5, Longest: 9, LastActiveDate: "2024-01-01"}

	// Next day: still within grace, nothing expires.
	if gamification.ExpireIfStale(&s, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)) {
		t.Error("one-day gap should not expire")
	}
	if s.Current != 5 {
		t.Errorf("current = %d, want 5", s.Current)
	}

	// Two days later: expired.
	if !gamification.ExpireIfStale(&s, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)) {
		t.Error("two-day gap should expire")
	}
	if s.Current != 0 {
		t.Errorf("current = %d, want 0 after expiry", s.Current)
	}
	if s.Longest != 9 {
		t.Errorf("longest = %d, want 9 untouched", s.Longest)
	}
}

func TestStreak_ExpireUnparseableDate(t *testing.T) {
	s := domain.StreakData{Current: 4, Longest: 4, LastActiveDate: "not-a-date"}
	if !gamification.ExpireIfStale(&s, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Error("unparseable date should expire the streak")
	}
}

func TestMergeStreak_RaiseOnly(t *testing.T) {
	local := domain.StreakData{Current: 3, Longest: 10}
	remote := domain.RemoteProfile{StreakCurrent: 7, StreakLongest: 5}

	if !gamification.MergeStreak(&local, remote) {
		t.Fatal("merge should report a change")
	}
	if local.Current != 7 {
		t.Errorf("current = %d, want 7 (raised to remote)", local.Current)
	}
	if local.Longest != 10 {
		t.Errorf("longest = %d, want 10 (remote lower, kept)", local.Longest)
	}
}

func TestMergeStreak_NonRegressing(t *testing.T) {
	local := domain.StreakData{Current: 12, Longest: 20}
	remote := domain.RemoteProfile{StreakCurrent: 2, StreakLongest: 2}

	if gamification.MergeStreak(&local, remote) {
		t.Error("stale remote should change nothing")
	}
	if local.Current != 12 || local.Longest != 20 {
		t.Errorf("got %d/%d, want 12/20", local.Current, local.Longest)
	}
}

func TestGardenForStreak(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		current int
		stage   string
	}{
		{0, "seed"},
		{2, "seed"},
		{3, "sprout"},
		{7, "seedling"},
		{14, "bloom"},
		{30, "flourishing"},
		{150, "grove"},
	}

	for _, tt := range tests {
		s := domain.StreakData{Current: tt.current, Longest: tt.current, LastActiveDate: "2024-01-15"}
		g := gamification.GardenForStreak(s, now)
		if g.Stage != tt.stage {
			t.Errorf("streak %d: stage = %q, want %q", tt.current, g.Stage, tt.stage)
		}
		if g.Health != 100 {
			t.Errorf("streak %d active today: health = %d, want 100", tt.current, g.Health)
		}
	}
}

func TestGardenHealth_Decay(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	s := domain.StreakData{Current: 5, LastActiveDate: "2024-01-13"} // 2-day gap
	if g := gamification.GardenForStreak(s, now); g.Health != 60 {
		t.Errorf("2-day gap: health = %d, want 60", g.Health)
	}

	s.LastActiveDate = "2024-01-01" // Long gap bottoms out
	if g := gamification.GardenForStreak(s, now); g.Health != 20 {
		t.Errorf("long gap: health = %d, want 20 floor", g.Health)
	}

	if g := gamification.GardenForStreak(domain.StreakData{}, now); g.Health != 50 {
		t.Errorf("never active: health = %d, want 50", g.Health)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestAchievements_UnlockOnThreshold(t *testing.T) {
	states := []domain.AchievementState{{ID: "first_steps"}, {ID: "staying_close"}}
	stats := domain.LifetimeStats{TotalConnections: 1}
	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	unlocked := gamification.CheckAndUpdateAchievements(states, stats, noon)
	if len(unlocked) != 1 || unlocked[0] != "first_steps" {
		t.Fatalf("unlocked = %v, want [first_steps]", unlocked)
	}
	if !states[0].Unlocked() {
		t.Error("first_steps should be unlocked")
	}
	if states[1].Unlocked() {
		t.Error("staying_close should not be unlocked at 1 connection")
	}
	if states[1].Progress != 1 {
		t.Errorf("staying_close progress = %d, want 1", states[1].Progress)
	}
}

func TestAchievements_UnlockIdempotent(t *testing.T) {
	states := []domain.AchievementState{{ID: "first_steps"}}
	stats := domain.LifetimeStats{TotalConnections: 1}
	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	gamification.CheckAndUpdateAchievements(states, stats, noon)
	firstAt := *states[0].UnlockedAt

	stats.TotalConnections = 5
	again := gamification.CheckAndUpdateAchievements(states, stats, noon.Add(time.Hour))
	if len(again) != 0 {
		t.Errorf("second pass unlocked %v, want none", again)
	}
	if !states[0].UnlockedAt.Equal(firstAt) {
		t.Error("UnlockedAt must not move on re-evaluation")
	}
	if states[0].Progress != 1 {
		t.Errorf("progress = %d, want frozen at requirement 1", states[0].Progress)
	}
}

func TestAchievements_ProgressClamped(t *testing.T) {
	states := []domain.AchievementState{{ID: "staying_close"}} // requirement 10
	stats := domain.LifetimeStats{TotalConnections: 250}
	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	gamification.CheckAndUpdateAchievements(states, stats, noon)
	if states[0].Progress != 10 {
		t.Errorf("progress = %d, want clamped to 10", states[0].Progress)
	}
	if !states[0].Unlocked() {
		t.Error("should be unlocked")
	}
}

func TestAchievements_TimeOfDayGates(t *testing.T) {
	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	early := time.Date(2024, 1, 1, 8, 59, 0, 0, time.UTC)
	late := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)

	states := []domain.AchievementState{{ID: "early_bird"}, {ID: "night_owl"}}
	stats := domain.LifetimeStats{TotalConnections: 1}

	if got := gamification.CheckAndUpdateAchievements(states, stats, noon); len(got) != 0 {
		t.Errorf("noon unlocked %v, want none", got)
	}

	if got := gamification.CheckAndUpdateAchievements(states, stats, early); len(got) != 1 || got[0] != "early_bird" {
		t.Errorf("before 09:00 unlocked %v, want [early_bird]", got)
	}

	if got := gamification.CheckAndUpdateAchievements(states, stats, late); len(got) != 1 || got[0] != "night_owl" {
		t.Errorf("at 22:00 unlocked %v, want [night_owl]", got)
	}
}

func TestAchievementByID(t *testing.T) {
	def, err := gamification.AchievementByID("first_steps")
	if err != nil {
		t.Fatalf("first_steps: %v", err)
	}
	if def.Requirement != 1 || def.RewardXP != 50 {
		t.Errorf("first_steps def = %+v", def)
	}

	if _, err := gamification.AchievementByID("do_a_flip"); !errors.Is(err, domain.ErrAchievementUnknown) {
		t.Errorf("err = %v, want ErrAchievementUnknown", err)
	}
}

func TestAchievementCatalog_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range gamification.AchievementCatalog() {
		if seen[def.ID] {
			t.Errorf("duplicate achievement id %q", def.ID)
		}
		seen[def.ID] = true
		if def.Requirement <= 0 {
			t.Errorf("%s: requirement %d must be positive", def.ID, def.Requirement)
		}
		if def.RewardXP <= 0 {
			t.Errorf("%s: reward %d must be positive", def.ID, def.RewardXP)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Weekly Challenge Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestWeekBounds_SundayToSaturday(t *testing.T) {
	// 2024-01-03 is a Wednesday.
	wed := time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC)
	start, end := gamification.WeekBounds(wed)

	wantStart := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC) // Sunday
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	wantEnd := time.Date(2024, 1, 6, 23, 59, 59, 999000000, time.UTC) // Saturday
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestWeekBounds_SundayIsOwnWeekStart(t *testing.T) {
	sun := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)
	start, _ := gamification.WeekBounds(sun)
	want := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}

func TestChallenges_EdgeTriggeredCompletion(t *testing.T) {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	challenges := gamification.InitializeWeeklyChallenges(now)

	// weekly_calls has target 3. Two +2 increments: the first leaves it
	// short, the second completes and clamps.
	done := gamification.UpdateChallengeProgress(challenges, "weekly_calls", 2)
	if len(done) != 0 {
		t.Fatalf("first increment completed %v, want none", done)
	}
	done = gamification.UpdateChallengeProgress(challenges, "weekly_calls", 2)
	if len(done) != 1 || done[0] != "weekly_calls" {
		t.Fatalf("second increment completed %v, want [weekly_calls]", done)
	}

	var calls domain.WeeklyChallenge
	for _, c := range challenges {
		if c.ID == "weekly_calls" {
			calls = c
		}
	}
	if calls.Progress != 3 {
		t.Errorf("progress = %d, want clamped to 3", calls.Progress)
	}
	if !calls.Completed {
		t.Error("should be completed")
	}

	// Completed challenges are frozen.
	done = gamification.UpdateChallengeProgress(challenges, "weekly_calls", 1)
	if len(done) != 0 {
		t.Errorf("frozen challenge completed again: %v", done)
	}
}

func TestChallenges_ActionAliases(t *testing.T) {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	challenges := gamification.InitializeWeeklyChallenges(now)

	gamification.UpdateChallengeProgress(challenges, "log_call", 1)
	gamification.UpdateChallengeProgress(challenges, "make_calls", 1)

	for _, c := range challenges {
		if c.ID == "weekly_calls" && c.Progress != 2 {
			t.Errorf("weekly_calls progress = %d, want 2 via aliases", c.Progress)
		}
		if c.ID == "weekly_messages" && c.Progress != 0 {
			t.Errorf("weekly_messages progress = %d, want 0", c.Progress)
		}
	}
}

func TestChallenges_UnknownActionIsNoOp(t *testing.T) {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	challenges := gamification.InitializeWeeklyChallenges(now)

	done := gamification.UpdateChallengeProgress(challenges, "do_a_flip", 1)
	if len(done) != 0 {
		t.Errorf("unknown action completed %v", done)
	}
	for _, c := range challenges {
		if c.Progress != 0 {
			t.Errorf("%s progress = %d, want 0", c.ID, c.Progress)
		}
	}
}

func TestResolveChallengeAction(t *testing.T) {
	cases := []struct {
		in   string
		want domain.ChallengeType
	}{
		{"log_call", domain.ChallengeCalls},
		{"make_calls", domain.ChallengeCalls},
		{"weekly_notes", domain.ChallengeNotes},
		{"add_friend", domain.ChallengeNewFriends},
	}
	for _, c := range cases {
		got, err := gamification.ResolveChallengeAction(c.in)
		if err != nil || got != c.want {
			t.Errorf("ResolveChallengeAction(%q) = %q, %v, want %q", c.in, got, err, c.want)
		}
	}

	if _, err := gamification.ResolveChallengeAction("do_a_flip"); !errors.Is(err, domain.ErrChallengeUnknown) {
		t.Errorf("err = %v, want ErrChallengeUnknown", err)
	}
}

func TestChallengeCatalog_CoversAllTypes(t *testing.T) {
	seen := map[domain.ChallengeType]bool{}
	for _, def := range gamification.ChallengeCatalog() {
		seen[def.Type] = true
	}
	for _, typ := range []domain.ChallengeType{
		domain.ChallengeCalls, domain.ChallengeMessages, domain.ChallengeMeetups,
		domain.ChallengeNewFriends, domain.ChallengeNotes,
	} {
		if !seen[typ] {
			t.Errorf("catalog missing challenge type %q", typ)
		}
	}
}
