// Package metrics provides Prometheus metrics for the Tether engine —
// counters and gauges for reconciliation, cloud sync, progression, and
// streaks.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Reconciliation ─────────────────────────────────────────────────────────

// ReconcileRuns tracks state reconciliation passes (local load + cloud merge).
var ReconcileRuns = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tether",
	Name:      "reconcile_runs_total",
	Help:      "Total gamification state reconciliation passes.",
})

// CloudSyncFailures tracks failed best-effort cloud mirror calls.
var CloudSyncFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tether",
	Name:      "cloud_sync_failures_total",
	Help:      "Total failed cloud mirror calls by operation.",
}, []string{"op"})

// LocalWriteFailures tracks failed local store writes.
var LocalWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tether",
	Name:      "local_write_failures_total",
	Help:      "Total failed local state writes.",
})

// ─── Progression ────────────────────────────────────────────────────────────

// AchievementsUnlocked tracks achievement unlocks.
var AchievementsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tether",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
})

// ChallengesCompleted tracks weekly challenge completions.
var ChallengesCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tether",
	Name:      "challenges_completed_total",
	Help:      "Total weekly challenges completed.",
})

// MilestonesEarned tracks relationship milestones by type.
var MilestonesEarned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tether",
	Name:      "milestones_earned_total",
	Help:      "Total relationship milestones earned by type.",
}, []string{"type"})

// TotalXP tracks the derived XP total.
var TotalXP = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tether",
	Name:      "total_xp",
	Help:      "Current derived total XP.",
})

// UserLevel tracks the derived level.
var UserLevel = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tether",
	Name:      "user_level",
	Help:      "Current derived level.",
})

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreakCurrent tracks the current consecutive-day streak.
var StreakCurrent = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tether",
	Name:      "streak_current_days",
	Help:      "Current consecutive-day activity streak.",
})

// StreakLongest tracks the longest streak ever reached.
var StreakLongest = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tether",
	Name:      "streak_longest_days",
	Help:      "Longest consecutive-day activity streak.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "tether",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
