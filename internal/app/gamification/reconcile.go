package gamification

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/tether-app/tether/internal/domain"
	"github.com/tether-app/tether/internal/infra/metrics"
	"github.com/tether-app/tether/internal/infra/sqlite"
)

// DeriveTotalXP recomputes total XP from first principles: catalog reward
// plus a flat unlock bonus for every unlocked achievement, catalog reward
// plus a flat completion bonus for every completed challenge in the current
// cycle, and the recorded reward of every milestone. Persisted totals are
// never trusted — this derivation is the only source of XP truth.
func DeriveTotalXP(state domain.GamificationState) int {
	total := 0
	for _, a := range state.Achievements {
		if !a.Unlocked() {
			continue
		}
		if def, ok := achievementDefByID(a.ID); ok {
			total += def.RewardXP + XPAchievementUnlockBonus
		}
	}
	for _, c := range state.Challenges {
		if c.Completed {
			total += c.RewardXP + XPChallengeCompletionBonus
		}
	}
	for _, m := range state.Milestones {
		total += m.RewardXP
	}
	return total
}

// LoadState hydrates the engine: read local blobs (falling back to catalog
// defaults on anything malformed), expire a stale streak, rotate the weekly
// challenge cycle, reconcile with the cloud mirror when a session exists,
// recompute all derived fields, and persist the result. Safe to call on
// every app start; cloud failures degrade to local-only state.
func (s *Service) LoadState(ctx context.Context) domain.GamificationState {
	return s.LoadStateAt(ctx, time.Now())
}

// LoadStateAt is LoadState at an explicit time.
func (s *Service) LoadStateAt(ctx context.Context, now time.Time) domain.GamificationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocalLocked(now)
	s.mergeRemoteLocked(ctx, now)
	s.recomputeLocked(now)
	s.state.LastUpdated = now
	s.persistLocked()

	metrics.ReconcileRuns.Inc()
	return cloneState(s.state)
}

// loadLocalLocked reads both blobs from the local store and normalizes them
// against the shipped catalogs. A missing or malformed blob falls back to
// defaults; a valid blob contributes only per-entry progress, never catalog
// text, so renamed or retuned catalog entries take effect on load.
func (s *Service) loadLocalLocked(now time.Time) {
	state := defaultState(now)
	var stored domain.GamificationState
	if raw, ok := s.readBlobLocked(sqlite.KeyGamificationState); ok {
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			log.Printf("[gamification] malformed state blob, using defaults: %v", err)
		} else {
			state.Milestones = stored.Milestones
			state.Stats = stored.Stats
			state.LeaderboardOptIn = stored.LeaderboardOptIn
			spliceChallengeProgress(state.Challenges, stored.Challenges, now)
			spliceAchievementProgress(state.Achievements, stored.Achievements)
		}
	}
	if state.Stats.ConnectionsPerFriend == nil {
		state.Stats.ConnectionsPerFriend = map[string]int{}
	}

	streak := domain.StreakData{}
	if raw, ok := s.readBlobLocked(sqlite.KeyStreakData); ok {
		if err := json.Unmarshal([]byte(raw), &streak); err != nil {
			log.Printf("[gamification] malformed streak blob, using defaults: %v", err)
			streak = domain.StreakData{}
		}
	}
	if ExpireIfStale(&streak, now) {
		log.Printf("[gamification] streak expired (last active %s)", streak.LastActiveDate)
	}

	s.state = state
	s.streak = streak
}

func (s *Service) readBlobLocked(key string) (string, bool) {
	if s.db == nil {
		return "", false
	}
	raw, ok, err := s.db.GetBlob(key)
	if err != nil {
		log.Printf("[gamification] read %s: %v", key, err)
		return "", false
	}
	return raw, ok
}

// spliceAchievementProgress carries persisted per-entry progress into fresh
// catalog-derived states, matching by id. Progress is clamped to the current
// requirement; persisted ids absent from the catalog are dropped.
func spliceAchievementProgress(fresh, stored []domain.AchievementState) {
	byID := make(map[string]domain.AchievementState, len(stored))
	for _, a := range stored {
		byID[a.ID] = a
	}
	for i := range fresh {
		prev, ok := byID[fresh[i].ID]
		if !ok {
			continue
		}
		fresh[i].Progress = prev.Progress
		fresh[i].UnlockedAt = prev.UnlockedAt
		if def, ok := achievementDefByID(fresh[i].ID); ok {
			if fresh[i].Unlocked() || fresh[i].Progress > def.Requirement {
				fresh[i].Progress = def.Requirement
			}
		}
	}
}

// mergeRemoteLocked reconciles local state with the cloud mirror. Unlock
// sets are unioned in both directions, streaks are raised but never lowered,
// and the locally derived XP total is pushed up when the remote disagrees.
// Signed-out is the normal quiet path; any remote failure leaves local state
// authoritative.
func (s *Service) mergeRemoteLocked(ctx context.Context, now time.Time) {
	if s.cloud == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	userID, err := s.cloud.CurrentUserID(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoSession) {
			log.Printf("[gamification] cloud session check failed: %v", err)
			metrics.CloudSyncFailures.WithLabelValues("current_user").Inc()
		}
		return
	}

	s.mergeRemoteUnlocksLocked(ctx, userID)
	s.mergeRemoteProfileLocked(ctx, userID, now)
}

// mergeRemoteUnlocksLocked unions achievement unlocks: remote-only unlocks
// are applied locally with the remote timestamp, local-only unlocks are
// pushed up. Remote ids missing from the catalog are skipped.
func (s *Service) mergeRemoteUnlocksLocked(ctx context.Context, userID string) {
	remote, err := s.cloud.UnlockedAchievements(ctx, userID)
	if err != nil {
		log.Printf("[gamification] fetch remote unlocks: %v", err)
		metrics.CloudSyncFailures.WithLabelValues("fetch_unlocks").Inc()
		return
	}

	remoteByID := make(map[string]domain.RemoteUnlock, len(remote))
	for _, r := range remote {
		if _, err := AchievementByID(r.AchievementID); err != nil {
			log.Printf("[gamification] skipping remote unlock %q: %v", r.AchievementID, err)
			continue
		}
		remoteByID[r.AchievementID] = r
	}

	for i := range s.state.Achievements {
		st := &s.state.Achievements[i]
		r, onRemote := remoteByID[st.ID]

		if onRemote && !st.Unlocked() {
			def, ok := achievementDefByID(st.ID)
			if !ok {
				continue
			}
			at := r.UnlockedAt
			st.Progress = def.Requirement
			st.UnlockedAt = &at
			log.Printf("[gamification] applied remote unlock: %s", st.ID)
			continue
		}

		if !onRemote && st.Unlocked() {
			id := st.ID
			s.pushRemote("unlock_achievement", func(ctx context.Context) error {
				return s.cloud.UnlockAchievement(ctx, id)
			})
		}
	}
}

// mergeRemoteProfileLocked reconciles streak fields and the XP total against
// the remote profile. The remote can only raise local streaks; XP always
// flows upward from the local derivation.
func (s *Service) mergeRemoteProfileLocked(ctx context.Context, userID string, now time.Time) {
	profile, err := s.cloud.Profile(ctx, userID)
	if err != nil {
		log.Printf("[gamification] fetch remote profile: %v", err)
		metrics.CloudSyncFailures.WithLabelValues("fetch_profile").Inc()
		return
	}

	if MergeStreak(&s.streak, profile) {
		s.state.Stats.CurrentStreak = s.streak.Current
		s.state.Stats.LongestStreak = s.streak.Longest
	}
	if s.streak.Current > profile.StreakCurrent || s.streak.Longest > profile.StreakLongest {
		cur, longest := s.streak.Current, s.streak.Longest
		s.pushRemote("update_streak", func(ctx context.Context) error {
			return s.cloud.UpdateStreak(ctx, cur, longest)
		})
	}

	if total := DeriveTotalXP(s.state); total != profile.TotalXP {
		s.pushRemote("set_total_xp", func(ctx context.Context) error {
			return s.cloud.SetTotalXP(ctx, total)
		})
	}
}
