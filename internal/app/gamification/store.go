package gamification

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/tether-app/tether/internal/domain"
	"github.com/tether-app/tether/internal/infra/metrics"
	"github.com/tether-app/tether/internal/infra/sqlite"
)

// stateVersion is the persisted blob schema version.
const stateVersion = 1

// remoteTimeout bounds every best-effort cloud mirror call.
const remoteTimeout = 10 * time.Second

// CloudMirror is the remote side of the reconciler: the cloud's view of the
// user's unlocks and progression fields. Every call is best-effort — the
// engine logs failures and keeps going on local state alone.
// CurrentUserID returns domain.ErrNoSession when nobody is signed in; that
// is the expected steady state for local-only users and is never logged.
type CloudMirror interface {
	CurrentUserID(ctx context.Context) (string, error)
	UnlockedAchievements(ctx context.Context, userID string) ([]domain.RemoteUnlock, error)
	UnlockAchievement(ctx context.Context, achievementID string) error
	Profile(ctx context.Context, userID string) (domain.RemoteProfile, error)
	SetTotalXP(ctx context.Context, totalXP int) error
	UpdateStreak(ctx context.Context, current, longest int) error
}

// Service is the gamification engine: it owns the in-memory state, applies
// activity events, persists every mutation to the local store, and mirrors
// progression to the cloud when a session exists.
//
// The local store is the source of truth. Cloud calls never gate a mutation:
// local writes happen first, remote pushes are dispatched on their own
// goroutines and nobody in the request path waits for them.
type Service struct {
	mu     sync.Mutex
	db     *sqlite.DB
	cloud  CloudMirror
	pushes sync.WaitGroup
	state  domain.GamificationState
	streak domain.StreakData
}

// New creates the engine backed by db. cloud may be nil for local-only
// operation. Call LoadState before serving requests.
func New(db *sqlite.DB, cloud CloudMirror) *Service {
	now := time.Now()
	return &Service{
		db:     db,
		cloud:  cloud,
		state:  defaultState(now),
		streak: domain.StreakData{},
	}
}

// defaultState is the catalog-derived zero state used on first run and as
// the fallback for a malformed persisted blob.
func defaultState(now time.Time) domain.GamificationState {
	return domain.GamificationState{
		Version:      stateVersion,
		Level:        CalculateLevel(0),
		Achievements: freshAchievementStates(),
		Challenges:   InitializeWeeklyChallenges(now),
		Garden:       GardenForStreak(domain.StreakData{}, now),
		Stats:        domain.LifetimeStats{ConnectionsPerFriend: map[string]int{}},
		LastUpdated:  now,
	}
}

// ─── Snapshots ──────────────────────────────────────────────────────────────

// State returns a copy of the current aggregate state.
func (s *Service) State() domain.GamificationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Streak returns a copy of the current streak data.
func (s *Service) Streak() domain.StreakData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

// cloneState deep-copies the aggregate so callers can't mutate engine state
// through a snapshot.
func cloneState(st domain.GamificationState) domain.GamificationState {
	out := st
	out.Achievements = make([]domain.AchievementState, len(st.Achievements))
	copy(out.Achievements, st.Achievements)
	for i := range out.Achievements {
		if t := out.Achievements[i].UnlockedAt; t != nil {
			at := *t
			out.Achievements[i].UnlockedAt = &at
		}
	}
	out.Challenges = make([]domain.WeeklyChallenge, len(st.Challenges))
	copy(out.Challenges, st.Challenges)
	out.Milestones = make([]domain.RelationshipMilestone, len(st.Milestones))
	copy(out.Milestones, st.Milestones)
	out.Stats.ConnectionsPerFriend = make(map[string]int, len(st.Stats.ConnectionsPerFriend))
	for k, v := range st.Stats.ConnectionsPerFriend {
		out.Stats.ConnectionsPerFriend[k] = v
	}
	return out
}

// ─── Activity Events ────────────────────────────────────────────────────────

// RecordInteraction applies a logged connection with a friend: streak,
// lifetime stats, per-friend milestones, challenge progress, achievements.
// action is a challenge id or alias ("log_call", "log_message", "log_meetup").
func (s *Service) RecordInteraction(friendID, action string) domain.GamificationState {
	return s.RecordInteractionAt(friendID, action, time.Now())
}

// RecordInteractionAt is RecordInteraction at an explicit time.
func (s *Service) RecordInteractionAt(friendID, action string, now time.Time) domain.GamificationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	streakAdvanced := s.touchStreakLocked(now)

	s.state.Stats.TotalConnections++
	if friendID != "" {
		if s.state.Stats.ConnectionsPerFriend == nil {
			s.state.Stats.ConnectionsPerFriend = map[string]int{}
		}
		s.state.Stats.ConnectionsPerFriend[friendID]++
		for _, m := range connectionMilestones(&s.state, friendID, now) {
			s.state.Milestones = append(s.state.Milestones, m)
			metrics.MilestonesEarned.WithLabelValues(string(m.Type)).Inc()
			log.Printf("[gamification] milestone earned: %s (friend=%s)", m.Type, friendID)
		}
	}

	completed := UpdateChallengeProgress(s.state.Challenges, action, 1)
	s.afterMutationLocked(now, streakAdvanced, completed)
	return cloneState(s.state)
}

// RecordFriendAdded applies a new friend joining the user's orbits.
func (s *Service) RecordFriendAdded() domain.GamificationState {
	return s.RecordFriendAddedAt(time.Now())
}

// RecordFriendAddedAt is RecordFriendAdded at an explicit time.
func (s *Service) RecordFriendAddedAt(now time.Time) domain.GamificationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	streakAdvanced := s.touchStreakLocked(now)
	s.state.Stats.TotalFriends++
	completed := UpdateChallengeProgress(s.state.Challenges, "add_friend", 1)
	s.afterMutationLocked(now, streakAdvanced, completed)
	return cloneState(s.state)
}

// RecordNoteWritten applies a note written about a friend.
func (s *Service) RecordNoteWritten() domain.GamificationState {
	return s.RecordNoteWrittenAt(time.Now())
}

// RecordNoteWrittenAt is RecordNoteWritten at an explicit time.
func (s *Service) RecordNoteWrittenAt(now time.Time) domain.GamificationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	streakAdvanced := s.touchStreakLocked(now)
	s.state.Stats.NotesWritten++
	completed := UpdateChallengeProgress(s.state.Challenges, "write_note", 1)
	s.afterMutationLocked(now, streakAdvanced, completed)
	return cloneState(s.state)
}

// RecordNudgeActedOn applies the user acting on a reach-out nudge.
func (s *Service) RecordNudgeActedOn() domain.GamificationState {
	return s.RecordNudgeActedOnAt(time.Now())
}

// RecordNudgeActedOnAt is RecordNudgeActedOn at an explicit time.
func (s *Service) RecordNudgeActedOnAt(now time.Time) domain.GamificationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	streakAdvanced := s.touchStreakLocked(now)
	s.state.Stats.NudgesActedOn++
	s.afterMutationLocked(now, streakAdvanced, nil)
	return cloneState(s.state)
}

// CelebrateMilestone marks a milestone as acknowledged by the UI. The flag
// transitions false→true once; celebrating again is a no-op.
func (s *Service) CelebrateMilestone(id string) (domain.RelationshipMilestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Milestones {
		m := &s.state.Milestones[i]
		if m.ID != id {
			continue
		}
		if !m.Celebrated {
			m.Celebrated = true
			s.state.LastUpdated = time.Now()
			s.persistLocked()
		}
		return *m, nil
	}
	return domain.RelationshipMilestone{}, domain.ErrMilestoneNotFound
}

// SetLeaderboardOptIn records the user's leaderboard visibility choice.
func (s *Service) SetLeaderboardOptIn(optIn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.LeaderboardOptIn == optIn {
		return
	}
	s.state.LeaderboardOptIn = optIn
	s.state.LastUpdated = time.Now()
	s.persistLocked()
}

// Reset wipes all persisted and in-memory progression. Only the explicit
// full reset path calls this; nothing else ever deletes milestones.
func (s *Service) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.DeleteAllBlobs(); err != nil {
			return err
		}
	}
	now := time.Now()
	s.state = defaultState(now)
	s.streak = domain.StreakData{}
	s.recomputeLocked(now)
	s.persistLocked()
	return nil
}

// ─── Mutation plumbing ──────────────────────────────────────────────────────

// touchStreakLocked records daily activity and returns whether the streak
// fields changed.
func (s *Service) touchStreakLocked(now time.Time) bool {
	return RecordDailyActivity(&s.streak, now)
}

// afterMutationLocked is the shared tail of every activity event: evaluate
// achievements against the updated stats, recompute derived fields, persist
// locally, and mirror to the cloud best-effort.
func (s *Service) afterMutationLocked(now time.Time, streakAdvanced bool, completedChallenges []string) {
	s.state.Stats.CurrentStreak = s.streak.Current
	s.state.Stats.LongestStreak = s.streak.Longest

	unlocked := CheckAndUpdateAchievements(s.state.Achievements, s.state.Stats, now)
	for _, id := range unlocked {
		metrics.AchievementsUnlocked.Inc()
		log.Printf("[gamification] achievement unlocked: %s", id)
	}
	for _, id := range completedChallenges {
		metrics.ChallengesCompleted.Inc()
		log.Printf("[gamification] challenge completed: %s", id)
	}

	prevTotal := s.state.Level.TotalXP
	s.recomputeLocked(now)
	s.state.LastUpdated = now
	s.persistLocked()

	for _, id := range unlocked {
		s.pushRemote("unlock_achievement", func(ctx context.Context) error {
			return s.cloud.UnlockAchievement(ctx, id)
		})
	}
	if streakAdvanced {
		cur, longest := s.streak.Current, s.streak.Longest
		s.pushRemote("update_streak", func(ctx context.Context) error {
			return s.cloud.UpdateStreak(ctx, cur, longest)
		})
	}
	if total := s.state.Level.TotalXP; total != prevTotal {
		s.pushRemote("set_total_xp", func(ctx context.Context) error {
			return s.cloud.SetTotalXP(ctx, total)
		})
	}
}

// recomputeLocked rebuilds every derived field from first principles:
// total XP from unlocks, completions, and milestones; level from XP; garden
// from streak. Derived fields are never trusted from storage.
func (s *Service) recomputeLocked(now time.Time) {
	total := DeriveTotalXP(s.state)
	s.state.Level = CalculateLevel(total)
	s.state.Garden = GardenForStreak(s.streak, now)
	s.state.Stats.CurrentStreak = s.streak.Current
	s.state.Stats.LongestStreak = s.streak.Longest
	s.state.Version = stateVersion

	metrics.TotalXP.Set(float64(total))
	metrics.UserLevel.Set(float64(s.state.Level.Level))
	metrics.StreakCurrent.Set(float64(s.streak.Current))
	metrics.StreakLongest.Set(float64(s.streak.Longest))
}

// persistLocked writes both blobs to the local store. Write failures are
// logged and swallowed: the in-memory state stays authoritative and the next
// successful write catches up.
func (s *Service) persistLocked() {
	if s.db == nil {
		return
	}
	if data, err := json.Marshal(s.state); err == nil {
		if err := s.db.SetBlob(sqlite.KeyGamificationState, string(data)); err != nil {
			log.Printf("[gamification] persist state: %v", err)
			metrics.LocalWriteFailures.Inc()
		}
	}
	if data, err := json.Marshal(s.streak); err == nil {
		if err := s.db.SetBlob(sqlite.KeyStreakData, string(data)); err != nil {
			log.Printf("[gamification] persist streak: %v", err)
			metrics.LocalWriteFailures.Inc()
		}
	}
}

// pushRemote dispatches one best-effort cloud call on its own goroutine with
// a bounded context. The caller never waits: fn must capture plain values
// snapshotted under the engine lock, so a slow or hung mirror can only delay
// eventual remote consistency, never block a mutation or a read.
// ErrNoSession is the normal signed-out state and is never logged; every
// other failure is logged and counted, never propagated.
func (s *Service) pushRemote(op string, fn func(ctx context.Context) error) {
	if s.cloud == nil {
		return
	}
	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			if errors.Is(err, domain.ErrNoSession) {
				return
			}
			log.Printf("[gamification] cloud %s failed: %v", op, err)
			metrics.CloudSyncFailures.WithLabelValues(op).Inc()
		}
	}()
}

// Flush blocks until every dispatched cloud push has settled. The daemon
// calls it on shutdown so in-flight pushes get a chance to land; nothing in
// the request path ever waits on it.
func (s *Service) Flush() {
	s.pushes.Wait()
}
