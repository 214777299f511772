package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tether-app/tether/internal/app/gamification"
	"github.com/tether-app/tether/internal/domain"
)

// ─── Gamification API (/api/gamification/*) ─────────────────────────────────
// These endpoints back the mobile and desktop shells: read the aggregate
// state, apply activity events, and acknowledge milestone celebrations.

// --- reads ---

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State().Level)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Streak())
}

func (s *Server) handleGarden(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State().Garden)
}

// achievementView joins a catalog entry with the user's progress on it.
type achievementView struct {
	domain.AchievementDef
	Progress   int     `json:"progress"`
	Unlocked   bool    `json:"unlocked"`
	UnlockedAt *string `json:"unlocked_at,omitempty"`
}

func newAchievementView(def domain.AchievementDef, st domain.AchievementState) achievementView {
	v := achievementView{AchievementDef: def, Progress: st.Progress, Unlocked: st.Unlocked()}
	if st.UnlockedAt != nil {
		at := st.UnlockedAt.Format("2006-01-02T15:04:05Z07:00")
		v.UnlockedAt = &at
	}
	return v
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	state := s.engine.State()

	byID := make(map[string]domain.AchievementState, len(state.Achievements))
	for _, a := range state.Achievements {
		byID[a.ID] = a
	}

	catalog := gamification.AchievementCatalog()
	out := make([]achievementView, 0, len(catalog))
	for _, def := range catalog {
		out = append(out, newAchievementView(def, byID[def.ID]))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": out,
	})
}

func (s *Server) handleAchievement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	def, err := gamification.AchievementByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error()+": "+id)
		return
	}

	var st domain.AchievementState
	for _, a := range s.engine.State().Achievements {
		if a.ID == id {
			st = a
			break
		}
	}
	writeJSON(w, http.StatusOK, newAchievementView(def, st))
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	state := s.engine.State()
	out := map[string]interface{}{
		"challenges": state.Challenges,
	}
	if len(state.Challenges) > 0 {
		out["week_start"] = state.Challenges[0].StartDate
		out["week_end"] = state.Challenges[0].EndDate
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	state := s.engine.State()
	milestones := state.Milestones
	if milestones == nil {
		milestones = []domain.RelationshipMilestone{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"milestones": milestones,
	})
}

// handleSummary returns the compact home-screen payload: level, streak,
// garden, and counts instead of full lists.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	state := s.engine.State()

	unlocked := 0
	for _, a := range state.Achievements {
		if a.Unlocked() {
			unlocked++
		}
	}
	completed := 0
	for _, c := range state.Challenges {
		if c.Completed {
			completed++
		}
	}
	uncelebrated := 0
	for _, m := range state.Milestones {
		if !m.Celebrated {
			uncelebrated++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"level":                   state.Level,
		"streak":                  s.engine.Streak(),
		"garden":                  state.Garden,
		"achievements_unlocked":   unlocked,
		"achievements_total":      len(state.Achievements),
		"challenges_completed":    completed,
		"challenges_total":        len(state.Challenges),
		"milestones_uncelebrated": uncelebrated,
	})
}

// --- events ---

type eventRequest struct {
	FriendID string `json:"friend_id,omitempty"`
}

// handleEvent applies one activity event. The action path segment is a
// challenge id or alias ("log_call", "log_message", "log_meetup",
// "add_friend", "write_note", ...) or "nudge_acted". Responds with the
// updated state.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	var req eventRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var state domain.GamificationState
	switch action {
	case "add_friend":
		state = s.engine.RecordFriendAdded()
	case "write_note":
		state = s.engine.RecordNoteWritten()
	case "nudge_acted":
		state = s.engine.RecordNudgeActedOn()
	default:
		// Anything else must resolve as a challenge id or alias and is
		// recorded as an interaction.
		if _, err := gamification.ResolveChallengeAction(action); err != nil {
			writeError(w, http.StatusBadRequest, err.Error()+": "+action)
			return
		}
		state = s.engine.RecordInteraction(req.FriendID, action)
	}

	writeJSON(w, http.StatusOK, state)
}

// --- milestones ---

func (s *Server) handleCelebrateMilestone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := s.engine.CelebrateMilestone(id)
	if err != nil {
		if errors.Is(err, domain.ErrMilestoneNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// --- leaderboard ---

type optInRequest struct {
	OptIn bool `json:"opt_in"`
}

func (s *Server) handleLeaderboardOptIn(w http.ResponseWriter, r *http.Request) {
	var req optInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.engine.SetLeaderboardOptIn(req.OptIn)
	writeJSON(w, http.StatusOK, map[string]bool{"opt_in": req.OptIn})
}
