// Package api provides the HTTP server for the Tether engine.
// It exposes the gamification REST API consumed by the mobile and desktop
// shells, plus health and Prometheus endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tether-app/tether/internal/app/gamification"
	"github.com/tether-app/tether/internal/health"
)

// Version is the engine version reported by /api/version.
const Version = "0.1.0"

// Server is the Tether HTTP API server.
type Server struct {
	engine         *gamification.Service
	checker        *health.Checker
	metricsEnabled bool
}

// NewServer creates a new API server around the gamification engine.
func NewServer(engine *gamification.Service) *Server {
	return &Server{engine: engine}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker sets the checker backing /health.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "Tether is running",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	// Gamification API (state reads, activity events, milestone celebration)
	r.Route("/api/gamification", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/level", s.handleLevel)
		r.Get("/streak", s.handleStreak)
		r.Get("/garden", s.handleGarden)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/achievements/{id}", s.handleAchievement)
		r.Get("/challenges", s.handleChallenges)
		r.Get("/milestones", s.handleMilestones)
		r.Get("/summary", s.handleSummary)
		r.Post("/events/{action}", s.handleEvent)
		r.Post("/milestones/{id}/celebrate", s.handleCelebrateMilestone)
		r.Put("/leaderboard/opt-in", s.handleLeaderboardOptIn)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHealth reports component health; 503 when any check fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status := http.StatusOK
	if !s.checker.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"healthy": s.checker.IsHealthy(),
		"checks":  s.checker.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
