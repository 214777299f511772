package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Catalog / state errors
	ErrAchievementUnknown = errors.New("achievement not in catalog")
	ErrChallengeUnknown   = errors.New("challenge not found for id or action")
	ErrMilestoneNotFound  = errors.New("milestone not found")

	// Cloud mirror errors
	ErrNoSession   = errors.New("no authenticated cloud session")
	ErrCloudStatus = errors.New("cloud mirror returned non-success status")
)
