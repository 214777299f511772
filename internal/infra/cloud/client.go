// Package cloud implements the HTTP client for the Tether cloud mirror: the
// hosted profile store that backs cross-device sync and the opt-in
// leaderboard. The engine treats every call here as best-effort.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tether-app/tether/internal/domain"
)

// Client talks to the cloud mirror REST API. It satisfies the engine's
// CloudMirror interface. A zero token means signed-out: session-dependent
// calls fail fast with domain.ErrNoSession without touching the network.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a mirror client. baseURL is the API root, token the user's
// bearer token ("" when signed out).
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ─── CloudMirror ────────────────────────────────────────────────────────────

// CurrentUserID resolves the signed-in user, or domain.ErrNoSession.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	if c.token == "" {
		return "", domain.ErrNoSession
	}
	var out struct {
		UserID string `json:"user_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/session", nil, &out); err != nil {
		return "", err
	}
	if out.UserID == "" {
		return "", domain.ErrNoSession
	}
	return out.UserID, nil
}

// UnlockedAchievements fetches the user's unlock records.
func (c *Client) UnlockedAchievements(ctx context.Context, userID string) ([]domain.RemoteUnlock, error) {
	var out struct {
		Unlocks []domain.RemoteUnlock `json:"unlocks"`
	}
	path := "/v1/users/" + userID + "/achievements"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Unlocks, nil
}

// UnlockAchievement records an unlock for the signed-in user. The server
// treats repeated unlocks of the same id as a no-op.
func (c *Client) UnlockAchievement(ctx context.Context, achievementID string) error {
	body := map[string]string{"achievement_id": achievementID}
	return c.do(ctx, http.MethodPost, "/v1/achievements/unlock", body, nil)
}

// Profile fetches the remote progression fields.
func (c *Client) Profile(ctx context.Context, userID string) (domain.RemoteProfile, error) {
	var out domain.RemoteProfile
	path := "/v1/users/" + userID + "/profile"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return domain.RemoteProfile{}, err
	}
	return out, nil
}

// SetTotalXP overwrites the remote XP total with the locally derived value.
func (c *Client) SetTotalXP(ctx context.Context, totalXP int) error {
	body := map[string]int{"total_xp": totalXP}
	return c.do(ctx, http.MethodPut, "/v1/profile/total_xp", body, nil)
}

// UpdateStreak pushes the local streak fields.
func (c *Client) UpdateStreak(ctx context.Context, current, longest int) error {
	body := map[string]int{"current": current, "longest": longest}
	return c.do(ctx, http.MethodPut, "/v1/profile/streak", body, nil)
}

// ─── HTTP plumbing ──────────────────────────────────────────────────────────

// do executes one JSON round trip. 401/403 map to domain.ErrNoSession so the
// engine can treat an expired token the same as signed-out; every other
// non-2xx maps to domain.ErrCloudStatus.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.token == "" {
		return domain.ErrNoSession
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return domain.ErrNoSession
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: %s %s: %d", domain.ErrCloudStatus, method, path, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
