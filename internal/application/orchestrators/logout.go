package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
)

// SessionStoreForLogout defines the session operations Logout needs.
type SessionStoreForLogout interface {
	Delete(ctx context.Context, token string) error
	ClearCurrent(ctx context.Context, username string) (bool, error)
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	SessionStore SessionStoreForLogout
}

// ExecuteLogout ends the browser session and removes the Session Marker when it
// names username.
// POST: token no longer resolves; the marker no longer names username
func ExecuteLogout(ctx context.Context, username, token string, deps LogoutDeps) error {
	if token != "" {
		if err := deps.SessionStore.Delete(ctx, token); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	if username != "" {
		if _, err := deps.SessionStore.ClearCurrent(ctx, username); err != nil {
			return fmt.Errorf("clear session marker: %w", err)
		}
	}
	slog.Info("auth_event", "event", "logout", "username", username)
	return nil
}
