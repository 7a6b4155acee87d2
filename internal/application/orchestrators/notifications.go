package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrEmptyTab is returned when no tab is named.
var ErrEmptyTab = errors.New("tab is required")

// NotificationClearer removes badges.
type NotificationClearer interface {
	Clear(ctx context.Context, username, tab string) error
}

// TabRecorder remembers the dashboard tab a user last opened.
type TabRecorder interface {
	SaveLastTab(ctx context.Context, username, tab string) error
}

// ExecuteOpenTab clears the badge on tab and remembers it as the user's last tab.
// POST: the tab has no badge; the next dashboard visit opens on it
func ExecuteOpenTab(ctx context.Context, username, tab string, notes NotificationClearer, tabs TabRecorder) error {
	if tab == "" {
		return ErrEmptyTab
	}
	if err := notes.Clear(ctx, username, tab); err != nil {
		return fmt.Errorf("clear notification: %w", err)
	}
	if tabs != nil {
		if err := tabs.SaveLastTab(ctx, username, tab); err != nil {
			slog.Warn("last_tab_save_failed", "username", username, "tab", tab, "error", err)
		}
	}
	return nil
}
