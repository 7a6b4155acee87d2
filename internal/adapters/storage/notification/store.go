package notification

import (
	"context"

	domain "fitgympro/internal/domain/notification"
)

// Store persists the per-user badge maps.
type Store interface {
	Get(ctx context.Context, username string) (domain.Map, error)
	Set(ctx context.Context, username, tab, badge string) error
	Clear(ctx context.Context, username, tab string) error
	ClearAll(ctx context.Context, username string) error
}
