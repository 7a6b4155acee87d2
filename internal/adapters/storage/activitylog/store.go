package activitylog

import (
	"context"

	domain "fitgympro/internal/domain/activity"
)

// Store persists the admin activity log.
type Store interface {
	List(ctx context.Context) ([]domain.Entry, error)
	Add(ctx context.Context, message string) error
}
