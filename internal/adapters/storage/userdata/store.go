package userdata

import (
	"context"

	domain "fitgympro/internal/domain/userdata"
)

// Store persists per-user data and the last visited dashboard tab.
type Store interface {
	Get(ctx context.Context, username string) (domain.Data, error)
	Save(ctx context.Context, username string, value domain.Data) error
	Update(ctx context.Context, username string, fn func(d *domain.Data) error) error
	Delete(ctx context.Context, username string) error
	LastTab(ctx context.Context, username string) (string, error)
	SaveLastTab(ctx context.Context, username, tab string) error
}
