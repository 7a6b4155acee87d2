package settings

import (
	"context"

	domain "fitgympro/internal/domain/settings"
)

// Store persists the site settings document.
type Store interface {
	Get(ctx context.Context) (domain.SiteSettings, error)
	Save(ctx context.Context, value domain.SiteSettings) error
}
