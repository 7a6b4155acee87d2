package template

import (
	"context"

	domain "fitgympro/internal/domain/template"
)

// Store persists the coach program templates.
type Store interface {
	Get(ctx context.Context) (domain.Table, error)
	Update(ctx context.Context, fn func(t domain.Table) error) error
}
