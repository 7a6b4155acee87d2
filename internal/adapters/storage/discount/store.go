package discount

import (
	"context"

	domain "fitgympro/internal/domain/discount"
)

// Store persists the discount code table.
type Store interface {
	Get(ctx context.Context) (domain.Table, error)
	Update(ctx context.Context, fn func(t domain.Table) error) error
}
