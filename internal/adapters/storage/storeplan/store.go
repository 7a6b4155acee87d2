package storeplan

import (
	"context"

	domain "fitgympro/internal/domain/storeplan"
)

// Store persists the plans offered in the store.
type Store interface {
	List(ctx context.Context) ([]domain.Plan, error)
	Get(ctx context.Context, id string) (domain.Plan, error)
	Save(ctx context.Context, value domain.Plan) error
	Delete(ctx context.Context, id string) error
}
