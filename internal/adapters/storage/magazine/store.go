package magazine

import (
	"context"

	domain "fitgympro/internal/domain/magazine"
)

// Store persists magazine articles.
type Store interface {
	List(ctx context.Context) ([]domain.Article, error)
	Get(ctx context.Context, id string) (domain.Article, error)
	Save(ctx context.Context, value domain.Article) error
	Delete(ctx context.Context, id string) error
	SeedIfEmpty(ctx context.Context, seed []domain.Article) (bool, error)
}
