package cart

import (
	"context"

	domain "fitgympro/internal/domain/cart"
)

// Store persists one cart per user.
type Store interface {
	Get(ctx context.Context, username string) (domain.Cart, error)
	Save(ctx context.Context, username string, value domain.Cart) error
	Update(ctx context.Context, username string, fn func(c *domain.Cart) error) error
	Clear(ctx context.Context, username string) error
}
