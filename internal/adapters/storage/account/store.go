package account

import (
	"context"
	"errors"

	domain "fitgympro/internal/domain/account"
)

// ErrNotFound is returned when no user has the requested username or email.
var ErrNotFound = errors.New("user not found")

// Store persists the user list.
type Store interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Save(ctx context.Context, value domain.User) error
	Delete(ctx context.Context, username string) error
	Update(ctx context.Context, fn func(users []domain.User) ([]domain.User, error)) error
	Count(ctx context.Context) (int, error)
}
