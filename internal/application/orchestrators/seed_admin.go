package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fitgympro/internal/domain/account"
)

// ErrSeedPasswordRequired is returned when no admin exists and no password was configured.
var ErrSeedPasswordRequired = errors.New("admin password is required to create the first admin")

// SeedAdminInput carries the configured admin credentials.
type SeedAdminInput struct {
	Username string
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForSignup
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the admin account on first start.
// It is idempotent: nothing happens once any admin exists.
// POST: Returns true iff an account was created
// INVARIANT: At least one admin exists afterwards
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (bool, error) {
	admin := account.User{
		Username: input.Username,
		Email:    input.Email,
		Role:     account.RoleAdmin,
		Status:   account.StatusActive,
		JoinDate: deps.Now(),
	}

	created := false
	err := deps.AccountStore.Update(ctx, func(users []account.User) ([]account.User, error) {
		for _, u := range users {
			if u.IsAdmin() {
				return nil, errAdminExists
			}
		}
		if input.Password == "" {
			return nil, ErrSeedPasswordRequired
		}
		if err := admin.Validate(); err != nil {
			return nil, err
		}
		if err := admin.SetPassword(input.Password); err != nil {
			return nil, err
		}
		if account.Conflict(users, admin.Username, admin.Email) >= 0 {
			return nil, ErrAccountExists
		}
		created = true
		return append(users, admin), nil
	})
	if errors.Is(err, errAdminExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	slog.Info("seed_event", "event", "admin_created", "username", admin.Username)
	return created, nil
}

var errAdminExists = errors.New("admin already exists")
