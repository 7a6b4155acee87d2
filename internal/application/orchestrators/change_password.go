package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	accountStore "fitgympro/internal/adapters/storage/account"
	"fitgympro/internal/domain/account"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	Username        string
	CurrentPassword string
	NewPassword     string
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForAdmin
	Sessions     SessionRevoker // optional
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
)

// ExecuteChangePassword checks the current password and stores the new one.
// PRE: Username is signed in
// POST: PasswordHash replaced; every session of the user is ended
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return ErrMissingCredentials
	}
	if input.CurrentPassword == input.NewPassword {
		return ErrNewPasswordSame
	}

	err := deps.AccountStore.Update(ctx, func(users []account.User) ([]account.User, error) {
		i := account.Find(users, input.Username)
		if i < 0 {
			return nil, accountStore.ErrNotFound
		}
		if err := users[i].CheckPassword(input.CurrentPassword); err != nil {
			return nil, ErrCurrentPasswordWrong
		}
		if err := users[i].SetPassword(input.NewPassword); err != nil {
			return nil, err
		}
		return users, nil
	})
	if err != nil {
		return err
	}

	if deps.Sessions != nil {
		if _, err := deps.Sessions.DeleteUser(ctx, input.Username); err != nil {
			slog.Warn("session_revoke_failed", "username", input.Username, "error", err)
		}
	}
	slog.Info("auth_event", "event", "password_changed", "username", input.Username)
	return nil
}
