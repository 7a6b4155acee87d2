package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	emailAdapter "fitgympro/internal/adapters/email"
	accountStore "fitgympro/internal/adapters/storage/account"
	"fitgympro/internal/domain/account"
)

// AccountStoreForForgotPassword defines the store interface needed by ForgotPassword.
type AccountStoreForForgotPassword interface {
	GetByEmail(ctx context.Context, email string) (account.User, error)
}

// ForgotPasswordDeps holds dependencies for ForgotPassword.
type ForgotPasswordDeps struct {
	AccountStore AccountStoreForForgotPassword
	Settings     SettingsReader
	Sender       emailAdapter.Sender
}

// ExecuteForgotPassword sends a reset notice to the account registered under email.
// An unknown address is not an error so the form does not reveal which emails exist.
// PRE: email is the raw form value
// POST: At most one notice is sent
func ExecuteForgotPassword(ctx context.Context, email string, deps ForgotPasswordDeps) error {
	email = strings.TrimSpace(email)
	if !account.ValidEmail(email) {
		return account.ErrInvalidEmail
	}

	user, err := deps.AccountStore.GetByEmail(ctx, email)
	if errors.Is(err, accountStore.ErrNotFound) {
		slog.Info("auth_event", "event", "password_reset_unknown_email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	support := ""
	if deps.Settings != nil {
		if site, err := deps.Settings.Get(ctx); err == nil {
			support = site.ContactInfo.Email
		}
	}

	body := fmt.Sprintf("<p>Hi %s,</p><p>We received a request to reset the password for your FitGym Pro account.</p>",
		html.EscapeString(user.Username))
	if support != "" {
		body += fmt.Sprintf("<p>Reply to this email or write to %s to finish the reset. If you did not ask for this, ignore this message.</p>",
			html.EscapeString(support))
	}

	_, err = deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{user.Email},
		Subject: "Reset your FitGym Pro password",
		HTML:    body,
		ReplyTo: support,
		Kind:    emailAdapter.KindPasswordReset,
	})
	if err != nil {
		slog.Error("email_send_failed", "kind", emailAdapter.KindPasswordReset, "username", user.Username, "error", err)
		return fmt.Errorf("send reset notice: %w", err)
	}
	slog.Info("auth_event", "event", "password_reset_sent", "username", user.Username)
	return nil
}
