package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	accountStore "fitgympro/internal/adapters/storage/account"
	"fitgympro/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByUsername(ctx context.Context, username string) (account.User, error)
}

// SessionStoreForLogin defines the session operations Login needs.
type SessionStoreForLogin interface {
	Create(ctx context.Context, username, role string) (string, error)
	SetCurrent(ctx context.Context, username, role string) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Username string
	Role     string
	Token    string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	SessionStore SessionStoreForLogin
}

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ExecuteLogin checks credentials, opens a browser session and writes the Session Marker.
// PRE: Username and Password are non-empty after trimming the username
// POST: On success a session token exists and the marker names the user
// INVARIANT: Suspended accounts and unverified coaches never get a session
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return LoginResult{}, ErrMissingCredentials
	}

	user, err := deps.AccountStore.GetByUsername(ctx, username)
	if errors.Is(err, accountStore.ErrNotFound) {
		slog.Info("auth_event", "event", "login_failed", "username", username, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load account: %w", err)
	}

	if err := user.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", username, "reason", "wrong_password")
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := user.CanLogin(); err != nil {
		slog.Info("auth_event", "event", "login_blocked", "username", username, "reason", err.Error())
		return LoginResult{}, err
	}

	token, err := startSession(ctx, deps.SessionStore, user)
	if err != nil {
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "username", username, "role", user.Role)
	return LoginResult{Username: user.Username, Role: user.Role, Token: token}, nil
}

// startSession creates a browser session and records the Session Marker.
func startSession(ctx context.Context, sessions SessionStoreForLogin, user account.User) (string, error) {
	token, err := sessions.Create(ctx, user.Username, user.Role)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if err := sessions.SetCurrent(ctx, user.Username, user.Role); err != nil {
		return "", fmt.Errorf("set session marker: %w", err)
	}
	return token, nil
}
