package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	emailAdapter "fitgympro/internal/adapters/email"
	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/settings"
	"fitgympro/internal/domain/userdata"
)

// AccountStoreForSignup defines the store interface needed by Signup.
type AccountStoreForSignup interface {
	Update(ctx context.Context, fn func(users []account.User) ([]account.User, error)) error
}

// UserDataStoreForSignup defines the user data operations Signup needs.
type UserDataStoreForSignup interface {
	Save(ctx context.Context, username string, value userdata.Data) error
}

// SettingsReader loads the site settings.
type SettingsReader interface {
	Get(ctx context.Context) (settings.SiteSettings, error)
}

// ActivityRecorder appends to the admin activity log.
type ActivityRecorder interface {
	Add(ctx context.Context, message string) error
}

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	Username string
	Email    string
	Password string
	AsCoach  bool
}

// SignupResult carries the outcome of a signup.
// Token is empty when the account may not sign in yet.
type SignupResult struct {
	User     account.User
	LoggedIn bool
	Token    string
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	AccountStore  AccountStoreForSignup
	UserDataStore UserDataStoreForSignup
	SessionStore  SessionStoreForLogin
	Settings      SettingsReader
	Activity      ActivityRecorder
	Sender        emailAdapter.Sender // optional
	Now           func() time.Time
}

var (
	ErrAccountExists           = errors.New("an account with this username or email already exists, please log in")
	ErrCoachRegistrationClosed = errors.New("coach registration is currently closed")
)

// ExecuteSignup creates an account and its user data.
// Regular users are signed in straight away; coaches wait for admin approval.
// PRE: input fields come straight from the form
// POST: On success the account and its user data exist and an activity entry is logged
// INVARIANT: No two accounts share a username or email, compared case-insensitively
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (SignupResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if err := account.ValidateSignup(username, email, input.Password); err != nil {
		return SignupResult{}, err
	}

	if input.AsCoach {
		site, err := deps.Settings.Get(ctx)
		if err != nil {
			return SignupResult{}, fmt.Errorf("load settings: %w", err)
		}
		if !site.AllowCoachRegistration {
			return SignupResult{}, ErrCoachRegistrationClosed
		}
	}

	now := deps.Now()
	user := account.User{
		Username: username,
		Email:    email,
		Role:     account.RoleUser,
		Status:   account.StatusActive,
		JoinDate: now,
	}
	if input.AsCoach {
		user.Role = account.RoleCoach
		user.CoachStatus = account.CoachStatusPending
	}
	if err := user.SetPassword(input.Password); err != nil {
		return SignupResult{}, err
	}

	err := deps.AccountStore.Update(ctx, func(users []account.User) ([]account.User, error) {
		if account.Conflict(users, username, email) >= 0 {
			return nil, ErrAccountExists
		}
		return append(users, user), nil
	})
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			slog.Info("auth_event", "event", "signup_conflict", "username", username)
		}
		return SignupResult{}, err
	}

	if err := deps.UserDataStore.Save(ctx, username, userdata.ForSignup(username, email, now)); err != nil {
		return SignupResult{}, fmt.Errorf("save user data: %w", err)
	}

	result := SignupResult{User: user}
	if input.AsCoach {
		logActivity(ctx, deps.Activity, fmt.Sprintf("%s signed up as a pending coach.", username))
		slog.Info("auth_event", "event", "signup_pending_coach", "username", username)
	} else {
		logActivity(ctx, deps.Activity, fmt.Sprintf("%s signed up.", username))
		token, err := startSession(ctx, deps.SessionStore, user)
		if err != nil {
			return SignupResult{}, err
		}
		result.LoggedIn = true
		result.Token = token
		slog.Info("auth_event", "event", "signup_success", "username", username, "role", user.Role)
	}

	sendWelcome(ctx, deps.Sender, user)
	return result, nil
}

// logActivity records message in the activity log. A failed write is logged, not returned.
func logActivity(ctx context.Context, activity ActivityRecorder, message string) {
	if activity == nil {
		return
	}
	if err := activity.Add(ctx, message); err != nil {
		slog.Warn("activity_log_failed", "message", message, "error", err)
	}
}

func sendWelcome(ctx context.Context, sender emailAdapter.Sender, user account.User) {
	if sender == nil {
		return
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to FitGym Pro.</p>", html.EscapeString(user.Username))
	if user.IsCoach() {
		body += "<p>Your coach account will be active once an admin approves it.</p>"
	}
	_, err := sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{user.Email},
		Subject: "Welcome to FitGym Pro",
		HTML:    body,
		Kind:    emailAdapter.KindWelcome,
	})
	if err != nil {
		slog.Warn("email_send_failed", "kind", emailAdapter.KindWelcome, "username", user.Username, "error", err)
	}
}
