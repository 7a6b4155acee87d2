package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	emailAdapter "fitgympro/internal/adapters/email"
	accountStore "fitgympro/internal/adapters/storage/account"
	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/userdata"
)

// AccountStoreForAdmin defines the account operations admin orchestrators need.
type AccountStoreForAdmin interface {
	Update(ctx context.Context, fn func(users []account.User) ([]account.User, error)) error
}

// SessionRevoker ends every browser session of a user.
type SessionRevoker interface {
	DeleteUser(ctx context.Context, username string) (int, error)
}

// AdminUserActionInput carries input for an admin action on one account.
type AdminUserActionInput struct {
	Actor    string
	Username string
	Action   string
}

// AdminUserActionDeps holds dependencies for AdminUserAction.
type AdminUserActionDeps struct {
	AccountStore AccountStoreForAdmin
	Sessions     SessionRevoker
	Activity     ActivityRecorder
	Sender       emailAdapter.Sender // optional
}

// ExecuteAdminUserAction applies suspend, activate, approve, reject, revoke or reapprove.
// PRE: Actor is an admin
// POST: the account is updated and an activity entry is logged
// INVARIANT: A suspended user keeps no open session
func ExecuteAdminUserAction(ctx context.Context, input AdminUserActionInput, deps AdminUserActionDeps) (account.User, error) {
	var updated account.User
	err := deps.AccountStore.Update(ctx, func(users []account.User) ([]account.User, error) {
		i := account.Find(users, input.Username)
		if i < 0 {
			return nil, accountStore.ErrNotFound
		}
		if err := users[i].ApplyAction(input.Action); err != nil {
			return nil, err
		}
		updated = users[i]
		return users, nil
	})
	if err != nil {
		return account.User{}, err
	}

	if input.Action == account.ActionSuspend && deps.Sessions != nil {
		n, err := deps.Sessions.DeleteUser(ctx, input.Username)
		if err != nil {
			slog.Warn("session_revoke_failed", "username", input.Username, "error", err)
		} else {
			slog.Info("auth_event", "event", "sessions_revoked", "username", input.Username, "count", n)
		}
	}

	if input.Action == account.ActionApprove || input.Action == account.ActionReapprove {
		sendCoachApproved(ctx, deps.Sender, updated)
	}

	logActivity(ctx, deps.Activity, fmt.Sprintf("Admin action '%s' on user %s.", input.Action, input.Username))
	slog.Info("admin_event", "event", "user_action", "actor", input.Actor, "username", input.Username, "action", input.Action)
	return updated, nil
}

func sendCoachApproved(ctx context.Context, sender emailAdapter.Sender, user account.User) {
	if sender == nil {
		return
	}
	_, err := sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{user.Email},
		Subject: "Your FitGym Pro coach account is active",
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>An admin approved your coach account. You can log in now.</p>", html.EscapeString(user.Username)),
		Kind:    emailAdapter.KindCoachApproved,
	})
	if err != nil {
		slog.Warn("email_send_failed", "kind", emailAdapter.KindCoachApproved, "username", user.Username, "error", err)
	}
}

// UserDataStoreForAdmin defines the user data operations admin orchestrators need.
type UserDataStoreForAdmin interface {
	Update(ctx context.Context, username string, fn func(d *userdata.Data) error) error
}

// AdminUpdateUserInput carries the admin edit-user form.
type AdminUpdateUserInput struct {
	Username  string
	Name      string
	Email     string
	Role      string
	CoachTier string
}

// AdminUpdateUserDeps holds dependencies for AdminUpdateUser.
type AdminUpdateUserDeps struct {
	AccountStore  AccountStoreForAdmin
	UserDataStore UserDataStoreForAdmin
	Activity      ActivityRecorder
}

// ExecuteAdminUpdateUser changes a user's email, role, coach tier and display name.
// PRE: Username names an existing account
// POST: account and profile updated; CoachTier is cleared for non-coaches
// INVARIANT: The new email is not used by another account
func ExecuteAdminUpdateUser(ctx context.Context, input AdminUpdateUserInput, deps AdminUpdateUserDeps) error {
	email := strings.TrimSpace(input.Email)
	err := deps.AccountStore.Update(ctx, func(users []account.User) ([]account.User, error) {
		i := account.Find(users, input.Username)
		if i < 0 {
			return nil, accountStore.ErrNotFound
		}
		for j := range users {
			if j != i && strings.EqualFold(users[j].Email, email) {
				return nil, ErrAccountExists
			}
		}
		u := users[i]
		u.Email = email
		u.Role = input.Role
		if u.IsCoach() {
			u.CoachTier = input.CoachTier
			if u.CoachStatus == account.CoachStatusNone {
				u.CoachStatus = account.CoachStatusVerified
			}
		} else {
			u.CoachTier = ""
			u.CoachStatus = account.CoachStatusNone
		}
		if err := u.Validate(); err != nil {
			return nil, err
		}
		users[i] = u
		return users, nil
	})
	if err != nil {
		return err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		err = deps.UserDataStore.Update(ctx, input.Username, func(d *userdata.Data) error {
			if d.Step1 == nil {
				d.Step1 = &userdata.Profile{}
			}
			d.Step1.ClientName = name
			return nil
		})
		if err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
	}

	logActivity(ctx, deps.Activity, fmt.Sprintf("Admin updated profile for %s.", input.Username))
	return nil
}
