package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/userdata"
)

// ErrUnknownCoach is returned when the chosen coach is not a verified coach.
var ErrUnknownCoach = errors.New("chosen coach is not available")

// AccountLister lists all accounts.
type AccountLister interface {
	List(ctx context.Context) ([]account.User, error)
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	Accounts      AccountLister
	UserDataStore UserDataStoreForAdmin
	Activity      ActivityRecorder
	Now           func() time.Time
}

// ExecuteUpdateProfile saves a user's intake profile.
// PRE: p comes from the profile form of username
// POST: Step1 replaced and stamped; an activity entry is logged
// INVARIANT: CoachName is empty or names a verified coach
func ExecuteUpdateProfile(ctx context.Context, username string, p userdata.Profile, deps UpdateProfileDeps) error {
	p.ClientName = strings.TrimSpace(p.ClientName)
	p.CoachName = strings.TrimSpace(p.CoachName)
	if err := p.Validate(); err != nil {
		return err
	}
	if p.CoachName != "" {
		users, err := deps.Accounts.List(ctx)
		if err != nil {
			return fmt.Errorf("load accounts: %w", err)
		}
		i := account.Find(users, p.CoachName)
		if i < 0 || !users[i].IsVerifiedCoach() {
			return ErrUnknownCoach
		}
	}

	now := deps.Now()
	err := deps.UserDataStore.Update(ctx, username, func(d *userdata.Data) error {
		if d.Step1 != nil && p.ClientEmail == "" {
			p.ClientEmail = d.Step1.ClientEmail
		}
		d.UpdateProfile(p, now)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	logActivity(ctx, deps.Activity, fmt.Sprintf("User %s updated their profile.", username))
	return nil
}
