package projections

import (
	"context"

	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/notification"
	"fitgympro/internal/domain/storeplan"
	"fitgympro/internal/domain/userdata"
)

// GetUserDashboardResult carries the end-user dashboard.
type GetUserDashboardResult struct {
	Username      string
	Data          userdata.Data
	Latest        *userdata.Subscription
	NeedsProgram  bool
	Program       *userdata.Program
	CanChat       bool
	CanNutrition  bool
	UnreadChat    int
	Notifications notification.Map
	LastTab       string
	CartCount     int
	Plans         []storeplan.Plan
	Coaches       []CoachCard
}

// GetUserDashboardDeps holds dependencies for GetUserDashboard.
type GetUserDashboardDeps struct {
	UserData      UserDataStore
	Notifications NotificationStore
	Carts         CartStore
	Plans         PlanStore
	Accounts      AccountStore
}

// QueryGetUserDashboard loads everything the user dashboard shows.
// PRE: username is signed in as a user
// POST: Program is the newest delivered program or nil
func QueryGetUserDashboard(ctx context.Context, username string, deps GetUserDashboardDeps) (GetUserDashboardResult, error) {
	d, err := deps.UserData.Get(ctx, username)
	if err != nil {
		return GetUserDashboardResult{}, err
	}
	notes, err := deps.Notifications.Get(ctx, username)
	if err != nil {
		return GetUserDashboardResult{}, err
	}
	tab, err := deps.UserData.LastTab(ctx, username)
	if err != nil {
		return GetUserDashboardResult{}, err
	}
	c, err := deps.Carts.Get(ctx, username)
	if err != nil {
		return GetUserDashboardResult{}, err
	}
	plans, err := deps.Plans.List(ctx)
	if err != nil {
		return GetUserDashboardResult{}, err
	}
	users, err := deps.Accounts.List(ctx)
	if err != nil {
		return GetUserDashboardResult{}, err
	}
	coaches, err := coachCards(ctx, users, nil)
	if err != nil {
		return GetUserDashboardResult{}, err
	}

	res := GetUserDashboardResult{
		Username:      username,
		Data:          d,
		NeedsProgram:  d.NeedsProgram(),
		CanChat:       d.HasAccess(storeplan.AccessChat),
		CanNutrition:  d.HasAccess(storeplan.AccessNutrition),
		UnreadChat:    unread(d.ChatHistory, userdata.SenderUser),
		Notifications: notes,
		LastTab:       tab,
		CartCount:     len(c.Items),
		Plans:         plans,
		Coaches:       coaches,
	}
	if latest, ok := d.LatestSubscription(); ok {
		res.Latest = &latest
	}
	if len(d.ProgramHistory) > 0 {
		p := d.ProgramHistory[0]
		res.Program = &p
	}
	return res, nil
}

// unread counts messages the reader has not seen.
func unread(history []userdata.ChatMessage, reader string) int {
	n := 0
	for _, m := range history {
		if m.Sender != reader && !m.Read {
			n++
		}
	}
	return n
}

// isStudent reports whether u is an end user.
func isStudent(u account.User) bool { return u.Role == account.RoleUser }
