package projections

import (
	"context"
	"sort"
	"time"

	"fitgympro/internal/domain/notification"
	"fitgympro/internal/domain/template"
	"fitgympro/internal/domain/userdata"
)

// StudentSummary is one row of the coach's student list.
type StudentSummary struct {
	Username     string
	Name         string
	Email        string
	LatestPlan   string
	PurchasedAt  time.Time
	NeedsProgram bool
	Programs     int
	UnreadChat   int
}

// GetCoachDashboardResult carries the coach dashboard.
type GetCoachDashboardResult struct {
	Coach         string
	Students      []StudentSummary
	Waiting       int
	Templates     []template.Template
	Exercises     map[string][]string
	Notifications notification.Map
	LastTab       string
}

// GetCoachDashboardDeps holds dependencies for GetCoachDashboard.
type GetCoachDashboardDeps struct {
	Accounts      AccountStore
	UserData      UserDataStore
	Templates     TemplateStore
	Catalog       CatalogStore
	Notifications NotificationStore
}

// QueryGetCoachDashboard loads the coach's students, templates and exercise catalogue.
// PRE: coach is signed in as a verified coach
// POST: Students waiting for a program come first, then by name
func QueryGetCoachDashboard(ctx context.Context, coach string, deps GetCoachDashboardDeps) (GetCoachDashboardResult, error) {
	users, err := deps.Accounts.List(ctx)
	if err != nil {
		return GetCoachDashboardResult{}, err
	}

	res := GetCoachDashboardResult{Coach: coach}
	for _, u := range users {
		if !isStudent(u) {
			continue
		}
		d, err := deps.UserData.Get(ctx, u.Username)
		if err != nil {
			return GetCoachDashboardResult{}, err
		}
		if d.CoachName() != coach {
			continue
		}
		res.Students = append(res.Students, summarize(u.Username, u.Email, d))
	}
	for _, s := range res.Students {
		if s.NeedsProgram {
			res.Waiting++
		}
	}
	sort.SliceStable(res.Students, func(i, j int) bool {
		a, b := res.Students[i], res.Students[j]
		if a.NeedsProgram != b.NeedsProgram {
			return a.NeedsProgram
		}
		return a.Username < b.Username
	})

	table, err := deps.Templates.Get(ctx)
	if err != nil {
		return GetCoachDashboardResult{}, err
	}
	for _, t := range table {
		res.Templates = append(res.Templates, t)
	}
	sort.Slice(res.Templates, func(i, j int) bool { return res.Templates[i].Name < res.Templates[j].Name })

	ex, err := deps.Catalog.Exercises(ctx)
	if err != nil {
		return GetCoachDashboardResult{}, err
	}
	res.Exercises = ex

	if res.Notifications, err = deps.Notifications.Get(ctx, coach); err != nil {
		return GetCoachDashboardResult{}, err
	}
	if res.LastTab, err = deps.UserData.LastTab(ctx, coach); err != nil {
		return GetCoachDashboardResult{}, err
	}
	return res, nil
}

func summarize(username, email string, d userdata.Data) StudentSummary {
	s := StudentSummary{
		Username:     username,
		Name:         username,
		Email:        email,
		NeedsProgram: d.NeedsProgram(),
		Programs:     len(d.ProgramHistory),
		UnreadChat:   unread(d.ChatHistory, userdata.SenderCoach),
	}
	if d.Step1 != nil && d.Step1.ClientName != "" {
		s.Name = d.Step1.ClientName
	}
	if latest, ok := d.LatestSubscription(); ok {
		s.LatestPlan = latest.PlanName
		s.PurchasedAt = latest.PurchaseDate
	}
	return s
}
