package projections

import (
	"context"
	"sort"

	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/activity"
	"fitgympro/internal/domain/cms"
	"fitgympro/internal/domain/discount"
	"fitgympro/internal/domain/magazine"
	"fitgympro/internal/domain/settings"
	"fitgympro/internal/domain/storeplan"
)

// RecentActivityLimit is how many activity entries the overview shows.
const RecentActivityLimit = 10

// AdminStats are the headline numbers of the admin overview.
type AdminStats struct {
	Users          int
	Coaches        int
	PendingCoaches int
	Suspended      int
	Sales          int
	Revenue        int64
}

// DiscountRow is one discount code with its effect.
type DiscountRow struct {
	Code string
	discount.Discount
}

// GetAdminDashboardResult carries the admin dashboard.
type GetAdminDashboardResult struct {
	Stats       AdminStats
	Users       []account.User
	Pending     []account.User
	Activity    []activity.Entry
	Plans       []storeplan.Plan
	Discounts   []DiscountRow
	Articles    []magazine.Article
	Settings    settings.SiteSettings
	Exercises   cms.Exercises
	Supplements cms.Supplements
}

// GetAdminDashboardDeps holds dependencies for GetAdminDashboard.
type GetAdminDashboardDeps struct {
	Accounts  AccountStore
	UserData  UserDataStore
	Activity  ActivityStore
	Plans     PlanStore
	Discounts DiscountStore
	Articles  ArticleStore
	Settings  SettingsStore
	Catalog   CatalogStore
}

// QueryGetAdminDashboard loads every admin tab in one pass.
// PRE: caller is an admin
// POST: Users newest first; Discounts sorted by code; Activity capped at RecentActivityLimit
// INVARIANT: Revenue sums the price of every subscription ever purchased
func QueryGetAdminDashboard(ctx context.Context, deps GetAdminDashboardDeps) (GetAdminDashboardResult, error) {
	var res GetAdminDashboardResult

	users, err := deps.Accounts.List(ctx)
	if err != nil {
		return res, err
	}
	res.Users = append([]account.User(nil), users...)
	sort.SliceStable(res.Users, func(i, j int) bool { return res.Users[i].JoinDate.After(res.Users[j].JoinDate) })

	for _, u := range res.Users {
		switch {
		case u.IsCoach():
			res.Stats.Coaches++
			if u.CoachStatus == account.CoachStatusPending {
				res.Stats.PendingCoaches++
				res.Pending = append(res.Pending, u)
			}
		case isStudent(u):
			res.Stats.Users++
			d, err := deps.UserData.Get(ctx, u.Username)
			if err != nil {
				return res, err
			}
			for _, s := range d.Subscriptions {
				res.Stats.Sales++
				res.Stats.Revenue += s.Price
			}
		}
		if u.Status == account.StatusSuspended {
			res.Stats.Suspended++
		}
	}

	entries, err := deps.Activity.List(ctx)
	if err != nil {
		return res, err
	}
	if len(entries) > RecentActivityLimit {
		entries = entries[:RecentActivityLimit]
	}
	res.Activity = entries

	if res.Plans, err = deps.Plans.List(ctx); err != nil {
		return res, err
	}

	table, err := deps.Discounts.Get(ctx)
	if err != nil {
		return res, err
	}
	for code, d := range table {
		res.Discounts = append(res.Discounts, DiscountRow{Code: code, Discount: d})
	}
	sort.Slice(res.Discounts, func(i, j int) bool { return res.Discounts[i].Code < res.Discounts[j].Code })

	articles, err := deps.Articles.List(ctx)
	if err != nil {
		return res, err
	}
	res.Articles = magazine.Newest(articles)

	if res.Settings, err = deps.Settings.Get(ctx); err != nil {
		return res, err
	}
	if res.Exercises, err = deps.Catalog.Exercises(ctx); err != nil {
		return res, err
	}
	if res.Supplements, err = deps.Catalog.Supplements(ctx); err != nil {
		return res, err
	}
	return res, nil
}
