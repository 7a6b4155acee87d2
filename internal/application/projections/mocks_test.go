package projections

import (
	"context"
	"time"

	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/activity"
	"fitgympro/internal/domain/cart"
	"fitgympro/internal/domain/cms"
	"fitgympro/internal/domain/discount"
	"fitgympro/internal/domain/magazine"
	"fitgympro/internal/domain/notification"
	"fitgympro/internal/domain/settings"
	"fitgympro/internal/domain/storeplan"
	"fitgympro/internal/domain/template"
	"fitgympro/internal/domain/userdata"
)

var day0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func days(n int) time.Time { return day0.AddDate(0, 0, n) }

type mockAccounts struct{ users []account.User }

// List returns the seeded users.
func (m *mockAccounts) List(context.Context) ([]account.User, error) { return m.users, nil }

type mockUserData struct {
	data map[string]userdata.Data
	tabs map[string]string
}

// Get returns seeded data or zero Data.
func (m *mockUserData) Get(_ context.Context, username string) (userdata.Data, error) {
	return m.data[username], nil
}

// LastTab returns the seeded tab or "".
func (m *mockUserData) LastTab(_ context.Context, username string) (string, error) {
	return m.tabs[username], nil
}

type mockCarts struct{ carts map[string]cart.Cart }

// Get returns the seeded cart or an empty one.
func (m *mockCarts) Get(_ context.Context, username string) (cart.Cart, error) {
	if c, ok := m.carts[username]; ok {
		return c, nil
	}
	return cart.Empty(), nil
}

type mockDiscounts struct{ table discount.Table }

// Get returns the seeded table.
func (m *mockDiscounts) Get(context.Context) (discount.Table, error) {
	if m.table == nil {
		return discount.Table{}, nil
	}
	return m.table, nil
}

type mockPlans struct{ plans []storeplan.Plan }

// List returns the seeded plans.
func (m *mockPlans) List(context.Context) ([]storeplan.Plan, error) { return m.plans, nil }

type mockNotifications struct{ maps map[string]notification.Map }

// Get returns the seeded badges or an empty map.
func (m *mockNotifications) Get(_ context.Context, username string) (notification.Map, error) {
	if n, ok := m.maps[username]; ok {
		return n, nil
	}
	return notification.Map{}, nil
}

type mockArticles struct{ articles []magazine.Article }

// List returns the seeded articles.
func (m *mockArticles) List(context.Context) ([]magazine.Article, error) { return m.articles, nil }

type mockSettings struct{}

// Get returns the defaults.
func (mockSettings) Get(context.Context) (settings.SiteSettings, error) { return settings.Defaults(), nil }

type mockActivity struct{ entries []activity.Entry }

// List returns the seeded entries.
func (m *mockActivity) List(context.Context) ([]activity.Entry, error) { return m.entries, nil }

type mockTemplates struct{ table template.Table }

// Get returns the seeded templates.
func (m *mockTemplates) Get(context.Context) (template.Table, error) { return m.table, nil }

type mockCatalog struct{}

// Exercises returns the built-in catalogue.
func (mockCatalog) Exercises(context.Context) (cms.Exercises, error) { return cms.DefaultExercises(), nil }

// Supplements returns the built-in catalogue.
func (mockCatalog) Supplements(context.Context) (cms.Supplements, error) {
	return cms.DefaultSupplements(), nil
}

// withCoach returns data for a student who picked coach and bought plans at the given days.
func withCoach(coach string, purchases ...int) userdata.Data {
	d := userdata.Data{Step1: &userdata.Profile{CoachName: coach}}
	for _, day := range purchases {
		d.Subscribe([]storeplan.Plan{{ID: "plan_basic", Name: "Basic", Price: 100000}}, days(day))
	}
	return d
}
