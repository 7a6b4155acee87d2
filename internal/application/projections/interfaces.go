package projections

import (
	"context"

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

// AccountStore interface for account queries.
type AccountStore interface {
	List(ctx context.Context) ([]account.User, error)
}

// UserDataStore interface for user data queries.
type UserDataStore interface {
	Get(ctx context.Context, username string) (userdata.Data, error)
	LastTab(ctx context.Context, username string) (string, error)
}

// CartStore interface for cart queries.
type CartStore interface {
	Get(ctx context.Context, username string) (cart.Cart, error)
}

// DiscountStore interface for discount queries.
type DiscountStore interface {
	Get(ctx context.Context) (discount.Table, error)
}

// PlanStore interface for store plan queries.
type PlanStore interface {
	List(ctx context.Context) ([]storeplan.Plan, error)
}

// NotificationStore interface for badge queries.
type NotificationStore interface {
	Get(ctx context.Context, username string) (notification.Map, error)
}

// ArticleStore interface for magazine queries.
type ArticleStore interface {
	List(ctx context.Context) ([]magazine.Article, error)
}

// SettingsStore interface for site settings queries.
type SettingsStore interface {
	Get(ctx context.Context) (settings.SiteSettings, error)
}

// ActivityStore interface for activity log queries.
type ActivityStore interface {
	List(ctx context.Context) ([]activity.Entry, error)
}

// TemplateStore interface for template queries.
type TemplateStore interface {
	Get(ctx context.Context) (template.Table, error)
}

// CatalogStore interface for CMS catalogue queries.
type CatalogStore interface {
	Exercises(ctx context.Context) (cms.Exercises, error)
	Supplements(ctx context.Context) (cms.Supplements, error)
}
