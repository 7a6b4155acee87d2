package web

import (
	"io/fs"
	"net/http"
	"time"

	"fitgympro/internal/adapters/email"
	"fitgympro/internal/adapters/http/middleware"
	"fitgympro/internal/adapters/http/perf"
	accountStore "fitgympro/internal/adapters/storage/account"
	activityStore "fitgympro/internal/adapters/storage/activitylog"
	cartStore "fitgympro/internal/adapters/storage/cart"
	cmsStore "fitgympro/internal/adapters/storage/cms"
	discountStore "fitgympro/internal/adapters/storage/discount"
	"fitgympro/internal/adapters/storage/kv"
	magazineStore "fitgympro/internal/adapters/storage/magazine"
	notificationStore "fitgympro/internal/adapters/storage/notification"
	"fitgympro/internal/adapters/storage/session"
	settingsStore "fitgympro/internal/adapters/storage/settings"
	planStore "fitgympro/internal/adapters/storage/storeplan"
	templateStore "fitgympro/internal/adapters/storage/template"
	userdataStore "fitgympro/internal/adapters/storage/userdata"
	"fitgympro/internal/navigation"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	UserDataStore     userdataStore.Store
	CartStore         cartStore.Store
	DiscountStore     discountStore.Store
	PlanStore         planStore.Store
	NotificationStore notificationStore.Store
	CatalogStore      cmsStore.Store
	ArticleStore      magazineStore.Store
	SettingsStore     settingsStore.Store
	ActivityStore     activityStore.Store
	TemplateStore     templateStore.Store
	SessionStore      session.Store
}

// NewKVStores builds every entity accessor over one key-value store.
func NewKVStores(store kv.KV) *Stores {
	return &Stores{
		AccountStore:      accountStore.NewKVStore(store),
		UserDataStore:     userdataStore.NewKVStore(store),
		CartStore:         cartStore.NewKVStore(store),
		DiscountStore:     discountStore.NewKVStore(store),
		PlanStore:         planStore.NewKVStore(store),
		NotificationStore: notificationStore.NewKVStore(store),
		CatalogStore:      cmsStore.NewKVStore(store),
		ArticleStore:      magazineStore.NewKVStore(store),
		SettingsStore:     settingsStore.NewKVStore(store),
		ActivityStore:     activityStore.NewKVStore(store),
		TemplateStore:     templateStore.NewKVStore(store),
		SessionStore:      session.NewKVStore(store),
	}
}

// Options configures the HTTP front end.
type Options struct {
	CSRFKey        []byte // 32 bytes
	Production     bool   // Secure cookies and HTTPS-only CSRF checks
	TrustedOrigins []string
	RateLimit      int // requests per second per IP
	SlowRequestMs  int
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global page router (set by NewMux)
var pages *navigation.Router

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, opts Options, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	pages = newPageRouter()
	if emailSender == nil {
		emailSender = email.NewNoopSender()
	}
	middleware.SecureCookies = opts.Production

	mux := http.NewServeMux()
	static, _ := fs.Sub(assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	registerRoutes(mux)

	rate := opts.RateLimit
	if rate <= 0 {
		rate = 10
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.Production, opts.TrustedOrigins),
		middleware.Auth(s.SessionStore),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequestMs),
	)
}

// registerRoutes maps every URL to its handler.
// GET pages go through the page router so the auth guards apply uniformly.
func registerRoutes(mux *http.ServeMux) {
	for path := range pageRoutes() {
		mux.HandleFunc("GET "+path, handlePage)
	}
	mux.HandleFunc("GET /magazine/{id}", handleArticlePage)
	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /signup", handleSignup)
	mux.HandleFunc("POST /forgot-password", handleForgotPassword)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.HandleFunc("POST /password", handleChangePassword)

	mux.HandleFunc("POST /cart/add", handleCartAdd)
	mux.HandleFunc("POST /cart/remove", handleCartRemove)
	mux.HandleFunc("POST /cart/discount", handleCartDiscount)
	mux.HandleFunc("POST /cart/checkout", handleCheckout)
	mux.HandleFunc("POST /profile", handleProfile)
	mux.HandleFunc("POST /chat", handleChat)
	mux.HandleFunc("POST /notifications/clear", handleOpenTab)

	mux.HandleFunc("POST /admin/users/action", handleAdminUserAction)
	mux.HandleFunc("POST /admin/users/update", handleAdminUpdateUser)
	mux.HandleFunc("POST /admin/plans", handleAdminSavePlan)
	mux.HandleFunc("POST /admin/plans/delete", handleAdminDeletePlan)
	mux.HandleFunc("POST /admin/discounts", handleAdminSaveDiscount)
	mux.HandleFunc("POST /admin/discounts/delete", handleAdminDeleteDiscount)
	mux.HandleFunc("POST /admin/articles", handleSaveArticle)
	mux.HandleFunc("POST /admin/articles/delete", handleDeleteArticle)
	mux.HandleFunc("POST /admin/settings", handleAdminSettings)
	mux.HandleFunc("POST /admin/cms/exercises", handleAdminExercise)
	mux.HandleFunc("POST /admin/cms/supplements", handleAdminSupplement)

	mux.HandleFunc("POST /coach/templates", handleCoachSaveTemplate)
	mux.HandleFunc("POST /coach/templates/delete", handleCoachDeleteTemplate)
	mux.HandleFunc("POST /coach/students/program", handleCoachDeliverProgram)
}
