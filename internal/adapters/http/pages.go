package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"fitgympro/internal/adapters/http/middleware"
	"fitgympro/internal/application/listutil"
	"fitgympro/internal/application/orchestrators"
	"fitgympro/internal/application/projections"
	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/magazine"
	"fitgympro/internal/domain/notification"
	"fitgympro/internal/domain/storeplan"
	"fitgympro/internal/domain/userdata"
	"fitgympro/internal/navigation"
)

type pageKey struct{}

// pageRequest carries the HTTP exchange through navigation.Handler, which only takes a context.
type pageRequest struct {
	w http.ResponseWriter
	r *http.Request
}

func exchange(ctx context.Context) (http.ResponseWriter, *http.Request) {
	p := ctx.Value(pageKey{}).(pageRequest)
	return p.w, p.r
}

// httpLocation is the navigation.Location of one GET request.
// Replace records the target; handlePage turns it into a 303.
type httpLocation struct {
	path   string
	target string
}

func (l *httpLocation) Path() string        { return l.path }
func (l *httpLocation) Replace(path string) { l.target = path }

// pageRoutes lists every page reachable by GET.
func pageRoutes() navigation.Routes {
	return navigation.Routes{
		navigation.RootPath: pageLanding,
		"/login":            pageAuth("login"),
		"/signup":           pageAuth("signup"),
		"/forgot-password":  pageAuth("forgot"),
		"/terms":            pageLegal("terms"),
		"/privacy":          pageLegal("privacy"),

		navigation.LandingPath: pageDashboard,
		"/dashboard/store":     pageUser("store"),
		"/dashboard/cart":      pageUser("cart"),
		"/dashboard/profile":   pageUser("profile"),
		"/dashboard/chat":      pageChat,

		"/dashboard/coach/students":  pageCoach("students"),
		"/dashboard/coach/templates": pageCoach("templates"),
		"/dashboard/coach/articles":  pageCoach("articles"),

		"/dashboard/admin/users":     pageAdmin("users"),
		"/dashboard/admin/plans":     pageAdmin("plans"),
		"/dashboard/admin/discounts": pageAdmin("discounts"),
		"/dashboard/admin/articles":  pageAdmin("articles"),
		"/dashboard/admin/cms":       pageAdmin("cms"),
		"/dashboard/admin/settings":  pageAdmin("settings"),
		"/dashboard/admin/activity":  pageAdmin("activity"),
		"/dashboard/admin/perf":      pageAdmin("perf"),
	}
}

// PagePaths lists every routed page path in ascending order.
func PagePaths() []string {
	routes := pageRoutes()
	paths := make([]string, 0, len(routes))
	for p := range routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// newPageRouter builds the page router. Signed-in state comes from the session cookie.
func newPageRouter() *navigation.Router {
	return navigation.NewRouter(pageRoutes(), navigation.SessionFunc(func(ctx context.Context) (bool, error) {
		_, ok := middleware.GetSessionFromContext(ctx)
		return ok, nil
	}))
}

// handlePage dispatches a GET request through the page router.
// A failing root page answers 500 instead of redirecting to itself.
func handlePage(w http.ResponseWriter, r *http.Request) {
	loc := &httpLocation{path: r.URL.Path}
	ctx := context.WithValue(r.Context(), pageKey{}, pageRequest{w: w, r: r})
	res := pages.Dispatch(ctx, loc)
	if loc.target == "" {
		return
	}
	if res.Outcome == navigation.HandlerFailed {
		if loc.target == res.Path {
			internalError(w, res.Err)
			return
		}
		setFlash(w, "error", "That page could not be loaded.")
	}
	http.Redirect(w, r, loc.target, http.StatusSeeOther)
}

// perfWindow is how far back the admin perf page looks.
const perfWindow = time.Hour

// requireRole writes 403 unless the session has one of roles.
// Signed-out requests are sent to the root.
func requireRole(w http.ResponseWriter, r *http.Request, roles ...string) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, navigation.RootPath, http.StatusSeeOther)
		return sess, false
	}
	if !middleware.IsRole(r.Context(), roles...) {
		slog.Warn("auth_denied", "path", r.URL.Path, "username", sess.Username, "role", sess.Role)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return sess, false
	}
	return sess, true
}

// openTab clears the badge of tab and remembers it; failures are logged only.
func openTab(ctx context.Context, username, tab string) {
	if err := orchestrators.ExecuteOpenTab(ctx, username, tab, stores.NotificationStore, stores.UserDataStore); err != nil {
		slog.Warn("open_tab_failed", "username", username, "tab", tab, "error", err)
	}
}

// tabPaths maps badge tabs to the page that shows them.
var tabPaths = map[string]string{
	notification.TabProgram:  navigation.LandingPath,
	notification.TabChat:     "/dashboard/chat",
	notification.TabStudents: "/dashboard/coach/students",
}

func chatDeps() orchestrators.ChatDeps {
	return orchestrators.ChatDeps{
		UserDataStore: stores.UserDataStore,
		Notifier:      stores.NotificationStore,
		Now:           timeNow,
	}
}

// --- Public pages ---

func pageLanding(ctx context.Context) error {
	w, r := exchange(ctx)
	res, err := projections.QueryGetLanding(ctx, projections.GetLandingDeps{
		Settings: stores.SettingsStore,
		Plans:    stores.PlanStore,
		Articles: stores.ArticleStore,
		Accounts: stores.AccountStore,
		UserData: stores.UserDataStore,
	})
	if err != nil {
		return err
	}
	return renderTemplate(w, r, "landing.html", res)
}

func pageAuth(mode string) navigation.Handler {
	return func(ctx context.Context) error {
		w, r := exchange(ctx)
		if _, ok := middleware.GetSessionFromContext(ctx); ok {
			http.Redirect(w, r, navigation.LandingPath, http.StatusSeeOther)
			return nil
		}
		return renderTemplate(w, r, "auth.html", map[string]any{"Mode": mode})
	}
}

func pageLegal(kind string) navigation.Handler {
	return func(ctx context.Context) error {
		w, r := exchange(ctx)
		site, err := stores.SettingsStore.Get(ctx)
		if err != nil {
			return err
		}
		data := map[string]any{"Title": "Terms of Service", "Body": site.Content.Terms}
		if kind == "privacy" {
			data = map[string]any{"Title": "Privacy Policy", "Body": site.Content.PrivacyPolicy}
		}
		return renderTemplate(w, r, "legal.html", data)
	}
}

// handleArticlePage handles GET /magazine/{id}
func handleArticlePage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetArticle(r.Context(), r.PathValue("id"), stores.ArticleStore)
	if errors.Is(err, magazine.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if err := renderTemplate(w, r, "article.html", res); err != nil {
		internalError(w, err)
	}
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := stores.SettingsStore.Get(r.Context()); err != nil {
		slog.Error("healthz_failed", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// --- Dashboards ---

// pageDashboard renders the dashboard of the signed-in role.
func pageDashboard(ctx context.Context) error {
	w, r := exchange(ctx)
	sess, _ := middleware.GetSessionFromContext(ctx)
	switch sess.Role {
	case account.RoleAdmin:
		return renderAdmin(ctx, w, r, "overview")
	case account.RoleCoach:
		return renderCoach(ctx, w, r, sess, "overview")
	default:
		openTab(ctx, sess.Username, notification.TabProgram)
		return renderUser(ctx, w, r, sess, "overview")
	}
}

// userPage is the template data of the user dashboard.
type userPage struct {
	projections.GetUserDashboardResult
	Section    string
	Profile    userdata.Profile
	Cart       projections.GetCartResult
	ResumePath string
}

func pageUser(section string) navigation.Handler {
	return func(ctx context.Context) error {
		w, r := exchange(ctx)
		sess, ok := requireRole(w, r, account.RoleUser)
		if !ok {
			return nil
		}
		return renderUser(ctx, w, r, sess, section)
	}
}

func renderUser(ctx context.Context, w http.ResponseWriter, r *http.Request, sess middleware.Session, section string) error {
	res, err := projections.QueryGetUserDashboard(ctx, sess.Username, projections.GetUserDashboardDeps{
		UserData:      stores.UserDataStore,
		Notifications: stores.NotificationStore,
		Carts:         stores.CartStore,
		Plans:         stores.PlanStore,
		Accounts:      stores.AccountStore,
	})
	if err != nil {
		return err
	}
	page := userPage{GetUserDashboardResult: res, Section: section}
	if res.Data.Step1 != nil {
		page.Profile = *res.Data.Step1
	}
	if p := tabPaths[res.LastTab]; p != "" && p != r.URL.Path {
		page.ResumePath = p
	}
	if section == "cart" {
		page.Cart, err = projections.QueryGetCart(ctx, sess.Username, projections.GetCartDeps{
			Carts:     stores.CartStore,
			Discounts: stores.DiscountStore,
		})
		if err != nil {
			return err
		}
	}
	return renderTemplate(w, r, "dashboard_user.html", &page)
}

// chatPage is the template data of the chat view.
type chatPage struct {
	Student  string
	Messages []userdata.ChatMessage
	Error    string
}

// pageChat shows a conversation and marks the other side's messages read.
// Users see their own; coaches pass ?student=.
func pageChat(ctx context.Context) error {
	w, r := exchange(ctx)
	sess, ok := requireRole(w, r, account.RoleUser, account.RoleCoach)
	if !ok {
		return nil
	}
	student := sess.Username
	if sess.Role == account.RoleCoach {
		student = r.URL.Query().Get("student")
		if student == "" {
			http.Redirect(w, r, "/dashboard/coach/students", http.StatusSeeOther)
			return nil
		}
	}
	page := chatPage{Student: student}
	msgs, err := orchestrators.ExecuteReadChat(ctx, sess.Username, sess.Role, student, chatDeps(), stores.NotificationStore)
	switch {
	case err == nil:
		page.Messages = msgs
	case errors.Is(err, orchestrators.ErrNoCoach), errors.Is(err, orchestrators.ErrNoChatAccess),
		errors.Is(err, orchestrators.ErrNotYourPupil), errors.Is(err, orchestrators.ErrChatForbidden):
		page.Error = err.Error()
	default:
		return err
	}
	if err := stores.UserDataStore.SaveLastTab(ctx, sess.Username, notification.TabChat); err != nil {
		slog.Warn("open_tab_failed", "username", sess.Username, "error", err)
	}
	return renderTemplate(w, r, "chat.html", page)
}

// coachPage is the template data of the coach dashboard.
type coachPage struct {
	projections.GetCoachDashboardResult
	Section  string
	Articles []magazine.Article
}

func pageCoach(section string) navigation.Handler {
	return func(ctx context.Context) error {
		w, r := exchange(ctx)
		sess, ok := requireRole(w, r, account.RoleCoach)
		if !ok {
			return nil
		}
		if section == "students" {
			openTab(ctx, sess.Username, notification.TabStudents)
		}
		return renderCoach(ctx, w, r, sess, section)
	}
}

func renderCoach(ctx context.Context, w http.ResponseWriter, r *http.Request, sess middleware.Session, section string) error {
	res, err := projections.QueryGetCoachDashboard(ctx, sess.Username, projections.GetCoachDashboardDeps{
		Accounts:      stores.AccountStore,
		UserData:      stores.UserDataStore,
		Templates:     stores.TemplateStore,
		Catalog:       stores.CatalogStore,
		Notifications: stores.NotificationStore,
	})
	if err != nil {
		return err
	}
	page := coachPage{GetCoachDashboardResult: res, Section: section}
	if section == "articles" {
		all, err := stores.ArticleStore.List(ctx)
		if err != nil {
			return err
		}
		for _, a := range magazine.Newest(all) {
			if a.Author == sess.Username {
				page.Articles = append(page.Articles, a)
			}
		}
	}
	return renderTemplate(w, r, "dashboard_coach.html", &page)
}

// adminPage is the template data of the admin dashboard.
type adminPage struct {
	projections.GetAdminDashboardResult
	Section string
	NewPlan storeplan.Plan
	List    projections.UserList
	Perf    any
}

func pageAdmin(section string) navigation.Handler {
	return func(ctx context.Context) error {
		w, r := exchange(ctx)
		if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
			return nil
		}
		return renderAdmin(ctx, w, r, section)
	}
}

func renderAdmin(ctx context.Context, w http.ResponseWriter, r *http.Request, section string) error {
	res, err := projections.QueryGetAdminDashboard(ctx, projections.GetAdminDashboardDeps{
		Accounts:  stores.AccountStore,
		UserData:  stores.UserDataStore,
		Activity:  stores.ActivityStore,
		Plans:     stores.PlanStore,
		Discounts: stores.DiscountStore,
		Articles:  stores.ArticleStore,
		Settings:  stores.SettingsStore,
		Catalog:   stores.CatalogStore,
	})
	if err != nil {
		return err
	}
	page := adminPage{
		GetAdminDashboardResult: res,
		Section:                 section,
		NewPlan:                 storeplan.Plan{Access: []string{storeplan.AccessWorkout}},
	}
	if section == "users" {
		params := listutil.Parse(r.URL.Query(), projections.UserSortColumns, projections.UserFilterKeys)
		page.List = projections.ListUsers(res.Users, params)
	}
	if section == "perf" && perfCollector != nil {
		page.Perf = perfCollector.Snapshot(timeNow().Add(-perfWindow), 10)
	}
	return renderTemplate(w, r, "dashboard_admin.html", &page)
}
