package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fitgympro/internal/adapters/email"
	"fitgympro/internal/adapters/http/middleware"
	"fitgympro/internal/adapters/storage/kv"
	planStore "fitgympro/internal/adapters/storage/storeplan"
	userdataStore "fitgympro/internal/adapters/storage/userdata"
	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/magazine"
	"fitgympro/internal/domain/storeplan"
	"fitgympro/internal/domain/userdata"
)

func init() {
	account.PasswordCost = bcrypt.MinCost
}

var testTime = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

const testPassword = "correct-horse-42"

// setup points the package globals at a fresh in-memory store.
func setup(t *testing.T) *email.NoopSender {
	t.Helper()
	backend := kv.NewMemoryStore()
	t.Cleanup(func() { backend.Close() })

	stores = NewKVStores(backend)
	pages = newPageRouter()
	mail := email.NewNoopSender()
	emailSender = mail
	timeNow = func() time.Time { return testTime }
	t.Cleanup(func() { timeNow = time.Now })
	return mail
}

// seedAccount stores an active account with testPassword and its signup data.
func seedAccount(t *testing.T, username, role string) account.User {
	t.Helper()
	ctx := context.Background()
	u := account.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		Status:   account.StatusActive,
		JoinDate: testTime,
	}
	if role == account.RoleCoach {
		u.CoachStatus = account.CoachStatusVerified
	}
	if err := u.SetPassword(testPassword); err != nil {
		t.Fatal(err)
	}
	if err := stores.AccountStore.Save(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := stores.UserDataStore.Save(ctx, username, userdata.ForSignup(username, u.Email, testTime)); err != nil {
		t.Fatal(err)
	}
	return u
}

// seedStudent gives username a coach and a paid plan with chat access.
func seedStudent(t *testing.T, username, coach string) {
	t.Helper()
	err := stores.UserDataStore.Update(context.Background(), username, func(d *userdata.Data) error {
		d.Step1.CoachName = coach
		d.Subscribe([]storeplan.Plan{testPlan()}, testTime)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func testPlan() storeplan.Plan {
	return storeplan.Plan{
		ID:     "gold",
		Name:   "Gold",
		Price:  1250000,
		Access: []string{storeplan.AccessWorkout, storeplan.AccessChat},
	}
}

func sessionFor(username, role string) *middleware.Session {
	return &middleware.Session{Token: "tok-" + username, Username: username, Role: role, CreatedAt: testTime}
}

// authRequest returns a request with the given session injected into context.
func authRequest(method, target string, form url.Values, sess *middleware.Session) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if sess != nil {
		req = req.WithContext(middleware.ContextWithSession(req.Context(), *sess))
	}
	return req
}

// getPage dispatches a GET through the page router.
func getPage(target string, sess *middleware.Session) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handlePage(rec, authRequest("GET", target, nil, sess))
	return rec
}

// flashOf decodes the flash cookie set on rec.
func flashOf(rec *httptest.ResponseRecorder) *Flash {
	for _, c := range rec.Result().Cookies() {
		if c.Name != flashCookieName || c.MaxAge < 0 {
			continue
		}
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(c)
		return popFlash(httptest.NewRecorder(), req)
	}
	return nil
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body %q)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

// TestPageTemplates_Parse verifies every embedded page parses with the layout.
func TestPageTemplates_Parse(t *testing.T) {
	all, err := pageTemplates()
	if err != nil {
		t.Fatalf("pageTemplates: %v", err)
	}
	for _, name := range []string{"landing.html", "auth.html", "legal.html", "article.html", "chat.html",
		"dashboard_user.html", "dashboard_coach.html", "dashboard_admin.html"} {
		if all[name] == nil {
			t.Errorf("missing template %s", name)
		}
	}
	if _, ok := all["layout.html"]; ok {
		t.Error("layout must not be a page")
	}
}

// TestHandlePage_Guards verifies the auth guards and role checks on GET pages.
func TestHandlePage_Guards(t *testing.T) {
	setup(t)
	seedAccount(t, "alice", account.RoleUser)
	seedAccount(t, "coachy", account.RoleCoach)
	seedAccount(t, "root", account.RoleAdmin)

	user := sessionFor("alice", account.RoleUser)
	coach := sessionFor("coachy", account.RoleCoach)
	admin := sessionFor("root", account.RoleAdmin)

	tests := []struct {
		name     string
		path     string
		sess     *middleware.Session
		status   int
		location string
		contains string
	}{
		{"anonymous landing", "/", nil, http.StatusOK, "", "Train smarter"},
		{"anonymous unknown path renders landing", "/nowhere", nil, http.StatusOK, "", "Train smarter"},
		{"anonymous dashboard", "/dashboard", nil, http.StatusSeeOther, "/", ""},
		{"anonymous admin page", "/dashboard/admin/users", nil, http.StatusSeeOther, "/", ""},
		{"signed-in root", "/", user, http.StatusSeeOther, "/dashboard", ""},
		{"signed-in login", "/login", user, http.StatusSeeOther, "/dashboard", ""},
		{"login form", "/login", nil, http.StatusOK, "", "Log in"},
		{"user dashboard", "/dashboard", user, http.StatusOK, "", "Hi alice"},
		{"coach dashboard", "/dashboard", coach, http.StatusOK, "", "Welcome, coach coachy"},
		{"admin dashboard", "/dashboard", admin, http.StatusOK, "", "Pending coaches"},
		{"user on admin page", "/dashboard/admin/users", user, http.StatusForbidden, "", ""},
		{"admin on coach page", "/dashboard/coach/students", admin, http.StatusForbidden, "", ""},
		{"coach on store", "/dashboard/store", coach, http.StatusForbidden, "", ""},
		{"admin settings", "/dashboard/admin/settings", admin, http.StatusOK, "", "Site settings"},
		{"user cart", "/dashboard/cart", user, http.StatusOK, "", "Your cart is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := getPage(tt.path, tt.sess)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.location != "" {
				assertRedirect(t, rec, tt.location)
			}
			if tt.contains != "" && !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body does not contain %q", tt.contains)
			}
		})
	}
}

type failingPlans struct{ planStore.Store }

func (failingPlans) List(context.Context) ([]storeplan.Plan, error) {
	return nil, errors.New("disk on fire")
}

// TestHandlePage_RootFailureIs500 verifies a failing root page does not redirect to itself.
func TestHandlePage_RootFailureIs500(t *testing.T) {
	setup(t)
	stores.PlanStore = failingPlans{}

	rec := getPage("/", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "disk on fire") {
		t.Error("internal error text leaked to the client")
	}
}

type failingUserData struct{ userdataStore.Store }

func (failingUserData) Get(context.Context, string) (userdata.Data, error) {
	return userdata.Data{}, errors.New("disk on fire")
}

// TestHandlePage_FailureRedirectsHome verifies a failing page sends the user to the root with a flash.
func TestHandlePage_FailureRedirectsHome(t *testing.T) {
	setup(t)
	seedAccount(t, "alice", account.RoleUser)
	stores.UserDataStore = failingUserData{Store: stores.UserDataStore}

	rec := getPage("/dashboard/store", sessionFor("alice", account.RoleUser))
	assertRedirect(t, rec, "/")
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("flash = %+v, want error", f)
	}
}

// TestHandlePage_ProgramTabClearsBadge verifies the dashboard visit clears the program badge.
func TestHandlePage_ProgramTabClearsBadge(t *testing.T) {
	setup(t)
	ctx := context.Background()
	seedAccount(t, "alice", account.RoleUser)
	stores.NotificationStore.Set(ctx, "alice", "program-content", "✨")

	rec := getPage("/dashboard", sessionFor("alice", account.RoleUser))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	notes, _ := stores.NotificationStore.Get(ctx, "alice")
	if notes.Has("program-content") {
		t.Error("program badge still set")
	}
	if tab, _ := stores.UserDataStore.LastTab(ctx, "alice"); tab != "program-content" {
		t.Errorf("last tab = %q", tab)
	}
}

// TestHandleArticlePage verifies articles render as Markdown and unknown ids are 404.
func TestHandleArticlePage(t *testing.T) {
	setup(t)
	stores.ArticleStore.Save(context.Background(), magazine.Article{
		ID: "a1", Title: "Deadlift basics", Category: "Training", Content: "Keep a **neutral** spine.",
		PublishDate: testTime, Author: "coachy",
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/magazine/a1", nil)
	req.SetPathValue("id", "a1")
	handleArticlePage(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Deadlift basics") || !strings.Contains(body, "<strong>neutral</strong>") {
		t.Errorf("body = %q", body)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/magazine/zzz", nil)
	req.SetPathValue("id", "zzz")
	handleArticlePage(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown article status = %d, want 404", rec.Code)
	}
}

// TestHandleHealthz verifies the health probe answers ok.
func TestHandleHealthz(t *testing.T) {
	setup(t)
	rec := httptest.NewRecorder()
	handleHealthz(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

// TestNewMux_ServesStaticAndHealth verifies the assembled handler serves assets and the probe.
func TestNewMux_ServesStaticAndHealth(t *testing.T) {
	backend := kv.NewMemoryStore()
	t.Cleanup(func() { backend.Close() })
	h := NewMux(NewKVStores(backend), Options{CSRFKey: make([]byte, 32)}, nil)

	for _, path := range []string{"/static/app.css", "/healthz", "/"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}
}

// TestFormatPrice verifies digit grouping.
func TestFormatPrice(t *testing.T) {
	if got := formatPrice(1250000); got != "1,250,000 Toman" {
		t.Errorf("formatPrice = %q", got)
	}
}

// TestAdminUsersPage_Filters verifies the user table honours the role filter.
func TestAdminUsersPage_Filters(t *testing.T) {
	setup(t)
	seedAccount(t, "alice", account.RoleUser)
	seedAccount(t, "coachy", account.RoleCoach)
	admin := sessionFor("root", account.RoleAdmin)

	rec := getPage("/dashboard/admin/users?role=coach", admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "coachy@example.com") || strings.Contains(body, "alice@example.com") {
		t.Errorf("role filter not applied: %q", body)
	}
	if !strings.Contains(body, "Showing 1–1 of 1") {
		t.Error("row counter missing")
	}
}
