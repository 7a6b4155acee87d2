package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fitgympro/internal/adapters/http/middleware"
	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/discount"
	"fitgympro/internal/domain/settings"
	"fitgympro/internal/domain/userdata"
)

// sessionCookie returns the session cookie set on rec, if any.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

// TestHandleLogin verifies bad credentials flash an error and good ones set a live session cookie.
func TestHandleLogin(t *testing.T) {
	setup(t)
	seedAccount(t, "alice", account.RoleUser)

	rec := httptest.NewRecorder()
	handleLogin(rec, authRequest("POST", "/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}}, nil))
	assertRedirect(t, rec, "/login")
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("flash = %+v, want error", f)
	}
	if sessionCookie(rec) != nil {
		t.Error("failed login must not set a session")
	}

	rec = httptest.NewRecorder()
	handleLogin(rec, authRequest("POST", "/login", url.Values{"username": {"alice"}, "password": {testPassword}}, nil))
	assertRedirect(t, rec, "/dashboard")
	c := sessionCookie(rec)
	if c == nil || c.Value == "" {
		t.Fatal("no session cookie")
	}
	m, err := stores.SessionStore.Get(context.Background(), c.Value)
	if err != nil || m.Username != "alice" || m.Role != account.RoleUser {
		t.Errorf("session = %+v, %v", m, err)
	}
}

// TestHandleSignup verifies users are signed in, coaches wait for approval and duplicates go to login.
func TestHandleSignup(t *testing.T) {
	setup(t)

	rec := httptest.NewRecorder()
	handleSignup(rec, authRequest("POST", "/signup", url.Values{
		"username": {"bob"}, "email": {"bob@example.com"}, "password": {testPassword}, "role": {"user"},
	}, nil))
	assertRedirect(t, rec, "/dashboard")
	if sessionCookie(rec) == nil {
		t.Error("new user should be signed in")
	}

	rec = httptest.NewRecorder()
	handleSignup(rec, authRequest("POST", "/signup", url.Values{
		"username": {"carla"}, "email": {"carla@example.com"}, "password": {testPassword}, "role": {"coach"},
	}, nil))
	assertRedirect(t, rec, "/login")
	if sessionCookie(rec) != nil {
		t.Error("pending coach must not be signed in")
	}
	u, err := stores.AccountStore.GetByUsername(context.Background(), "carla")
	if err != nil || u.CoachStatus != account.CoachStatusPending {
		t.Errorf("coach = %+v, %v", u, err)
	}

	rec = httptest.NewRecorder()
	handleSignup(rec, authRequest("POST", "/signup", url.Values{
		"username": {"bob"}, "email": {"other@example.com"}, "password": {testPassword},
	}, nil))
	assertRedirect(t, rec, "/login")
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("flash = %+v, want error", f)
	}

	rec = httptest.NewRecorder()
	handleSignup(rec, authRequest("POST", "/signup", url.Values{
		"username": {"x"}, "email": {"nope"}, "password": {"1"},
	}, nil))
	assertRedirect(t, rec, "/signup")
}

// TestHandleLogout verifies the session is deleted and the cookie expired.
func TestHandleLogout(t *testing.T) {
	setup(t)
	ctx := context.Background()
	token, err := stores.SessionStore.Create(ctx, "alice", account.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	sess := &middleware.Session{Token: token, Username: "alice", Role: account.RoleUser}

	rec := httptest.NewRecorder()
	handleLogout(rec, authRequest("POST", "/logout", url.Values{}, sess))
	assertRedirect(t, rec, "/")
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Errorf("cookie = %+v, want expired", c)
	}
	if _, err := stores.SessionStore.Get(ctx, token); err == nil {
		t.Error("session still valid after logout")
	}
}

// TestHandleForgotPassword verifies known and unknown emails get the same answer.
func TestHandleForgotPassword(t *testing.T) {
	mail := setup(t)
	seedAccount(t, "alice", account.RoleUser)

	for _, addr := range []string{"alice@example.com", "ghost@example.com"} {
		rec := httptest.NewRecorder()
		handleForgotPassword(rec, authRequest("POST", "/forgot-password", url.Values{"email": {addr}}, nil))
		assertRedirect(t, rec, "/login")
	}
	if sent := mail.Sent(); len(sent) != 1 || sent[0].To[0] != "alice@example.com" {
		t.Errorf("sent = %+v, want one mail to alice", sent)
	}
}

// TestHandleChangePassword verifies mismatched confirmation is refused and success signs out.
func TestHandleChangePassword(t *testing.T) {
	setup(t)
	seedAccount(t, "alice", account.RoleUser)
	sess := sessionFor("alice", account.RoleUser)

	rec := httptest.NewRecorder()
	handleChangePassword(rec, authRequest("POST", "/password", url.Values{
		"current_password": {testPassword}, "new_password": {"brand-new-pass"}, "confirm_password": {"different"},
	}, sess))
	assertRedirect(t, rec, "/dashboard/profile")

	rec = httptest.NewRecorder()
	handleChangePassword(rec, authRequest("POST", "/password", url.Values{
		"current_password": {testPassword}, "new_password": {"brand-new-pass"}, "confirm_password": {"brand-new-pass"},
	}, sess))
	assertRedirect(t, rec, "/login")

	u, _ := stores.AccountStore.GetByUsername(context.Background(), "alice")
	if err := u.CheckPassword("brand-new-pass"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

// TestRoleChecks verifies POST handlers refuse anonymous and wrong-role callers.
func TestRoleChecks(t *testing.T) {
	setup(t)
	user := sessionFor("alice", account.RoleUser)
	coach := sessionFor("coachy", account.RoleCoach)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		sess    *middleware.Session
		want    int
	}{
		{"cart anonymous", handleCartAdd, nil, http.StatusSeeOther},
		{"cart as coach", handleCartAdd, coach, http.StatusForbidden},
		{"checkout as coach", handleCheckout, coach, http.StatusForbidden},
		{"admin action as user", handleAdminUserAction, user, http.StatusForbidden},
		{"settings as coach", handleAdminSettings, coach, http.StatusForbidden},
		{"plans as user", handleAdminSavePlan, user, http.StatusForbidden},
		{"catalogue as coach", handleAdminExercise, coach, http.StatusForbidden},
		{"article as user", handleSaveArticle, user, http.StatusForbidden},
		{"template as user", handleCoachSaveTemplate, user, http.StatusForbidden},
		{"deliver anonymous", handleCoachDeliverProgram, nil, http.StatusSeeOther},
		{"chat anonymous", handleChat, nil, http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, authRequest("POST", "/x", url.Values{}, tt.sess))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestCartFlow verifies add, discount and checkout through the handlers.
func TestCartFlow(t *testing.T) {
	setup(t)
	ctx := context.Background()
	seedAccount(t, "alice", account.RoleUser)
	seedAccount(t, "coachy", account.RoleCoach)
	stores.PlanStore.Save(ctx, testPlan())
	stores.UserDataStore.Update(ctx, "alice", func(d *userdata.Data) error {
		d.Step1.CoachName = "coachy"
		return nil
	})
	user := sessionFor("alice", account.RoleUser)

	rec := httptest.NewRecorder()
	handleCartAdd(rec, authRequest("POST", "/cart/add", url.Values{"plan_id": {"gold"}}, user))
	assertRedirect(t, rec, "/dashboard/cart")

	rec = httptest.NewRecorder()
	handleCartDiscount(rec, authRequest("POST", "/cart/discount", url.Values{"code": {"nope"}}, user))
	if f := flashOf(rec); f == nil || f.Message != "Invalid discount code." {
		t.Errorf("flash = %+v", f)
	}

	stores.DiscountStore.Update(ctx, func(tb discount.Table) error {
		tb["OFF10"] = discount.Discount{Type: discount.TypePercentage, Value: 10}
		return nil
	})
	rec = httptest.NewRecorder()
	handleCartDiscount(rec, authRequest("POST", "/cart/discount", url.Values{"code": {" off10 "}}, user))
	if f := flashOf(rec); f == nil || f.Kind != "success" {
		t.Errorf("flash = %+v, want success", f)
	}

	page := getPage("/dashboard/cart", user)
	if !strings.Contains(page.Body.String(), "1,125,000 Toman") {
		t.Error("cart page does not show the discounted total")
	}

	rec = httptest.NewRecorder()
	handleCheckout(rec, authRequest("POST", "/cart/checkout", url.Values{}, user))
	assertRedirect(t, rec, "/dashboard")
	if f := flashOf(rec); f == nil || !strings.Contains(f.Message, "1,125,000 Toman") {
		t.Errorf("flash = %+v", f)
	}

	c, _ := stores.CartStore.Get(ctx, "alice")
	if len(c.Items) != 0 {
		t.Errorf("cart not emptied: %+v", c)
	}
	d, _ := stores.UserDataStore.Get(ctx, "alice")
	if len(d.Subscriptions) != 1 || d.Subscriptions[0].Fulfilled {
		t.Errorf("subscriptions = %+v", d.Subscriptions)
	}
	notes, _ := stores.NotificationStore.Get(ctx, "coachy")
	if !notes.Has("students-content") {
		t.Error("coach was not badged")
	}
}

// TestHandleCheckout_EmptyCart verifies checkout of an empty cart is refused.
func TestHandleCheckout_EmptyCart(t *testing.T) {
	setup(t)
	seedAccount(t, "alice", account.RoleUser)

	rec := httptest.NewRecorder()
	handleCheckout(rec, authRequest("POST", "/cart/checkout", url.Values{}, sessionFor("alice", account.RoleUser)))
	assertRedirect(t, rec, "/dashboard/cart")
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("flash = %+v, want error", f)
	}
}

// TestHandleProfile verifies the intake form is stored and bad numbers are refused.
func TestHandleProfile(t *testing.T) {
	setup(t)
	seedAccount(t, "alice", account.RoleUser)
	seedAccount(t, "coachy", account.RoleCoach)
	user := sessionFor("alice", account.RoleUser)

	rec := httptest.NewRecorder()
	handleProfile(rec, authRequest("POST", "/profile", url.Values{
		"client_name": {"Alice A"}, "age": {"30"}, "weight": {"61.5"}, "training_days": {"4"}, "coach_name": {"coachy"},
	}, user))
	assertRedirect(t, rec, "/dashboard/profile")
	if f := flashOf(rec); f == nil || f.Kind != "success" {
		t.Fatalf("flash = %+v", f)
	}
	d, _ := stores.UserDataStore.Get(context.Background(), "alice")
	if d.Step1 == nil || d.Step1.ClientName != "Alice A" || d.Step1.Weight != 61.5 || d.CoachName() != "coachy" {
		t.Errorf("profile = %+v", d.Step1)
	}

	rec = httptest.NewRecorder()
	handleProfile(rec, authRequest("POST", "/profile", url.Values{"client_name": {"A"}, "training_days": {"9"}}, user))
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("flash = %+v, want error", f)
	}
}

// TestChat verifies a user message reaches the coach's view and badges the coach.
func TestChat(t *testing.T) {
	setup(t)
	ctx := context.Background()
	seedAccount(t, "alice", account.RoleUser)
	seedAccount(t, "coachy", account.RoleCoach)
	seedStudent(t, "alice", "coachy")

	rec := httptest.NewRecorder()
	handleChat(rec, authRequest("POST", "/chat", url.Values{"message": {"How many sets today?"}}, sessionFor("alice", account.RoleUser)))
	assertRedirect(t, rec, "/dashboard/chat")

	notes, _ := stores.NotificationStore.Get(ctx, "coachy")
	if !notes.Has("chat-content") {
		t.Fatal("coach has no chat badge")
	}

	page := getPage("/dashboard/chat?student=alice", sessionFor("coachy", account.RoleCoach))
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), "How many sets today?") {
		t.Fatalf("coach chat page = %d %q", page.Code, page.Body.String())
	}
	notes, _ = stores.NotificationStore.Get(ctx, "coachy")
	if notes.Has("chat-content") {
		t.Error("reading the chat should clear the badge")
	}

	rec = httptest.NewRecorder()
	handleChat(rec, authRequest("POST", "/chat", url.Values{"student": {"alice"}, "message": {"Four."}}, sessionFor("other", account.RoleCoach)))
	assertRedirect(t, rec, "/dashboard/chat?student=alice")
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("foreign coach flash = %+v, want error", f)
	}
}

// TestHandleOpenTab verifies the badge is cleared and the tab's page opens.
func TestHandleOpenTab(t *testing.T) {
	setup(t)
	ctx := context.Background()
	seedAccount(t, "alice", account.RoleUser)
	stores.NotificationStore.Set(ctx, "alice", "chat-content", "💬")

	rec := httptest.NewRecorder()
	handleOpenTab(rec, authRequest("POST", "/notifications/clear", url.Values{"tab": {"chat-content"}}, sessionFor("alice", account.RoleUser)))
	assertRedirect(t, rec, "/dashboard/chat")
	notes, _ := stores.NotificationStore.Get(ctx, "alice")
	if notes.Has("chat-content") {
		t.Error("badge not cleared")
	}
}

// TestHandleCoachDeliverProgram verifies a typed program reaches the student and fulfils the purchase.
func TestHandleCoachDeliverProgram(t *testing.T) {
	setup(t)
	ctx := context.Background()
	seedAccount(t, "alice", account.RoleUser)
	seedAccount(t, "coachy", account.RoleCoach)
	seedStudent(t, "alice", "coachy")

	rec := httptest.NewRecorder()
	handleCoachDeliverProgram(rec, authRequest("POST", "/coach/students/program", url.Values{
		"student": {"alice"}, "name": {"Week 1"}, "exercises": {"Squat | 3 | 10 | 90s\nBench Press | 3 | 8 | 2m"},
	}, sessionFor("coachy", account.RoleCoach)))
	assertRedirect(t, rec, "/dashboard/coach/students")
	if f := flashOf(rec); f == nil || f.Kind != "success" {
		t.Fatalf("flash = %+v", f)
	}

	d, _ := stores.UserDataStore.Get(ctx, "alice")
	if len(d.ProgramHistory) != 1 || len(d.ProgramHistory[0].Exercises) != 2 || d.NeedsProgram() {
		t.Errorf("data = %+v", d)
	}
	page := getPage("/dashboard", sessionFor("alice", account.RoleUser))
	if !strings.Contains(page.Body.String(), "Bench Press") {
		t.Error("user dashboard does not show the program")
	}
}

// TestCoachTemplates verifies a template can be saved, used for delivery and deleted.
func TestCoachTemplates(t *testing.T) {
	setup(t)
	ctx := context.Background()
	seedAccount(t, "alice", account.RoleUser)
	seedAccount(t, "coachy", account.RoleCoach)
	seedStudent(t, "alice", "coachy")
	coach := sessionFor("coachy", account.RoleCoach)

	rec := httptest.NewRecorder()
	handleCoachSaveTemplate(rec, authRequest("POST", "/coach/templates", url.Values{
		"name": {"Beginner A"}, "exercises": {"Goblet Squat | 3 | 12 | 60s"},
	}, coach))
	assertRedirect(t, rec, "/dashboard/coach/templates")

	rec = httptest.NewRecorder()
	handleCoachDeliverProgram(rec, authRequest("POST", "/coach/students/program", url.Values{
		"student": {"alice"}, "template": {"Beginner A"},
	}, coach))
	if f := flashOf(rec); f == nil || f.Kind != "success" {
		t.Fatalf("deliver flash = %+v", f)
	}
	d, _ := stores.UserDataStore.Get(ctx, "alice")
	if len(d.ProgramHistory) != 1 || d.ProgramHistory[0].Name != "Beginner A" {
		t.Errorf("programs = %+v", d.ProgramHistory)
	}

	rec = httptest.NewRecorder()
	handleCoachDeleteTemplate(rec, authRequest("POST", "/coach/templates/delete", url.Values{"name": {"Beginner A"}}, coach))
	tb, _ := stores.TemplateStore.Get(ctx)
	if len(tb) != 0 {
		t.Errorf("templates = %+v", tb)
	}
}

// TestHandleAdminUserAction verifies approving a coach verifies the account and emails them.
func TestHandleAdminUserAction(t *testing.T) {
	mail := setup(t)
	ctx := context.Background()
	u := seedAccount(t, "carla", account.RoleCoach)
	u.CoachStatus = account.CoachStatusPending
	stores.AccountStore.Save(ctx, u)

	rec := httptest.NewRecorder()
	handleAdminUserAction(rec, authRequest("POST", "/admin/users/action", url.Values{
		"username": {"carla"}, "action": {"approve"},
	}, sessionFor("root", account.RoleAdmin)))
	assertRedirect(t, rec, "/dashboard/admin/users")

	got, _ := stores.AccountStore.GetByUsername(ctx, "carla")
	if got.CoachStatus != account.CoachStatusVerified {
		t.Errorf("CoachStatus = %q", got.CoachStatus)
	}
	if len(mail.Sent()) != 1 {
		t.Errorf("sent %d mails, want 1", len(mail.Sent()))
	}

	rec = httptest.NewRecorder()
	handleAdminUserAction(rec, authRequest("POST", "/admin/users/action", url.Values{
		"username": {"carla"}, "action": {"explode"},
	}, sessionFor("root", account.RoleAdmin)))
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("flash = %+v, want error", f)
	}
}

// TestHandleAdminSettings verifies posted sections update only their fields.
func TestHandleAdminSettings(t *testing.T) {
	setup(t)
	ctx := context.Background()
	admin := sessionFor("root", account.RoleAdmin)
	base := settings.Defaults()
	base.Integrations.Webhooks = []settings.Webhook{{ID: "w1", URL: "https://hooks.example.com/a", Events: []string{"purchase"}}}
	stores.SettingsStore.Save(ctx, base)

	rec := httptest.NewRecorder()
	handleAdminSettings(rec, authRequest("POST", "/admin/settings", url.Values{
		"section": {"general"}, "site_name": {"Iron Temple"}, "maintenance_mode": {"on"},
	}, admin))
	assertRedirect(t, rec, "/dashboard/admin/settings")

	got, _ := stores.SettingsStore.Get(ctx)
	if got.SiteName != "Iron Temple" || !got.MaintenanceMode || got.AllowCoachRegistration {
		t.Errorf("settings = %+v", got)
	}
	if len(got.Integrations.Webhooks) != 1 || got.AccentColor != base.AccentColor {
		t.Error("fields outside the form were lost")
	}

	rec = httptest.NewRecorder()
	handleAdminSettings(rec, authRequest("POST", "/admin/settings", url.Values{"accent_color": {"green"}}, admin))
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("flash = %+v, want error", f)
	}

	page := getPage("/", nil)
	if !strings.Contains(page.Body.String(), "under maintenance") {
		t.Error("maintenance banner missing")
	}
}

// TestAdminCatalog verifies plans, discount codes and the exercise catalogue are editable.
func TestAdminCatalog(t *testing.T) {
	setup(t)
	ctx := context.Background()
	admin := sessionFor("root", account.RoleAdmin)

	rec := httptest.NewRecorder()
	handleAdminSavePlan(rec, authRequest("POST", "/admin/plans", url.Values{
		"name": {"Silver"}, "price": {"500000"}, "features": {"Program\n\nChat"}, "access": {"workout_plan", "chat"},
	}, admin))
	assertRedirect(t, rec, "/dashboard/admin/plans")
	plans, _ := stores.PlanStore.List(ctx)
	if len(plans) != 1 || plans[0].ID == "" || len(plans[0].Features) != 2 || len(plans[0].Access) != 2 {
		t.Fatalf("plans = %+v", plans)
	}

	rec = httptest.NewRecorder()
	handleAdminDeletePlan(rec, authRequest("POST", "/admin/plans/delete", url.Values{"plan_id": {plans[0].ID}}, admin))
	if plans, _ := stores.PlanStore.List(ctx); len(plans) != 0 {
		t.Errorf("plan not deleted: %+v", plans)
	}

	rec = httptest.NewRecorder()
	handleAdminSaveDiscount(rec, authRequest("POST", "/admin/discounts", url.Values{
		"code": {"summer"}, "type": {"fixed"}, "value": {"50000"},
	}, admin))
	if f := flashOf(rec); f == nil || f.Message != "Saved code SUMMER." {
		t.Errorf("flash = %+v", f)
	}

	rec = httptest.NewRecorder()
	handleAdminSaveDiscount(rec, authRequest("POST", "/admin/discounts", url.Values{
		"code": {"huge"}, "type": {"percentage"}, "value": {"150"},
	}, admin))
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("flash = %+v, want error", f)
	}

	rec = httptest.NewRecorder()
	handleAdminExercise(rec, authRequest("POST", "/admin/cms/exercises", url.Values{
		"op": {"add"}, "group": {"Core"}, "name": {"Dead Bug"},
	}, admin))
	if f := flashOf(rec); f == nil || f.Kind != "success" {
		t.Errorf("flash = %+v", f)
	}
	exs, _ := stores.CatalogStore.Exercises(ctx)
	found := false
	for _, n := range exs["Core"] {
		found = found || n == "Dead Bug"
	}
	if !found {
		t.Errorf("exercise missing: %+v", exs["Core"])
	}
}

// TestArticleAuthorship verifies coaches manage only their own articles.
func TestArticleAuthorship(t *testing.T) {
	setup(t)
	ctx := context.Background()
	coach := sessionFor("coachy", account.RoleCoach)

	rec := httptest.NewRecorder()
	handleSaveArticle(rec, authRequest("POST", "/admin/articles", url.Values{
		"title": {"Sleep and gains"}, "category": {"Recovery"}, "content": {"Sleep **eight** hours."},
	}, coach))
	assertRedirect(t, rec, "/dashboard/coach/articles")

	all, _ := stores.ArticleStore.List(ctx)
	if len(all) != 1 || all[0].Author != "coachy" {
		t.Fatalf("articles = %+v", all)
	}

	rec = httptest.NewRecorder()
	handleDeleteArticle(rec, authRequest("POST", "/admin/articles/delete", url.Values{"id": {all[0].ID}}, sessionFor("other", account.RoleCoach)))
	if f := flashOf(rec); f == nil || f.Kind != "error" {
		t.Errorf("foreign delete flash = %+v, want error", f)
	}

	rec = httptest.NewRecorder()
	handleDeleteArticle(rec, authRequest("POST", "/admin/articles/delete", url.Values{"id": {all[0].ID}}, sessionFor("root", account.RoleAdmin)))
	assertRedirect(t, rec, "/dashboard/admin/articles")
	if all, _ := stores.ArticleStore.List(ctx); len(all) != 0 {
		t.Errorf("article not deleted: %+v", all)
	}
}
