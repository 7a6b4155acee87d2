package web

import (
	"net/http"
	"strings"

	"fitgympro/internal/application/orchestrators"
	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/cms"
	"fitgympro/internal/domain/discount"
	"fitgympro/internal/domain/magazine"
	"fitgympro/internal/domain/settings"
	"fitgympro/internal/domain/storeplan"
)

// handleAdminUserAction handles POST /admin/users/action
func handleAdminUserAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleAdmin)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.AdminUserActionInput{
		Actor:    sess.Username,
		Username: r.FormValue("username"),
		Action:   r.FormValue("action"),
	}
	deps := orchestrators.AdminUserActionDeps{
		AccountStore: stores.AccountStore,
		Sessions:     stores.SessionStore,
		Activity:     stores.ActivityStore,
		Sender:       emailSender,
	}
	user, err := orchestrators.ExecuteAdminUserAction(r.Context(), input, deps)
	if err != nil {
		redirectWith(w, r, "/dashboard/admin/users", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/admin/users", "success", "Updated "+user.Username+".")
}

// handleAdminUpdateUser handles POST /admin/users/update
func handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.AdminUpdateUserInput{
		Username:  r.FormValue("username"),
		Name:      r.FormValue("name"),
		Email:     r.FormValue("email"),
		Role:      r.FormValue("role"),
		CoachTier: r.FormValue("coach_tier"),
	}
	deps := orchestrators.AdminUpdateUserDeps{
		AccountStore:  stores.AccountStore,
		UserDataStore: stores.UserDataStore,
		Activity:      stores.ActivityStore,
	}
	if err := orchestrators.ExecuteAdminUpdateUser(r.Context(), input, deps); err != nil {
		redirectWith(w, r, "/dashboard/admin/users", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/admin/users", "success", "Saved "+input.Username+".")
}

// handleAdminSavePlan handles POST /admin/plans
// A blank plan_id creates a new plan.
func handleAdminSavePlan(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	plan := storeplan.Plan{
		ID:          strings.TrimSpace(r.FormValue("plan_id")),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       formInt64(r, "price"),
		Features:    formLines(r, "features"),
		Emoji:       strings.TrimSpace(r.FormValue("emoji")),
		Color:       strings.TrimSpace(r.FormValue("color")),
		Recommended: r.FormValue("recommended") == "on",
		Access:      r.Form["access"],
	}
	saved, err := orchestrators.ExecuteSavePlan(r.Context(), plan, orchestrators.SavePlanDeps{
		Plans:      stores.PlanStore,
		GenerateID: generateID,
	})
	if err != nil {
		redirectWith(w, r, "/dashboard/admin/plans", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/admin/plans", "success", "Saved plan "+saved.Name+".")
}

// handleAdminDeletePlan handles POST /admin/plans/delete
func handleAdminDeletePlan(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	if err := orchestrators.ExecuteDeletePlan(r.Context(), r.FormValue("plan_id"), stores.PlanStore); err != nil {
		redirectWith(w, r, "/dashboard/admin/plans", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/admin/plans", "success", "Plan deleted.")
}

// handleAdminSaveDiscount handles POST /admin/discounts
func handleAdminSaveDiscount(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	d := discount.Discount{Type: r.FormValue("type"), Value: formInt64(r, "value")}
	code, err := orchestrators.ExecuteSaveDiscount(r.Context(), r.FormValue("code"), d, stores.DiscountStore)
	if err != nil {
		redirectWith(w, r, "/dashboard/admin/discounts", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/admin/discounts", "success", "Saved code "+code+".")
}

// handleAdminDeleteDiscount handles POST /admin/discounts/delete
func handleAdminDeleteDiscount(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	if err := orchestrators.ExecuteDeleteDiscount(r.Context(), r.FormValue("code"), stores.DiscountStore); err != nil {
		redirectWith(w, r, "/dashboard/admin/discounts", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/admin/discounts", "success", "Code deleted.")
}

// articlesPath is where an editor manages articles.
func articlesPath(role string) string {
	if role == account.RoleCoach {
		return "/dashboard/coach/articles"
	}
	return "/dashboard/admin/articles"
}

// handleSaveArticle handles POST /admin/articles
// Admins edit any article; coaches only their own.
func handleSaveArticle(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleAdmin, account.RoleCoach)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	a := magazine.Article{
		ID:       strings.TrimSpace(r.FormValue("id")),
		Title:    r.FormValue("title"),
		Category: r.FormValue("category"),
		ImageURL: strings.TrimSpace(r.FormValue("image_url")),
		Content:  r.FormValue("content"),
	}
	editor := orchestrators.Editor{Username: sess.Username, Role: sess.Role}
	saved, err := orchestrators.ExecuteSaveArticle(r.Context(), editor, a, orchestrators.SaveArticleDeps{
		Articles:   stores.ArticleStore,
		GenerateID: generateID,
		Now:        timeNow,
	})
	if err != nil {
		redirectWith(w, r, articlesPath(sess.Role), "error", err.Error())
		return
	}
	redirectWith(w, r, articlesPath(sess.Role), "success", "Published \""+saved.Title+"\".")
}

// handleDeleteArticle handles POST /admin/articles/delete
func handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleAdmin, account.RoleCoach)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	editor := orchestrators.Editor{Username: sess.Username, Role: sess.Role}
	if err := orchestrators.ExecuteDeleteArticle(r.Context(), editor, r.FormValue("id"), stores.ArticleStore); err != nil {
		redirectWith(w, r, articlesPath(sess.Role), "error", err.Error())
		return
	}
	redirectWith(w, r, articlesPath(sess.Role), "success", "Article deleted.")
}

// handleAdminSettings handles POST /admin/settings
// Fields missing from the form keep their stored value; webhooks are not edited here.
func handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleAdmin)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	s, err := stores.SettingsStore.Get(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	applySettingsForm(r, &s)

	if err := orchestrators.ExecuteSaveSettings(r.Context(), sess.Username, s, stores.SettingsStore, stores.ActivityStore); err != nil {
		redirectWith(w, r, "/dashboard/admin/settings", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/admin/settings", "success", "Settings saved.")
}

func applySettingsForm(r *http.Request, s *settings.SiteSettings) {
	str := func(key string, dst *string) {
		if _, ok := r.PostForm[key]; ok {
			*dst = strings.TrimSpace(r.PostFormValue(key))
		}
	}
	str("site_name", &s.SiteName)
	str("logo_url", &s.LogoURL)
	str("accent_color", &s.AccentColor)
	str("instagram", &s.SocialMedia.Instagram)
	str("telegram", &s.SocialMedia.Telegram)
	str("youtube", &s.SocialMedia.YouTube)
	str("contact_email", &s.ContactInfo.Email)
	str("contact_phone", &s.ContactInfo.Phone)
	str("contact_address", &s.ContactInfo.Address)
	str("active_gateway", &s.Financial.ActiveGateway)
	str("zarinpal_key", &s.Integrations.PaymentGateways.Zarinpal)
	str("idpay_key", &s.Integrations.PaymentGateways.IDPay)
	if _, ok := r.PostForm["terms"]; ok {
		s.Content.Terms = r.PostFormValue("terms")
	}
	if _, ok := r.PostForm["privacy_policy"]; ok {
		s.Content.PrivacyPolicy = r.PostFormValue("privacy_policy")
	}
	if _, ok := r.PostForm["commission_rate"]; ok {
		s.Financial.CommissionRate = formFloat(r, "commission_rate")
	}
	if _, ok := r.PostForm["affiliate_rate"]; ok {
		s.Monetization.AffiliateSystem.CommissionRate = formFloat(r, "affiliate_rate")
	}
	// Checkboxes are only sent when ticked; the form marks its section with "section".
	if r.PostFormValue("section") == "general" {
		s.MaintenanceMode = r.PostFormValue("maintenance_mode") == "on"
		s.AllowCoachRegistration = r.PostFormValue("allow_coach_registration") == "on"
	}
	if r.PostFormValue("section") == "monetization" {
		s.Monetization.AffiliateSystem.Enabled = r.PostFormValue("affiliate_enabled") == "on"
	}
}

// handleAdminExercise handles POST /admin/cms/exercises
func handleAdminExercise(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	group, name := r.FormValue("group"), r.FormValue("name")
	var err error
	if r.FormValue("op") == "remove" {
		err = orchestrators.ExecuteRemoveExercise(r.Context(), group, name, stores.CatalogStore)
	} else {
		err = orchestrators.ExecuteAddExercise(r.Context(), group, name, stores.CatalogStore)
	}
	if err != nil {
		redirectWith(w, r, "/dashboard/admin/cms", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/admin/cms", "success", "Exercise catalogue updated.")
}

// handleAdminSupplement handles POST /admin/cms/supplements
func handleAdminSupplement(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, account.RoleAdmin); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	category := r.FormValue("category")
	var err error
	if r.FormValue("op") == "remove" {
		err = orchestrators.ExecuteRemoveSupplement(r.Context(), category, r.FormValue("name"), stores.CatalogStore)
	} else {
		item := cms.SupplementItem{
			Name:          strings.TrimSpace(r.FormValue("name")),
			DosageOptions: formLines(r, "dosage_options"),
			TimingOptions: formLines(r, "timing_options"),
			Note:          strings.TrimSpace(r.FormValue("note")),
		}
		err = orchestrators.ExecuteAddSupplement(r.Context(), category, item, stores.CatalogStore)
	}
	if err != nil {
		redirectWith(w, r, "/dashboard/admin/cms", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/admin/cms", "success", "Supplement catalogue updated.")
}
