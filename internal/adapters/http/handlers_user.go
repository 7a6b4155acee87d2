package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fitgympro/internal/application/orchestrators"
	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/userdata"
	"fitgympro/internal/navigation"
)

const cartPath = "/dashboard/cart"

func cartDeps() orchestrators.CartDeps {
	return orchestrators.CartDeps{
		CartStore: stores.CartStore,
		Plans:     stores.PlanStore,
		Discounts: stores.DiscountStore,
	}
}

// handleCartAdd handles POST /cart/add
func handleCartAdd(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleUser)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	plan, err := orchestrators.ExecuteAddToCart(r.Context(), sess.Username, r.FormValue("plan_id"), cartDeps())
	if err != nil {
		redirectWith(w, r, "/dashboard/store", "error", err.Error())
		return
	}
	redirectWith(w, r, cartPath, "success", plan.Name+" added to your cart.")
}

// handleCartRemove handles POST /cart/remove
func handleCartRemove(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleUser)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	if err := orchestrators.ExecuteRemoveFromCart(r.Context(), sess.Username, r.FormValue("plan_id"), cartDeps()); err != nil {
		redirectWith(w, r, cartPath, "error", err.Error())
		return
	}
	redirectWith(w, r, cartPath, "success", "Item removed from your cart.")
}

// handleCartDiscount handles POST /cart/discount
// An unknown code is a normal outcome, not an error.
func handleCartDiscount(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleUser)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	applied, err := orchestrators.ExecuteApplyDiscount(r.Context(), sess.Username, r.FormValue("code"), cartDeps())
	switch {
	case err != nil:
		redirectWith(w, r, cartPath, "error", err.Error())
	case !applied:
		redirectWith(w, r, cartPath, "error", "Invalid discount code.")
	default:
		redirectWith(w, r, cartPath, "success", "Discount applied.")
	}
}

// handleCheckout handles POST /cart/checkout
func handleCheckout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleUser)
	if !ok {
		return
	}

	deps := orchestrators.CheckoutDeps{
		CartStore:     stores.CartStore,
		Discounts:     stores.DiscountStore,
		UserDataStore: stores.UserDataStore,
		Notifier:      stores.NotificationStore,
		Activity:      stores.ActivityStore,
		Now:           timeNow,
	}
	result, err := orchestrators.ExecuteCheckout(r.Context(), sess.Username, deps)
	if err != nil {
		redirectWith(w, r, cartPath, "error", err.Error())
		return
	}

	msg := "Payment of " + formatPrice(result.Totals.Total) + " received."
	if result.CoachName != "" {
		msg += " Coach " + result.CoachName + " will send your program soon."
	} else {
		msg += " Choose a coach in your profile to receive your program."
	}
	redirectWith(w, r, navigation.LandingPath, "success", msg)
}

// handleProfile handles POST /profile
func handleProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleUser)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	p := userdata.Profile{
		ClientName:   r.FormValue("client_name"),
		ClientEmail:  strings.TrimSpace(r.FormValue("client_email")),
		CoachName:    r.FormValue("coach_name"),
		Age:          formInt(r, "age"),
		Height:       formFloat(r, "height"),
		Weight:       formFloat(r, "weight"),
		Gender:       r.FormValue("gender"),
		TrainingGoal: r.FormValue("training_goal"),
		TrainingDays: formInt(r, "training_days"),
		Mobile:       strings.TrimSpace(r.FormValue("mobile")),
		Limitations:  r.FormValue("limitations"),
	}
	deps := orchestrators.UpdateProfileDeps{
		Accounts:      stores.AccountStore,
		UserDataStore: stores.UserDataStore,
		Activity:      stores.ActivityStore,
		Now:           timeNow,
	}
	if err := orchestrators.ExecuteUpdateProfile(r.Context(), sess.Username, p, deps); err != nil {
		redirectWith(w, r, "/dashboard/profile", "error", err.Error())
		return
	}
	redirectWith(w, r, "/dashboard/profile", "success", "Profile saved.")
}

// handleChat handles POST /chat
// Coaches name the conversation with the student field.
func handleChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleUser, account.RoleCoach)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	student := r.FormValue("student")
	back := "/dashboard/chat"
	if sess.Role == account.RoleCoach {
		back += "?student=" + url.QueryEscape(student)
	}

	input := orchestrators.SendChatInput{
		From:    sess.Username,
		Role:    sess.Role,
		Student: student,
		Message: r.FormValue("message"),
	}
	if _, err := orchestrators.ExecuteSendChat(r.Context(), input, chatDeps()); err != nil {
		redirectWith(w, r, back, "error", err.Error())
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// handleOpenTab handles POST /notifications/clear
func handleOpenTab(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleUser, account.RoleCoach)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	tab := r.FormValue("tab")
	if err := orchestrators.ExecuteOpenTab(r.Context(), sess.Username, tab, stores.NotificationStore, stores.UserDataStore); err != nil {
		redirectWith(w, r, navigation.LandingPath, "error", err.Error())
		return
	}
	target, ok := tabPaths[tab]
	if !ok {
		target = navigation.LandingPath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// formInt reads an optional integer field; blank or malformed reads as 0.
func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	return n
}

func formFloat(r *http.Request, key string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue(key)), 64)
	return f
}

func formInt64(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(key)), 10, 64)
	return n
}

// formLines splits a textarea into trimmed, non-empty lines.
func formLines(r *http.Request, key string) []string {
	var out []string
	for _, line := range strings.Split(r.FormValue(key), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
