package web

import (
	"errors"
	"log/slog"
	"net/http"

	"fitgympro/internal/adapters/http/middleware"
	"fitgympro/internal/application/orchestrators"
	"fitgympro/internal/domain/account"
	"fitgympro/internal/navigation"
)

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.LoginInput{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	deps := orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		SessionStore: stores.SessionStore,
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		redirectWith(w, r, "/login", "error", err.Error())
		return
	}

	middleware.SetSessionCookie(w, result.Token)
	redirectWith(w, r, navigation.LandingPath, "success", "Welcome back, "+result.Username+"!")
}

// handleSignup handles POST /signup
// A pending coach is not signed in and lands back on the login page.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.SignupInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		AsCoach:  r.FormValue("role") == "coach",
	}
	deps := orchestrators.SignupDeps{
		AccountStore:  stores.AccountStore,
		UserDataStore: stores.UserDataStore,
		SessionStore:  stores.SessionStore,
		Settings:      stores.SettingsStore,
		Activity:      stores.ActivityStore,
		Sender:        emailSender,
		Now:           timeNow,
	}

	result, err := orchestrators.ExecuteSignup(r.Context(), input, deps)
	if errors.Is(err, orchestrators.ErrAccountExists) {
		redirectWith(w, r, "/login", "error", err.Error())
		return
	}
	if err != nil {
		redirectWith(w, r, "/signup", "error", err.Error())
		return
	}

	if !result.LoggedIn {
		redirectWith(w, r, "/login", "success", "Your coach application was received. You can log in once an admin approves it.")
		return
	}
	middleware.SetSessionCookie(w, result.Token)
	redirectWith(w, r, navigation.LandingPath, "success", "Welcome to FitGym Pro, "+result.User.Username+"!")
}

// handleForgotPassword handles POST /forgot-password
// The reply is the same whether or not the address is registered.
func handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	deps := orchestrators.ForgotPasswordDeps{
		AccountStore: stores.AccountStore,
		Settings:     stores.SettingsStore,
		Sender:       emailSender,
	}
	if err := orchestrators.ExecuteForgotPassword(r.Context(), r.FormValue("email"), deps); err != nil {
		redirectWith(w, r, "/forgot-password", "error", err.Error())
		return
	}
	redirectWith(w, r, "/login", "success", "If that address is registered, a reset email is on its way.")
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if ok {
		deps := orchestrators.LogoutDeps{SessionStore: stores.SessionStore}
		if err := orchestrators.ExecuteLogout(r.Context(), sess.Username, sess.Token, deps); err != nil {
			slog.Warn("logout_failed", "username", sess.Username, "error", err)
		}
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, navigation.RootPath, http.StatusSeeOther)
}

// handleChangePassword handles POST /password
// Every session of the user ends, so the browser signs in again.
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, navigation.RootPath, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	back := navigation.LandingPath
	if sess.Role == account.RoleUser {
		back = "/dashboard/profile"
	}
	if r.FormValue("new_password") != r.FormValue("confirm_password") {
		redirectWith(w, r, back, "error", "New passwords do not match.")
		return
	}

	input := orchestrators.ChangePasswordInput{
		Username:        sess.Username,
		CurrentPassword: r.FormValue("current_password"),
		NewPassword:     r.FormValue("new_password"),
	}
	deps := orchestrators.ChangePasswordDeps{
		AccountStore: stores.AccountStore,
		Sessions:     stores.SessionStore,
	}
	if err := orchestrators.ExecuteChangePassword(r.Context(), input, deps); err != nil {
		redirectWith(w, r, back, "error", err.Error())
		return
	}

	middleware.ClearSessionCookie(w)
	redirectWith(w, r, "/login", "success", "Password changed. Please log in again.")
}
