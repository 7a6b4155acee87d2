package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fitgympro/internal/adapters/storage/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// Session represents an authenticated browser session.
type Session struct {
	Token     string
	Username  string
	Role      string
	CreatedAt time.Time
}

// SessionCookieName is the cookie holding the session token.
const SessionCookieName = "fitgympro_session"

// SecureCookies marks session cookies Secure. Set in production.
var SecureCookies = false

// Auth returns middleware that resolves the session cookie against store and sets the session in context.
// It does NOT block unauthenticated requests; handlers check IsRole themselves.
// A cookie naming an unknown or expired session is cleared.
func Auth(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				m, err := store.Get(r.Context(), cookie.Value)
				switch {
				case err == nil:
					r = r.WithContext(ContextWithSession(r.Context(), Session{
						Token:     cookie.Value,
						Username:  m.Username,
						Role:      m.Role,
						CreatedAt: m.CreatedAt,
					}))
				case errors.Is(err, session.ErrNoSession):
					ClearSessionCookie(w)
				default:
					slog.Warn("session_lookup_failed", "path", r.URL.Path, "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(Session)
	return sess, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(session.TTL / time.Second),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// IsRole checks if the current session has one of the given roles.
func IsRole(ctx context.Context, roles ...string) bool {
	sess, ok := GetSessionFromContext(ctx)
	if !ok {
		return false
	}
	for _, r := range roles {
		if sess.Role == r {
			return true
		}
	}
	return false
}
