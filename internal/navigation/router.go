// Package navigation maps locations to page handlers behind two auth guards.
//
// Guard A keeps signed-out sessions out of the protected prefix. Guard B sends
// signed-in sessions from the root to the landing page. Every redirect replaces
// the current location instead of adding a history entry.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Well-known paths.
const (
	RootPath        = "/"
	ProtectedPrefix = "/dashboard"
	LandingPath     = "/dashboard"
)

// Routing errors. Both are logged by Dispatch and never returned to its caller.
var (
	ErrRouteNotFound  = errors.New("route not found")
	ErrHandlerFailure = errors.New("route handler failed")
)

// Handler renders one page.
type Handler func(ctx context.Context) error

// Routes maps an exact path to its handler.
type Routes map[string]Handler

// SessionChecker reports whether the Session Marker is present.
type SessionChecker interface {
	LoggedIn(ctx context.Context) (bool, error)
}

// SessionFunc adapts a function to SessionChecker.
type SessionFunc func(ctx context.Context) (bool, error)

// LoggedIn calls f.
func (f SessionFunc) LoggedIn(ctx context.Context) (bool, error) { return f(ctx) }

// Location is the current address being dispatched.
type Location interface {
	// Path returns the raw location, with or without a leading '#'.
	Path() string
	// Replace swaps the current entry for path without adding a new one.
	Replace(path string)
}

// Outcome says how a dispatch ended.
type Outcome int

const (
	// Handled means the resolved handler ran and returned nil.
	Handled Outcome = iota
	// RedirectedUnauthenticated means guard A sent the caller to the root.
	RedirectedUnauthenticated
	// RedirectedAuthenticated means guard B sent the caller to the landing path.
	RedirectedAuthenticated
	// HandlerFailed means the handler errored or panicked and the caller was sent to the root.
	HandlerFailed
	// NotFound means no handler resolved and the caller was sent to the root.
	NotFound
	// Superseded means a newer dispatch started; this one made no redirect.
	Superseded
)

func (o Outcome) String() string {
	switch o {
	case Handled:
		return "handled"
	case RedirectedUnauthenticated:
		return "redirected_unauthenticated"
	case RedirectedAuthenticated:
		return "redirected_authenticated"
	case HandlerFailed:
		return "handler_failed"
	case NotFound:
		return "not_found"
	case Superseded:
		return "superseded"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes one dispatch.
type Result struct {
	Path     string
	Outcome  Outcome
	Redirect string // empty when no redirect was made
	Err      error
}

// Router resolves paths against a fixed route table.
// It keeps no state between dispatches.
type Router struct {
	routes   Routes
	sessions SessionChecker
}

// NewRouter creates a router over routes. The table is copied.
// PRE: sessions is non-nil
func NewRouter(routes Routes, sessions SessionChecker) *Router {
	table := make(Routes, len(routes))
	for p, h := range routes {
		table[p] = h
	}
	return &Router{routes: table, sessions: sessions}
}

// PathOf extracts the path from a raw location.
// The leading '#' and any query are dropped; an empty path is the root.
func PathOf(raw string) string {
	p := strings.TrimPrefix(raw, "#")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return RootPath
	}
	return p
}

// IsProtected reports whether path starts with the protected prefix.
// Matching is by string prefix, so "/dashboardx" is protected too.
func IsProtected(path string) bool {
	return strings.HasPrefix(path, ProtectedPrefix)
}

// Dispatch runs the routing algorithm once for loc.
// At most one handler runs. Handler errors and panics are logged and turned
// into a redirect to the root; they never reach the caller.
// When ctx is cancelled before a redirect, the redirect is skipped.
// POST: loc.Replace is called at most once
func (r *Router) Dispatch(ctx context.Context, loc Location) Result {
	path := PathOf(loc.Path())
	res := Result{Path: path}

	loggedIn, err := r.sessions.LoggedIn(ctx)
	if err != nil {
		slog.Warn("session_check_failed", "path", path, "error", err)
		loggedIn = false
	}

	if IsProtected(path) && !loggedIn {
		res.Outcome = RedirectedUnauthenticated
		return r.redirect(ctx, loc, res, RootPath)
	}
	if path == RootPath && loggedIn {
		res.Outcome = RedirectedAuthenticated
		return r.redirect(ctx, loc, res, LandingPath)
	}

	h, ok := r.routes[path]
	if !ok {
		h, ok = r.routes[RootPath]
	}
	if !ok {
		res.Outcome = NotFound
		res.Err = fmt.Errorf("%w: %s", ErrRouteNotFound, path)
		slog.Warn("route_not_found", "path", path)
		return r.redirect(ctx, loc, res, RootPath)
	}

	if err := invoke(ctx, h); err != nil {
		res.Outcome = HandlerFailed
		res.Err = err
		slog.Error("route_handler_failed", "path", path, "error", err)
		return r.redirect(ctx, loc, res, RootPath)
	}
	res.Outcome = Handled
	return res
}

func (r *Router) redirect(ctx context.Context, loc Location, res Result, target string) Result {
	if ctx.Err() != nil {
		slog.Debug("dispatch_superseded", "path", res.Path, "outcome", res.Outcome.String())
		res.Outcome = Superseded
		return res
	}
	loc.Replace(target)
	res.Redirect = target
	return res
}

func invoke(ctx context.Context, h Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic: %v", ErrHandlerFailure, rec)
		}
	}()
	if err := h(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrHandlerFailure, err)
	}
	return nil
}
