package navigation

import (
	"context"
	"errors"
	"testing"
)

// fakeLocation records Replace calls.
type fakeLocation struct {
	path     string
	replaced []string
}

func (l *fakeLocation) Path() string { return l.path }

func (l *fakeLocation) Replace(path string) {
	l.replaced = append(l.replaced, path)
	l.path = path
}

func loggedIn(v bool) SessionChecker {
	return SessionFunc(func(context.Context) (bool, error) { return v, nil })
}

// counter returns a handler that counts its calls.
func counter(n *int) Handler {
	return func(context.Context) error {
		*n++
		return nil
	}
}

// TestPathOf tests fragment normalization.
func TestPathOf(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "/"},
		{"#", "/"},
		{"#/dashboard", "/dashboard"},
		{"/store?tab=2", "/store"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := PathOf(tt.in); got != tt.want {
			t.Errorf("PathOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestIsProtected verifies any path starting with the prefix is protected.
func TestIsProtected(t *testing.T) {
	tests := map[string]bool{
		"/dashboard":        true,
		"/dashboard/":       true,
		"/dashboard/store":  true,
		"/dashboardx":       true,
		"/dash":             false,
		"/":                 false,
		"/magazine/article": false,
	}
	for path, want := range tests {
		if got := IsProtected(path); got != want {
			t.Errorf("IsProtected(%q) = %v, want %v", path, got, want)
		}
	}
}

// TestDispatch_GuardA verifies protected paths without a session redirect to root and run no handler.
func TestDispatch_GuardA(t *testing.T) {
	for _, path := range []string{"/dashboard", "/dashboard/store", "#/dashboard/admin/users", "/dashboardx"} {
		t.Run(path, func(t *testing.T) {
			var dash, root, sub int
			r := NewRouter(Routes{
				"/":                      counter(&root),
				"/dashboard":             counter(&dash),
				"/dashboard/store":       counter(&sub),
				"/dashboard/admin/users": counter(&sub),
			}, loggedIn(false))
			loc := &fakeLocation{path: path}

			res := r.Dispatch(context.Background(), loc)

			if res.Outcome != RedirectedUnauthenticated || res.Redirect != RootPath {
				t.Errorf("result = %+v", res)
			}
			if dash+root+sub != 0 {
				t.Errorf("handlers ran: dash=%d root=%d sub=%d", dash, root, sub)
			}
			if len(loc.replaced) != 1 || loc.replaced[0] != "/" {
				t.Errorf("replaced = %v", loc.replaced)
			}
		})
	}
}

// TestDispatch_GuardB verifies the root with a session redirects to the landing path.
func TestDispatch_GuardB(t *testing.T) {
	var root int
	r := NewRouter(Routes{"/": counter(&root)}, loggedIn(true))
	for _, raw := range []string{"", "/", "#/"} {
		loc := &fakeLocation{path: raw}
		res := r.Dispatch(context.Background(), loc)
		if res.Outcome != RedirectedAuthenticated || loc.path != LandingPath {
			t.Errorf("Dispatch(%q) = %+v, location %q", raw, res, loc.path)
		}
	}
	if root != 0 {
		t.Errorf("root handler ran %d times", root)
	}
}

// TestDispatch_FallbackToRootHandler verifies unknown unprotected paths run the root handler.
func TestDispatch_FallbackToRootHandler(t *testing.T) {
	for _, session := range []bool{false, true} {
		var root int
		r := NewRouter(Routes{"/": counter(&root)}, loggedIn(session))
		loc := &fakeLocation{path: "/unknown-page"}

		res := r.Dispatch(context.Background(), loc)

		if res.Outcome != Handled || root != 1 {
			t.Errorf("session=%v: result %+v, root ran %d", session, res, root)
		}
		if len(loc.replaced) != 0 {
			t.Errorf("session=%v: unexpected redirect %v", session, loc.replaced)
		}
	}
}

// TestDispatch_NoHandler verifies an empty table logs and redirects to root.
func TestDispatch_NoHandler(t *testing.T) {
	r := NewRouter(Routes{}, loggedIn(false))
	loc := &fakeLocation{path: "/nowhere"}
	res := r.Dispatch(context.Background(), loc)
	if res.Outcome != NotFound || !errors.Is(res.Err, ErrRouteNotFound) || loc.path != "/" {
		t.Errorf("result = %+v, location %q", res, loc.path)
	}
}

// TestDispatch_HandlerFailure verifies errors and panics become a redirect to root.
func TestDispatch_HandlerFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		h    Handler
	}{
		{"error", func(context.Context) error { return boom }},
		{"panic", func(context.Context) error { panic("render exploded") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(Routes{"/store": tt.h}, loggedIn(false))
			loc := &fakeLocation{path: "/store"}

			res := r.Dispatch(context.Background(), loc)

			if res.Outcome != HandlerFailed || !errors.Is(res.Err, ErrHandlerFailure) {
				t.Errorf("result = %+v", res)
			}
			if loc.path != "/" {
				t.Errorf("location = %q, want /", loc.path)
			}
		})
	}
}

// TestDispatch_SessionErrorCountsAsLoggedOut verifies a failed marker read guards as signed out.
func TestDispatch_SessionErrorCountsAsLoggedOut(t *testing.T) {
	failing := SessionFunc(func(context.Context) (bool, error) { return true, errors.New("storage unavailable") })
	var dash int
	r := NewRouter(Routes{"/dashboard": counter(&dash)}, failing)
	loc := &fakeLocation{path: "/dashboard"}

	res := r.Dispatch(context.Background(), loc)

	if res.Outcome != RedirectedUnauthenticated || dash != 0 {
		t.Errorf("result = %+v, dash ran %d", res, dash)
	}
}

// TestDispatch_CancelledSkipsRedirect verifies a superseded dispatch does not move the location.
func TestDispatch_CancelledSkipsRedirect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRouter(Routes{"/store": func(context.Context) error {
		cancel()
		return errors.New("late failure")
	}}, loggedIn(false))
	loc := &fakeLocation{path: "/store"}

	res := r.Dispatch(ctx, loc)

	if res.Outcome != Superseded || len(loc.replaced) != 0 {
		t.Errorf("result = %+v, replaced %v", res, loc.replaced)
	}
}

// TestNewRouter_CopiesTable verifies later edits to the map do not leak in.
func TestNewRouter_CopiesTable(t *testing.T) {
	var a, b int
	routes := Routes{"/": counter(&a)}
	r := NewRouter(routes, loggedIn(false))
	routes["/"] = counter(&b)

	r.Dispatch(context.Background(), &fakeLocation{path: "/"})
	if a != 1 || b != 0 {
		t.Errorf("a=%d b=%d", a, b)
	}
}
