package navigation

import (
	"context"
	"log/slog"
	"sync"
)

// MaxRedirects bounds how many redirects one navigation follows.
// A route table where the landing page always fails would otherwise bounce
// between the root and the landing path forever.
const MaxRedirects = 8

// Navigator drives a Router from a History.
//
// Every dispatch takes a sequence number and cancels the context of the
// dispatch before it, so a handler that outlives a newer navigation cannot
// redirect the user afterwards.
type Navigator struct {
	history  *History
	sessions SessionChecker

	mu     sync.Mutex
	router *Router
	seq    uint64
	cancel context.CancelFunc
	last   Result
	unsub  func()
}

// NewNavigator creates a navigator over history.
func NewNavigator(history *History, sessions SessionChecker) *Navigator {
	return &Navigator{history: history, sessions: sessions}
}

// Init registers routes, dispatches the current path once and follows later
// history changes until Close.
// PRE: Init is called once
// POST: Returns the result of the initial dispatch
func (n *Navigator) Init(ctx context.Context, routes Routes) Result {
	n.mu.Lock()
	n.router = NewRouter(routes, n.sessions)
	n.unsub = n.history.Subscribe(func(path string) {
		n.dispatch(ctx, path)
	})
	n.mu.Unlock()
	return n.dispatch(ctx, n.history.Path())
}

// NavigateTo moves to path. A different path is pushed and dispatched through
// the history subscription; the current path is dispatched directly so the
// page re-renders after a state change that keeps the path.
// POST: Returns the result of the last dispatch this call caused
func (n *Navigator) NavigateTo(ctx context.Context, path string) Result {
	path = PathOf(path)
	if path != n.history.Path() {
		n.history.Push(path)
		return n.Last()
	}
	return n.dispatch(ctx, path)
}

// Last returns the result of the most recent completed dispatch.
func (n *Navigator) Last() Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// Close stops following history changes and cancels any running dispatch.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.unsub != nil {
		n.unsub()
		n.unsub = nil
	}
	if n.cancel != nil {
		n.cancel()
	}
}

// begin starts a new dispatch generation and cancels the previous one.
func (n *Navigator) begin(parent context.Context) (context.Context, uint64, *Router) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		n.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	n.seq++
	n.cancel = cancel
	return ctx, n.seq, n.router
}

func (n *Navigator) current(seq uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq == seq
}

// dispatch runs the router for path and follows its redirects.
// Redirects replace the history entry without re-notifying; the loop here
// plays the role of the change event, so a redirect to the path already
// current ends the navigation.
func (n *Navigator) dispatch(parent context.Context, path string) Result {
	ctx, seq, router := n.begin(parent)
	var res Result
	for hop := 0; ; hop++ {
		loc := &redirectRecorder{path: path}
		res = router.Dispatch(ctx, loc)
		if loc.target == "" || !n.current(seq) {
			break
		}
		if !n.history.replace(loc.target) {
			break
		}
		if hop == MaxRedirects {
			slog.Error("redirect_loop", "path", path, "target", loc.target, "hops", hop+1)
			break
		}
		path = loc.target
	}

	n.mu.Lock()
	if n.seq == seq {
		n.last = res
		n.cancel()
		n.cancel = nil
	}
	n.mu.Unlock()
	return res
}

// redirectRecorder is the Location handed to the router for one hop.
type redirectRecorder struct {
	path   string
	target string
}

func (l *redirectRecorder) Path() string        { return l.path }
func (l *redirectRecorder) Replace(path string) { l.target = path }
