package session

import "context"

// CurrentChecker reports signed-in state from the current marker.
type CurrentChecker struct {
	Store Store
}

// LoggedIn reports whether the current marker is present.
func (c CurrentChecker) LoggedIn(ctx context.Context) (bool, error) {
	_, ok, err := c.Store.Current(ctx)
	return ok, err
}
