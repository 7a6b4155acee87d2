package session

import (
	"context"
	"errors"
	"time"
)

// TTL is how long a browser session stays valid.
const TTL = 24 * time.Hour

// ErrNoSession is returned for an unknown or expired token.
var ErrNoSession = errors.New("session not found")

// Marker is the record whose presence means a user is signed in.
type Marker struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether m is older than TTL at now.
func (m Marker) Expired(now time.Time) bool {
	return now.Sub(m.CreatedAt) > TTL
}

// Store persists session markers.
//
// Browser sessions are keyed by a random token. The current marker is a
// single well-known key naming the most recent sign-in; it is cleared only by
// the user it names.
type Store interface {
	Create(ctx context.Context, username, role string) (string, error)
	Get(ctx context.Context, token string) (Marker, error)
	Delete(ctx context.Context, token string) error
	DeleteUser(ctx context.Context, username string) (int, error)
	PurgeExpired(ctx context.Context) (int, error)

	SetCurrent(ctx context.Context, username, role string) error
	Current(ctx context.Context) (Marker, bool, error)
	ClearCurrent(ctx context.Context, username string) (bool, error)
}
