// Package keyspace builds the keys under which records are stored.
// Every key shape has one constructor; callers never concatenate key strings.
package keyspace

import (
	"errors"
	"strings"
)

// Prefix is shared by every key the application writes.
const Prefix = "fitgympro_"

// ErrEmptyUsername is returned by per-user constructors given a blank username.
var ErrEmptyUsername = errors.New("keyspace: username cannot be empty")

// ErrEmptyToken is returned by Session given a blank token.
var ErrEmptyToken = errors.New("keyspace: session token cannot be empty")

// Key is a fully built storage key. The zero Key is invalid.
type Key struct {
	s string
}

// String returns the stored key string.
func (k Key) String() string { return k.s }

// IsZero reports whether k was never built.
func (k Key) IsZero() bool { return k.s == "" }

func global(name string) Key { return Key{s: Prefix + name} }

// Global keys.
var (
	users            = global("users")
	discounts        = global("discounts")
	storePlans       = global("store_plans")
	exercises        = global("exercises")
	supplements      = global("supplements")
	magazineArticles = global("magazine_articles")
	siteSettings     = global("site_settings")
	activityLog      = global("activity_log")
	templates        = global("templates")
	sessionMarker    = global("last_user")
)

func Users() Key            { return users }
func Discounts() Key        { return discounts }
func StorePlans() Key       { return storePlans }
func Exercises() Key        { return exercises }
func Supplements() Key      { return supplements }
func MagazineArticles() Key { return magazineArticles }
func SiteSettings() Key     { return siteSettings }
func ActivityLog() Key      { return activityLog }
func Templates() Key        { return templates }

// SessionMarker is the single key whose presence means a user is signed in
// in the in-process (single session) mode.
func SessionMarker() Key { return sessionMarker }

// Per-user key families.
const (
	familyUserData      = "data_"
	familyCart          = "cart_"
	familyNotifications = "notifications_"
	familyLastTab       = "last_tab_"
	familySession       = "session_"
)

func perUser(family, username string) (Key, error) {
	if strings.TrimSpace(username) == "" {
		return Key{}, ErrEmptyUsername
	}
	return Key{s: Prefix + family + username}, nil
}

// UserData is the profile blob of one user.
// PRE: username is non-blank
func UserData(username string) (Key, error) { return perUser(familyUserData, username) }

// Cart is the shopping cart of one user.
// PRE: username is non-blank
func Cart(username string) (Key, error) { return perUser(familyCart, username) }

// Notifications is the badge map of one user.
// PRE: username is non-blank
func Notifications(username string) (Key, error) { return perUser(familyNotifications, username) }

// LastTab is the last dashboard tab one user visited.
// PRE: username is non-blank
func LastTab(username string) (Key, error) { return perUser(familyLastTab, username) }

// Session is the marker for one browser session.
// PRE: token is non-blank
func Session(token string) (Key, error) {
	if strings.TrimSpace(token) == "" {
		return Key{}, ErrEmptyToken
	}
	return Key{s: Prefix + familySession + token}, nil
}

// SessionFamily is the prefix shared by all browser session keys.
func SessionFamily() string { return Prefix + familySession }

// UserKeys returns every per-user key owned by username.
// PRE: username is non-blank
func UserKeys(username string) ([]Key, error) {
	var keys []Key
	for _, family := range []string{familyUserData, familyCart, familyNotifications, familyLastTab} {
		k, err := perUser(family, username)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
