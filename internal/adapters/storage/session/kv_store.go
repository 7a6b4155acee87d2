package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
)

// KVStore implements Store on the key-value store.
type KVStore struct {
	kv  kv.KV
	now func() time.Time
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store, now: time.Now}
}

// Create stores a new marker and returns its token.
// PRE: username and role are non-empty
// POST: Get(token) returns the marker until TTL elapses
func (s *KVStore) Create(ctx context.Context, username, role string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	key, err := keyspace.Session(token)
	if err != nil {
		return "", err
	}
	m := Marker{Username: username, Role: role, CreatedAt: s.now()}
	if err := kv.Save(ctx, s.kv, key.String(), m); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// Get retrieves the marker for token. Expired markers are deleted.
// POST: Returns ErrNoSession when the token is unknown or expired
func (s *KVStore) Get(ctx context.Context, token string) (Marker, error) {
	key, err := keyspace.Session(token)
	if err != nil {
		return Marker{}, ErrNoSession
	}
	raw, ok, err := s.kv.Get(ctx, key.String())
	if err != nil {
		return Marker{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return Marker{}, ErrNoSession
	}
	var m Marker
	if err := json.Unmarshal(raw, &m); err != nil || m.Username == "" {
		return Marker{}, ErrNoSession
	}
	if m.Expired(s.now()) {
		if err := s.kv.Delete(ctx, key.String()); err != nil {
			slog.Warn("session_expire_failed", "error", err)
		}
		return Marker{}, ErrNoSession
	}
	return m, nil
}

// Delete removes the marker for token. Unknown tokens are ignored.
func (s *KVStore) Delete(ctx context.Context, token string) error {
	key, err := keyspace.Session(token)
	if err != nil {
		return nil
	}
	return s.kv.Delete(ctx, key.String())
}

// DeleteUser removes every browser session of username.
// POST: Returns how many sessions were removed
func (s *KVStore) DeleteUser(ctx context.Context, username string) (int, error) {
	keys, err := s.kv.Keys(ctx, keyspace.SessionFamily())
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	n := 0
	for _, k := range keys {
		m, err := kv.Load(ctx, s.kv, k, Marker{})
		if err != nil || m.Username != username {
			continue
		}
		if err := s.kv.Delete(ctx, k); err != nil {
			return n, fmt.Errorf("delete session: %w", err)
		}
		n++
	}
	return n, nil
}

// PurgeExpired deletes every browser session older than TTL and any record
// that no longer decodes.
// POST: Returns how many sessions were removed
func (s *KVStore) PurgeExpired(ctx context.Context) (int, error) {
	keys, err := s.kv.Keys(ctx, keyspace.SessionFamily())
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	now := s.now()
	n := 0
	for _, k := range keys {
		m, err := kv.Load(ctx, s.kv, k, Marker{})
		if err == nil && m.Username != "" && !m.Expired(now) {
			continue
		}
		if err := s.kv.Delete(ctx, k); err != nil {
			return n, fmt.Errorf("delete session: %w", err)
		}
		n++
	}
	return n, nil
}

// SetCurrent writes the current marker.
func (s *KVStore) SetCurrent(ctx context.Context, username, role string) error {
	m := Marker{Username: username, Role: role, CreatedAt: s.now()}
	return kv.Update(ctx, s.kv, keyspace.SessionMarker().String(), Marker{}, func(cur *Marker) error {
		*cur = m
		return nil
	})
}

// Current returns the current marker, if one is present.
func (s *KVStore) Current(ctx context.Context) (Marker, bool, error) {
	raw, ok, err := s.kv.Get(ctx, keyspace.SessionMarker().String())
	if err != nil || !ok {
		return Marker{}, false, err
	}
	var m Marker
	if err := json.Unmarshal(raw, &m); err != nil {
		return Marker{}, false, fmt.Errorf("decode session marker: %w", err)
	}
	return m, true, nil
}

// ClearCurrent deletes the current marker when it names username, so one
// user signing out leaves another user's later sign-in in place.
// POST: Returns whether the marker was removed
func (s *KVStore) ClearCurrent(ctx context.Context, username string) (bool, error) {
	return kv.DeleteIf(ctx, s.kv, keyspace.SessionMarker().String(), func(m Marker) bool {
		return strings.EqualFold(m.Username, username)
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
