package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// State is the lifecycle state of the Store's connection.
type State int

const (
	StateUnopened State = iota
	StateOpening
	StateOpen
	StateClosed
)

// String returns the lower-case state name used in logs.
func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Storage errors. Callers match them with errors.Is.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTransactionFailure = errors.New("storage transaction failed")
	ErrStoreClosed        = errors.New("store is closed")
)

// Record is a stored JSON document.
type Record = json.RawMessage

// KV is the key-value interface used by every accessor.
// Both *Store and *TimedStore satisfy it.
type KV interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

var _ KV = (*Store)(nil)

// openAttempt is shared by every caller waiting on the same in-flight open.
type openAttempt struct {
	done chan struct{}
	conn Conn
	err  error
}

// Store owns the single shared connection to the backend.
// The connection is opened on first use, reused until the backend signals a
// close or a version change, and then reopened on the next call.
type Store struct {
	opener Opener

	mu       sync.Mutex
	state    State
	conn     Conn
	gen      uint64
	inflight *openAttempt
	shutdown bool
}

// NewStore creates a Store in the Unopened state.
// PRE: opener is non-nil
// POST: No connection is opened until the first Get/Set/Delete
func NewStore(opener Opener) *Store {
	return &Store{opener: opener, state: StateUnopened}
}

// State reports the current connection state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// connection returns the open Conn, opening it when needed.
// INVARIANT: at most one open is in flight; concurrent callers share its result.
func (s *Store) connection(ctx context.Context) (Conn, error) {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	switch s.state {
	case StateOpen:
		conn := s.conn
		s.mu.Unlock()
		return conn, nil
	case StateOpening:
		attempt := s.inflight
		s.mu.Unlock()
		select {
		case <-attempt.done:
			return attempt.conn, attempt.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Unopened or Closed: start a fresh open.
	s.gen++
	gen := s.gen
	attempt := &openAttempt{done: make(chan struct{})}
	s.inflight = attempt
	s.state = StateOpening
	s.mu.Unlock()

	conn, err := s.opener.Open(ctx, Events{
		OnVersionChange: func() { s.invalidate(gen, "version_change") },
		OnClose:         func() { s.invalidate(gen, "closed_by_backend") },
	})

	s.mu.Lock()
	if err != nil {
		s.state = StateClosed
		s.conn = nil
		attempt.err = fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		slog.Error("kv_open_failed", "error", err)
	} else if s.shutdown || s.gen != gen {
		// Close() or an invalidation raced the open; do not publish this handle.
		_ = conn.Close()
		attempt.err = ErrStoreClosed
	} else {
		s.state = StateOpen
		s.conn = conn
		attempt.conn = conn
		slog.Debug("kv_opened", "generation", gen)
	}
	s.inflight = nil
	close(attempt.done)
	s.mu.Unlock()

	return attempt.conn, attempt.err
}

// invalidate drops the cached handle if it still belongs to generation gen.
func (s *Store) invalidate(gen uint64, reason string) {
	s.mu.Lock()
	if s.gen != gen || s.state != StateOpen {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.conn = nil
	s.state = StateClosed
	s.mu.Unlock()

	slog.Warn("kv_connection_closed", "reason", reason, "generation", gen)
	if reason == "version_change" && conn != nil {
		// Yield so the other process can finish its upgrade.
		_ = conn.Close()
	}
}

// Get returns the record stored under key.
// PRE: key is non-empty
// POST: Returns (record, true, nil) when present, (nil, false, nil) when absent
func (s *Store) Get(ctx context.Context, key string) (Record, bool, error) {
	conn, err := s.connection(ctx)
	if err != nil {
		return nil, false, err
	}
	value, ok, err := conn.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %q: %w", ErrTransactionFailure, key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return Record(value), true, nil
}

// Set JSON-encodes value and stores it under key, replacing any prior value.
// PRE: key is non-empty; value is JSON-serializable
// POST: Returns only after the write transaction committed
func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	conn, err := s.connection(ctx)
	if err != nil {
		return err
	}
	if err := conn.Put(ctx, key, data); err != nil {
		return fmt.Errorf("%w: set %q: %w", ErrTransactionFailure, key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key succeeds.
// PRE: key is non-empty
// POST: key is absent
func (s *Store) Delete(ctx context.Context, key string) error {
	conn, err := s.connection(ctx)
	if err != nil {
		return err
	}
	if err := conn.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: delete %q: %w", ErrTransactionFailure, key, err)
	}
	return nil
}

// Keys lists stored keys starting with prefix, in ascending order.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	conn, err := s.connection(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := conn.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: keys %q: %w", ErrTransactionFailure, prefix, err)
	}
	return keys, nil
}

// Close releases the connection. Later calls fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.shutdown = true
	s.gen++
	conn := s.conn
	s.conn = nil
	s.state = StateClosed
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Load decodes the record under key into a T, returning def when the key is absent.
func Load[T any](ctx context.Context, store KV, key string, def T) (T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def, fmt.Errorf("decode %q: %w", key, err)
	}
	return v, nil
}

// Save stores v under key. It exists for symmetry with Load at call sites.
func Save[T any](ctx context.Context, store KV, key string, v T) error {
	return store.Set(ctx, key, v)
}
