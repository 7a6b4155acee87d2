package notification

import (
	"context"
	"fmt"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/notification"
)

// KVStore implements Store on the key-value store.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store}
}

// Get returns the user's badges. An absent record is an empty map.
func (s *KVStore) Get(ctx context.Context, username string) (domain.Map, error) {
	key, err := keyspace.Notifications(username)
	if err != nil {
		return domain.Map{}, err
	}
	m, err := kv.Load(ctx, s.kv, key.String(), domain.Map{})
	if err != nil {
		return domain.Map{}, fmt.Errorf("load notifications of %q: %w", username, err)
	}
	if m == nil {
		m = domain.Map{}
	}
	return m, nil
}

// Set places badge on tab for username.
func (s *KVStore) Set(ctx context.Context, username, tab, badge string) error {
	return s.update(ctx, username, func(m domain.Map) { m.Set(tab, badge) })
}

// Clear removes one badge. Clearing an absent badge is not an error.
func (s *KVStore) Clear(ctx context.Context, username, tab string) error {
	return s.update(ctx, username, func(m domain.Map) { m.Clear(tab) })
}

// ClearAll deletes the user's badge record.
func (s *KVStore) ClearAll(ctx context.Context, username string) error {
	key, err := keyspace.Notifications(username)
	if err != nil {
		return err
	}
	return s.kv.Delete(ctx, key.String())
}

func (s *KVStore) update(ctx context.Context, username string, fn func(m domain.Map)) error {
	key, err := keyspace.Notifications(username)
	if err != nil {
		return err
	}
	return kv.Update(ctx, s.kv, key.String(), domain.Map{}, func(m *domain.Map) error {
		if *m == nil {
			*m = domain.Map{}
		}
		fn(*m)
		return nil
	})
}
