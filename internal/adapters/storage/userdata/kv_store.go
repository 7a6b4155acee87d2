package userdata

import (
	"context"
	"fmt"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/userdata"
)

// KVStore implements Store on the key-value store.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store}
}

// Get returns the user's data, or the zero Data when none is stored.
// PRE: username is non-empty
func (s *KVStore) Get(ctx context.Context, username string) (domain.Data, error) {
	key, err := keyspace.UserData(username)
	if err != nil {
		return domain.Data{}, err
	}
	d, err := kv.Load(ctx, s.kv, key.String(), domain.Data{})
	if err != nil {
		return domain.Data{}, fmt.Errorf("load data of %q: %w", username, err)
	}
	return d, nil
}

// Save replaces the user's data.
// PRE: username is non-empty
func (s *KVStore) Save(ctx context.Context, username string, value domain.Data) error {
	key, err := keyspace.UserData(username)
	if err != nil {
		return err
	}
	if err := kv.Save(ctx, s.kv, key.String(), value); err != nil {
		return fmt.Errorf("save data of %q: %w", username, err)
	}
	return nil
}

// Update applies fn to the stored data and saves it. fn errors abort the write.
func (s *KVStore) Update(ctx context.Context, username string, fn func(d *domain.Data) error) error {
	key, err := keyspace.UserData(username)
	if err != nil {
		return err
	}
	return kv.Update(ctx, s.kv, key.String(), domain.Data{}, fn)
}

// Delete removes every per-user record of username.
func (s *KVStore) Delete(ctx context.Context, username string) error {
	keys, err := keyspace.UserKeys(username)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k.String()); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

// LastTab returns the last dashboard tab the user opened, or "".
func (s *KVStore) LastTab(ctx context.Context, username string) (string, error) {
	key, err := keyspace.LastTab(username)
	if err != nil {
		return "", err
	}
	return kv.Load(ctx, s.kv, key.String(), "")
}

// SaveLastTab records the dashboard tab the user opened.
func (s *KVStore) SaveLastTab(ctx context.Context, username, tab string) error {
	key, err := keyspace.LastTab(username)
	if err != nil {
		return err
	}
	return kv.Save(ctx, s.kv, key.String(), tab)
}
