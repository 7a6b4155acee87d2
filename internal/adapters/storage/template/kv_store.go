package template

import (
	"context"
	"fmt"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/template"
)

// KVStore implements Store on the key-value store.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store}
}

// Get returns every saved template keyed by name.
func (s *KVStore) Get(ctx context.Context) (domain.Table, error) {
	t, err := kv.Load(ctx, s.kv, keyspace.Templates().String(), domain.Table{})
	if err != nil {
		return domain.Table{}, fmt.Errorf("load templates: %w", err)
	}
	if t == nil {
		t = domain.Table{}
	}
	return t, nil
}

// Update applies fn to the table and saves it. fn errors abort the write.
func (s *KVStore) Update(ctx context.Context, fn func(t domain.Table) error) error {
	return kv.Update(ctx, s.kv, keyspace.Templates().String(), domain.Table{}, func(t *domain.Table) error {
		if *t == nil {
			*t = domain.Table{}
		}
		return fn(*t)
	})
}
