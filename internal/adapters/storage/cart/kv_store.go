package cart

import (
	"context"
	"fmt"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/cart"
)

// KVStore implements Store on the key-value store.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store}
}

// Get returns the user's cart, or an empty cart.
// PRE: username is non-empty
// POST: Items is never nil
func (s *KVStore) Get(ctx context.Context, username string) (domain.Cart, error) {
	key, err := keyspace.Cart(username)
	if err != nil {
		return domain.Empty(), err
	}
	c, err := kv.Load(ctx, s.kv, key.String(), domain.Empty())
	if err != nil {
		return domain.Empty(), fmt.Errorf("load cart of %q: %w", username, err)
	}
	if c.Items == nil {
		c.Items = domain.Empty().Items
	}
	return c, nil
}

// Save replaces the user's cart.
func (s *KVStore) Save(ctx context.Context, username string, value domain.Cart) error {
	key, err := keyspace.Cart(username)
	if err != nil {
		return err
	}
	if err := kv.Save(ctx, s.kv, key.String(), value); err != nil {
		return fmt.Errorf("save cart of %q: %w", username, err)
	}
	return nil
}

// Update applies fn to the stored cart and saves it. fn errors abort the write.
func (s *KVStore) Update(ctx context.Context, username string, fn func(c *domain.Cart) error) error {
	key, err := keyspace.Cart(username)
	if err != nil {
		return err
	}
	return kv.Update(ctx, s.kv, key.String(), domain.Empty(), fn)
}

// Clear empties the cart and drops its discount code.
// POST: Get returns domain.Empty()
func (s *KVStore) Clear(ctx context.Context, username string) error {
	return s.Save(ctx, username, domain.Empty())
}
