package storeplan

import (
	"context"
	"fmt"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/storeplan"
)

// KVStore implements Store on the key-value store.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store}
}

// List returns every plan in display order.
func (s *KVStore) List(ctx context.Context) ([]domain.Plan, error) {
	plans, err := kv.Load(ctx, s.kv, keyspace.StorePlans().String(), []domain.Plan{})
	if err != nil {
		return nil, fmt.Errorf("load store plans: %w", err)
	}
	return plans, nil
}

// Get retrieves a plan by ID.
// POST: Returns the plan or domain.ErrNotFound
func (s *KVStore) Get(ctx context.Context, id string) (domain.Plan, error) {
	plans, err := s.List(ctx)
	if err != nil {
		return domain.Plan{}, err
	}
	if i := domain.Find(plans, id); i >= 0 {
		return plans[i], nil
	}
	return domain.Plan{}, fmt.Errorf("plan %q: %w", id, domain.ErrNotFound)
}

// Save inserts or replaces the plan with the same ID.
// PRE: value has been validated
func (s *KVStore) Save(ctx context.Context, value domain.Plan) error {
	return kv.Update(ctx, s.kv, keyspace.StorePlans().String(), []domain.Plan{}, func(plans *[]domain.Plan) error {
		*plans = domain.Upsert(*plans, value)
		return nil
	})
}

// Delete removes the plan with id.
func (s *KVStore) Delete(ctx context.Context, id string) error {
	return kv.Update(ctx, s.kv, keyspace.StorePlans().String(), []domain.Plan{}, func(plans *[]domain.Plan) error {
		next, err := domain.Remove(*plans, id)
		if err != nil {
			return err
		}
		*plans = next
		return nil
	})
}
