package cms

import (
	"context"
	"fmt"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/cms"
)

// KVStore implements Store on the key-value store.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store}
}

// Exercises returns the exercise table, empty when never saved.
func (s *KVStore) Exercises(ctx context.Context) (domain.Exercises, error) {
	e, err := kv.Load(ctx, s.kv, keyspace.Exercises().String(), domain.Exercises{})
	if err != nil {
		return domain.Exercises{}, fmt.Errorf("load exercises: %w", err)
	}
	if e == nil {
		e = domain.Exercises{}
	}
	return e, nil
}

// UpdateExercises applies fn to the exercise table and saves it.
func (s *KVStore) UpdateExercises(ctx context.Context, fn func(e *domain.Exercises) error) error {
	return kv.Update(ctx, s.kv, keyspace.Exercises().String(), domain.Exercises{}, func(e *domain.Exercises) error {
		if *e == nil {
			*e = domain.Exercises{}
		}
		return fn(e)
	})
}

// Supplements returns the supplement table, empty when never saved.
func (s *KVStore) Supplements(ctx context.Context) (domain.Supplements, error) {
	sup, err := kv.Load(ctx, s.kv, keyspace.Supplements().String(), domain.Supplements{})
	if err != nil {
		return domain.Supplements{}, fmt.Errorf("load supplements: %w", err)
	}
	if sup == nil {
		sup = domain.Supplements{}
	}
	return sup, nil
}

// UpdateSupplements applies fn to the supplement table and saves it.
func (s *KVStore) UpdateSupplements(ctx context.Context, fn func(s *domain.Supplements) error) error {
	return kv.Update(ctx, s.kv, keyspace.Supplements().String(), domain.Supplements{}, func(sup *domain.Supplements) error {
		if *sup == nil {
			*sup = domain.Supplements{}
		}
		return fn(sup)
	})
}
