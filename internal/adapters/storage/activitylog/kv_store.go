package activitylog

import (
	"context"
	"fmt"
	"time"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/activity"
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

// List returns the log, newest first.
func (s *KVStore) List(ctx context.Context) ([]domain.Entry, error) {
	entries, err := kv.Load(ctx, s.kv, keyspace.ActivityLog().String(), []domain.Entry{})
	if err != nil {
		return nil, fmt.Errorf("load activity log: %w", err)
	}
	return entries, nil
}

// Add records message as the newest entry.
// POST: the log holds at most domain.MaxEntries entries
func (s *KVStore) Add(ctx context.Context, message string) error {
	err := kv.Update(ctx, s.kv, keyspace.ActivityLog().String(), []domain.Entry{}, func(entries *[]domain.Entry) error {
		*entries = domain.Prepend(*entries, message, s.now())
		return nil
	})
	if err != nil {
		return fmt.Errorf("add activity log entry: %w", err)
	}
	return nil
}
