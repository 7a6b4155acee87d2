package settings

import (
	"context"
	"fmt"
	"log/slog"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/settings"
)

// KVStore implements Store on the key-value store.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store}
}

// Get returns the saved settings merged over the defaults.
// A corrupt document is logged and the defaults are returned.
// POST: every field absent from the saved document holds its default
func (s *KVStore) Get(ctx context.Context) (domain.SiteSettings, error) {
	raw, ok, err := s.kv.Get(ctx, keyspace.SiteSettings().String())
	if err != nil {
		return domain.Defaults(), fmt.Errorf("load site settings: %w", err)
	}
	if !ok {
		return domain.Defaults(), nil
	}
	settings, err := domain.Decode(raw)
	if err != nil {
		slog.Warn("site_settings_corrupt", "error", err)
	}
	return settings, nil
}

// Save replaces the settings document.
// PRE: value has been validated
func (s *KVStore) Save(ctx context.Context, value domain.SiteSettings) error {
	if err := kv.Save(ctx, s.kv, keyspace.SiteSettings().String(), value); err != nil {
		return fmt.Errorf("save site settings: %w", err)
	}
	return nil
}
