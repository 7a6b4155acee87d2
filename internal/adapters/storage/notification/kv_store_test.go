package notification_test

import (
	"context"
	"testing"

	"fitgympro/internal/adapters/storage/kv"
	"fitgympro/internal/adapters/storage/notification"
	domain "fitgympro/internal/domain/notification"
)

// TestKVStore_SetClear tests the badge lifecycle.
func TestKVStore_SetClear(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemoryStore()
	defer s.Close()
	store := notification.NewKVStore(s)

	if err := store.Set(ctx, "coach1", domain.TabStudents, domain.BadgeAlert); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "coach1", domain.TabChat, domain.BadgeChat); err != nil {
		t.Fatalf("Set: %v", err)
	}
	m, _ := store.Get(ctx, "coach1")
	if m[domain.TabStudents] != domain.BadgeAlert || len(m) != 2 {
		t.Errorf("Get = %v", m)
	}

	if err := store.Clear(ctx, "coach1", domain.TabStudents); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(ctx, "coach1", "unknown-tab"); err != nil {
		t.Fatalf("Clear(absent): %v", err)
	}
	m, _ = store.Get(ctx, "coach1")
	if m.Has(domain.TabStudents) || !m.Has(domain.TabChat) {
		t.Errorf("after Clear = %v", m)
	}

	if err := store.ClearAll(ctx, "coach1"); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	m, _ = store.Get(ctx, "coach1")
	if len(m) != 0 {
		t.Errorf("after ClearAll = %v", m)
	}
}
