package storeplan_test

import (
	"context"
	"errors"
	"testing"

	"fitgympro/internal/adapters/storage/kv"
	"fitgympro/internal/adapters/storage/storeplan"
	domain "fitgympro/internal/domain/storeplan"
)

// TestKVStore_CRUD tests plan persistence.
func TestKVStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemoryStore()
	defer s.Close()
	store := storeplan.NewKVStore(s)

	if plans, err := store.List(ctx); err != nil || len(plans) != 0 {
		t.Fatalf("List = %v, %v", plans, err)
	}
	if err := store.Save(ctx, domain.Plan{ID: "gold", Name: "Gold", Price: 500}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, domain.Plan{ID: "gold", Name: "Gold+", Price: 600}); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, err := store.Get(ctx, "gold")
	if err != nil || got.Name != "Gold+" {
		t.Errorf("Get = %+v, %v", got, err)
	}
	if err := store.Delete(ctx, "gold"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "gold"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
	if err := store.Delete(ctx, "gold"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete missing = %v", err)
	}
}
