package cart_test

import (
	"context"
	"errors"
	"testing"

	"fitgympro/internal/adapters/storage/cart"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/cart"
	"fitgympro/internal/domain/storeplan"
)

func newStore(t *testing.T) *cart.KVStore {
	t.Helper()
	s := kv.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return cart.NewKVStore(s)
}

// TestKVStore_DefaultEmpty verifies an absent cart reads as empty with no code.
func TestKVStore_DefaultEmpty(t *testing.T) {
	c, err := newStore(t).Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !c.IsEmpty() || c.Items == nil || c.DiscountCode != nil {
		t.Errorf("Get = %+v, want empty", c)
	}
}

// TestKVStore_UpdateClear tests adding items then clearing.
func TestKVStore_UpdateClear(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	plan := storeplan.Plan{ID: "p1", Name: "Basic", Price: 1000}

	if err := store.Update(ctx, "alice", func(c *domain.Cart) error { return c.Add(plan) }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	err := store.Update(ctx, "alice", func(c *domain.Cart) error { return c.Add(plan) })
	if !errors.Is(err, domain.ErrAlreadyInCart) {
		t.Errorf("duplicate add = %v", err)
	}
	c, _ := store.Get(ctx, "alice")
	if len(c.Items) != 1 {
		t.Errorf("Items = %+v", c.Items)
	}

	if err := store.Clear(ctx, "alice"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	c, _ = store.Get(ctx, "alice")
	if !c.IsEmpty() {
		t.Errorf("after Clear = %+v", c)
	}
}
