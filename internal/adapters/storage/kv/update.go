package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// keyLocks serializes read-modify-write cycles on the same key within the process.
var keyLocks sync.Map // map[string]*sync.Mutex

func lockKey(key string) func() {
	m, _ := keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Update loads the record under key (def when absent), lets fn modify it and
// saves the result. When fn returns an error nothing is written.
// Concurrent Updates of one key in this process run one at a time.
func Update[T any](ctx context.Context, store KV, key string, def T, fn func(v *T) error) error {
	unlock := lockKey(key)
	defer unlock()

	v, err := Load(ctx, store, key, def)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	return Save(ctx, store, key, v)
}

// DeleteIf removes the record under key when match accepts it, holding the
// same per-key lock as Update. An absent key reports false.
func DeleteIf[T any](ctx context.Context, store KV, key string, match func(v T) bool) (bool, error) {
	unlock := lockKey(key)
	defer unlock()

	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	if !match(v) {
		return false, nil
	}
	return true, store.Delete(ctx, key)
}
