package account

import (
	"context"
	"fmt"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/account"
)

// KVStore implements Store on the key-value store. All users live in one record.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store}
}

// List returns every user. An absent record is an empty list.
func (s *KVStore) List(ctx context.Context) ([]domain.User, error) {
	users, err := kv.Load(ctx, s.kv, keyspace.Users().String(), []domain.User{})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

// GetByUsername retrieves a user by exact username.
// PRE: username is non-empty
// POST: Returns the user or ErrNotFound
func (s *KVStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if i := domain.Find(users, username); i >= 0 {
		return users[i], nil
	}
	return domain.User{}, fmt.Errorf("%q: %w", username, ErrNotFound)
}

// GetByEmail retrieves a user by exact email.
func (s *KVStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if i := domain.FindByEmail(users, email); i >= 0 {
		return users[i], nil
	}
	return domain.User{}, fmt.Errorf("%q: %w", email, ErrNotFound)
}

// Save inserts or replaces the user with the same username.
// PRE: value has been validated
// POST: The user list contains value exactly once
func (s *KVStore) Save(ctx context.Context, value domain.User) error {
	return s.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		if i := domain.Find(users, value.Username); i >= 0 {
			users[i] = value
			return users, nil
		}
		return append(users, value), nil
	})
}

// Delete removes the user. Removing an unknown user returns ErrNotFound.
func (s *KVStore) Delete(ctx context.Context, username string) error {
	return s.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		i := domain.Find(users, username)
		if i < 0 {
			return nil, fmt.Errorf("%q: %w", username, ErrNotFound)
		}
		return append(users[:i:i], users[i+1:]...), nil
	})
}

// Update loads the list, applies fn and saves the result.
// When fn returns an error nothing is written.
func (s *KVStore) Update(ctx context.Context, fn func(users []domain.User) ([]domain.User, error)) error {
	err := kv.Update(ctx, s.kv, keyspace.Users().String(), []domain.User{}, func(users *[]domain.User) error {
		next, err := fn(*users)
		if err != nil {
			return err
		}
		*users = next
		return nil
	})
	if err != nil {
		return fmt.Errorf("update users: %w", err)
	}
	return nil
}

// Count returns the number of users.
func (s *KVStore) Count(ctx context.Context) (int, error) {
	users, err := s.List(ctx)
	return len(users), err
}
