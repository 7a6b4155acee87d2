package magazine

import (
	"context"
	"errors"
	"fmt"

	"fitgympro/internal/adapters/storage/keyspace"
	"fitgympro/internal/adapters/storage/kv"
	domain "fitgympro/internal/domain/magazine"
)

// errAlreadySeeded aborts SeedIfEmpty without writing.
var errAlreadySeeded = errors.New("articles already present")

// KVStore implements Store on the key-value store.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{kv: store}
}

func key() string { return keyspace.MagazineArticles().String() }

// List returns the stored articles in stored order.
func (s *KVStore) List(ctx context.Context) ([]domain.Article, error) {
	articles, err := kv.Load(ctx, s.kv, key(), []domain.Article{})
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}
	return articles, nil
}

// Get retrieves one article.
// POST: Returns the article or domain.ErrNotFound
func (s *KVStore) Get(ctx context.Context, id string) (domain.Article, error) {
	articles, err := s.List(ctx)
	if err != nil {
		return domain.Article{}, err
	}
	a, ok := domain.Find(articles, id)
	if !ok {
		return domain.Article{}, fmt.Errorf("article %q: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

// Save inserts or replaces the article with the same ID.
// PRE: value has been validated and has an ID
func (s *KVStore) Save(ctx context.Context, value domain.Article) error {
	return kv.Update(ctx, s.kv, key(), []domain.Article{}, func(articles *[]domain.Article) error {
		*articles = domain.Upsert(*articles, value)
		return nil
	})
}

// Delete removes the article with id.
func (s *KVStore) Delete(ctx context.Context, id string) error {
	return kv.Update(ctx, s.kv, key(), []domain.Article{}, func(articles *[]domain.Article) error {
		next, err := domain.Remove(*articles, id)
		if err != nil {
			return err
		}
		*articles = next
		return nil
	})
}

// SeedIfEmpty stores seed when no article exists yet.
// POST: Returns true iff seed was written
func (s *KVStore) SeedIfEmpty(ctx context.Context, seed []domain.Article) (bool, error) {
	seeded := false
	err := kv.Update(ctx, s.kv, key(), []domain.Article{}, func(articles *[]domain.Article) error {
		if len(*articles) > 0 {
			return errAlreadySeeded
		}
		*articles = seed
		seeded = true
		return nil
	})
	if errors.Is(err, errAlreadySeeded) {
		return false, nil
	}
	return seeded, err
}
