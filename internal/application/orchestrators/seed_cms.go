package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fitgympro/internal/domain/cms"
	"fitgympro/internal/domain/magazine"
)

// errInSync stops a catalogue update that would write nothing new.
var errInSync = errors.New("catalogue already in sync")

// ArticleSeeder seeds the magazine when it has no articles.
type ArticleSeeder interface {
	SeedIfEmpty(ctx context.Context, seed []magazine.Article) (bool, error)
}

// SeedCMSDeps holds dependencies for SeedCMS.
type SeedCMSDeps struct {
	Catalog  CatalogStore
	Articles ArticleSeeder
	Activity ActivityRecorder
	Now      func() time.Time
}

// SeedCMSResult reports which parts of the CMS changed.
type SeedCMSResult struct {
	ExercisesSynced   bool
	SupplementsSynced bool
	ArticlesSeeded    bool
}

// ExecuteSeedCMS merges the built-in exercise and supplement catalogues into the stored ones
// and seeds the magazine when it is empty. It runs at startup and on the nightly schedule.
// PRE: storage is reachable
// POST: every built-in entry is present; admin additions are untouched
// INVARIANT: Running it twice in a row changes nothing the second time
func ExecuteSeedCMS(ctx context.Context, deps SeedCMSDeps) (SeedCMSResult, error) {
	var res SeedCMSResult

	err := deps.Catalog.UpdateExercises(ctx, func(e *cms.Exercises) error {
		next, changed := cms.SyncExercises(*e)
		if !changed {
			return errInSync
		}
		*e = next
		return nil
	})
	switch {
	case err == nil:
		res.ExercisesSynced = true
		logActivity(ctx, deps.Activity, cms.ExercisesSyncedMessage)
	case !errors.Is(err, errInSync):
		return res, fmt.Errorf("sync exercises: %w", err)
	}

	err = deps.Catalog.UpdateSupplements(ctx, func(s *cms.Supplements) error {
		next, changed := cms.SyncSupplements(*s)
		if !changed {
			return errInSync
		}
		*s = next
		return nil
	})
	switch {
	case err == nil:
		res.SupplementsSynced = true
		logActivity(ctx, deps.Activity, cms.SupplementsSyncedMessage)
	case !errors.Is(err, errInSync):
		return res, fmt.Errorf("sync supplements: %w", err)
	}

	seeded, err := deps.Articles.SeedIfEmpty(ctx, magazine.SeedArticles(deps.Now()))
	if err != nil {
		return res, fmt.Errorf("seed articles: %w", err)
	}
	if seeded {
		res.ArticlesSeeded = true
		logActivity(ctx, deps.Activity, cms.ArticlesSeededMessage)
	}

	slog.Info("seed_event", "event", "cms_sync",
		"exercises", res.ExercisesSynced, "supplements", res.SupplementsSynced, "articles", res.ArticlesSeeded)
	return res, nil
}
