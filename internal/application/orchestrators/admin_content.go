package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/cms"
	"fitgympro/internal/domain/magazine"
	"fitgympro/internal/domain/settings"
)

// ArticleStore defines the magazine operations content orchestrators need.
type ArticleStore interface {
	Get(ctx context.Context, id string) (magazine.Article, error)
	Save(ctx context.Context, value magazine.Article) error
	Delete(ctx context.Context, id string) error
}

// ErrNotArticleAuthor is returned when a coach edits or deletes someone else's article.
var ErrNotArticleAuthor = errors.New("you do not have permission to change this article")

// Editor identifies who is changing content.
type Editor struct {
	Username string
	Role     string
}

// SaveArticleDeps holds dependencies for SaveArticle.
type SaveArticleDeps struct {
	Articles   ArticleStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSaveArticle publishes a new article or edits an existing one.
// PRE: editor is an admin or a coach
// POST: the article is saved with a fresh publish date and the editor as author when new
// INVARIANT: Coaches may only edit their own articles
func ExecuteSaveArticle(ctx context.Context, editor Editor, a magazine.Article, deps SaveArticleDeps) (magazine.Article, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Category = strings.TrimSpace(a.Category)
	a.ImageURL = strings.TrimSpace(a.ImageURL)
	if err := a.Validate(); err != nil {
		return magazine.Article{}, err
	}

	if a.ID == "" {
		a.ID = "article_" + deps.GenerateID()
		a.Author = editor.Username
	} else {
		existing, err := deps.Articles.Get(ctx, a.ID)
		if err != nil {
			return magazine.Article{}, err
		}
		if err := canChangeArticle(editor, existing); err != nil {
			return magazine.Article{}, err
		}
		a.Author = existing.Author
	}
	a.PublishDate = deps.Now()

	if err := deps.Articles.Save(ctx, a); err != nil {
		return magazine.Article{}, err
	}
	slog.Info("content_event", "event", "article_saved", "article", a.ID, "editor", editor.Username)
	return a, nil
}

// ExecuteDeleteArticle removes an article.
// INVARIANT: Coaches may only delete their own articles
func ExecuteDeleteArticle(ctx context.Context, editor Editor, id string, articles ArticleStore) error {
	existing, err := articles.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := canChangeArticle(editor, existing); err != nil {
		return err
	}
	if err := articles.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("content_event", "event", "article_deleted", "article", id, "editor", editor.Username)
	return nil
}

func canChangeArticle(editor Editor, a magazine.Article) error {
	if editor.Role == account.RoleAdmin || a.Author == editor.Username {
		return nil
	}
	return ErrNotArticleAuthor
}

// SettingsStore defines the settings operations SaveSettings needs.
type SettingsStore interface {
	Save(ctx context.Context, value settings.SiteSettings) error
}

// ExecuteSaveSettings validates and stores the site settings.
// POST: stored settings pass Validate
func ExecuteSaveSettings(ctx context.Context, actor string, s settings.SiteSettings, store SettingsStore, activity ActivityRecorder) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := store.Save(ctx, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	logActivity(ctx, activity, "Site settings were updated.")
	slog.Info("admin_event", "event", "settings_saved", "actor", actor, "maintenance", s.MaintenanceMode)
	return nil
}

// CatalogStore defines the CMS catalogue operations.
type CatalogStore interface {
	UpdateExercises(ctx context.Context, fn func(e *cms.Exercises) error) error
	UpdateSupplements(ctx context.Context, fn func(s *cms.Supplements) error) error
}

// ExecuteAddExercise adds an exercise to a muscle group, creating the group if needed.
func ExecuteAddExercise(ctx context.Context, group, name string, store CatalogStore) error {
	return store.UpdateExercises(ctx, func(e *cms.Exercises) error {
		return e.AddExercise(group, name)
	})
}

// ExecuteRemoveExercise removes an exercise from a muscle group.
func ExecuteRemoveExercise(ctx context.Context, group, name string, store CatalogStore) error {
	return store.UpdateExercises(ctx, func(e *cms.Exercises) error {
		return e.RemoveExercise(group, name)
	})
}

// ExecuteAddSupplement adds a supplement to a category, creating the category if needed.
func ExecuteAddSupplement(ctx context.Context, category string, item cms.SupplementItem, store CatalogStore) error {
	return store.UpdateSupplements(ctx, func(s *cms.Supplements) error {
		return s.AddSupplement(category, item)
	})
}

// ExecuteRemoveSupplement removes a supplement from a category.
func ExecuteRemoveSupplement(ctx context.Context, category, name string, store CatalogStore) error {
	return store.UpdateSupplements(ctx, func(s *cms.Supplements) error {
		return s.RemoveSupplement(category, name)
	})
}
