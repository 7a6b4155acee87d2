package cms

import (
	"context"

	domain "fitgympro/internal/domain/cms"
)

// Store persists the exercise and supplement catalogues.
type Store interface {
	Exercises(ctx context.Context) (domain.Exercises, error)
	UpdateExercises(ctx context.Context, fn func(e *domain.Exercises) error) error
	Supplements(ctx context.Context) (domain.Supplements, error)
	UpdateSupplements(ctx context.Context, fn func(s *domain.Supplements) error) error
}
