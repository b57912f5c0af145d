package repository

import (
	"context"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
)

// LearnerRepository defines learner data operations.
// Learners are keyed by their unique display name.
type LearnerRepository interface {
	// Create registers a new learner; domain.ErrDuplicateName if the name is taken.
	Create(ctx context.Context, name string) (*domain.Learner, error)
	// GetByName returns domain.ErrNotFound for unknown names.
	GetByName(ctx context.Context, name string) (*domain.Learner, error)
	ListNames(ctx context.Context) ([]string, error)
	SetCurrentLesson(ctx context.Context, name string, lessonID int) error
	// SaveResult adds the score to the learner's points in place and
	// records completion of the lesson when the result says so.
	SaveResult(ctx context.Context, result domain.LessonResult) error
	CompletedLessons(ctx context.Context, name string) ([]domain.Progress, error)
}
