package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
	"github.com/Chitopro2255V/kichewebapp/internal/quiz"
	"github.com/Chitopro2255V/kichewebapp/internal/repository"

	"go.uber.org/zap"
)

// LearnerService handles registration, login and result persistence
type LearnerService struct {
	repo   repository.LearnerRepository
	logger *zap.Logger
}

// NewLearnerService creates a new learner service
func NewLearnerService(repo repository.LearnerRepository, logger *zap.Logger) *LearnerService {
	return &LearnerService{
		repo:   repo,
		logger: logger,
	}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrInvalidName
	}
	return name, nil
}

// Register creates a learner with a unique display name
func (s *LearnerService) Register(ctx context.Context, name string) (*domain.Learner, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	learner, err := s.repo.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Learner registered", zap.String("learner", name))
	return learner, nil
}

// Login looks up an existing learner
func (s *LearnerService) Login(ctx context.Context, name string) (*domain.Learner, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByName(ctx, name)
}

// Names returns registered learner names for pickers
func (s *LearnerService) Names(ctx context.Context) ([]string, error) {
	return s.repo.ListNames(ctx)
}

// StartLesson stores the lesson the learner is working on
func (s *LearnerService) StartLesson(ctx context.Context, name string, lessonID int) error {
	if err := s.repo.SetCurrentLesson(ctx, name, lessonID); err != nil {
		s.logger.Error("Failed to set current lesson",
			zap.String("learner", name),
			zap.Int("lesson_id", lessonID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// RecordResult persists a finished session. Non-terminal results are
// ignored; a win also marks the lesson as completed.
func (s *LearnerService) RecordResult(ctx context.Context, name string, lessonID int, res quiz.Result) error {
	if !res.Outcome.Terminal() {
		return nil
	}

	return s.save(ctx, domain.LessonResult{
		LearnerName: name,
		LessonID:    lessonID,
		Score:       res.Score,
		Completed:   res.Outcome == quiz.OutcomeWon,
	})
}

// RecordExit keeps the points earned in a session the learner abandoned.
func (s *LearnerService) RecordExit(ctx context.Context, name string, lessonID int, score int) error {
	if score <= 0 {
		return nil
	}

	return s.save(ctx, domain.LessonResult{
		LearnerName: name,
		LessonID:    lessonID,
		Score:       score,
	})
}

func (s *LearnerService) save(ctx context.Context, result domain.LessonResult) error {
	if err := s.repo.SaveResult(ctx, result); err != nil {
		s.logger.Error("Failed to save lesson result",
			zap.String("learner", result.LearnerName),
			zap.Int("lesson_id", result.LessonID),
			zap.Int("score", result.Score),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Info("Lesson result saved",
		zap.String("learner", result.LearnerName),
		zap.Int("lesson_id", result.LessonID),
		zap.Int("score", result.Score),
		zap.Bool("completed", result.Completed),
	)
	return nil
}

// Completed returns completion records keyed by lesson id
func (s *LearnerService) Completed(ctx context.Context, name string) (map[int]domain.Progress, error) {
	progress, err := s.repo.CompletedLessons(ctx, name)
	if err != nil {
		return nil, err
	}

	byLesson := make(map[int]domain.Progress, len(progress))
	for _, p := range progress {
		byLesson[p.LessonID] = p
	}
	return byLesson, nil
}
