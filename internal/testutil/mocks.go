package testutil

import (
	"context"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockLearnerRepository is a mock for LearnerRepository
type MockLearnerRepository struct {
	mock.Mock
}

func (m *MockLearnerRepository) Create(ctx context.Context, name string) (*domain.Learner, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Learner), args.Error(1)
}

func (m *MockLearnerRepository) GetByName(ctx context.Context, name string) (*domain.Learner, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Learner), args.Error(1)
}

func (m *MockLearnerRepository) ListNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLearnerRepository) SetCurrentLesson(ctx context.Context, name string, lessonID int) error {
	args := m.Called(ctx, name, lessonID)
	return args.Error(0)
}

func (m *MockLearnerRepository) SaveResult(ctx context.Context, result domain.LessonResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockLearnerRepository) CompletedLessons(ctx context.Context, name string) ([]domain.Progress, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Progress), args.Error(1)
}
