package testutil

import (
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestLearner creates a test learner
func NewTestLearner(id int64, name string, points int) *domain.Learner {
	return &domain.Learner{
		ID:            id,
		Name:          name,
		Points:        points,
		CurrentLesson: 1,
		CreatedAt:     time.Now(),
	}
}

// NewTestLesson creates a lesson with one word per target, glossed as
// "<target> gloss".
func NewTestLesson(id int, targets ...string) *domain.Lesson {
	lesson := &domain.Lesson{
		ID:    id,
		Title: "Lesson",
		Kind:  "vocabulario",
		Level: domain.LevelBasic,
	}
	for _, t := range targets {
		lesson.Content = append(lesson.Content, domain.WordPair{
			Target:   t,
			Gloss:    t + " gloss",
			MediaRef: t + ".png",
		})
	}
	return lesson
}
