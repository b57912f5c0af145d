package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
)

// ErrInvalidConfig is returned by BeginLesson for unusable game rules.
var ErrInvalidConfig = errors.New("invalid quiz config")

// Config holds the game rules of a session
type Config struct {
	Lives            int
	PointsPerCorrect int
	WinningScore     int
	Choices          int
}

// DefaultConfig returns the standard rules: 3 lives, 10 points per hit,
// 100 points to win and four options per question.
func DefaultConfig() Config {
	return Config{
		Lives:            3,
		PointsPerCorrect: 10,
		WinningScore:     100,
		Choices:          4,
	}
}

func (c Config) validate() error {
	switch {
	case c.Lives < 1:
		return fmt.Errorf("%w: lives must be positive", ErrInvalidConfig)
	case c.PointsPerCorrect < 1:
		return fmt.Errorf("%w: points per correct answer must be positive", ErrInvalidConfig)
	case c.WinningScore < 1:
		return fmt.Errorf("%w: winning score must be positive", ErrInvalidConfig)
	case c.Choices < 2:
		return fmt.Errorf("%w: at least two choices are required", ErrInvalidConfig)
	}
	return nil
}

// Playable reports whether lesson has enough distinct words to build
// questions under these rules.
func (c Config) Playable(lesson *domain.Lesson) bool {
	return lesson != nil && lesson.DistinctTargets() >= c.Choices
}

// Option customizes a session created by BeginLesson
type Option func(*Session)

// WithConfig overrides the default game rules.
func WithConfig(cfg Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithRand sets the random source used for word selection and shuffling.
// Tests pass a seeded source to get reproducible questions.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Session) {
		s.rnd = rnd
	}
}
