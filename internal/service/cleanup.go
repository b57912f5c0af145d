package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops state that expired before now and reports how much it removed
type Sweeper interface {
	Sweep(now time.Time) int
}

// CleanupService periodically removes idle learner sessions
type CleanupService struct {
	sweepers []Sweeper
	logger   *zap.Logger
	now      func() time.Time
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(logger *zap.Logger, sweepers ...Sweeper) *CleanupService {
	return &CleanupService{
		sweepers: sweepers,
		logger:   logger,
		now:      time.Now,
	}
}

// Cleanup runs every sweeper once and returns the number of removed entries
func (s *CleanupService) Cleanup() int {
	now := s.now()

	removed := 0
	for _, sw := range s.sweepers {
		removed += sw.Sweep(now)
	}

	if removed > 0 {
		s.logger.Info("Expired sessions removed", zap.Int("count", removed))
	}
	return removed
}

// Run cleans up once at startup and then on every tick until ctx is done
func (s *CleanupService) Run(ctx context.Context, interval time.Duration) {
	s.Cleanup()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Cleanup job stopped")
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
