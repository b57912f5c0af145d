package domain

import "time"

// Learner is a registered player identified by a unique display name
type Learner struct {
	ID            int64
	Name          string
	Points        int
	CurrentLesson int
	CreatedAt     time.Time
}

// LessonResult is what a finished session hands over to storage
type LessonResult struct {
	LearnerName string
	LessonID    int
	Score       int
	Completed   bool
}
