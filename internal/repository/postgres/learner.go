package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
)

// LearnerRepo implements repository.LearnerRepository
type LearnerRepo struct {
	db *sql.DB
}

// NewLearnerRepo creates a new learner repository
func NewLearnerRepo(db *sql.DB) *LearnerRepo {
	return &LearnerRepo{db: db}
}

// Create inserts a learner unless the name is already taken
func (r *LearnerRepo) Create(ctx context.Context, name string) (*domain.Learner, error) {
	query := `
		INSERT INTO learners (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, points, current_lesson, created_at
	`

	var l domain.Learner
	err := r.db.QueryRowContext(ctx, query, name).Scan(&l.ID, &l.Name, &l.Points, &l.CurrentLesson, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learner %q: %w", name, domain.ErrDuplicateName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create learner: %w", err)
	}

	return &l, nil
}

// GetByName returns learner by display name
func (r *LearnerRepo) GetByName(ctx context.Context, name string) (*domain.Learner, error) {
	query := `SELECT id, name, points, current_lesson, created_at FROM learners WHERE name = $1`

	var l domain.Learner
	err := r.db.QueryRowContext(ctx, query, name).Scan(&l.ID, &l.Name, &l.Points, &l.CurrentLesson, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learner %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}

	return &l, nil
}

// ListNames returns all learner names in alphabetical order
func (r *LearnerRepo) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM learners ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list learners: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// SetCurrentLesson moves the learner's lesson pointer
func (r *LearnerRepo) SetCurrentLesson(ctx context.Context, name string, lessonID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE learners SET current_lesson = $1 WHERE name = $2`, lessonID, name)
	if err != nil {
		return fmt.Errorf("failed to set current lesson: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("learner %q: %w", name, domain.ErrNotFound)
	}

	return nil
}

// SaveResult adds the score and records completion in one transaction.
// Points are incremented in the row itself so concurrent results of the
// same learner are never lost.
func (r *LearnerRepo) SaveResult(ctx context.Context, result domain.LessonResult) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	var learnerID int64
	err = tx.QueryRowContext(ctx,
		`UPDATE learners SET points = points + $1 WHERE name = $2 RETURNING id`,
		result.Score, result.LearnerName,
	).Scan(&learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("learner %q: %w", result.LearnerName, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}

	if result.Completed {
		query := `
			INSERT INTO lesson_progress (learner_id, lesson_id, completed_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (learner_id, lesson_id)
			DO UPDATE SET completed_at = EXCLUDED.completed_at
		`
		if _, err = tx.ExecContext(ctx, query, learnerID, result.LessonID); err != nil {
			return fmt.Errorf("failed to record progress: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}

	return nil
}

// CompletedLessons returns lessons completed by the learner, oldest first
func (r *LearnerRepo) CompletedLessons(ctx context.Context, name string) ([]domain.Progress, error) {
	query := `
		SELECT p.lesson_id, p.completed_at
		FROM lesson_progress p
		JOIN learners l ON l.id = p.learner_id
		WHERE l.name = $1
		ORDER BY p.completed_at
	`

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	defer rows.Close()

	var progress []domain.Progress
	for rows.Next() {
		var p domain.Progress
		if err := rows.Scan(&p.LessonID, &p.CompletedAt); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}

	return progress, rows.Err()
}
