package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"

	"github.com/jmoiron/sqlx"
)

type learnerRow struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Points        int       `db:"points"`
	CurrentLesson int       `db:"current_lesson"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r learnerRow) toDomain() *domain.Learner {
	return &domain.Learner{
		ID:            r.ID,
		Name:          r.Name,
		Points:        r.Points,
		CurrentLesson: r.CurrentLesson,
		CreatedAt:     r.CreatedAt,
	}
}

type progressRow struct {
	LessonID    int       `db:"lesson_id"`
	CompletedAt time.Time `db:"completed_at"`
}

// LearnerRepo implements repository.LearnerRepository on SQLite
type LearnerRepo struct {
	db *sqlx.DB
}

func NewLearnerRepo(db *sqlx.DB) *LearnerRepo {
	return &LearnerRepo{db: db}
}

// Open wraps an already connected *sql.DB for use with sqlx.
func Open(db *sql.DB) *LearnerRepo {
	return NewLearnerRepo(sqlx.NewDb(db, "sqlite3"))
}

// Create inserts a learner and reads it back. created_at is selected from
// the table rather than returned by the insert so the driver can parse it
// by its declared column type.
func (r *LearnerRepo) Create(ctx context.Context, name string) (*domain.Learner, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO learners (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create learner: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("learner %q: %w", name, domain.ErrDuplicateName)
	}

	return r.GetByName(ctx, name)
}

func (r *LearnerRepo) GetByName(ctx context.Context, name string) (*domain.Learner, error) {
	var row learnerRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, name, points, current_lesson, created_at FROM learners WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learner %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}

	return row.toDomain(), nil
}

func (r *LearnerRepo) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM learners ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list learners: %w", err)
	}
	return names, nil
}

func (r *LearnerRepo) SetCurrentLesson(ctx context.Context, name string, lessonID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE learners SET current_lesson = ? WHERE name = ?`, lessonID, name)
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

// SaveResult adds the score in place and upserts progress when the lesson
// was completed. The connection pool holds a single connection, so writes
// of all learners are serialized by SQLite itself.
func (r *LearnerRepo) SaveResult(ctx context.Context, result domain.LessonResult) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	var learnerID int64
	err = tx.GetContext(ctx, &learnerID,
		`UPDATE learners SET points = points + ? WHERE name = ? RETURNING id`,
		result.Score, result.LearnerName)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("learner %q: %w", result.LearnerName, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}

	if result.Completed {
		query := `
			INSERT INTO lesson_progress (learner_id, lesson_id, completed_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (learner_id, lesson_id)
			DO UPDATE SET completed_at = excluded.completed_at
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

func (r *LearnerRepo) CompletedLessons(ctx context.Context, name string) ([]domain.Progress, error) {
	query := `
		SELECT p.lesson_id, p.completed_at
		FROM lesson_progress p
		JOIN learners l ON l.id = p.learner_id
		WHERE l.name = ?
		ORDER BY p.completed_at
	`

	var rows []progressRow
	if err := r.db.SelectContext(ctx, &rows, query, name); err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	progress := make([]domain.Progress, 0, len(rows))
	for _, row := range rows {
		progress = append(progress, domain.Progress{LessonID: row.LessonID, CompletedAt: row.CompletedAt})
	}

	return progress, nil
}
