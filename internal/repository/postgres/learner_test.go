package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var learnerColumns = []string{"id", "name", "points", "current_lesson", "created_at"}

func TestLearnerRepo_Create(t *testing.T) {
	tests := []struct {
		name          string
		learner       string
		mockRows      *sqlmock.Rows
		mockError     error
		expectedError error
	}{
		{
			name:     "new learner",
			learner:  "Ixchel",
			mockRows: sqlmock.NewRows(learnerColumns).AddRow(1, "Ixchel", 0, 1, time.Now()),
		},
		{
			name:          "name taken",
			learner:       "Ixchel",
			mockError:     sql.ErrNoRows,
			expectedError: domain.ErrDuplicateName,
		},
		{
			name:      "database error",
			learner:   "Ixchel",
			mockError: fmt.Errorf("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewLearnerRepo(db)

			expect := mock.ExpectQuery("INSERT INTO learners").WithArgs(tt.learner)
			if tt.mockError != nil {
				expect.WillReturnError(tt.mockError)
			} else {
				expect.WillReturnRows(tt.mockRows)
			}

			learner, err := repo.Create(context.Background(), tt.learner)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, learner)
			case tt.mockError != nil:
				assert.Error(t, err)
				assert.Nil(t, learner)
			default:
				assert.NoError(t, err)
				assert.Equal(t, int64(1), learner.ID)
				assert.Equal(t, "Ixchel", learner.Name)
				assert.Equal(t, 0, learner.Points)
				assert.Equal(t, 1, learner.CurrentLesson)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLearnerRepo_GetByName(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expectedError error
	}{
		{
			name:     "learner found",
			mockRows: sqlmock.NewRows(learnerColumns).AddRow(7, "Tecún", 120, 3, time.Now()),
		},
		{
			name:          "learner not found",
			mockError:     sql.ErrNoRows,
			expectedError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewLearnerRepo(db)

			query := "SELECT id, name, points, current_lesson, created_at FROM learners WHERE name = \\$1"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs("Tecún").WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs("Tecún").WillReturnRows(tt.mockRows)
			}

			learner, err := repo.GetByName(context.Background(), "Tecún")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, learner)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 120, learner.Points)
				assert.Equal(t, 3, learner.CurrentLesson)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLearnerRepo_ListNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewLearnerRepo(db)

	mock.ExpectQuery("SELECT name FROM learners ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Ixchel").AddRow("Tecún"))

	names, err := repo.ListNames(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"Ixchel", "Tecún"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLearnerRepo_SetCurrentLesson(t *testing.T) {
	tests := []struct {
		name          string
		affected      int64
		expectedError error
	}{
		{name: "learner updated", affected: 1},
		{name: "unknown learner", affected: 0, expectedError: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewLearnerRepo(db)

			mock.ExpectExec("UPDATE learners SET current_lesson = \\$1 WHERE name = \\$2").
				WithArgs(2, "Ixchel").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err = repo.SetCurrentLesson(context.Background(), "Ixchel", 2)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLearnerRepo_SaveResult(t *testing.T) {
	t.Run("completed lesson records progress", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		repo := NewLearnerRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE learners SET points = points \\+ \\$1 WHERE name = \\$2 RETURNING id").
			WithArgs(100, "Ixchel").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
		mock.ExpectExec("INSERT INTO lesson_progress").
			WithArgs(int64(4), 2).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err = repo.SaveResult(context.Background(), domain.LessonResult{
			LearnerName: "Ixchel",
			LessonID:    2,
			Score:       100,
			Completed:   true,
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost lesson only adds points", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		repo := NewLearnerRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE learners SET points").
			WithArgs(30, "Ixchel").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
		mock.ExpectCommit()

		err = repo.SaveResult(context.Background(), domain.LessonResult{
			LearnerName: "Ixchel",
			LessonID:    2,
			Score:       30,
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown learner rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		repo := NewLearnerRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE learners SET points").
			WithArgs(10, "Nadie").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err = repo.SaveResult(context.Background(), domain.LessonResult{
			LearnerName: "Nadie",
			LessonID:    1,
			Score:       10,
		})

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("progress failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		repo := NewLearnerRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE learners SET points").
			WithArgs(100, "Ixchel").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
		mock.ExpectExec("INSERT INTO lesson_progress").
			WillReturnError(fmt.Errorf("disk full"))
		mock.ExpectRollback()

		err = repo.SaveResult(context.Background(), domain.LessonResult{
			LearnerName: "Ixchel",
			LessonID:    2,
			Score:       100,
			Completed:   true,
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLearnerRepo_CompletedLessons(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewLearnerRepo(db)

	first := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	mock.ExpectQuery("SELECT p.lesson_id, p.completed_at FROM lesson_progress p").
		WithArgs("Ixchel").
		WillReturnRows(sqlmock.NewRows([]string{"lesson_id", "completed_at"}).
			AddRow(1, first).
			AddRow(3, second))

	progress, err := repo.CompletedLessons(context.Background(), "Ixchel")

	assert.NoError(t, err)
	assert.Equal(t, []domain.Progress{
		{LessonID: 1, CompletedAt: first},
		{LessonID: 3, CompletedAt: second},
	}, progress)
	assert.NoError(t, mock.ExpectationsWereMet())
}
