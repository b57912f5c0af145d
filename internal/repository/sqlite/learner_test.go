package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/config"
	"github.com/Chitopro2255V/kichewebapp/internal/database"
	"github.com/Chitopro2255V/kichewebapp/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockRepo(t *testing.T) (*LearnerRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewLearnerRepo(sqlx.NewDb(db, "sqlite3")), mock
}

func TestLearnerRepo_Create(t *testing.T) {
	tests := []struct {
		name          string
		affected      int64
		expectedError error
	}{
		{name: "new learner", affected: 1},
		{name: "name taken", affected: 0, expectedError: domain.ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectExec("INSERT INTO learners \\(name\\) VALUES \\(\\?\\) ON CONFLICT").
				WithArgs("Ixchel").
				WillReturnResult(sqlmock.NewResult(1, tt.affected))
			if tt.expectedError == nil {
				mock.ExpectQuery("SELECT id, name, points, current_lesson, created_at FROM learners").
					WithArgs("Ixchel").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "points", "current_lesson", "created_at"}).
						AddRow(1, "Ixchel", 0, 1, time.Now()))
			}

			learner, err := repo.Create(context.Background(), "Ixchel")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, learner)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Ixchel", learner.Name)
				assert.Equal(t, 1, learner.CurrentLesson)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLearnerRepo_GetByName_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, name, points, current_lesson, created_at FROM learners WHERE name = \\?").
		WithArgs("Nadie").
		WillReturnError(sql.ErrNoRows)

	learner, err := repo.GetByName(context.Background(), "Nadie")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, learner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLearnerRepo_SaveResult_Mock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE learners SET points = points \\+ \\? WHERE name = \\? RETURNING id").
		WithArgs(100, "Ixchel").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("INSERT INTO lesson_progress").
		WithArgs(int64(1), 3).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.SaveResult(context.Background(), domain.LessonResult{
		LearnerName: "Ixchel",
		LessonID:    3,
		Score:       100,
		Completed:   true,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func openTestDB(t *testing.T) *LearnerRepo {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "kiche.db"),
		},
	}
	logger := zap.NewNop()

	db, err := database.Connect(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, config.DriverSQLite, logger))

	return Open(db)
}

func TestLearnerRepo_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t)

	created, err := repo.Create(ctx, "Ixchel")
	require.NoError(t, err)
	assert.Equal(t, 0, created.Points)
	assert.Equal(t, 1, created.CurrentLesson)

	_, err = repo.Create(ctx, "Ixchel")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	_, err = repo.Create(ctx, "Balam")
	require.NoError(t, err)

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Balam", "Ixchel"}, names)

	require.NoError(t, repo.SetCurrentLesson(ctx, "Ixchel", 3))
	assert.ErrorIs(t, repo.SetCurrentLesson(ctx, "Nadie", 3), domain.ErrNotFound)

	require.NoError(t, repo.SaveResult(ctx, domain.LessonResult{LearnerName: "Ixchel", LessonID: 3, Score: 40}))
	require.NoError(t, repo.SaveResult(ctx, domain.LessonResult{LearnerName: "Ixchel", LessonID: 3, Score: 100, Completed: true}))
	require.NoError(t, repo.SaveResult(ctx, domain.LessonResult{LearnerName: "Ixchel", LessonID: 3, Score: 100, Completed: true}))

	err = repo.SaveResult(ctx, domain.LessonResult{LearnerName: "Nadie", LessonID: 1, Score: 10})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	learner, err := repo.GetByName(ctx, "Ixchel")
	require.NoError(t, err)
	assert.Equal(t, 240, learner.Points)
	assert.Equal(t, 3, learner.CurrentLesson)

	progress, err := repo.CompletedLessons(ctx, "Ixchel")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 3, progress[0].LessonID)

	progress, err = repo.CompletedLessons(ctx, "Balam")
	require.NoError(t, err)
	assert.Empty(t, progress)
}

func TestLearnerRepo_SQLite_ConcurrentResults(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t)

	_, err := repo.Create(ctx, "Ixchel")
	require.NoError(t, err)

	const writers = 20

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.SaveResult(ctx, domain.LessonResult{LearnerName: "Ixchel", LessonID: 1, Score: 10})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	learner, err := repo.GetByName(ctx, "Ixchel")
	require.NoError(t, err)
	assert.Equal(t, writers*10, learner.Points)
}
