package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Chitopro2255V/kichewebapp/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDriverName(t *testing.T) {
	tests := []struct {
		driver        string
		expected      string
		expectedError bool
	}{
		{driver: config.DriverPostgres, expected: "postgres"},
		{driver: config.DriverSQLite, expected: "sqlite3"},
		{driver: "mysql", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			name, err := DriverName(tt.driver)

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestConnectAndMigrate_SQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "kiche.db"),
		},
	}
	logger := zap.NewNop()

	db, err := Connect(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, config.DriverSQLite, logger))
	// Second run has nothing to apply
	require.NoError(t, Migrate(db, config.DriverSQLite, logger))

	for _, table := range []string{"learners", "lesson_progress"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_UnknownDriver(t *testing.T) {
	err := Migrate(nil, "mysql", zap.NewNop())
	assert.Error(t, err)
}
