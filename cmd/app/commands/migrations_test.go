package commands

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Error_InvalidDriver", func(t *testing.T) {
		err := RunMigrations(logger, "invalid", "postgres://localhost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create migrate instance")
	})

	t.Run("Error_InvalidConnectionString", func(t *testing.T) {
		err := RunMigrations(logger, "postgres", "invalid-connection-string")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create migrate instance")
	})
}

func TestMigrationSource(t *testing.T) {
	t.Run("Success_Postgres", func(t *testing.T) {
		path, url, err := migrationSource("postgres", "postgres://u:p@localhost:5432/db")
		require.NoError(t, err)
		assert.Equal(t, "file://migrations/postgresql", path)
		assert.Equal(t, "postgres://u:p@localhost:5432/db", url)
	})

	t.Run("Success_MySQLAddsScheme", func(t *testing.T) {
		path, url, err := migrationSource("mysql", "u:p@tcp(localhost:3306)/db?parseTime=true")
		require.NoError(t, err)
		assert.Equal(t, "file://migrations/mysql", path)
		assert.Equal(t, "mysql://u:p@tcp(localhost:3306)/db?parseTime=true", url)
	})

	t.Run("Success_MySQLKeepsScheme", func(t *testing.T) {
		_, url, err := migrationSource("mysql", "mysql://u:p@tcp(localhost:3306)/db")
		require.NoError(t, err)
		assert.Equal(t, "mysql://u:p@tcp(localhost:3306)/db", url)
	})

	t.Run("Error_UnsupportedDriver", func(t *testing.T) {
		_, _, err := migrationSource("sqlite", "file.db")
		assert.Error(t, err)
	})
}
