package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestDSNs(t *testing.T) {
	t.Run("Success_Defaults", func(t *testing.T) {
		t.Setenv("TEST_POSTGRES_DSN", "")
		t.Setenv("TEST_MYSQL_DSN", "")

		assert.Equal(t, defaultPostgresTestDSN, GetPostgresTestDSN())
		assert.Equal(t, defaultMySQLTestDSN, GetMySQLTestDSN())
		assert.Contains(t, GetMySQLTestDSN(), "parseTime=true")
	})

	t.Run("Success_EnvironmentOverrides", func(t *testing.T) {
		//nolint:gosec // test credentials
		t.Setenv("TEST_POSTGRES_DSN", "postgres://ci:ci@db:5432/identity?sslmode=disable")
		t.Setenv("TEST_MYSQL_DSN", "ci:ci@tcp(db:3306)/identity?parseTime=true")

		assert.Equal(t, "postgres://ci:ci@db:5432/identity?sslmode=disable", GetPostgresTestDSN())
		assert.Equal(t, "ci:ci@tcp(db:3306)/identity?parseTime=true", GetMySQLTestDSN())
	})
}

func TestGetMigrationsPath(t *testing.T) {
	t.Run("Success_BothDialects", func(t *testing.T) {
		for _, dialect := range []string{"postgresql", "mysql"} {
			path, err := getMigrationsPath(dialect)
			require.NoError(t, err)

			entries, err := os.ReadDir(path)
			require.NoError(t, err)
			assert.NotEmpty(t, entries, "%s migrations should not be empty", dialect)
		}
	})

	t.Run("Success_FromParentDirectory", func(t *testing.T) {
		expected, err := getMigrationsPath("postgresql")
		require.NoError(t, err)

		wd, err := os.Getwd()
		require.NoError(t, err)
		t.Chdir(filepath.Join(wd, ".."))

		path, err := getMigrationsPath("postgresql")
		require.NoError(t, err)
		assert.Equal(t, expected, path)
	})

	t.Run("Error_UnknownDialect", func(t *testing.T) {
		_, err := getMigrationsPath("sqlite")
		assert.Error(t, err)
	})
}

func TestUUIDToDriverValue(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	value, err := uuidToDriverValue(id, "postgres")
	require.NoError(t, err)
	assert.Equal(t, id, value)

	value, err = uuidToDriverValue(id, "mysql")
	require.NoError(t, err)
	raw, ok := value.([]byte)
	require.True(t, ok)
	assert.Len(t, raw, 16)
	assert.Equal(t, id[:], raw)
}

func TestNewMockDB(t *testing.T) {
	db, mock := NewMockDB(t)

	mock.ExpectPing()
	assert.NoError(t, db.Ping())
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
	return count
}

func TestSetupDB(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *sql.DB
		skip  func(t *testing.T)
	}{
		{name: "postgres", setup: SetupPostgresDB, skip: SkipIfNoPostgres},
		{name: "mysql", setup: SetupMySQLDB, skip: SkipIfNoMySQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.skip(t)

			db := tt.setup(t)
			defer TeardownDB(t, db)

			assert.NoError(t, db.Ping())
			for _, table := range tables {
				assert.Equal(t, 0, countRows(t, db, table), "%s should be empty after setup", table)
			}
		})
	}
}

func TestTeardownDB(t *testing.T) {
	SkipIfNoPostgres(t)

	db := SetupPostgresDB(t)
	require.NotNil(t, db)

	TeardownDB(t, db)

	assert.Error(t, db.Ping(), "database should be closed after teardown")
}

func TestTeardownDBWithNilDB(t *testing.T) {
	assert.NotPanics(t, func() {
		TeardownDB(t, nil)
	})
}

func TestFixturesAndCleanup(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		setup   func(t *testing.T) *sql.DB
		skip    func(t *testing.T)
		cleanup func(t *testing.T, db *sql.DB)
	}{
		{name: "postgres", driver: "postgres", setup: SetupPostgresDB, skip: SkipIfNoPostgres, cleanup: CleanupPostgresDB},
		{name: "mysql", driver: "mysql", setup: SetupMySQLDB, skip: SkipIfNoMySQL, cleanup: CleanupMySQLDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.skip(t)

			db := tt.setup(t)
			defer TeardownDB(t, db)

			accountID := CreateTestGuestAccount(t, db, tt.driver, "guest@example.com")
			require.NotEqual(t, uuid.Nil, accountID)
			orderID := CreateTestOrder(t, db, tt.driver, accountID)
			require.NotEqual(t, uuid.Nil, orderID)

			assert.Equal(t, 1, countRows(t, db, "accounts"))
			assert.Equal(t, 1, countRows(t, db, "orders"))

			tt.cleanup(t, db)

			assert.Equal(t, 0, countRows(t, db, "accounts"))
			assert.Equal(t, 0, countRows(t, db, "orders"))
		})
	}
}
