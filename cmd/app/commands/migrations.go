package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies every pending migration from migrations/<driver>. A database that is
// already up to date is not an error.
func RunMigrations(logger *slog.Logger, dbDriver, dbConnectionString string) error {
	logger.Info("running database migrations", slog.String("driver", dbDriver))

	migrationsPath, databaseURL, err := migrationSource(dbDriver, dbConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrationSource returns the migrations directory and a URL golang-migrate accepts. MySQL DSNs
// in go-sql-driver form are prefixed with the mysql:// scheme.
func migrationSource(dbDriver, dbConnectionString string) (string, string, error) {
	switch dbDriver {
	case "postgres":
		return "file://migrations/postgresql", dbConnectionString, nil
	case "mysql":
		if !strings.HasPrefix(dbConnectionString, "mysql://") {
			dbConnectionString = "mysql://" + dbConnectionString
		}
		return "file://migrations/mysql", dbConnectionString, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver: %s", dbDriver)
	}
}
