// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/identity/internal/app"
)

// Output is where commands print their reports.
func Output() io.Writer {
	return os.Stdout
}

func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("container shutdown failed", slog.Any("error", err))
	}
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr == nil && dbErr == nil {
		return
	}
	logger.Error("migrate close failed",
		slog.Any("source_error", srcErr),
		slog.Any("database_error", dbErr),
	)
}

var dateLayouts = []string{time.DateTime, time.DateOnly}

// parseDate accepts "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS", read as UTC. Empty means no bound.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", value)
}
