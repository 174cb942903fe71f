package commands

import (
	"context"
	"fmt"
	"log/slog"
)

// NotificationProcessor delivers one batch of pending notification events.
type NotificationProcessor interface {
	ProcessEvents(ctx context.Context) error
}

// RunProcessNotifications delivers pending notifications once, up to batches batches. It is
// meant for cron-style deployments that do not run the worker inside the server process.
func RunProcessNotifications(
	ctx context.Context,
	processor NotificationProcessor,
	logger *slog.Logger,
	batches int,
) error {
	if batches < 1 {
		batches = 1
	}

	logger.Info("processing pending notifications", slog.Int("batches", batches))

	for i := 0; i < batches; i++ {
		if err := processor.ProcessEvents(ctx); err != nil {
			return fmt.Errorf("failed to process notifications: %w", err)
		}
	}

	logger.Info("notifications processed")
	return nil
}
