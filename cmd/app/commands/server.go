package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/identity/internal/app"
	"github.com/allisson/identity/internal/config"
)

const defaultShutdownTimeout = 30 * time.Second

// service is a long-running server started and stopped by RunServer.
type service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// worker runs until its context is cancelled.
type worker interface {
	Start(ctx context.Context) error
}

// RunServer starts the API server, the metrics server and, with the outbox notification driver,
// the outbox worker. It blocks until SIGINT/SIGTERM or until one of them fails, then shuts
// everything down.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	var services []service
	services = append(services, server)

	if cfg.MetricsEnabled {
		metricsServer, err := container.MetricsServer()
		if err != nil {
			return fmt.Errorf("failed to initialize metrics server: %w", err)
		}
		services = append(services, metricsServer)
	}

	var workers []worker
	if cfg.NotificationDriver == config.NotificationOutbox {
		outboxUseCase, err := container.OutboxUseCase()
		if err != nil {
			return fmt.Errorf("failed to initialize outbox worker: %w", err)
		}
		workers = append(workers, outboxUseCase)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTimeout := cfg.DBConnMaxLifetime
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return runServices(ctx, logger, services, workers, shutdownTimeout)
}

// runServices runs every service and worker in one errgroup. The first failure cancels the
// group; services are then shut down within shutdownTimeout.
func runServices(
	ctx context.Context,
	logger *slog.Logger,
	services []service,
	workers []worker,
	shutdownTimeout time.Duration,
) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range services {
		g.Go(func() error {
			return s.Start(gctx)
		})
	}

	for _, w := range workers {
		g.Go(func() error {
			if err := w.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for _, s := range services {
			if err := s.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		return errors.Join(shutdownErrors...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
