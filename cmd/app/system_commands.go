package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/identity/cmd/app/commands"
	"github.com/allisson/identity/internal/app"
	"github.com/allisson/identity/internal/config"
)

// withContainer builds the container from the environment, runs fn and releases the container.
func withContainer(ctx context.Context, fn func(cfg *config.Config, container *app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()
	return fn(cfg, container)
}

const dateFlagUsage = "YYYY-MM-DD or YYYY-MM-DD HH:MM:SS, UTC"

func getSystemCommands(version string) []*cli.Command {
	serverCmd := &cli.Command{
		Name:  "server",
		Usage: "Start the identity API, the metrics server and the notification worker",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return commands.RunServer(ctx, version)
		},
	}

	migrateCmd := &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			})
		},
	}

	verifyCmd := &cli.Command{
		Name:  "verify-audit-logs",
		Usage: "Check the HMAC signature of stored audit events",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start-date", Aliases: []string{"s"}, Usage: "lower bound, " + dateFlagUsage},
			&cli.StringFlag{Name: "end-date", Aliases: []string{"e"}, Usage: "upper bound, " + dateFlagUsage},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text or json"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withContainer(ctx, func(_ *config.Config, container *app.Container) error {
				auditLogs, err := container.AuditLogUseCase()
				if err != nil {
					return err
				}
				return commands.RunVerifyAuditLogs(ctx, auditLogs, container.Logger(), commands.Output(),
					cmd.String("start-date"), cmd.String("end-date"), cmd.String("format"))
			})
		},
	}

	notifyCmd := &cli.Command{
		Name:  "process-notifications",
		Usage: "Deliver pending outbox notifications to the webhook and exit",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "batches", Aliases: []string{"b"}, Value: 1, Usage: "batches to deliver before exiting"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withContainer(ctx, func(_ *config.Config, container *app.Container) error {
				outbox, err := container.OutboxUseCase()
				if err != nil {
					return err
				}
				return commands.RunProcessNotifications(ctx, outbox, container.Logger(), int(cmd.Int("batches")))
			})
		},
	}

	return []*cli.Command{serverCmd, migrateCmd, verifyCmd, notifyCmd}
}
