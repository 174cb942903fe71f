// Package repository stores notification outbox rows next to the account tables, so a row is
// written in the same transaction as the change that triggered it.
package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	"github.com/allisson/identity/internal/outbox/domain"
)

const outboxColumns = `id, event_type, payload, status, retries, last_error, processed_at, created_at, updated_at`

// scanner is satisfied by *sql.Rows and *sql.Row.
type scanner interface {
	Scan(dest ...any) error
}

// collectEvents drains rows through scan, which decodes a single event.
func collectEvents(rows *sql.Rows, scan func(scanner) (*domain.OutboxEvent, error)) ([]*domain.OutboxEvent, error) {
	defer rows.Close() //nolint:errcheck

	events := make([]*domain.OutboxEvent, 0)
	for rows.Next() {
		event, err := scan(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox events")
	}
	return events, nil
}

// PostgreSQLOutboxEventRepository keeps outbox rows in PostgreSQL with native UUID ids.
type PostgreSQLOutboxEventRepository struct {
	db *sql.DB
}

func NewPostgreSQLOutboxEventRepository(db *sql.DB) *PostgreSQLOutboxEventRepository {
	return &PostgreSQLOutboxEventRepository{db: db}
}

// Create inserts a pending event, joining the transaction carried by ctx when there is one.
func (r *PostgreSQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	_, err := database.GetTx(ctx, r.db).ExecContext(ctx,
		`INSERT INTO outbox_events (`+outboxColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
		event.ID, event.EventType, event.Payload, event.Status, event.Retries, event.LastError, event.ProcessedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

// GetPendingEvents locks up to limit pending events, oldest first. Rows locked by another
// worker are skipped, so the call only makes sense inside a transaction.
func (r *PostgreSQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	rows, err := database.GetTx(ctx, r.db).QueryContext(ctx,
		`SELECT `+outboxColumns+` FROM outbox_events
		 WHERE status = $1 ORDER BY created_at ASC LIMIT $2 FOR UPDATE SKIP LOCKED`,
		domain.OutboxEventStatusPending, limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox events")
	}

	return collectEvents(rows, func(s scanner) (*domain.OutboxEvent, error) {
		var event domain.OutboxEvent
		err := s.Scan(&event.ID, &event.EventType, &event.Payload, &event.Status,
			&event.Retries, &event.LastError, &event.ProcessedAt, &event.CreatedAt, &event.UpdatedAt)
		return &event, err
	})
}

// Update persists the delivery state of an event. Type and payload never change after Create.
func (r *PostgreSQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	_, err := database.GetTx(ctx, r.db).ExecContext(ctx,
		`UPDATE outbox_events SET status = $1, retries = $2, last_error = $3, processed_at = $4, updated_at = NOW()
		 WHERE id = $5`,
		event.Status, event.Retries, event.LastError, event.ProcessedAt, event.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox event")
	}
	return nil
}
