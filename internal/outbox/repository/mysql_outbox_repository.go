package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	"github.com/allisson/identity/internal/outbox/domain"
)

// MySQLOutboxEventRepository keeps outbox rows in MySQL. IDs are stored as BINARY(16).
type MySQLOutboxEventRepository struct {
	db *sql.DB
}

func NewMySQLOutboxEventRepository(db *sql.DB) *MySQLOutboxEventRepository {
	return &MySQLOutboxEventRepository{db: db}
}

// Create inserts a pending event, joining the transaction carried by ctx when there is one.
func (r *MySQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox event id")
	}

	_, err = database.GetTx(ctx, r.db).ExecContext(ctx,
		`INSERT INTO outbox_events (`+outboxColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		id, event.EventType, event.Payload, event.Status, event.Retries, event.LastError, event.ProcessedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

// GetPendingEvents locks up to limit pending events, oldest first, skipping rows another
// worker holds. Requires MySQL 8.0 for SKIP LOCKED.
func (r *MySQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	rows, err := database.GetTx(ctx, r.db).QueryContext(ctx,
		`SELECT `+outboxColumns+` FROM outbox_events
		 WHERE status = ? ORDER BY created_at ASC LIMIT ? FOR UPDATE SKIP LOCKED`,
		domain.OutboxEventStatusPending, limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox events")
	}

	return collectEvents(rows, func(s scanner) (*domain.OutboxEvent, error) {
		var event domain.OutboxEvent
		var id []byte
		err := s.Scan(&id, &event.EventType, &event.Payload, &event.Status,
			&event.Retries, &event.LastError, &event.ProcessedAt, &event.CreatedAt, &event.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if err := event.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "invalid outbox event id")
		}
		return &event, nil
	})
}

// Update persists the delivery state of an event.
func (r *MySQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox event id")
	}

	_, err = database.GetTx(ctx, r.db).ExecContext(ctx,
		`UPDATE outbox_events SET status = ?, retries = ?, last_error = ?, processed_at = ?, updated_at = NOW()
		 WHERE id = ?`,
		event.Status, event.Retries, event.LastError, event.ProcessedAt, id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox event")
	}
	return nil
}
