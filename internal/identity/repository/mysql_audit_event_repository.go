package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// MySQLAuditEventRepository implements AuditEvent persistence for MySQL. IDs are BINARY(16).
type MySQLAuditEventRepository struct {
	db *sql.DB
}

// NewMySQLAuditEventRepository creates a new MySQL AuditEvent repository.
func NewMySQLAuditEventRepository(db *sql.DB) *MySQLAuditEventRepository {
	return &MySQLAuditEventRepository{db: db}
}

// Create inserts a new AuditEvent. Empty metadata is stored as NULL.
func (m *MySQLAuditEventRepository) Create(ctx context.Context, event *identityDomain.AuditEvent) error {
	querier := database.GetTx(ctx, m.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	var accountID []byte
	if event.AccountID != nil {
		if accountID, err = event.AccountID.MarshalBinary(); err != nil {
			return apperrors.Wrap(err, "failed to marshal account id")
		}
	}

	metadataJSON, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (id, event_type, account_id, email, ip, user_agent, metadata, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		string(event.EventType),
		accountID,
		event.Email,
		event.IP,
		event.UserAgent,
		metadataJSON,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}

	return nil
}

// List retrieves audit events oldest first, optionally bounded by created_at.
func (m *MySQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*identityDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	where, args := createdAtFilter(createdAtFrom, createdAtTo, mysqlPlaceholder)
	args = append(args, limit, offset)

	query := `SELECT id, event_type, account_id, email, ip, user_agent, metadata, signature, created_at
			  FROM audit_events` + where + `
			  ORDER BY created_at ASC, id ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*identityDomain.AuditEvent, 0)
	for rows.Next() {
		var event identityDomain.AuditEvent
		var id, accountID, metadataJSON []byte
		var eventType string

		err := rows.Scan(
			&id,
			&eventType,
			&accountID,
			&event.Email,
			&event.IP,
			&event.UserAgent,
			&metadataJSON,
			&event.Signature,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}

		if err := event.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
		}
		if accountID != nil {
			var parsed uuid.UUID
			if err := parsed.UnmarshalBinary(accountID); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal account id")
			}
			event.AccountID = &parsed
		}

		event.EventType = identityDomain.EventType(eventType)
		if event.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}
