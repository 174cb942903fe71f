package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// PostgreSQLAuditEventRepository implements AuditEvent persistence for PostgreSQL.
type PostgreSQLAuditEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditEventRepository creates a new PostgreSQL AuditEvent repository.
func NewPostgreSQLAuditEventRepository(db *sql.DB) *PostgreSQLAuditEventRepository {
	return &PostgreSQLAuditEventRepository{db: db}
}

// Create inserts a new AuditEvent. Empty metadata is stored as NULL.
func (p *PostgreSQLAuditEventRepository) Create(ctx context.Context, event *identityDomain.AuditEvent) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (id, event_type, account_id, email, ip, user_agent, metadata, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		string(event.EventType),
		event.AccountID,
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
func (p *PostgreSQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*identityDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	where, args := createdAtFilter(createdAtFrom, createdAtTo, postgresPlaceholder)
	args = append(args, limit, offset)

	query := `SELECT id, event_type, account_id, email, ip, user_agent, metadata, signature, created_at
			  FROM audit_events` + where + `
			  ORDER BY created_at ASC, id ASC
			  LIMIT ` + postgresPlaceholder(len(args)-1) + ` OFFSET ` + postgresPlaceholder(len(args))

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
		var eventType string
		var metadataJSON []byte

		err := rows.Scan(
			&event.ID,
			&eventType,
			&event.AccountID,
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
