package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is an append-only record of a security-relevant identity event. Metadata carries
// internal detail, such as the reason a login failed, that is never returned to callers.
// Signature is an HMAC over the canonical event content.
type AuditEvent struct {
	ID        uuid.UUID
	EventType EventType
	AccountID *uuid.UUID
	Email     string
	IP        string
	UserAgent string
	Metadata  map[string]any
	Signature []byte
	CreatedAt time.Time
}

// AuditVerificationReport summarizes a signature check over a range of audit events.
type AuditVerificationReport struct {
	Total    int
	Valid    int
	Invalid  int
	Unsigned int

	// InvalidIDs lists the events whose signature did not match.
	InvalidIDs []uuid.UUID
}
