package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/identity/internal/crypto/domain"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

const auditSigningInfo = "identity-audit-event-signing-v1"

// ErrAuditKeyTooShort is returned when the audit signing key is under 32 bytes.
var ErrAuditKeyTooShort = errors.New("audit signing key must be at least 32 bytes")

type auditSigner struct {
	signingKey []byte
}

// NewAuditSigner derives an HMAC-SHA256 key from masterKey with HKDF-SHA256.
func NewAuditSigner(masterKey []byte) (AuditSigner, error) {
	if len(masterKey) < 32 {
		return nil, ErrAuditKeyTooShort
	}

	signingKey := make([]byte, 32)
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(auditSigningInfo))
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	return &auditSigner{signingKey: signingKey}, nil
}

// canonicalize encodes the event as:
// id || account_id || event_type || email || ip || user_agent || metadata || created_at
// Variable-length fields are length-prefixed. A nil account id encodes as 16 zero bytes.
func (a *auditSigner) canonicalize(event *identityDomain.AuditEvent) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, event.ID[:]...)
	if event.AccountID != nil {
		buf = append(buf, event.AccountID[:]...)
	} else {
		buf = append(buf, make([]byte, 16)...)
	}

	buf = appendLengthPrefixed(buf, []byte(event.EventType))
	buf = appendLengthPrefixed(buf, []byte(event.Email))
	buf = appendLengthPrefixed(buf, []byte(event.IP))
	buf = appendLengthPrefixed(buf, []byte(event.UserAgent))

	if len(event.Metadata) > 0 {
		metadata, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadata)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(event.CreatedAt.UnixNano()))

	return buf, nil
}

func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign implements AuditSigner.
func (a *auditSigner) Sign(event *identityDomain.AuditEvent) ([]byte, error) {
	canonical, err := a.canonicalize(event)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize event: %w", err)
	}

	mac := hmac.New(sha256.New, a.signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify implements AuditSigner.
func (a *auditSigner) Verify(event *identityDomain.AuditEvent) error {
	expected, err := a.Sign(event)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}
	defer cryptoDomain.Zero(expected)

	if !hmac.Equal(event.Signature, expected) {
		return identityDomain.ErrSignatureInvalid
	}
	return nil
}
