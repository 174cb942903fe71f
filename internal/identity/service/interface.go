// Package service provides the technical services behind the identity flows: bearer token
// issuing, password hashing, verification code generation and audit event signing.
package service

import (
	"github.com/google/uuid"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	// Issue creates a fresh access/refresh pair for the account.
	Issue(accountID uuid.UUID, email string, role identityDomain.Role) (*identityDomain.TokenPair, error)

	// Verify checks signature, issuer, expiry and token type. Any failure returns ErrInvalidToken.
	Verify(token string, expected identityDomain.TokenType) (*identityDomain.TokenClaims, error)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. Malformed hashes never match.
	Verify(password, hash string) bool
}

// CodeGenerator creates short numeric verification codes.
type CodeGenerator interface {
	Generate(length int) (string, error)
}

// AuditSigner signs audit events so tampering in storage can be detected.
type AuditSigner interface {
	// Sign returns the HMAC-SHA256 signature of the event content.
	Sign(event *identityDomain.AuditEvent) ([]byte, error)

	// Verify returns ErrSignatureInvalid when the event signature does not match its content.
	Verify(event *identityDomain.AuditEvent) error
}
