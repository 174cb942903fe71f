// Package usecase implements the identity flows: registration, login, token refresh and
// revocation, password change and reset, and the guest account claim.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// AccountRepository defines persistence operations for accounts.
// Implementations must support transaction-aware operations via context propagation.
type AccountRepository interface {
	Create(ctx context.Context, account *identityDomain.Account) error
	Update(ctx context.Context, account *identityDomain.Account) error

	// GetByID returns ErrAccountNotFound if no account has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*identityDomain.Account, error)

	// GetByEmail expects a normalized email. Returns ErrAccountNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*identityDomain.Account, error)

	// CountOrders returns the number of orders placed by the account.
	CountOrders(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// AuditEventRepository persists audit events.
type AuditEventRepository interface {
	Create(ctx context.Context, event *identityDomain.AuditEvent) error

	// List returns events ordered by created_at ascending. Both time bounds are inclusive
	// and optional.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*identityDomain.AuditEvent, error)
}

// AuditSink receives audit events from the identity flows.
type AuditSink interface {
	Record(ctx context.Context, event *identityDomain.AuditEvent) error
}

// IdentityUseCase is the account state machine.
//
// Every failure returned to callers is one of the identity domain errors. Internal reasons
// (unknown email, guest account, wrong password) never leak: they are logged and written to
// the audit sink only.
type IdentityUseCase interface {
	// Register creates a credentialed account and authenticates it. Returns *GuestAccountError
	// when the email belongs to a guest account and ErrAccountAlreadyRegistered when it belongs
	// to a credentialed one.
	Register(ctx context.Context, input *identityDomain.RegisterInput) (*identityDomain.AuthResult, error)

	// Login authenticates by email and password.
	Login(ctx context.Context, input *identityDomain.LoginInput) (*identityDomain.AuthResult, error)

	// Refresh exchanges a refresh token for a new pair. The presented token stays valid until
	// it expires or is revoked by Logout.
	Refresh(ctx context.Context, refreshToken string) (*identityDomain.TokenPair, error)

	ChangePassword(ctx context.Context, input *identityDomain.ChangePasswordInput) error

	// ForgotPassword always returns ForgotPasswordMessage and a nil error, whether or not the
	// account exists and whether or not the reset could be issued.
	ForgotPassword(ctx context.Context, email, ip string) (string, error)

	// ResetPassword consumes a reset secret. A secret can be used once.
	ResetPassword(ctx context.Context, input *identityDomain.ResetPasswordInput) error

	// ClaimAccount sends a verification code to the owner of a guest account with orders.
	ClaimAccount(ctx context.Context, input *identityDomain.ClaimAccountInput) error

	// VerifyClaim checks the verification code, sets the password and authenticates.
	VerifyClaim(ctx context.Context, input *identityDomain.VerifyClaimInput) (*identityDomain.AuthResult, error)

	// Logout revokes the presented tokens until they expire.
	Logout(ctx context.Context, input *identityDomain.LogoutInput) error

	// Authenticate verifies an access token and rejects revoked ones.
	Authenticate(ctx context.Context, accessToken string) (*identityDomain.TokenClaims, error)

	// GetAccount returns ErrAccountNotFound if no account has the id.
	GetAccount(ctx context.Context, id uuid.UUID) (*identityDomain.Account, error)
}

// AuditLogUseCase signs and stores audit events and verifies stored signatures.
type AuditLogUseCase interface {
	AuditSink

	// Verify checks the signature of every event in the range, reading batchSize events at a time.
	Verify(
		ctx context.Context,
		createdAtFrom, createdAtTo *time.Time,
		batchSize int,
	) (*identityDomain.AuditVerificationReport, error)
}
