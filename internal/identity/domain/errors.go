package domain

import (
	"fmt"

	"github.com/allisson/identity/internal/errors"
)

// Identity errors. Each wraps one of the application sentinels so the transport layer can map
// it without knowing the identity package.
var (
	// ErrInvalidCredentials covers unknown email, guest account and wrong password alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrAccountInactive indicates the account exists but is not active.
	ErrAccountInactive = errors.Wrap(errors.ErrForbidden, "account is inactive")

	// ErrInvalidToken indicates a bearer token failed signature, expiry, type or revocation checks.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid or expired token")

	// ErrInvalidOrExpiredToken indicates a password reset secret is unknown, superseded or expired.
	ErrInvalidOrExpiredToken = errors.Wrap(errors.ErrUnauthorized, "invalid or expired reset token")

	// ErrNoCodeFound indicates no claim code was requested or it was already used.
	ErrNoCodeFound = errors.Wrap(errors.ErrUnauthorized, "no verification code found, request a new code")

	// ErrCodeExpired indicates the claim code expired; a new one must be requested.
	ErrCodeExpired = errors.Wrap(errors.ErrUnauthorized, "verification code expired, request a new code")

	// ErrInvalidCode indicates the claim code did not match.
	ErrInvalidCode = errors.Wrap(errors.ErrUnauthorized, "invalid verification code")

	// ErrTooManyAttempts indicates the claim ticket was destroyed after too many wrong codes.
	ErrTooManyAttempts = errors.Wrap(errors.ErrLocked, "too many attempts, request a new code")

	// ErrWeakPassword indicates the password is shorter than the minimum length.
	ErrWeakPassword = errors.Wrap(errors.ErrInvalidInput, "password must be at least 8 characters")

	// ErrAccountNotFound indicates no account matches the given id or email.
	ErrAccountNotFound = errors.Wrap(errors.ErrNotFound, "account not found")

	// ErrAccountAlreadyRegistered indicates a credentialed account already uses the email.
	ErrAccountAlreadyRegistered = errors.Wrap(errors.ErrConflict, "account already registered")

	// ErrAccountAlreadyCredentialed indicates a claim was attempted on an account that has a password.
	ErrAccountAlreadyCredentialed = errors.Wrap(
		errors.ErrInvalidInput,
		"account already has a password, log in or reset your password",
	)

	// ErrNoOrderHistory indicates a claim was attempted on a guest account without orders.
	ErrNoOrderHistory = errors.Wrap(errors.ErrInvalidInput, "account has no order history")

	// ErrGuestAccountExists indicates registration collided with a guest account.
	ErrGuestAccountExists = errors.Wrap(errors.ErrConflict, "guest account exists, claim it instead")

	// ErrSignatureInvalid indicates an audit event signature does not match its content.
	ErrSignatureInvalid = errors.Wrap(errors.ErrInvalidInput, "audit event signature is invalid")
)

// GuestAccountError is returned by Register when the email belongs to a guest account.
// OrderCount lets the caller route the user to the claim flow.
type GuestAccountError struct {
	OrderCount int64
}

func (e *GuestAccountError) Error() string {
	return fmt.Sprintf("%s (orders: %d)", ErrGuestAccountExists.Error(), e.OrderCount)
}

func (e *GuestAccountError) Unwrap() error {
	return ErrGuestAccountExists
}
