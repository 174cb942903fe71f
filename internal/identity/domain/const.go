// Package domain defines the identity domain model: accounts, bearer token pairs, the
// ephemeral reset and claim tickets, and the audit events emitted by every credential flow.
package domain

import "time"

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Role is the authorization role carried in access tokens.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// EventType names a security-relevant event written to the audit sink.
type EventType string

const (
	EventAccountRegistered      EventType = "account_registered"
	EventLoginSuccess           EventType = "login_success"
	EventLoginFailure           EventType = "login_failure"
	EventPasswordChanged        EventType = "password_changed"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
	EventClaimCodeIssued        EventType = "claim_code_issued"
	EventAccountClaimed         EventType = "account_claimed"
	EventLogout                 EventType = "logout"
)

// Notification templates.
const (
	TemplateWelcome         = "welcome"
	TemplatePasswordReset   = "password_reset"
	TemplatePasswordChanged = "password_changed"
	TemplateClaimCode       = "claim_code"
)

const (
	// DefaultResetTicketTTL is how long a password reset secret stays valid.
	DefaultResetTicketTTL = time.Hour

	// DefaultClaimTicketTTL is how long a claim verification code stays valid.
	DefaultClaimTicketTTL = 15 * time.Minute

	// DefaultClaimMaxAttempts is the number of code comparisons allowed per claim ticket.
	DefaultClaimMaxAttempts = 5

	// ClaimCodeLength is the number of digits in a claim verification code.
	ClaimCodeLength = 4

	// ResetTokenBytes is the number of random bytes in a password reset secret.
	ResetTokenBytes = 32
)

// ForgotPasswordMessage is returned by ForgotPassword whether or not the account exists.
const ForgotPasswordMessage = "If an account exists for this email, a password reset link has been sent."
