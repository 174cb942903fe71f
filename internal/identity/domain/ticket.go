package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResetTicket is the stored half of a password reset secret. Only the SHA-256 hash of the
// secret is kept; the plaintext goes to the account owner and nowhere else.
type ResetTicket struct {
	AccountID uuid.UUID `json:"account_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the ticket is no longer valid at now.
func (t *ResetTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ClaimTicket holds a pending guest claim: the hashed verification code and the profile fields
// submitted by the claimant. The attempt counter lives in the ticket store next to it.
type ClaimTicket struct {
	AccountID uuid.UUID `json:"account_id"`
	CodeHash  string    `json:"code_hash"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the ticket is no longer valid at now.
func (t *ClaimTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ResetAccountKey is the ticket store key pointing an account at its live reset token hash.
func ResetAccountKey(accountID uuid.UUID) string {
	return "reset:account:" + accountID.String()
}

// ResetTokenKey is the ticket store key holding the reset ticket for a token hash.
func ResetTokenKey(tokenHash string) string {
	return "reset:token:" + tokenHash
}

// ClaimKey is the ticket store key holding the claim ticket for an account.
func ClaimKey(accountID uuid.UUID) string {
	return "claim:" + accountID.String()
}

// DenylistKey is the ticket store key marking a bearer token id as revoked.
func DenylistKey(tokenID string) string {
	return "denylist:" + tokenID
}
