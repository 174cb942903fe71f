package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is a customer identity. A nil PasswordHash marks a guest account created during
// checkout; guests never authenticate by password and become credentialed through the claim flow.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash *string
	Status       Status
	Role         Role
	FirstName    string
	LastName     string
	Phone        string
	LastLoginAt  *time.Time
	LastLoginIP  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsGuest reports whether the account has no password.
func (a *Account) IsGuest() bool {
	return a.PasswordHash == nil || *a.PasswordHash == ""
}

// IsActive reports whether the account may authenticate.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// SetPassword stores a new password hash.
func (a *Account) SetPassword(hash string, now time.Time) {
	a.PasswordHash = &hash
	a.UpdatedAt = now
}

// MergeProfile copies the given profile fields into the account where the account's
// field is currently empty. Existing values are never overwritten.
func (a *Account) MergeProfile(firstName, lastName, phone string) {
	if a.FirstName == "" {
		a.FirstName = firstName
	}
	if a.LastName == "" {
		a.LastName = lastName
	}
	if a.Phone == "" {
		a.Phone = phone
	}
}

// RecordLogin stamps the last successful login.
func (a *Account) RecordLogin(ip string, now time.Time) {
	a.LastLoginAt = &now
	if ip != "" {
		a.LastLoginIP = &ip
	}
	a.UpdatedAt = now
}

// NormalizeEmail lowercases and trims an email. Every write and lookup goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
