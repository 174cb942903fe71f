package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenPair is the bearer credential returned by every successful authentication. Not persisted.
type TokenPair struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	ID        string
	AccountID uuid.UUID
	Email     string
	Role      Role
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthResult is returned by the flows that authenticate an account.
type AuthResult struct {
	Account *Account
	Tokens  *TokenPair
}
