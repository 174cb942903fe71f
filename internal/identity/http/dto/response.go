package dto

import (
	"time"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// TokenResponse contains an issued token pair.
// SECURITY: tokens are bearer credentials and are never logged.
type TokenResponse struct {
	TokenType             string    `json:"token_type"`
	AccessToken           string    `json:"access_token"`  //nolint:gosec // issued to the caller
	RefreshToken          string    `json:"refresh_token"` //nolint:gosec // issued to the caller
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// MapTokenPairToResponse converts a domain token pair to an API response.
func MapTokenPairToResponse(pair *identityDomain.TokenPair) TokenResponse {
	return TokenResponse{
		TokenType:             "Bearer",
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}
}

// AccountResponse represents an account in API responses. The phone is masked.
type AccountResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MapAccountToResponse converts a domain account to an API response. mask is applied to the phone.
func MapAccountToResponse(account *identityDomain.Account, mask func(string) string) AccountResponse {
	phone := account.Phone
	if phone != "" && mask != nil {
		phone = mask(phone)
	}
	return AccountResponse{
		ID:          account.ID.String(),
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Phone:       phone,
		Role:        string(account.Role),
		Status:      string(account.Status),
		LastLoginAt: account.LastLoginAt,
		CreatedAt:   account.CreatedAt,
	}
}

// AuthResponse is returned by register, login and claim verification.
type AuthResponse struct {
	Account AccountResponse `json:"account"`
	Tokens  TokenResponse   `json:"tokens"`
}

// MapAuthResultToResponse converts an authentication result to an API response.
func MapAuthResultToResponse(result *identityDomain.AuthResult, mask func(string) string) AuthResponse {
	return AuthResponse{
		Account: MapAccountToResponse(result.Account, mask),
		Tokens:  MapTokenPairToResponse(result.Tokens),
	}
}

// MessageResponse carries a human-readable acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// GuestAccountResponse is the 409 body returned when registration hits a guest account.
type GuestAccountResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	OrderCount int64  `json:"order_count"`
}
