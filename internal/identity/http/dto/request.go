// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	customValidation "github.com/allisson/identity/internal/validation"
)

// RegisterRequest contains the parameters for creating a credentialed account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"` //nolint:gosec // request field
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Validate checks if the register request is valid. Password policy is enforced by the use case.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginRequest contains the credentials presented at login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshRequest carries the refresh token to exchange for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"` //nolint:gosec // request field
}

// Validate checks if the refresh request is valid.
func (r *RefreshRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken, validation.Required, customValidation.NotBlank),
	)
}

// LogoutRequest carries the refresh token to revoke. The access token, when present,
// comes from the Authorization header.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"` //nolint:gosec // request field
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate checks if the forgot password request is valid.
func (r *ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.NotBlank),
	)
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token"`        //nolint:gosec // request field
	NewPassword string `json:"new_password"` //nolint:gosec // request field
}

// Validate checks if the reset password request is valid.
func (r *ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// ChangePasswordRequest changes the password of the authenticated account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"` //nolint:gosec // request field
	NewPassword     string `json:"new_password"`     //nolint:gosec // request field
}

// Validate checks if the change password request is valid.
func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// ClaimRequest starts the guest account claim flow.
type ClaimRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Validate checks if the claim request is valid.
func (r *ClaimRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.NotBlank),
	)
}

// VerifyClaimRequest completes the guest account claim flow.
type VerifyClaimRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"` //nolint:gosec // request field
}

// Validate checks if the verify claim request is valid.
func (r *VerifyClaimRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Code, validation.Required, customValidation.NumericCode(identityDomain.ClaimCodeLength)),
		validation.Field(&r.Password, validation.Required),
	)
}
