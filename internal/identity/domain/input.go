package domain

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/identity/internal/validation"
)

// RegisterInput contains the data required to create a credentialed account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	IP        string
	UserAgent string
}

// Validate checks the email and profile fields, then the password policy.
func (i *RegisterInput) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.Email, validation.Required, customValidation.Email, validation.Length(1, 255)),
		validation.Field(&i.FirstName, validation.Length(0, 100)),
		validation.Field(&i.LastName, validation.Length(0, 100)),
		validation.Field(&i.Phone, customValidation.Phone),
	)
	if err != nil {
		return customValidation.WrapValidationError(err)
	}
	return ValidatePassword(i.Password)
}

// LoginInput contains the credentials presented at login.
type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// ChangePasswordInput contains the data required to change the password of an authenticated account.
type ChangePasswordInput struct {
	AccountID       uuid.UUID
	CurrentPassword string
	NewPassword     string
	IP              string
}

// ResetPasswordInput contains a reset secret and the new password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
	IP          string
}

// ClaimAccountInput starts the guest claim flow.
type ClaimAccountInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	IP        string
}

// Validate checks the claim request fields.
func (i *ClaimAccountInput) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.Email, validation.Required, customValidation.Email),
		validation.Field(&i.FirstName, validation.Length(0, 100)),
		validation.Field(&i.LastName, validation.Length(0, 100)),
		validation.Field(&i.Phone, customValidation.Phone),
	)
	return customValidation.WrapValidationError(err)
}

// VerifyClaimInput completes the guest claim flow.
type VerifyClaimInput struct {
	Email    string
	Code     string
	Password string
	IP       string
}

// LogoutInput carries the tokens to revoke. Either may be empty.
type LogoutInput struct {
	AccessToken  string
	RefreshToken string
	IP           string
}

// ValidatePassword returns ErrWeakPassword when password does not meet the length policy.
func ValidatePassword(password string) error {
	if err := customValidation.Password.Validate(password); err != nil {
		return ErrWeakPassword
	}
	return nil
}
