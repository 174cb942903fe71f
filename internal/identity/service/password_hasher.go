package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/identity/internal/errors"
)

// argon2Hasher implements PasswordHasher with Argon2id.
type argon2Hasher struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordHasher creates a PasswordHasher using the Argon2id interactive policy.
func NewPasswordHasher() (PasswordHasher, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}
	return &argon2Hasher{hasher: hasher}, nil
}

// Hash hashes password into a PHC-formatted Argon2id string.
func (a *argon2Hasher) Hash(password string) (string, error) {
	hash, err := a.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

// Verify performs a constant-time comparison of password against hash.
func (a *argon2Hasher) Verify(password, hash string) bool {
	ok, err := a.hasher.Verify([]byte(password), hash)
	if err != nil {
		return false
	}
	return ok
}
