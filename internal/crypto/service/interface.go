// Package service provides the PII cipher: authenticated encryption of personal data at rest,
// one-way hashing for opaque lookups, display masking and secure random token generation.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/identity/internal/crypto/domain"
)

// SecretCipher protects PII strings. Implementations are stateless apart from the loaded key
// and are safe for concurrent use.
type SecretCipher interface {
	// Mode reports whether a key is loaded. Callers must surface ModeDisabled as unsafe.
	Mode() cryptoDomain.Mode

	// Encrypt returns the version-tagged "v1:iv:tag:ciphertext" form of plaintext.
	// Empty input returns empty output.
	Encrypt(plaintext string) (string, error)

	// Decrypt reverses Encrypt. Empty input returns empty output.
	Decrypt(value string) (string, error)

	// Hash returns the SHA-256 hex digest of data, for equality lookups only.
	Hash(data string) string

	// Mask replaces every character except the last visibleChars with '*'.
	Mask(data string, visibleChars int) string

	// MaskDefault masks data keeping the last four characters visible.
	MaskDefault(data string) string

	// GenerateToken draws length random bytes and returns them hex encoded.
	GenerateToken(length int) (string, error)

	// GenerateDefaultToken returns a 32-byte random token, hex encoded.
	GenerateDefaultToken() (string, error)
}

// KeyLoader resolves the configured PII key, unwrapping it through a KMS when configured.
type KeyLoader interface {
	// LoadKey returns the raw 32-byte key, or nil when no key is configured.
	LoadKey(ctx context.Context, encodedKey, kmsKeyURI string) ([]byte, error)

	// WrapKey encrypts a raw key with the KMS keeper behind kmsKeyURI and returns it base64 encoded.
	WrapKey(ctx context.Context, key []byte, kmsKeyURI string) (string, error)
}
