package domain

import (
	"github.com/allisson/identity/internal/errors"
)

// Cryptographic operation error definitions.
//
// None of these wrap a standard sentinel from internal/errors: a crypto failure is always
// reported to callers as a generic internal error so cipher internals never reach a response.
var (
	// ErrInvalidKeySize indicates the PII key is not exactly 32 bytes (64 hex characters).
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrMalformedCiphertext indicates the encrypted value does not have the
	// iv:tag:ciphertext layout or one of its parts cannot be decoded.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrDecryptionFailed indicates authenticated decryption failed.
	//
	// This error can occur due to:
	//   - Wrong decryption key used
	//   - Ciphertext or tag has been tampered with
	//   - Corrupted encrypted data
	//
	// The specific cause is never disclosed.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrCipherDisabled indicates a version-tagged value was presented to a cipher
	// running without a key.
	ErrCipherDisabled = errors.New("cipher disabled: no encryption key configured")
)
