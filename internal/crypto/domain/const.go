// Package domain defines the types and constants of the PII cipher.
package domain

// Mode describes whether the cipher holds a usable key.
type Mode int

const (
	// ModeEnabled means a 256-bit key is loaded and values are encrypted.
	ModeEnabled Mode = iota
	// ModeDisabled means no key is configured and Encrypt returns its input.
	// This is an unsafe operating mode and is surfaced at startup.
	ModeDisabled
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeEnabled:
		return "enabled"
	case ModeDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32
	// IVSize is the GCM nonce size in bytes (128 bits).
	IVSize = 16
	// TagSize is the GCM authentication tag size in bytes (128 bits).
	TagSize = 16
	// VersionPrefix tags every value produced by Encrypt.
	VersionPrefix = "v1:"
	// PartSeparator joins the iv, tag and ciphertext parts.
	PartSeparator = ":"
	// DefaultVisibleChars is the number of trailing characters left visible by masking.
	DefaultVisibleChars = 4
	// DefaultTokenLength is the number of random bytes drawn by token generation.
	DefaultTokenLength = 32
)
