package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	cryptoDomain "github.com/allisson/identity/internal/crypto/domain"
)

// secretCipher implements SecretCipher using AES-256-GCM with a 128-bit random IV.
//
// Encrypted values have the layout:
//
//	v1:base64(iv):base64(tag):base64(ciphertext)
//
// The "v1:" prefix makes encrypted values explicit instead of guessing from their shape.
// Three-part values without the prefix are still accepted by Decrypt.
//
// Thread safety:
//
//	The cipher instance is stateless and safe for concurrent use from multiple
//	goroutines. Each encryption draws a fresh IV from crypto/rand.
type secretCipher struct {
	aead cipher.AEAD
}

// NewSecretCipher creates a SecretCipher from a raw key.
//
// A nil or empty key yields a cipher in ModeDisabled: Encrypt returns plaintext unchanged and
// Decrypt returns untagged input unchanged. Any other key must be exactly 32 bytes.
func NewSecretCipher(key []byte) (SecretCipher, error) {
	if len(key) == 0 {
		return &secretCipher{}, nil
	}
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, cryptoDomain.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &secretCipher{aead: aead}, nil
}

// ParseHexKey decodes a 64-character hex key into its 32 raw bytes.
func ParseHexKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return key, nil
}

// Mode reports whether a key is loaded.
func (s *secretCipher) Mode() cryptoDomain.Mode {
	if s.aead == nil {
		return cryptoDomain.ModeDisabled
	}
	return cryptoDomain.ModeEnabled
}

// Encrypt encrypts plaintext with a fresh IV per call.
//
// GCM appends the 16-byte tag to the sealed output; it is split off and encoded as its
// own part so the stored layout is iv:tag:ciphertext.
func (s *secretCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" || s.aead == nil {
		return plaintext, nil
	}

	iv := make([]byte, cryptoDomain.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := s.aead.Seal(nil, iv, []byte(plaintext), nil)
	tagStart := len(sealed) - cryptoDomain.TagSize
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return cryptoDomain.VersionPrefix + strings.Join([]string{
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(tag),
		base64.StdEncoding.EncodeToString(ciphertext),
	}, cryptoDomain.PartSeparator), nil
}

// Decrypt authenticates and decrypts a value produced by Encrypt.
//
// Returns ErrMalformedCiphertext when the value does not split into exactly three decodable
// parts and ErrDecryptionFailed when authentication fails. No plaintext is ever returned
// on failure.
func (s *secretCipher) Decrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	if s.aead == nil {
		if strings.HasPrefix(value, cryptoDomain.VersionPrefix) {
			return "", cryptoDomain.ErrCipherDisabled
		}
		return value, nil
	}

	parts := strings.Split(strings.TrimPrefix(value, cryptoDomain.VersionPrefix), cryptoDomain.PartSeparator)
	if len(parts) != 3 {
		return "", cryptoDomain.ErrMalformedCiphertext
	}

	iv, ivErr := base64.StdEncoding.DecodeString(parts[0])
	tag, tagErr := base64.StdEncoding.DecodeString(parts[1])
	ciphertext, ctErr := base64.StdEncoding.DecodeString(parts[2])
	if err := errors.Join(ivErr, tagErr, ctErr); err != nil {
		return "", cryptoDomain.ErrMalformedCiphertext
	}
	if len(iv) != cryptoDomain.IVSize || len(tag) != cryptoDomain.TagSize {
		return "", cryptoDomain.ErrMalformedCiphertext
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := s.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// Hash returns the SHA-256 hex digest of data.
func (s *secretCipher) Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// Mask keeps the last visibleChars runes of data and replaces the rest with '*'.
// Strings no longer than visibleChars are masked entirely.
func (s *secretCipher) Mask(data string, visibleChars int) string {
	runes := []rune(data)
	if visibleChars < 0 {
		visibleChars = 0
	}
	if len(runes) <= visibleChars {
		return strings.Repeat("*", len(runes))
	}

	hidden := len(runes) - visibleChars
	return strings.Repeat("*", hidden) + string(runes[hidden:])
}

func (s *secretCipher) MaskDefault(data string) string {
	return s.Mask(data, cryptoDomain.DefaultVisibleChars)
}

// GenerateToken returns length cryptographically secure random bytes, hex encoded.
func (s *secretCipher) GenerateToken(length int) (string, error) {
	if length < 1 {
		return "", errors.New("token length must be at least 1")
	}

	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return hex.EncodeToString(randomBytes), nil
}

func (s *secretCipher) GenerateDefaultToken() (string, error) {
	return s.GenerateToken(cryptoDomain.DefaultTokenLength)
}
