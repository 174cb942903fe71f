package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/identity/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// keyLoader implements KeyLoader using gocloud.dev/secrets.
type keyLoader struct{}

// NewKeyLoader creates a new KeyLoader.
func NewKeyLoader() KeyLoader {
	return &keyLoader{}
}

// LoadKey resolves the PII key.
//
// Without a KMS URI the encoded key is a 64-character hex string. With a KMS URI
// (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://) it is the base64
// ciphertext produced by WrapKey and is decrypted by the keeper. An empty encoded key
// returns nil, which selects ModeDisabled.
func (k *keyLoader) LoadKey(ctx context.Context, encodedKey, kmsKeyURI string) ([]byte, error) {
	encodedKey = strings.TrimSpace(encodedKey)
	if encodedKey == "" {
		return nil, nil
	}

	if kmsKeyURI == "" {
		return ParseHexKey(encodedKey)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wrapped key: %w", err)
	}

	keeper, err := secrets.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap key: %w", err)
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	return key, nil
}

// WrapKey encrypts key with the KMS keeper and returns the base64 ciphertext.
func (k *keyLoader) WrapKey(ctx context.Context, key []byte, kmsKeyURI string) (string, error) {
	if len(key) != cryptoDomain.KeySize {
		return "", cryptoDomain.ErrInvalidKeySize
	}

	keeper, err := secrets.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return "", fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to wrap key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
