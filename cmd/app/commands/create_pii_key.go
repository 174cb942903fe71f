package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/identity/internal/crypto/domain"
	cryptoService "github.com/allisson/identity/internal/crypto/service"
)

// RunCreatePIIKey generates a random 32-byte PII encryption key and prints it as environment
// variables. Without a KMS URI the key is printed hex encoded. With one, the key is wrapped by
// the KMS and the base64 ciphertext is printed together with PII_KEY_KMS_URI.
//
// The raw key is zeroed from memory before returning.
func RunCreatePIIKey(
	ctx context.Context,
	keyLoader cryptoService.KeyLoader,
	writer io.Writer,
	kmsKeyURI string,
) error {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate pii key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	if kmsKeyURI == "" {
		_, _ = fmt.Fprintln(writer, "# PII key configuration")
		_, _ = fmt.Fprintln(writer, "# Copy this environment variable to your .env file or secrets manager")
		_, _ = fmt.Fprintf(writer, "PII_ENCRYPTION_KEY=\"%s\"\n", hex.EncodeToString(key))
		return nil
	}

	wrapped, err := keyLoader.WrapKey(ctx, key, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to wrap pii key with KMS: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "# PII key configuration (KMS mode)")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintf(writer, "PII_KEY_KMS_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "PII_ENCRYPTION_KEY=\"%s\"\n", wrapped)
	return nil
}
