package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	cryptoDomain "github.com/allisson/identity/internal/crypto/domain"
	cryptoService "github.com/allisson/identity/internal/crypto/service"
)

type cryptoComponents struct {
	keyLoader    cryptoService.KeyLoader
	secretCipher cryptoService.SecretCipher

	keyLoaderInit    sync.Once
	secretCipherInit sync.Once
}

// KeyLoader returns the PII key loader.
func (c *Container) KeyLoader() cryptoService.KeyLoader {
	c.keyLoaderInit.Do(func() {
		c.keyLoader = cryptoService.NewKeyLoader()
	})
	return c.keyLoader
}

// SecretCipher returns the PII cipher built from the configured key.
func (c *Container) SecretCipher() (cryptoService.SecretCipher, error) {
	var err error
	c.secretCipherInit.Do(func() {
		c.secretCipher, err = c.initSecretCipher()
		if err != nil {
			c.initErrors["secretCipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretCipher"]; exists {
		return nil, storedErr
	}
	return c.secretCipher, nil
}

// initSecretCipher loads the PII key, unwrapping it through the KMS when configured.
func (c *Container) initSecretCipher() (cryptoService.SecretCipher, error) {
	key, err := c.KeyLoader().LoadKey(context.Background(), c.config.PIIEncryptionKey, c.config.PIIKeyKMSURI)
	if err != nil {
		return nil, fmt.Errorf("failed to load pii key: %w", err)
	}
	if key == nil && !c.config.PIIAllowDisabledCipher {
		return nil, fmt.Errorf("pii key is not configured: %w", cryptoDomain.ErrCipherDisabled)
	}

	cipher, err := cryptoService.NewSecretCipher(key)
	cryptoDomain.Zero(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create pii cipher: %w", err)
	}

	if cipher.Mode() == cryptoDomain.ModeDisabled {
		c.Logger().Warn("pii cipher is disabled, personal data will be stored in plaintext",
			slog.String("mode", cipher.Mode().String()))
	}

	return cipher, nil
}
