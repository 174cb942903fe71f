package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

var accountColumns = []string{
	"id", "email", "password_hash", "status", "role", "first_name", "last_name", "phone",
	"last_login_at", "last_login_ip", "created_at", "updated_at",
}

var auditEventColumns = []string{
	"id", "event_type", "account_id", "email", "ip", "user_agent", "metadata", "signature", "created_at",
}

func newTestCipher(t *testing.T) cryptoService.SecretCipher {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	cipher, err := cryptoService.NewSecretCipher(key)
	require.NoError(t, err)
	return cipher
}

func newTestAccount() *identityDomain.Account {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hash := "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"
	return &identityDomain.Account{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        "jane@example.com",
		PasswordHash: &hash,
		Status:       identityDomain.StatusActive,
		Role:         identityDomain.RoleCustomer,
		FirstName:    "Jane",
		LastName:     "Doe",
		Phone:        "+5511999998888",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func mustBinary(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}
