package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

var testSigningSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestTokenIssuer(t *testing.T, now func() time.Time) TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret:   testSigningSecret,
		Issuer:          "identity-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Now:             now,
	})
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer(t *testing.T) {
	t.Run("Error_ShortSecret", func(t *testing.T) {
		issuer, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("short")})
		assert.ErrorIs(t, err, ErrSigningSecretTooShort)
		assert.Nil(t, issuer)
	})
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestTokenIssuer(t, func() time.Time { return now })
	accountID := uuid.Must(uuid.NewV7())

	pair, err := issuer.Issue(accountID, "jane@example.com", identityDomain.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), pair.AccessTokenExpiresAt)
	assert.Equal(t, now.Add(7*24*time.Hour), pair.RefreshTokenExpiresAt)

	t.Run("Success_AccessToken", func(t *testing.T) {
		claims, err := issuer.Verify(pair.AccessToken, identityDomain.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, accountID, claims.AccountID)
		assert.Equal(t, "jane@example.com", claims.Email)
		assert.Equal(t, identityDomain.RoleCustomer, claims.Role)
		assert.Equal(t, identityDomain.TokenTypeAccess, claims.Type)
		assert.Equal(t, now, claims.IssuedAt)
		assert.Equal(t, now.Add(15*time.Minute), claims.ExpiresAt)
		assert.Equal(t, time.UTC, claims.ExpiresAt.Location())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("Success_RefreshTokenCarriesNoProfile", func(t *testing.T) {
		claims, err := issuer.Verify(pair.RefreshToken, identityDomain.TokenTypeRefresh)
		require.NoError(t, err)
		assert.Equal(t, accountID, claims.AccountID)
		assert.Empty(t, claims.Email)
		assert.Empty(t, claims.Role)
	})

	t.Run("Success_UniqueTokenIDs", func(t *testing.T) {
		access, err := issuer.Verify(pair.AccessToken, identityDomain.TokenTypeAccess)
		require.NoError(t, err)
		refresh, err := issuer.Verify(pair.RefreshToken, identityDomain.TokenTypeRefresh)
		require.NoError(t, err)
		assert.NotEqual(t, access.ID, refresh.ID)
	})

	t.Run("Error_WrongType", func(t *testing.T) {
		_, err := issuer.Verify(pair.AccessToken, identityDomain.TokenTypeRefresh)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)

		_, err = issuer.Verify(pair.RefreshToken, identityDomain.TokenTypeAccess)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("Error_Garbage", func(t *testing.T) {
		_, err := issuer.Verify("not.a.token", identityDomain.TokenTypeAccess)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("Error_TamperedPayload", func(t *testing.T) {
		parts := strings.Split(pair.AccessToken, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]

		_, err := issuer.Verify(tampered, identityDomain.TokenTypeAccess)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})
}

func TestTokenIssuer_VerifyRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	issuer := newTestTokenIssuer(t, func() time.Time { return clock })
	accountID := uuid.Must(uuid.NewV7())

	pair, err := issuer.Issue(accountID, "jane@example.com", identityDomain.RoleAdmin)
	require.NoError(t, err)

	t.Run("Error_ExpiredAccessToken", func(t *testing.T) {
		clock = now.Add(15 * time.Minute)
		defer func() { clock = now }()

		_, err := issuer.Verify(pair.AccessToken, identityDomain.TokenTypeAccess)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)

		_, err = issuer.Verify(pair.RefreshToken, identityDomain.TokenTypeRefresh)
		assert.NoError(t, err)
	})

	t.Run("Error_OtherSecret", func(t *testing.T) {
		other, err := NewTokenIssuer(TokenIssuerConfig{
			SigningSecret:  []byte("ffffffffffffffffffffffffffffffff"),
			Issuer:         "identity-test",
			AccessTokenTTL: time.Minute,
			Now:            func() time.Time { return now },
		})
		require.NoError(t, err)

		_, err = other.Verify(pair.AccessToken, identityDomain.TokenTypeAccess)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("Error_OtherIssuer", func(t *testing.T) {
		other, err := NewTokenIssuer(TokenIssuerConfig{
			SigningSecret:  testSigningSecret,
			Issuer:         "someone-else",
			AccessTokenTTL: time.Minute,
			Now:            func() time.Time { return now },
		})
		require.NoError(t, err)

		_, err = other.Verify(pair.AccessToken, identityDomain.TokenTypeAccess)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("Error_NoneAlgorithm", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub":  accountID.String(),
			"type": "access",
			"jti":  "x",
			"iss":  "identity-test",
			"exp":  now.Add(time.Hour).Unix(),
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Verify(unsigned, identityDomain.TokenTypeAccess)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("Error_MissingExpiry", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub":  accountID.String(),
			"type": "access",
			"jti":  "x",
			"iss":  "identity-test",
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningSecret)
		require.NoError(t, err)

		_, err = issuer.Verify(signed, identityDomain.TokenTypeAccess)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})

	t.Run("Error_SubjectNotUUID", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub":  "42",
			"type": "access",
			"jti":  "x",
			"iss":  "identity-test",
			"exp":  now.Add(time.Hour).Unix(),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningSecret)
		require.NoError(t, err)

		_, err = issuer.Verify(signed, identityDomain.TokenTypeAccess)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidToken)
	})
}
