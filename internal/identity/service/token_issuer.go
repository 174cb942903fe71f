package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// MinSigningSecretLength is the shortest HMAC secret accepted for token signing.
const MinSigningSecretLength = 32

// ErrSigningSecretTooShort is returned by NewTokenIssuer for secrets under MinSigningSecretLength bytes.
var ErrSigningSecretTooShort = errors.New("token signing secret must be at least 32 bytes")

// TokenIssuerConfig holds the bearer token settings.
type TokenIssuerConfig struct {
	SigningSecret   []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// jwtTokenIssuer implements TokenIssuer with HS256 JWTs.
type jwtTokenIssuer struct {
	config TokenIssuerConfig
	parser *jwt.Parser
}

// NewTokenIssuer creates a TokenIssuer signing HS256 JWTs.
func NewTokenIssuer(config TokenIssuerConfig) (TokenIssuer, error) {
	if len(config.SigningSecret) < MinSigningSecretLength {
		return nil, ErrSigningSecretTooShort
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(config.Now),
	)

	return &jwtTokenIssuer{config: config, parser: parser}, nil
}

// Issue creates an access token carrying email and role and a refresh token carrying only the subject.
func (j *jwtTokenIssuer) Issue(
	accountID uuid.UUID,
	email string,
	role identityDomain.Role,
) (*identityDomain.TokenPair, error) {
	now := j.config.Now()

	access, accessExp, err := j.sign(&tokenClaims{
		Email: email,
		Role:  string(role),
		Type:  string(identityDomain.TokenTypeAccess),
	}, accountID, now, j.config.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refresh, refreshExp, err := j.sign(&tokenClaims{
		Type: string(identityDomain.TokenTypeRefresh),
	}, accountID, now, j.config.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &identityDomain.TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

func (j *jwtTokenIssuer) sign(
	claims *tokenClaims,
	accountID uuid.UUID,
	now time.Time,
	ttl time.Duration,
) (string, time.Time, error) {
	jti, err := uuid.NewV7()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        jti.String(),
		Issuer:    j.config.Issuer,
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: expiresAt,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.config.SigningSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.UTC(), nil
}

// Verify parses token and checks it is a valid token of the expected type.
func (j *jwtTokenIssuer) Verify(
	token string,
	expected identityDomain.TokenType,
) (*identityDomain.TokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := j.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return j.config.SigningSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, identityDomain.ErrInvalidToken
	}

	if claims.Type != string(expected) || claims.ID == "" {
		return nil, identityDomain.ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, identityDomain.ErrInvalidToken
	}

	result := &identityDomain.TokenClaims{
		ID:        claims.ID,
		AccountID: accountID,
		Email:     claims.Email,
		Role:      identityDomain.Role(claims.Role),
		Type:      expected,
		ExpiresAt: claims.ExpiresAt.UTC(),
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.UTC()
	}
	return result, nil
}
