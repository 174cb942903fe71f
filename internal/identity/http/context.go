package http

import (
	"context"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// claimsKey is a context key type for storing verified access token claims.
type claimsKey struct{}

// WithClaims stores verified access token claims in the context.
func WithClaims(ctx context.Context, claims *identityDomain.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves the access token claims set by AuthenticationMiddleware.
func GetClaims(ctx context.Context) (*identityDomain.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*identityDomain.TokenClaims)
	return claims, ok
}
