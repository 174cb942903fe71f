package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/metrics"
)

const metricsDomain = "identity"

// identityUseCaseWithMetrics decorates IdentityUseCase with metrics instrumentation.
type identityUseCaseWithMetrics struct {
	next    IdentityUseCase
	metrics metrics.BusinessMetrics
}

// NewIdentityUseCaseWithMetrics wraps an IdentityUseCase with metrics recording.
func NewIdentityUseCaseWithMetrics(useCase IdentityUseCase, m metrics.BusinessMetrics) IdentityUseCase {
	return &identityUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (i *identityUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	i.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Register records metrics for account registration.
func (i *identityUseCaseWithMetrics) Register(
	ctx context.Context,
	input *identityDomain.RegisterInput,
) (*identityDomain.AuthResult, error) {
	start := time.Now()
	result, err := i.next.Register(ctx, input)
	i.record(ctx, "register", start, err)
	return result, err
}

// Login records metrics for password login.
func (i *identityUseCaseWithMetrics) Login(
	ctx context.Context,
	input *identityDomain.LoginInput,
) (*identityDomain.AuthResult, error) {
	start := time.Now()
	result, err := i.next.Login(ctx, input)
	i.record(ctx, "login", start, err)
	return result, err
}

// Refresh records metrics for token refresh.
func (i *identityUseCaseWithMetrics) Refresh(
	ctx context.Context,
	refreshToken string,
) (*identityDomain.TokenPair, error) {
	start := time.Now()
	tokens, err := i.next.Refresh(ctx, refreshToken)
	i.record(ctx, "refresh", start, err)
	return tokens, err
}

// ChangePassword records metrics for password changes.
func (i *identityUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	input *identityDomain.ChangePasswordInput,
) error {
	start := time.Now()
	err := i.next.ChangePassword(ctx, input)
	i.record(ctx, "password_change", start, err)
	return err
}

// ForgotPassword records metrics for reset requests.
func (i *identityUseCaseWithMetrics) ForgotPassword(ctx context.Context, email, ip string) (string, error) {
	start := time.Now()
	message, err := i.next.ForgotPassword(ctx, email, ip)
	i.record(ctx, "password_forgot", start, err)
	return message, err
}

// ResetPassword records metrics for password resets.
func (i *identityUseCaseWithMetrics) ResetPassword(
	ctx context.Context,
	input *identityDomain.ResetPasswordInput,
) error {
	start := time.Now()
	err := i.next.ResetPassword(ctx, input)
	i.record(ctx, "password_reset", start, err)
	return err
}

// ClaimAccount records metrics for claim code requests.
func (i *identityUseCaseWithMetrics) ClaimAccount(
	ctx context.Context,
	input *identityDomain.ClaimAccountInput,
) error {
	start := time.Now()
	err := i.next.ClaimAccount(ctx, input)
	i.record(ctx, "claim", start, err)
	return err
}

// VerifyClaim records metrics for claim verification.
func (i *identityUseCaseWithMetrics) VerifyClaim(
	ctx context.Context,
	input *identityDomain.VerifyClaimInput,
) (*identityDomain.AuthResult, error) {
	start := time.Now()
	result, err := i.next.VerifyClaim(ctx, input)
	i.record(ctx, "claim_verify", start, err)
	return result, err
}

// Logout records metrics for token revocation.
func (i *identityUseCaseWithMetrics) Logout(ctx context.Context, input *identityDomain.LogoutInput) error {
	start := time.Now()
	err := i.next.Logout(ctx, input)
	i.record(ctx, "logout", start, err)
	return err
}

// Authenticate records metrics for access token checks.
func (i *identityUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	accessToken string,
) (*identityDomain.TokenClaims, error) {
	start := time.Now()
	claims, err := i.next.Authenticate(ctx, accessToken)
	i.record(ctx, "authenticate", start, err)
	return claims, err
}

// GetAccount records metrics for account lookups.
func (i *identityUseCaseWithMetrics) GetAccount(
	ctx context.Context,
	id uuid.UUID,
) (*identityDomain.Account, error) {
	start := time.Now()
	account, err := i.next.GetAccount(ctx, id)
	i.record(ctx, "account_get", start, err)
	return account, err
}
