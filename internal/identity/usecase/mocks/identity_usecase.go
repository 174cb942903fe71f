// Package mocks provides mock implementations of the identity use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// MockIdentityUseCase is a mock implementation of IdentityUseCase.
type MockIdentityUseCase struct {
	mock.Mock
}

func (m *MockIdentityUseCase) Register(
	ctx context.Context,
	input *identityDomain.RegisterInput,
) (*identityDomain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.AuthResult), args.Error(1)
}

func (m *MockIdentityUseCase) Login(
	ctx context.Context,
	input *identityDomain.LoginInput,
) (*identityDomain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.AuthResult), args.Error(1)
}

func (m *MockIdentityUseCase) Refresh(ctx context.Context, refreshToken string) (*identityDomain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.TokenPair), args.Error(1)
}

func (m *MockIdentityUseCase) ChangePassword(ctx context.Context, input *identityDomain.ChangePasswordInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockIdentityUseCase) ForgotPassword(ctx context.Context, email, ip string) (string, error) {
	args := m.Called(ctx, email, ip)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityUseCase) ResetPassword(ctx context.Context, input *identityDomain.ResetPasswordInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockIdentityUseCase) ClaimAccount(ctx context.Context, input *identityDomain.ClaimAccountInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockIdentityUseCase) VerifyClaim(
	ctx context.Context,
	input *identityDomain.VerifyClaimInput,
) (*identityDomain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.AuthResult), args.Error(1)
}

func (m *MockIdentityUseCase) Logout(ctx context.Context, input *identityDomain.LogoutInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockIdentityUseCase) Authenticate(
	ctx context.Context,
	accessToken string,
) (*identityDomain.TokenClaims, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.TokenClaims), args.Error(1)
}

func (m *MockIdentityUseCase) GetAccount(ctx context.Context, id uuid.UUID) (*identityDomain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Account), args.Error(1)
}
