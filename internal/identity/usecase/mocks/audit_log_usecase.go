package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase.
type MockAuditLogUseCase struct {
	mock.Mock
}

func (m *MockAuditLogUseCase) Record(ctx context.Context, event *identityDomain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditLogUseCase) Verify(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
	batchSize int,
) (*identityDomain.AuditVerificationReport, error) {
	args := m.Called(ctx, createdAtFrom, createdAtTo, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.AuditVerificationReport), args.Error(1)
}
