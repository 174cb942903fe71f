package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityService "github.com/allisson/identity/internal/identity/service"
)

// MockAuditEventRepository is a mock implementation of AuditEventRepository
type MockAuditEventRepository struct {
	mock.Mock
}

func (m *MockAuditEventRepository) Create(ctx context.Context, event *identityDomain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*identityDomain.AuditEvent, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.AuditEvent), args.Error(1)
}

func newTestSigner(t *testing.T) identityService.AuditSigner {
	t.Helper()
	signer, err := identityService.NewAuditSigner([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)
	return signer
}

func newAuditEvent() *identityDomain.AuditEvent {
	accountID := uuid.Must(uuid.NewV7())
	return &identityDomain.AuditEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: identityDomain.EventLoginFailure,
		AccountID: &accountID,
		Email:     "jane@example.com",
		IP:        "10.0.0.1",
		Metadata:  map[string]any{"reason": "invalid_password"},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC),
	}
}

func TestAuditLogUseCase_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SignsAndTruncates", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		signer := newTestSigner(t)
		uc := NewAuditLogUseCase(repo, signer)
		event := newAuditEvent()

		repo.On("Create", ctx, event).Return(nil)

		require.NoError(t, uc.Record(ctx, event))
		assert.Equal(t, 123456000, event.CreatedAt.Nanosecond())
		assert.NotEmpty(t, event.Signature)
		assert.NoError(t, signer.Verify(event))
		repo.AssertExpectations(t)
	})

	t.Run("Success_UnsignedWithoutSigner", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		uc := NewAuditLogUseCase(repo, nil)
		event := newAuditEvent()

		repo.On("Create", ctx, event).Return(nil)

		require.NoError(t, uc.Record(ctx, event))
		assert.Empty(t, event.Signature)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		uc := NewAuditLogUseCase(repo, newTestSigner(t))

		repo.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

		err := uc.Record(ctx, newAuditEvent())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create audit event")
	})
}

func TestAuditLogUseCase_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ClassifiesEvents", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		signer := newTestSigner(t)
		uc := NewAuditLogUseCase(repo, signer)

		valid := newAuditEvent()
		signature, err := signer.Sign(valid)
		require.NoError(t, err)
		valid.Signature = signature

		tampered := newAuditEvent()
		tampered.Signature, err = signer.Sign(tampered)
		require.NoError(t, err)
		tampered.Email = "mallory@example.com"

		unsigned := newAuditEvent()

		repo.On("List", ctx, 0, 2, (*time.Time)(nil), (*time.Time)(nil)).
			Return([]*identityDomain.AuditEvent{valid, tampered}, nil)
		repo.On("List", ctx, 2, 2, (*time.Time)(nil), (*time.Time)(nil)).
			Return([]*identityDomain.AuditEvent{unsigned}, nil)

		report, err := uc.Verify(ctx, nil, nil, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 1, report.Valid)
		assert.Equal(t, 1, report.Invalid)
		assert.Equal(t, 1, report.Unsigned)
		assert.Equal(t, []uuid.UUID{tampered.ID}, report.InvalidIDs)
		repo.AssertExpectations(t)
	})

	t.Run("Error_NoSigner", func(t *testing.T) {
		uc := NewAuditLogUseCase(&MockAuditEventRepository{}, nil)

		_, err := uc.Verify(ctx, nil, nil, 10)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		uc := NewAuditLogUseCase(repo, newTestSigner(t))

		repo.On("List", ctx, 0, 100, (*time.Time)(nil), (*time.Time)(nil)).Return(nil, errors.New("timeout"))

		_, err := uc.Verify(ctx, nil, nil, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list audit events")
	})
}
