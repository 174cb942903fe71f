package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityService "github.com/allisson/identity/internal/identity/service"
)

// auditLogUseCase implements AuditLogUseCase. With a nil signer events are stored unsigned.
type auditLogUseCase struct {
	auditRepo AuditEventRepository
	signer    identityService.AuditSigner
}

// NewAuditLogUseCase creates a new AuditLogUseCase with the provided dependencies.
func NewAuditLogUseCase(auditRepo AuditEventRepository, signer identityService.AuditSigner) AuditLogUseCase {
	return &auditLogUseCase{
		auditRepo: auditRepo,
		signer:    signer,
	}
}

// Record signs and stores the event. CreatedAt is truncated to microseconds first, the
// precision both supported databases keep, so the signature still matches after a round trip.
func (a *auditLogUseCase) Record(ctx context.Context, event *identityDomain.AuditEvent) error {
	event.CreatedAt = event.CreatedAt.UTC().Truncate(time.Microsecond)

	if a.signer != nil {
		signature, err := a.signer.Sign(event)
		if err != nil {
			return apperrors.Wrap(err, "failed to sign audit event")
		}
		event.Signature = signature
	}

	if err := a.auditRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// Verify pages through the range and checks every signature.
func (a *auditLogUseCase) Verify(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
	batchSize int,
) (*identityDomain.AuditVerificationReport, error) {
	if a.signer == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "audit signing key is not configured")
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	report := &identityDomain.AuditVerificationReport{InvalidIDs: []uuid.UUID{}}
	for offset := 0; ; offset += batchSize {
		events, err := a.auditRepo.List(ctx, offset, batchSize, createdAtFrom, createdAtTo)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit events")
		}

		for _, event := range events {
			report.Total++
			switch {
			case len(event.Signature) == 0:
				report.Unsigned++
			case a.signer.Verify(event) != nil:
				report.Invalid++
				report.InvalidIDs = append(report.InvalidIDs, event.ID)
			default:
				report.Valid++
			}
		}

		if len(events) < batchSize {
			return report, nil
		}
	}
}
