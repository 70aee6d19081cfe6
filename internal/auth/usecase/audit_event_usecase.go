package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	apperrors "github.com/allisson/authserver/internal/errors"
)

type auditEventUseCase struct {
	auditRepo AuditEventRepository
}

// NewAuditEventUseCase creates a new AuditEventUseCase with the provided dependencies.
func NewAuditEventUseCase(auditRepo AuditEventRepository) AuditEventUseCase {
	return &auditEventUseCase{auditRepo: auditRepo}
}

func (a *auditEventUseCase) ListBySubject(
	ctx context.Context,
	subjectID uuid.UUID,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	events, err := a.auditRepo.ListBySubject(ctx, subjectID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}

// DeleteOlderThan computes the cutoff in UTC and removes (or counts) older events.
func (a *auditEventUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("days must be positive, got %d", days))
	}

	olderThan := time.Now().UTC().AddDate(0, 0, -days)
	count, err := a.auditRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	return count, nil
}
