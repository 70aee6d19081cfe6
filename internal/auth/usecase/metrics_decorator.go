package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	apperrors "github.com/allisson/authserver/internal/errors"
	"github.com/allisson/authserver/internal/metrics"
)

// Login outcomes reported to metrics.BusinessMetrics.RecordLoginOutcome.
const (
	LoginOutcomeIssued             = "issued"
	LoginOutcomeInputRejected      = "input_rejected"
	LoginOutcomeInvalidCredentials = "invalid_credentials"
	LoginOutcomeLocked             = "locked"
	LoginOutcomeRejected           = "rejected"
	LoginOutcomeError              = "error"
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// LoginOutcome classifies the result of a login attempt.
func LoginOutcome(err error) string {
	var inputErrors *authDomain.InputErrors
	var lockedErr *authDomain.AccountLockedError
	var rejectedErr *authDomain.LoginRejectedError

	switch {
	case err == nil:
		return LoginOutcomeIssued
	case errors.As(err, &inputErrors):
		return LoginOutcomeInputRejected
	case errors.As(err, &lockedErr):
		return LoginOutcomeLocked
	case errors.As(err, &rejectedErr):
		return LoginOutcomeRejected
	case apperrors.Is(err, authDomain.ErrInvalidCredentials):
		return LoginOutcomeInvalidCredentials
	default:
		return LoginOutcomeError
	}
}

// loginUseCaseWithMetrics decorates LoginUseCase with metrics instrumentation.
type loginUseCaseWithMetrics struct {
	next    LoginUseCase
	metrics metrics.BusinessMetrics
}

// NewLoginUseCaseWithMetrics wraps a LoginUseCase with metrics recording.
func NewLoginUseCaseWithMetrics(useCase LoginUseCase, m metrics.BusinessMetrics) LoginUseCase {
	return &loginUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records the operation, its duration and the login outcome.
func (l *loginUseCaseWithMetrics) Login(
	ctx context.Context,
	input authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	start := time.Now()
	output, err := l.next.Login(ctx, input)

	outcome := LoginOutcome(err)
	st := "success"
	if outcome == LoginOutcomeError {
		st = "error"
	}
	l.metrics.RecordOperation(ctx, "auth", "login", st)
	l.metrics.RecordDuration(ctx, "auth", "login", time.Since(start), st)
	l.metrics.RecordLoginOutcome(ctx, outcome)

	return output, err
}

// userUseCaseWithMetrics decorates UserUseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UserUseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UserUseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UserUseCase, m metrics.BusinessMetrics) UserUseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	st := status(err)
	u.metrics.RecordOperation(ctx, "users", operation, st)
	u.metrics.RecordDuration(ctx, "users", operation, time.Since(start), st)
}

// Create records metrics for user creation.
func (u *userUseCaseWithMetrics) Create(
	ctx context.Context,
	input *authDomain.CreateUserInput,
) (*authDomain.User, error) {
	start := time.Now()
	user, err := u.next.Create(ctx, input)
	u.record(ctx, "create", start, err)
	return user, err
}

// SetPassword records metrics for password changes.
func (u *userUseCaseWithMetrics) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	start := time.Now()
	err := u.next.SetPassword(ctx, id, password)
	u.record(ctx, "set_password", start, err)
	return err
}

// Get records metrics for user retrieval.
func (u *userUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*authDomain.User, error) {
	start := time.Now()
	user, err := u.next.Get(ctx, id)
	u.record(ctx, "get", start, err)
	return user, err
}

// auditEventUseCaseWithMetrics decorates AuditEventUseCase with metrics instrumentation.
type auditEventUseCaseWithMetrics struct {
	next    AuditEventUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditEventUseCaseWithMetrics wraps an AuditEventUseCase with metrics recording.
func NewAuditEventUseCaseWithMetrics(useCase AuditEventUseCase, m metrics.BusinessMetrics) AuditEventUseCase {
	return &auditEventUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *auditEventUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	st := status(err)
	a.metrics.RecordOperation(ctx, "audit", operation, st)
	a.metrics.RecordDuration(ctx, "audit", operation, time.Since(start), st)
}

// ListBySubject records metrics for audit event listing.
func (a *auditEventUseCaseWithMetrics) ListBySubject(
	ctx context.Context,
	subjectID uuid.UUID,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	start := time.Now()
	events, err := a.next.ListBySubject(ctx, subjectID, offset, limit)
	a.record(ctx, "list", start, err)
	return events, err
}

// DeleteOlderThan records metrics for audit event cleanup.
func (a *auditEventUseCaseWithMetrics) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := a.next.DeleteOlderThan(ctx, days, dryRun)
	a.record(ctx, "delete", start, err)
	return count, err
}
