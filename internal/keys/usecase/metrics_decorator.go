package usecase

import (
	"context"
	"time"

	keysDomain "github.com/allisson/authserver/internal/keys/domain"
	"github.com/allisson/authserver/internal/metrics"
)

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (k *keyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	k.metrics.RecordOperation(ctx, "keys", operation, status)
	k.metrics.RecordDuration(ctx, "keys", operation, time.Since(start), status)
}

// Create records metrics for key creation.
func (k *keyUseCaseWithMetrics) Create(ctx context.Context) (*keysDomain.KeySummary, error) {
	start := time.Now()
	summary, err := k.next.Create(ctx)
	k.record(ctx, "create", start, err)
	return summary, err
}

// List records metrics for key listing.
func (k *keyUseCaseWithMetrics) List(ctx context.Context) ([]keysDomain.KeySummary, error) {
	start := time.Now()
	summaries, err := k.next.List(ctx)
	k.record(ctx, "list", start, err)
	return summaries, err
}

// Delete records metrics for key deletion.
func (k *keyUseCaseWithMetrics) Delete(ctx context.Context, keyID string) (string, error) {
	start := time.Now()
	id, err := k.next.Delete(ctx, keyID)
	k.record(ctx, "delete", start, err)
	return id, err
}

// DeleteOldest records metrics for oldest key deletion.
func (k *keyUseCaseWithMetrics) DeleteOldest(ctx context.Context) (string, error) {
	start := time.Now()
	id, err := k.next.DeleteOldest(ctx)
	k.record(ctx, "delete_oldest", start, err)
	return id, err
}

// SigningKey records metrics for signing key lookups.
func (k *keyUseCaseWithMetrics) SigningKey(ctx context.Context) (*keysDomain.SigningKey, error) {
	start := time.Now()
	key, err := k.next.SigningKey(ctx)
	k.record(ctx, "signing_key", start, err)
	return key, err
}

// JWKS records metrics for key set exports.
func (k *keyUseCaseWithMetrics) JWKS(ctx context.Context) (*keysDomain.JWKS, error) {
	start := time.Now()
	jwks, err := k.next.JWKS(ctx)
	k.record(ctx, "jwks", start, err)
	return jwks, err
}
