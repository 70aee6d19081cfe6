package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/authserver/internal/errors"
	keysDomain "github.com/allisson/authserver/internal/keys/domain"
	keysService "github.com/allisson/authserver/internal/keys/service"
)

type keyUseCase struct {
	config     keysDomain.KeyConfig
	repo       KeyDocumentRepository
	keyService keysService.KeyService
}

// NewKeyUseCase validates config and creates a KeyUseCase.
func NewKeyUseCase(
	config keysDomain.KeyConfig,
	repo KeyDocumentRepository,
	keyService keysService.KeyService,
) (KeyUseCase, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &keyUseCase{
		config:     config,
		repo:       repo,
		keyService: keyService,
	}, nil
}

func (k *keyUseCase) Create(ctx context.Context) (*keysDomain.KeySummary, error) {
	private, public, err := k.consistentPair(ctx)
	if err != nil {
		return nil, err
	}

	keyID := uuid.New().String()
	privateRecord, publicRecord, err := k.keyService.Generate(keyID, time.Now().UTC())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate signing key")
	}

	previous := private.Clone()
	private.Put(keyID, privateRecord)
	public.Put(keyID, publicRecord)

	if err := k.savePair(ctx, previous, private, public); err != nil {
		return nil, err
	}

	summary := keysDomain.Summarize(keyID, publicRecord)
	return &summary, nil
}

func (k *keyUseCase) List(ctx context.Context) ([]keysDomain.KeySummary, error) {
	public, err := k.repo.Fetch(ctx, k.config.PublicKeysPath)
	if err != nil {
		return nil, err
	}

	summaries := make([]keysDomain.KeySummary, 0, public.Len())
	for _, id := range public.IDs() {
		record, _ := public.Get(id)
		summaries = append(summaries, keysDomain.Summarize(id, record))
	}
	return summaries, nil
}

func (k *keyUseCase) Delete(ctx context.Context, keyID string) (string, error) {
	private, public, err := k.consistentPair(ctx)
	if err != nil {
		return "", err
	}

	if !private.Has(keyID) {
		return "", keysDomain.ErrKeyNotFound
	}
	if private.Len() <= 1 {
		return "", keysDomain.ErrLastKeyProtected
	}

	return keyID, k.remove(ctx, private, public, keyID)
}

func (k *keyUseCase) DeleteOldest(ctx context.Context) (string, error) {
	private, public, err := k.consistentPair(ctx)
	if err != nil {
		return "", err
	}

	if private.Len() <= 1 {
		return "", keysDomain.ErrLastKeyProtected
	}
	keyID, _ := private.Oldest()

	return keyID, k.remove(ctx, private, public, keyID)
}

func (k *keyUseCase) SigningKey(ctx context.Context) (*keysDomain.SigningKey, error) {
	private, err := k.repo.Fetch(ctx, k.config.PrivateKeysPath)
	if err != nil {
		return nil, err
	}

	keyID, ok := private.Youngest()
	if !ok {
		return nil, keysDomain.ErrNoSigningKey
	}
	record, _ := private.Get(keyID)

	privateKey, err := k.keyService.PrivateKey(record)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to load signing key %q", keyID)
	}

	return &keysDomain.SigningKey{
		ID:         keyID,
		Algorithm:  record.String(keysDomain.FieldAlgorithm),
		IssuedAt:   record.IssuedAt(),
		PrivateKey: privateKey,
	}, nil
}

func (k *keyUseCase) JWKS(ctx context.Context) (*keysDomain.JWKS, error) {
	_, public, err := k.consistentPair(ctx)
	if err != nil {
		return nil, err
	}

	jwks := &keysDomain.JWKS{Keys: make([]keysDomain.JWK, 0, public.Len())}
	for _, id := range public.IDs() {
		record, _ := public.Get(id)
		jwks.Keys = append(jwks.Keys, keysDomain.PublicJWK(record))
	}
	return jwks, nil
}

// consistentPair fetches both documents and fails unless they hold the same key ids.
func (k *keyUseCase) consistentPair(ctx context.Context) (*keysDomain.Document, *keysDomain.Document, error) {
	private, err := k.repo.Fetch(ctx, k.config.PrivateKeysPath)
	if err != nil {
		return nil, nil, err
	}
	public, err := k.repo.Fetch(ctx, k.config.PublicKeysPath)
	if err != nil {
		return nil, nil, err
	}
	if err := keysDomain.CheckConsistency(private, public); err != nil {
		return nil, nil, err
	}
	return private, public, nil
}

func (k *keyUseCase) remove(ctx context.Context, private, public *keysDomain.Document, keyID string) error {
	previous := private.Clone()
	private.Remove(keyID)
	public.Remove(keyID)
	return k.savePair(ctx, previous, private, public)
}

// savePair writes the private document and then the public one. When the public write
// fails, the previous private document is written back so both stay in step.
func (k *keyUseCase) savePair(ctx context.Context, previousPrivate, private, public *keysDomain.Document) error {
	if err := k.repo.Save(ctx, k.config.PrivateKeysPath, private); err != nil {
		return err
	}

	if err := k.repo.Save(ctx, k.config.PublicKeysPath, public); err != nil {
		if restoreErr := k.repo.Save(ctx, k.config.PrivateKeysPath, previousPrivate); restoreErr != nil {
			return apperrors.Join(
				err,
				apperrors.Wrap(restoreErr, "failed to restore the private key document, the key store is now inconsistent"),
			)
		}
		return err
	}

	return nil
}
