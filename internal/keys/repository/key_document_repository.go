// Package repository persists key documents in a secret store.
package repository

import (
	"context"

	apperrors "github.com/allisson/authserver/internal/errors"
	keysDomain "github.com/allisson/authserver/internal/keys/domain"
	"github.com/allisson/authserver/internal/secretstore"
)

// SecretStoreKeyDocumentRepository reads and writes whole key documents through a
// secretstore.Store. Saves overwrite the previous document; callers serialize writers.
type SecretStoreKeyDocumentRepository struct {
	store secretstore.Store
}

// NewSecretStoreKeyDocumentRepository creates a repository over store.
func NewSecretStoreKeyDocumentRepository(store secretstore.Store) *SecretStoreKeyDocumentRepository {
	return &SecretStoreKeyDocumentRepository{store: store}
}

// Fetch loads the document stored at path. Nothing stored yields an empty document.
func (r *SecretStoreKeyDocumentRepository) Fetch(ctx context.Context, path string) (*keysDomain.Document, error) {
	data, err := r.store.Get(ctx, path, true)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch key document")
	}
	return keysDomain.ParseDocument(path, data)
}

// Save replaces the document stored at path.
func (r *SecretStoreKeyDocumentRepository) Save(ctx context.Context, path string, doc *keysDomain.Document) error {
	data, err := doc.MarshalJSON()
	if err != nil {
		return apperrors.Wrap(err, "failed to encode key document")
	}
	if err := r.store.Upsert(ctx, path, data); err != nil {
		return apperrors.Wrap(err, "failed to save key document")
	}
	return nil
}
