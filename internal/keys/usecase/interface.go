// Package usecase implements the signing key lifecycle.
package usecase

import (
	"context"

	keysDomain "github.com/allisson/authserver/internal/keys/domain"
)

// KeyDocumentRepository loads and stores whole key documents by path.
type KeyDocumentRepository interface {
	// Fetch returns the document at path, or an empty document when nothing is stored.
	// Undecodable data fails with keysDomain.ErrKeyStoreCorrupt.
	Fetch(ctx context.Context, path string) (*keysDomain.Document, error)

	// Save overwrites the document at path.
	Save(ctx context.Context, path string, doc *keysDomain.Document) error
}

// KeyUseCase manages the signing keys.
//
// Every mutation rewrites both documents: private first, then public. If the public write
// fails the previous private document is written back. Concurrent administrators are not
// coordinated; key administration is expected to be serialized by the operator.
type KeyUseCase interface {
	// Create generates a new key and appends it to both documents.
	Create(ctx context.Context) (*keysDomain.KeySummary, error)

	// List returns the published keys in stored order.
	List(ctx context.Context) ([]keysDomain.KeySummary, error)

	// Delete removes keyID from both documents and returns it. Returns
	// keysDomain.ErrKeyNotFound for unknown ids and keysDomain.ErrLastKeyProtected when
	// keyID is the only key.
	Delete(ctx context.Context, keyID string) (string, error)

	// DeleteOldest removes the key with the earliest issued_at and returns its id.
	// Returns keysDomain.ErrLastKeyProtected when fewer than two keys exist.
	DeleteOldest(ctx context.Context) (string, error)

	// SigningKey returns the most recently issued private key.
	SigningKey(ctx context.Context) (*keysDomain.SigningKey, error)

	// JWKS returns the public keys as a JSON Web Key Set.
	JWKS(ctx context.Context) (*keysDomain.JWKS, error)
}
