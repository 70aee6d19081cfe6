// Package secretstore provides the durable key-value storage used for signing key documents.
package secretstore

import (
	"context"

	apperrors "github.com/allisson/authserver/internal/errors"
)

// ErrSecretNotFound indicates nothing is stored at the requested path.
var ErrSecretNotFound = apperrors.Wrap(apperrors.ErrNotFound, "secret not found")

// Store reads and writes opaque blobs by path. Paths are opaque strings.
type Store interface {
	// Get returns the data stored at path. When nothing is stored there it returns
	// (nil, nil) if silentIfNotFound is set and ErrSecretNotFound otherwise.
	Get(ctx context.Context, path string, silentIfNotFound bool) ([]byte, error)

	// Upsert replaces whatever is stored at path with data.
	Upsert(ctx context.Context, path string, data []byte) error
}
