package secretstore

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	apperrors "github.com/allisson/authserver/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper encrypts and decrypts blobs. *secrets.Keeper implements it.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// OpenKeeper opens a gocloud.dev secrets keeper.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func OpenKeeper(ctx context.Context, keeperURL string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keeperURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open secrets keeper: %w", err)
	}
	return keeper, nil
}

// EncryptedStore encrypts the listed paths at rest and passes every other path through.
type EncryptedStore struct {
	next   Store
	keeper Keeper
	paths  map[string]struct{}
}

// NewEncryptedStore wraps next so that reads and writes of paths go through keeper.
func NewEncryptedStore(next Store, keeper Keeper, paths ...string) *EncryptedStore {
	set := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		set[path] = struct{}{}
	}
	return &EncryptedStore{next: next, keeper: keeper, paths: set}
}

// Get reads path and decrypts it when it is an encrypted path.
func (s *EncryptedStore) Get(ctx context.Context, path string, silentIfNotFound bool) ([]byte, error) {
	data, err := s.next.Get(ctx, path, silentIfNotFound)
	if err != nil || len(data) == 0 || !s.encrypted(path) {
		return data, err
	}

	plaintext, err := s.keeper.Decrypt(ctx, data)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to decrypt %q", path)
	}
	return plaintext, nil
}

// Upsert encrypts data when path is an encrypted path and writes it.
func (s *EncryptedStore) Upsert(ctx context.Context, path string, data []byte) error {
	if !s.encrypted(path) {
		return s.next.Upsert(ctx, path, data)
	}

	ciphertext, err := s.keeper.Encrypt(ctx, data)
	if err != nil {
		return apperrors.Wrapf(err, "failed to encrypt %q", path)
	}
	return s.next.Upsert(ctx, path, ciphertext)
}

func (s *EncryptedStore) encrypted(path string) bool {
	_, ok := s.paths[path]
	return ok
}
