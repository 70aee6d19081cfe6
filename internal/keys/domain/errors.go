package domain

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/allisson/authserver/internal/errors"
)

// LastKeyProtectedMessage is reported to callers that try to remove the final signing key.
const LastKeyProtectedMessage = "I'm cowardly refusing to delete the last key.  Sorry."

// Signing key errors.
var (
	// ErrKeyStoreCorrupt indicates a key document could not be decoded.
	ErrKeyStoreCorrupt = errors.New("key store corrupt")

	// ErrKeyStoreInconsistent indicates the private and public documents hold different key ids.
	ErrKeyStoreInconsistent = errors.New("key store inconsistent")

	// ErrLastKeyProtected indicates a delete would leave no signing keys.
	ErrLastKeyProtected = apperrors.Wrap(apperrors.ErrInvalidInput, "last signing key is protected")

	// ErrKeyNotFound indicates no key has the requested id.
	ErrKeyNotFound = apperrors.Wrap(apperrors.ErrNotFound, "signing key not found")

	// ErrNoSigningKey indicates the private document is empty.
	ErrNoSigningKey = errors.New("no signing keys have been created")
)

// KeyStoreCorruptError describes why the document stored at Path was rejected.
type KeyStoreCorruptError struct {
	Path   string
	Reason string
}

func (e *KeyStoreCorruptError) Error() string {
	return fmt.Sprintf("key data at '%s' is unusable: %s", e.Path, e.Reason)
}

func (e *KeyStoreCorruptError) Unwrap() error {
	return ErrKeyStoreCorrupt
}

// KeyStoreInconsistentError lists the key ids present in only one of the two documents.
// An administrator has to restore the missing half or remove the extra one.
type KeyStoreInconsistentError struct {
	PrivateOnly []string
	PublicOnly  []string
}

func (e *KeyStoreInconsistentError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.PrivateOnly) > 0 {
		parts = append(parts, fmt.Sprintf(
			"private keys without a matching public key: '%s'",
			strings.Join(e.PrivateOnly, "', '"),
		))
	}
	if len(e.PublicOnly) > 0 {
		parts = append(parts, fmt.Sprintf(
			"public keys without a matching private key: '%s'",
			strings.Join(e.PublicOnly, "', '"),
		))
	}
	return "key store inconsistent: " + strings.Join(parts, "; ") +
		". Restore the missing key or delete the extra key manually"
}

func (e *KeyStoreInconsistentError) Unwrap() error {
	return ErrKeyStoreInconsistent
}
