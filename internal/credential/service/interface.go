// Package service hashes and verifies passwords under a configurable scheme policy.
package service

import (
	credentialDomain "github.com/allisson/authserver/internal/credential/domain"
)

// PasswordHasher hashes new passwords and verifies stored ones.
// It is built once from a Policy and is safe for concurrent use.
type PasswordHasher interface {
	// Hash hashes plain with the default scheme.
	Hash(plain string) (string, error)

	// Verify checks candidate against stored. It never writes: when the stored hash
	// matches but uses a deprecated scheme or outdated parameters, the replacement hash
	// is returned in VerifyResult.NewHash. An empty or unrecognized stored value does
	// not match.
	Verify(stored, candidate string) (credentialDomain.VerifyResult, error)
}
