// Package service provides the cryptographic primitives behind signing keys.
package service

import (
	"crypto/rsa"
	"time"

	keysDomain "github.com/allisson/authserver/internal/keys/domain"
)

// KeyService turns RSA keys into key document records and back.
type KeyService interface {
	// Generate creates a new keypair and returns its private and public records.
	// Both carry kid, alg, use and issued_at.
	Generate(keyID string, issuedAt time.Time) (private keysDomain.Record, public keysDomain.Record, err error)

	// PrivateKey decodes a private record.
	PrivateKey(record keysDomain.Record) (*rsa.PrivateKey, error)
}
