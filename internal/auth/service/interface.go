// Package service signs the tokens issued by the login flow.
package service

import (
	"time"

	keysDomain "github.com/allisson/authserver/internal/keys/domain"
)

// TokenSigner turns claims into a compact signed JWT.
type TokenSigner interface {
	// Sign signs claims with key using RS256. The header carries the key id and typ JWT.
	// iat is set to now and exp to now plus lifetime; both, together with kid, override
	// any custom claim of the same name. The expiry is returned as a Unix timestamp.
	Sign(key *keysDomain.SigningKey, claims map[string]any, now time.Time, lifetime time.Duration) (string, int64, error)
}
