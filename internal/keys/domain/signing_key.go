package domain

import (
	"crypto/rsa"
	"time"
)

// SigningKey is the private half of a key, ready to sign tokens.
type SigningKey struct {
	ID         string
	Algorithm  string
	IssuedAt   time.Time
	PrivateKey *rsa.PrivateKey
}

// KeySummary is the public listing entry of a key.
type KeySummary struct {
	ID        string `json:"id"`
	Algorithm string `json:"algorithm"`
	IssueDate string `json:"issue_date"`
}

// JWK is a single public JSON Web Key.
type JWK map[string]any

// JWKS is a JSON Web Key Set.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// PublicJWK projects a record onto the public JWK fields. Anything else in the record,
// private exponents included, is dropped.
func PublicJWK(record Record) JWK {
	jwk := make(JWK, len(publicJWKFields))
	for _, field := range publicJWKFields {
		if value, ok := record[field]; ok {
			jwk[field] = value
		}
	}
	return jwk
}

// Summarize builds the listing entry for the key stored under id.
func Summarize(id string, record Record) KeySummary {
	return KeySummary{
		ID:        id,
		Algorithm: record.String(FieldAlgorithm),
		IssueDate: record.String(FieldIssuedAt),
	}
}
