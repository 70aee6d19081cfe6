// Package domain defines the signing key model: key documents, their consistency rules and
// the JWKS projection served to token verifiers.
package domain

// Supported key parameters.
const (
	AlgorithmRSA256 = "RSA256"
	KeyTypeRSA      = "RSA"
	KeyUseSignature = "sig"
	MinRSAKeySize   = 2048
)

// Record field names used by the key documents.
const (
	FieldKeyID     = "kid"
	FieldAlgorithm = "alg"
	FieldKeyType   = "kty"
	FieldKeyUse    = "use"
	FieldIssuedAt  = "issued_at"
)

// publicJWKFields are the only record fields that may appear in a JWKS.
var publicJWKFields = []string{
	FieldKeyID,
	FieldAlgorithm,
	FieldKeyType,
	FieldKeyUse,
	"n",
	"e",
	"key_ops",
	"x5c",
	"x5t",
	"x5t#S256",
}
