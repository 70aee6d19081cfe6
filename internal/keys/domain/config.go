package domain

import (
	apperrors "github.com/allisson/authserver/internal/errors"
)

// KeyConfig describes where key documents live and what kind of keys are generated.
type KeyConfig struct {
	PrivateKeysPath string
	PublicKeysPath  string
	Algorithm       string
	KeyType         string
	KeySize         int
}

// Validate rejects unsupported or incomplete settings with an ErrConfiguration.
func (c KeyConfig) Validate() error {
	if c.PrivateKeysPath == "" {
		return apperrors.Configurationf("the private keys path is required")
	}
	if c.PublicKeysPath == "" {
		return apperrors.Configurationf("the public keys path is required")
	}
	if c.PrivateKeysPath == c.PublicKeysPath {
		return apperrors.Configurationf("the private and public keys paths must differ")
	}
	if c.Algorithm != AlgorithmRSA256 {
		return apperrors.Configurationf("unsupported key algorithm '%s': only %s is supported", c.Algorithm, AlgorithmRSA256)
	}
	if c.KeyType != KeyTypeRSA {
		return apperrors.Configurationf("unsupported key type '%s': only %s keys are supported", c.KeyType, KeyTypeRSA)
	}
	if c.KeySize < MinRSAKeySize || c.KeySize%256 != 0 {
		return apperrors.Configurationf(
			"unsupported key size %d: it must be a multiple of 256 and at least %d",
			c.KeySize,
			MinRSAKeySize,
		)
	}
	return nil
}
