// Package domain defines password hashing policies and the verify result returned to callers.
package domain

import (
	"slices"

	apperrors "github.com/allisson/authserver/internal/errors"
)

// Scheme names accepted in a Policy.
const (
	SchemeArgon2       = "argon2"
	SchemeBcrypt       = "bcrypt"
	SchemePBKDF2SHA256 = "pbkdf2_sha256"
)

// Argon2 parameter presets.
const (
	Argon2PolicyInteractive = "interactive"
	Argon2PolicyModerate    = "moderate"
)

// DeprecatedAuto marks every scheme except the first as deprecated.
const DeprecatedAuto = "auto"

// Default scheme parameters.
const (
	DefaultBcryptCost   = 12
	DefaultPBKDF2Rounds = 29000
	MinPBKDF2Rounds     = 1000
)

// Policy selects the hashing schemes and their parameters.
// The first scheme hashes new passwords; the others are only used to verify existing hashes.
type Policy struct {
	Schemes      []string `toml:"schemes"`
	Deprecated   []string `toml:"deprecated"`
	Argon2Policy string   `toml:"argon2_policy"`
	BcryptCost   int      `toml:"bcrypt_cost"`
	PBKDF2Rounds int      `toml:"pbkdf2_rounds"`
}

// DefaultPolicy hashes with argon2id using the interactive preset.
func DefaultPolicy() Policy {
	return Policy{
		Schemes:      []string{SchemeArgon2},
		Argon2Policy: Argon2PolicyInteractive,
		BcryptCost:   DefaultBcryptCost,
		PBKDF2Rounds: DefaultPBKDF2Rounds,
	}
}

// WithDefaults fills zero-valued parameters.
func (p Policy) WithDefaults() Policy {
	if p.Argon2Policy == "" {
		p.Argon2Policy = Argon2PolicyInteractive
	}
	if p.BcryptCost == 0 {
		p.BcryptCost = DefaultBcryptCost
	}
	if p.PBKDF2Rounds == 0 {
		p.PBKDF2Rounds = DefaultPBKDF2Rounds
	}
	return p
}

// Validate reports unknown schemes and out of range parameters as ErrConfiguration.
func (p Policy) Validate() error {
	if len(p.Schemes) == 0 {
		return apperrors.Configurationf("the password policy needs at least one scheme")
	}
	seen := make(map[string]bool, len(p.Schemes))
	for _, name := range p.Schemes {
		if !isKnownScheme(name) {
			return apperrors.Configurationf("unknown password scheme '%s'", name)
		}
		if seen[name] {
			return apperrors.Configurationf("password scheme '%s' is listed twice", name)
		}
		seen[name] = true
	}

	for _, name := range p.Deprecated {
		if name == DeprecatedAuto {
			if len(p.Deprecated) > 1 {
				return apperrors.Configurationf("'%s' cannot be combined with other deprecated schemes", DeprecatedAuto)
			}
			continue
		}
		if !seen[name] {
			return apperrors.Configurationf("deprecated scheme '%s' is not in the scheme list", name)
		}
		if name == p.Schemes[0] {
			return apperrors.Configurationf("the default scheme '%s' cannot be deprecated", name)
		}
	}

	if p.Argon2Policy != Argon2PolicyInteractive && p.Argon2Policy != Argon2PolicyModerate {
		return apperrors.Configurationf("unknown argon2 policy '%s'", p.Argon2Policy)
	}
	if p.BcryptCost < 4 || p.BcryptCost > 31 {
		return apperrors.Configurationf("bcrypt cost %d is outside 4..31", p.BcryptCost)
	}
	if p.PBKDF2Rounds < MinPBKDF2Rounds {
		return apperrors.Configurationf("pbkdf2 rounds must be at least %d", MinPBKDF2Rounds)
	}
	return nil
}

// DeprecatedSchemes resolves the deprecated list, expanding "auto".
func (p Policy) DeprecatedSchemes() []string {
	if slices.Contains(p.Deprecated, DeprecatedAuto) {
		if len(p.Schemes) < 2 {
			return nil
		}
		return slices.Clone(p.Schemes[1:])
	}
	return slices.Clone(p.Deprecated)
}

func isKnownScheme(name string) bool {
	switch name {
	case SchemeArgon2, SchemeBcrypt, SchemePBKDF2SHA256:
		return true
	}
	return false
}
