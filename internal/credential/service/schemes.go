package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"

	credentialDomain "github.com/allisson/authserver/internal/credential/domain"
)

// argon2Scheme produces PHC "$argon2id$" strings through go-pwdhash.
type argon2Scheme struct {
	hasher *pwdhash.PasswordHasher
}

func newArgon2Scheme(policy string) (*argon2Scheme, error) {
	var (
		hasher *pwdhash.PasswordHasher
		err    error
	)
	switch policy {
	case credentialDomain.Argon2PolicyModerate:
		hasher, err = pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	default:
		hasher, err = pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create argon2 hasher: %w", err)
	}
	return &argon2Scheme{hasher: hasher}, nil
}

func (s *argon2Scheme) Name() string { return credentialDomain.SchemeArgon2 }

func (s *argon2Scheme) Identify(hash string) bool {
	return strings.HasPrefix(hash, "$argon2")
}

func (s *argon2Scheme) Hash(plain string) (string, error) {
	return s.hasher.Hash([]byte(plain))
}

func (s *argon2Scheme) Verify(hash, plain string) (bool, error) {
	return s.hasher.Verify([]byte(plain), hash)
}

// NeedsUpdate reports whether hash was produced with parameters other than the active policy.
func (s *argon2Scheme) NeedsUpdate(hash string) bool {
	outdated, err := s.hasher.NeedsRehash(hash)
	return err == nil && outdated
}

type bcryptScheme struct {
	cost int
}

func (s *bcryptScheme) Name() string { return credentialDomain.SchemeBcrypt }

func (s *bcryptScheme) Identify(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func (s *bcryptScheme) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *bcryptScheme) Verify(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case err == bcrypt.ErrMismatchedHashAndPassword:
		return false, nil
	default:
		return false, err
	}
}

func (s *bcryptScheme) NeedsUpdate(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err == nil && cost < s.cost
}

const (
	pbkdf2Prefix     = "$pbkdf2-sha256$"
	pbkdf2SaltSize   = 16
	pbkdf2KeySize    = 32
	pbkdf2FieldCount = 5
)

// ab64 is base64 without padding, with '.' in place of '+'.
var ab64 = base64.RawStdEncoding

func ab64Encode(data []byte) string {
	return strings.ReplaceAll(ab64.EncodeToString(data), "+", ".")
}

func ab64Decode(value string) ([]byte, error) {
	return ab64.DecodeString(strings.ReplaceAll(value, ".", "+"))
}

// pbkdf2Scheme produces "$pbkdf2-sha256$rounds$salt$checksum" strings.
type pbkdf2Scheme struct {
	rounds int
}

func (s *pbkdf2Scheme) Name() string { return credentialDomain.SchemePBKDF2SHA256 }

func (s *pbkdf2Scheme) Identify(hash string) bool {
	return strings.HasPrefix(hash, pbkdf2Prefix)
}

func (s *pbkdf2Scheme) Hash(plain string) (string, error) {
	salt := make([]byte, pbkdf2SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(plain), salt, s.rounds, pbkdf2KeySize, sha256.New)
	return fmt.Sprintf("%s%d$%s$%s", pbkdf2Prefix, s.rounds, ab64Encode(salt), ab64Encode(key)), nil
}

func (s *pbkdf2Scheme) Verify(hash, plain string) (bool, error) {
	rounds, salt, expected, err := parsePBKDF2(hash)
	if err != nil {
		return false, err
	}
	key := pbkdf2.Key([]byte(plain), salt, rounds, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func (s *pbkdf2Scheme) NeedsUpdate(hash string) bool {
	rounds, _, _, err := parsePBKDF2(hash)
	return err == nil && rounds < s.rounds
}

func parsePBKDF2(hash string) (int, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != pbkdf2FieldCount {
		return 0, nil, nil, fmt.Errorf("malformed pbkdf2_sha256 hash")
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds < 1 {
		return 0, nil, nil, fmt.Errorf("malformed pbkdf2_sha256 rounds")
	}
	salt, err := ab64Decode(parts[3])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("malformed pbkdf2_sha256 salt: %w", err)
	}
	checksum, err := ab64Decode(parts[4])
	if err != nil || len(checksum) == 0 {
		return 0, nil, nil, fmt.Errorf("malformed pbkdf2_sha256 checksum")
	}
	return rounds, salt, checksum, nil
}

func newScheme(name string, policy credentialDomain.Policy) (credentialDomain.Scheme, error) {
	switch name {
	case credentialDomain.SchemeArgon2:
		return newArgon2Scheme(policy.Argon2Policy)
	case credentialDomain.SchemeBcrypt:
		return &bcryptScheme{cost: policy.BcryptCost}, nil
	case credentialDomain.SchemePBKDF2SHA256:
		return &pbkdf2Scheme{rounds: policy.PBKDF2Rounds}, nil
	}
	return nil, fmt.Errorf("unknown password scheme '%s'", name)
}
