package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credentialDomain "github.com/allisson/authserver/internal/credential/domain"
	apperrors "github.com/allisson/authserver/internal/errors"
)

func fastPolicy(schemes ...string) *credentialDomain.Policy {
	return &credentialDomain.Policy{
		Schemes:      schemes,
		BcryptCost:   4,
		PBKDF2Rounds: credentialDomain.MinPBKDF2Rounds,
	}
}

func TestNewPasswordHasher(t *testing.T) {
	t.Run("Success_DefaultPolicy", func(t *testing.T) {
		hasher, err := NewPasswordHasher(Options{})
		require.NoError(t, err)

		hash, err := hasher.Hash("correct horse")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("Success_PolicyString", func(t *testing.T) {
		hasher, err := NewPasswordHasher(Options{PolicyTOML: `
schemes = ["bcrypt", "pbkdf2_sha256"]
deprecated = ["auto"]
bcrypt_cost = 4
pbkdf2_rounds = 1000
`})
		require.NoError(t, err)

		hash, err := hasher.Hash("correct horse")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$04$"))
	})

	t.Run("Success_PolicyFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		require.NoError(t, os.WriteFile(path, []byte(`schemes = ["pbkdf2_sha256"]
pbkdf2_rounds = 2000
`), 0o600))

		hasher, err := NewPasswordHasher(Options{PolicyPath: path})
		require.NoError(t, err)

		hash, err := hasher.Hash("correct horse")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$pbkdf2-sha256$2000$"))
	})

	t.Run("Error_MoreThanOneSource", func(t *testing.T) {
		_, err := NewPasswordHasher(Options{
			Policy:     fastPolicy(credentialDomain.SchemeBcrypt),
			PolicyTOML: `schemes = ["bcrypt"]`,
		})

		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		assert.Contains(t, err.Error(), "only one of")
	})

	t.Run("Error_BadTOML", func(t *testing.T) {
		_, err := NewPasswordHasher(Options{PolicyTOML: `schemes = [`})

		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("Error_MissingFile", func(t *testing.T) {
		_, err := NewPasswordHasher(Options{PolicyPath: filepath.Join(t.TempDir(), "missing.toml")})

		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		assert.Contains(t, err.Error(), "missing.toml")
	})

	t.Run("Error_UnknownScheme", func(t *testing.T) {
		_, err := NewPasswordHasher(Options{PolicyTOML: `schemes = ["des_crypt"]`})

		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	for _, scheme := range []string{
		credentialDomain.SchemeArgon2,
		credentialDomain.SchemeBcrypt,
		credentialDomain.SchemePBKDF2SHA256,
	} {
		t.Run(scheme, func(t *testing.T) {
			hasher, err := NewPasswordHasher(Options{Policy: fastPolicy(scheme)})
			require.NoError(t, err)

			for _, plain := range []string{"p", "correct horse battery staple", "ünïcødé-Pässwörd1"} {
				hash, err := hasher.Hash(plain)
				require.NoError(t, err)
				assert.NotEqual(t, plain, hash)

				result, err := hasher.Verify(hash, plain)
				require.NoError(t, err)
				assert.True(t, result.Matched)
				assert.False(t, result.NeedsRehash())

				result, err = hasher.Verify(hash, plain+"x")
				require.NoError(t, err)
				assert.False(t, result.Matched)
				assert.Empty(t, result.NewHash)
			}
		})
	}
}

func TestPasswordHasher_Verify(t *testing.T) {
	t.Run("Success_DeprecatedSchemeRehashedOnce", func(t *testing.T) {
		legacy, err := NewPasswordHasher(Options{Policy: fastPolicy(credentialDomain.SchemeBcrypt)})
		require.NoError(t, err)
		stored, err := legacy.Hash("s3cret-pass")
		require.NoError(t, err)

		policy := fastPolicy(credentialDomain.SchemePBKDF2SHA256, credentialDomain.SchemeBcrypt)
		policy.Deprecated = []string{credentialDomain.DeprecatedAuto}
		current, err := NewPasswordHasher(Options{Policy: policy})
		require.NoError(t, err)

		result, err := current.Verify(stored, "s3cret-pass")
		require.NoError(t, err)
		assert.True(t, result.Matched)
		require.True(t, result.NeedsRehash())
		assert.True(t, strings.HasPrefix(result.NewHash, "$pbkdf2-sha256$"))

		again, err := current.Verify(result.NewHash, "s3cret-pass")
		require.NoError(t, err)
		assert.True(t, again.Matched)
		assert.False(t, again.NeedsRehash())
	})

	t.Run("Success_DeprecatedSchemeWrongPasswordNoRehash", func(t *testing.T) {
		policy := fastPolicy(credentialDomain.SchemePBKDF2SHA256, credentialDomain.SchemeBcrypt)
		policy.Deprecated = []string{credentialDomain.SchemeBcrypt}
		hasher, err := NewPasswordHasher(Options{Policy: policy})
		require.NoError(t, err)

		bcryptOnly, err := NewPasswordHasher(Options{Policy: fastPolicy(credentialDomain.SchemeBcrypt)})
		require.NoError(t, err)
		stored, err := bcryptOnly.Hash("s3cret-pass")
		require.NoError(t, err)

		result, err := hasher.Verify(stored, "wrong")
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.Empty(t, result.NewHash)
	})

	t.Run("Success_OutdatedParametersRehashed", func(t *testing.T) {
		weak := fastPolicy(credentialDomain.SchemePBKDF2SHA256)
		weakHasher, err := NewPasswordHasher(Options{Policy: weak})
		require.NoError(t, err)
		stored, err := weakHasher.Hash("s3cret-pass")
		require.NoError(t, err)

		strong := fastPolicy(credentialDomain.SchemePBKDF2SHA256)
		strong.PBKDF2Rounds = 2000
		strongHasher, err := NewPasswordHasher(Options{Policy: strong})
		require.NoError(t, err)

		result, err := strongHasher.Verify(stored, "s3cret-pass")
		require.NoError(t, err)
		assert.True(t, result.Matched)
		assert.True(t, strings.HasPrefix(result.NewHash, "$pbkdf2-sha256$2000$"))
	})

	t.Run("Success_OutdatedArgon2ParametersRehashed", func(t *testing.T) {
		interactive := &credentialDomain.Policy{
			Schemes:      []string{credentialDomain.SchemeArgon2},
			Argon2Policy: credentialDomain.Argon2PolicyInteractive,
		}
		interactiveHasher, err := NewPasswordHasher(Options{Policy: interactive})
		require.NoError(t, err)
		stored, err := interactiveHasher.Hash("s3cret-pass")
		require.NoError(t, err)

		current, err := interactiveHasher.Verify(stored, "s3cret-pass")
		require.NoError(t, err)
		assert.True(t, current.Matched)
		assert.False(t, current.NeedsRehash())

		moderate := &credentialDomain.Policy{
			Schemes:      []string{credentialDomain.SchemeArgon2},
			Argon2Policy: credentialDomain.Argon2PolicyModerate,
		}
		moderateHasher, err := NewPasswordHasher(Options{Policy: moderate})
		require.NoError(t, err)

		result, err := moderateHasher.Verify(stored, "s3cret-pass")
		require.NoError(t, err)
		assert.True(t, result.Matched)
		require.True(t, result.NeedsRehash())
		assert.True(t, strings.HasPrefix(result.NewHash, "$argon2id$"))
		assert.NotEqual(t, stored, result.NewHash)

		again, err := moderateHasher.Verify(result.NewHash, "s3cret-pass")
		require.NoError(t, err)
		assert.True(t, again.Matched)
		assert.False(t, again.NeedsRehash())
	})

	t.Run("Success_EmptyStoredHash", func(t *testing.T) {
		hasher, err := NewPasswordHasher(Options{Policy: fastPolicy(credentialDomain.SchemeBcrypt)})
		require.NoError(t, err)

		result, err := hasher.Verify("", "anything")

		require.NoError(t, err)
		assert.False(t, result.Matched)
	})

	t.Run("Success_UnknownFormat", func(t *testing.T) {
		hasher, err := NewPasswordHasher(Options{Policy: fastPolicy(credentialDomain.SchemeBcrypt)})
		require.NoError(t, err)

		result, err := hasher.Verify("plaintext-password", "plaintext-password")

		require.NoError(t, err)
		assert.False(t, result.Matched)
	})

	t.Run("Success_SchemeNotInPolicy", func(t *testing.T) {
		bcryptOnly, err := NewPasswordHasher(Options{Policy: fastPolicy(credentialDomain.SchemeBcrypt)})
		require.NoError(t, err)
		stored, err := bcryptOnly.Hash("s3cret-pass")
		require.NoError(t, err)

		pbkdf2Only, err := NewPasswordHasher(Options{Policy: fastPolicy(credentialDomain.SchemePBKDF2SHA256)})
		require.NoError(t, err)

		result, err := pbkdf2Only.Verify(stored, "s3cret-pass")
		require.NoError(t, err)
		assert.False(t, result.Matched)
	})

	t.Run("Success_MalformedPBKDF2", func(t *testing.T) {
		hasher, err := NewPasswordHasher(Options{Policy: fastPolicy(credentialDomain.SchemePBKDF2SHA256)})
		require.NoError(t, err)

		for _, stored := range []string{
			"$pbkdf2-sha256$",
			"$pbkdf2-sha256$abc$c2FsdA$aGFzaA",
			"$pbkdf2-sha256$1000$!!$aGFzaA",
		} {
			result, err := hasher.Verify(stored, "x")
			require.NoError(t, err)
			assert.False(t, result.Matched, stored)
		}
	})
}

func TestPBKDF2Scheme_Format(t *testing.T) {
	scheme := &pbkdf2Scheme{rounds: 1000}
	hash, err := scheme.Hash("password")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 5)
	assert.Equal(t, "pbkdf2-sha256", parts[1])
	assert.Equal(t, "1000", parts[2])
	assert.NotContains(t, parts[3], "+")
	assert.NotContains(t, parts[3], "=")

	ok, err := scheme.Verify(hash, "password")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAB64(t *testing.T) {
	data := []byte{0xfb, 0xef, 0xbe, 0x00}

	encoded := ab64Encode(data)
	assert.NotContains(t, encoded, "+")
	assert.Contains(t, encoded, ".")

	decoded, err := ab64Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}
