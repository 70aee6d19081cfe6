package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/authserver/internal/config"
	apperrors "github.com/allisson/authserver/internal/errors"
	"github.com/allisson/authserver/internal/metrics"
	"github.com/allisson/authserver/internal/secretstore"
)

func keyStoreConfig() *config.Config {
	return &config.Config{
		LogLevel:        "error",
		KeyStoreURL:     "mem://",
		PrivateKeysPath: "private-keys.json",
		PublicKeysPath:  "public-keys.json",
		KeyAlgorithm:    "RSA256",
		KeyType:         "RSA",
		KeySize:         2048,
	}
}

func TestNewContainer(t *testing.T) {
	cfg := &config.Config{LogLevel: "info"}

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

func TestContainerLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "invalid"} {
		container := NewContainer(&config.Config{LogLevel: level})

		assert.Nil(t, container.logger, level)
		logger := container.Logger()
		require.NotNil(t, logger, level)
		assert.Same(t, logger, container.Logger(), level)
	}
}

func TestContainerInitializationErrors(t *testing.T) {
	container := NewContainer(&config.Config{DBDriver: "invalid_driver"})

	_, err := container.DB()
	require.Error(t, err)

	_, err2 := container.DB()
	assert.Equal(t, err, err2)

	_, err = container.UserRepository()
	assert.Error(t, err)
}

func TestContainerMetrics(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		container := NewContainer(&config.Config{MetricsEnabled: false})

		provider, err := container.MetricsProvider()
		require.NoError(t, err)
		assert.Nil(t, provider)

		businessMetrics, err := container.BusinessMetrics()
		require.NoError(t, err)
		assert.IsType(t, &metrics.NoOpBusinessMetrics{}, businessMetrics)
	})

	t.Run("Enabled", func(t *testing.T) {
		container := NewContainer(&config.Config{MetricsEnabled: true, MetricsNamespace: "di_test"})
		t.Cleanup(func() { assert.NoError(t, container.Shutdown(context.Background())) })

		provider, err := container.MetricsProvider()
		require.NoError(t, err)
		assert.NotNil(t, provider)

		businessMetrics, err := container.BusinessMetrics()
		require.NoError(t, err)
		assert.NotNil(t, businessMetrics)

		metricsServer, err := container.MetricsServer()
		require.NoError(t, err)
		assert.NotNil(t, metricsServer.GetHandler())
	})
}

func TestContainerKeyStore(t *testing.T) {
	t.Run("PlainBucket", func(t *testing.T) {
		container := NewContainer(keyStoreConfig())
		t.Cleanup(func() { assert.NoError(t, container.Shutdown(context.Background())) })

		store, err := container.KeyStore()
		require.NoError(t, err)
		assert.IsType(t, &secretstore.BlobStore{}, store)
	})

	t.Run("EncryptedWithKeeper", func(t *testing.T) {
		cfg := keyStoreConfig()
		cfg.KeyStoreKeeperURL = "base64key://"
		container := NewContainer(cfg)
		t.Cleanup(func() { assert.NoError(t, container.Shutdown(context.Background())) })

		store, err := container.KeyStore()
		require.NoError(t, err)
		assert.IsType(t, &secretstore.EncryptedStore{}, store)
	})

	t.Run("InvalidBucketURL", func(t *testing.T) {
		cfg := keyStoreConfig()
		cfg.KeyStoreURL = "nope://bucket"
		container := NewContainer(cfg)

		_, err := container.KeyStore()
		assert.Error(t, err)

		_, err = container.KeyUseCase()
		assert.Error(t, err)
	})
}

func TestContainerKeyUseCase(t *testing.T) {
	container := NewContainer(keyStoreConfig())
	t.Cleanup(func() { assert.NoError(t, container.Shutdown(context.Background())) })

	keyUseCase, err := container.KeyUseCase()
	require.NoError(t, err)

	summary, err := keyUseCase.Create(context.Background())
	require.NoError(t, err)

	keys, err := keyUseCase.List(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, summary.ID, keys[0].ID)

	handler, err := container.KeyHandler()
	require.NoError(t, err)
	assert.NotNil(t, handler)
}

func TestContainerPasswordHasher(t *testing.T) {
	t.Run("DefaultPolicy", func(t *testing.T) {
		container := NewContainer(&config.Config{})

		hasher, err := container.PasswordHasher()
		require.NoError(t, err)

		hash, err := hasher.Hash("Passw0rd")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
	})

	t.Run("InlinePolicy", func(t *testing.T) {
		container := NewContainer(&config.Config{
			PasswordPolicy: "schemes = [\"pbkdf2_sha256\", \"bcrypt\"]\npbkdf2_rounds = 1000\n",
		})

		hasher, err := container.PasswordHasher()
		require.NoError(t, err)

		hash, err := hasher.Hash("Passw0rd")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$pbkdf2-sha256$1000$"))
	})

	t.Run("InvalidPolicyIsConfigurationError", func(t *testing.T) {
		container := NewContainer(&config.Config{PasswordPolicy: "schemes = [\"md5\"]"})

		_, err := container.PasswordHasher()
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)

		_, err = container.PasswordHasher()
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}

func TestContainerPasswordRules(t *testing.T) {
	t.Run("LettersDigits", func(t *testing.T) {
		rules := NewContainer(&config.Config{}).PasswordRules()
		assert.Len(t, rules, 2)
	})

	t.Run("SpecialCharactersAndPwned", func(t *testing.T) {
		rules := NewContainer(&config.Config{
			PasswordSpecialCharacters: ":!",
			PasswordCheckPwned:        true,
		}).PasswordRules()
		assert.Len(t, rules, 3)
	})
}

func TestContainerLoginConfig(t *testing.T) {
	container := NewContainer(&config.Config{
		JWTIssuer:             "https://auth.example.com",
		JWTAudience:           "example-api",
		JWTLifetime:           time.Hour,
		LoginUsernameField:    "username",
		LoginPasswordField:    "password",
		LoginClaimFields:      []string{"id", "username"},
		AuditEnabled:          true,
		AccountLockoutEnabled: true,
		LockoutMaxAttempts:    3,
		LockoutWindow:         15 * time.Minute,
		MultiTenantEnabled:    true,
	})

	loginConfig := container.LoginConfig()

	assert.Equal(t, "https://auth.example.com", loginConfig.Issuer)
	assert.Equal(t, "example-api", loginConfig.Audience)
	assert.Equal(t, time.Hour, loginConfig.TokenLifetime)
	assert.Equal(t, "username", loginConfig.UsernameField)
	assert.Equal(t, []string{"id", "username"}, loginConfig.ClaimFields)
	assert.True(t, loginConfig.Audit)
	assert.True(t, loginConfig.AccountLockout)
	assert.Equal(t, 3, loginConfig.LockoutThreshold)
	assert.Equal(t, 15*time.Minute, loginConfig.LockoutWindow)
	assert.True(t, loginConfig.MultiTenant)
}

func TestKeeperScheme(t *testing.T) {
	assert.Equal(t, "base64key", keeperScheme("base64key://c2VjcmV0"))
	assert.Equal(t, "awskms", keeperScheme("awskms://alias/authserver?region=us-east-1"))
}

func TestContainerShutdown(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.NoError(t, container.Shutdown(context.TODO()))
}
