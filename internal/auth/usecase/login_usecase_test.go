package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	authService "github.com/allisson/authserver/internal/auth/service"
	credentialDomain "github.com/allisson/authserver/internal/credential/domain"
	credentialService "github.com/allisson/authserver/internal/credential/service"
	apperrors "github.com/allisson/authserver/internal/errors"
	keysDomain "github.com/allisson/authserver/internal/keys/domain"
)

const (
	testIssuer   = "https://auth.example.com"
	testAudience = "example-api"
	testEmail    = "jane@example.com"
	testPassword = "correct-horse-1"
)

type loginFixture struct {
	useCase LoginUseCase
	users   *mockUserRepository
	audit   *memoryAuditRepository
	keys    *mockSigningKeyProvider
	hasher  credentialService.PasswordHasher
	counter *countingHasher
	user    *authDomain.User
}

// countingHasher records how often the login flow hashes and verifies passwords.
type countingHasher struct {
	credentialService.PasswordHasher
	hashes   int
	verifies int
}

func (c *countingHasher) Hash(plain string) (string, error) {
	c.hashes++
	return c.PasswordHasher.Hash(plain)
}

func (c *countingHasher) Verify(stored, candidate string) (credentialDomain.VerifyResult, error) {
	c.verifies++
	return c.PasswordHasher.Verify(stored, candidate)
}

func testHasher(t *testing.T) credentialService.PasswordHasher {
	t.Helper()
	hasher, err := credentialService.NewPasswordHasherFromPolicy(credentialDomain.Policy{
		Schemes:      []string{credentialDomain.SchemePBKDF2SHA256, credentialDomain.SchemeBcrypt},
		Deprecated:   []string{credentialDomain.SchemeBcrypt},
		BcryptCost:   4,
		PBKDF2Rounds: credentialDomain.MinPBKDF2Rounds,
	})
	require.NoError(t, err)
	return hasher
}

func testLoginConfig() authDomain.LoginConfig {
	config := authDomain.DefaultLoginConfig()
	config.Issuer = testIssuer
	config.Audience = testAudience
	config.ClaimFields = []string{authDomain.FieldID, authDomain.FieldEmail}
	return config
}

func newLoginFixture(t *testing.T, configure func(*authDomain.LoginConfig)) *loginFixture {
	t.Helper()

	config := testLoginConfig()
	if configure != nil {
		configure(&config)
	}

	hasher := testHasher(t)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	f := &loginFixture{
		users:   &mockUserRepository{},
		audit:   &memoryAuditRepository{},
		keys:    &mockSigningKeyProvider{},
		hasher:  hasher,
		counter: &countingHasher{PasswordHasher: hasher},
		user: &authDomain.User{
			ID:           uuid.Must(uuid.NewV7()),
			Email:        testEmail,
			Username:     "jane",
			PasswordHash: hash,
			Attributes:   map[string]any{"role": "admin"},
		},
	}

	f.useCase, err = NewLoginUseCase(
		config,
		authDomain.DefaultFieldSet(),
		f.users,
		f.audit,
		f.keys,
		f.counter,
		authService.NewTokenSigner(),
	)
	require.NoError(t, err)
	return f
}

func (f *loginFixture) expectLookup() {
	f.users.On("FindOne", mock.Anything, authDomain.UserLookup{Column: "email", Value: testEmail}).
		Return(f.user, nil)
}

func (f *loginFixture) expectSigningKey() {
	f.keys.On("SigningKey", mock.Anything).Return(testSigningKey(), nil)
}

func credentials(password string) authDomain.LoginInput {
	return authDomain.LoginInput{Body: map[string]any{"email": testEmail, "password": password}}
}

func parseToken(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		return &testSigningKey().PrivateKey.PublicKey, nil
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(testIssuer),
		jwt.WithAudience(testAudience),
	)
	require.NoError(t, err)
	assert.Equal(t, testSigningKey().ID, parsed.Header["kid"])
	return parsed.Claims.(jwt.MapClaims)
}

func TestNewLoginUseCase(t *testing.T) {
	t.Run("Error_InvalidConfig", func(t *testing.T) {
		config := testLoginConfig()
		config.Issuer = ""

		useCase, err := NewLoginUseCase(
			config,
			authDomain.DefaultFieldSet(),
			&mockUserRepository{},
			&memoryAuditRepository{},
			&mockSigningKeyProvider{},
			testHasher(t),
			authService.NewTokenSigner(),
		)

		assert.Nil(t, useCase)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}

func TestLoginUseCase_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssuesToken", func(t *testing.T) {
		f := newLoginFixture(t, nil)
		f.expectLookup()
		f.expectSigningKey()

		before := time.Now().Unix()
		output, err := f.useCase.Login(ctx, credentials(testPassword))

		require.NoError(t, err)
		claims := parseToken(t, output.Token)
		assert.Equal(t, testEmail, claims["email"])
		assert.Equal(t, f.user.ID.String(), claims["id"])
		assert.EqualValues(t, output.ExpiresAt, claims["exp"])
		assert.GreaterOrEqual(t, output.ExpiresAt, before+int64(authDomain.DefaultTokenLifetime.Seconds()))

		require.Len(t, f.audit.events, 1)
		event := f.audit.events[0]
		assert.Equal(t, authDomain.ActionLogin, event.Action)
		assert.Equal(t, f.user.ID, event.SubjectID)
		assert.Equal(t, map[string]any{
			authDomain.DataKeyUsername: testEmail,
			authDomain.DataKeyUserID:   f.user.ID.String(),
		}, event.Data)
		f.users.AssertExpectations(t)
	})

	t.Run("Success_AttributeClaim", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) {
			c.ClaimFields = []string{authDomain.FieldEmail, "attributes.role", "attributes.missing"}
		})
		f.expectLookup()
		f.expectSigningKey()

		output, err := f.useCase.Login(ctx, credentials(testPassword))

		require.NoError(t, err)
		claims := parseToken(t, output.Token)
		assert.Equal(t, "admin", claims["role"])
		assert.Contains(t, claims, "missing")
		assert.Nil(t, claims["missing"])
	})

	t.Run("Success_ClaimsFuncCannotOverrideIssuer", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) {
			c.ClaimFields = nil
			c.ClaimsFunc = func(ctx context.Context, user *authDomain.User) (map[string]any, error) {
				return map[string]any{"sub": user.ID.String(), "iss": "forged", "scope": "read"}, nil
			}
		})
		f.expectLookup()
		f.expectSigningKey()

		output, err := f.useCase.Login(ctx, credentials(testPassword))

		require.NoError(t, err)
		claims := parseToken(t, output.Token)
		assert.Equal(t, testIssuer, claims["iss"])
		assert.Equal(t, "read", claims["scope"])
		assert.Equal(t, f.user.ID.String(), claims["sub"])
	})

	t.Run("Error_InputErrors", func(t *testing.T) {
		f := newLoginFixture(t, nil)

		_, err := f.useCase.Login(ctx, authDomain.LoginInput{Body: map[string]any{
			"email": 12,
			"extra": "x",
		}})

		var inputErrors *authDomain.InputErrors
		require.ErrorAs(t, err, &inputErrors)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Equal(t, map[string]string{
			"email":    "'email' must be a string.",
			"password": "'password' is required.",
			"extra":    "Input column 'extra' is not an allowed column.",
		}, inputErrors.Fields)
		f.users.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
		assert.Empty(t, f.audit.events)
	})

	t.Run("Error_BlankFieldsRequired", func(t *testing.T) {
		f := newLoginFixture(t, nil)

		_, err := f.useCase.Login(ctx, authDomain.LoginInput{Body: map[string]any{
			"email":    "   ",
			"password": "",
		}})

		var inputErrors *authDomain.InputErrors
		require.ErrorAs(t, err, &inputErrors)
		assert.Equal(t, map[string]string{
			"email":    "'email' is required.",
			"password": "'password' is required.",
		}, inputErrors.Fields)
	})

	t.Run("Error_CustomInputErrorsMerged", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) {
			c.InputErrorsFunc = func(ctx context.Context, body map[string]any) map[string]string {
				if !strings.HasSuffix(body["email"].(string), "@example.com") {
					return map[string]string{"email": "Only example.com accounts may log in."}
				}
				return nil
			}
		})

		_, err := f.useCase.Login(ctx, authDomain.LoginInput{Body: map[string]any{
			"email":    "jane@elsewhere.com",
			"password": testPassword,
		}})

		var inputErrors *authDomain.InputErrors
		require.ErrorAs(t, err, &inputErrors)
		assert.Equal(t, map[string]string{"email": "Only example.com accounts may log in."}, inputErrors.Fields)
	})

	t.Run("Error_UnknownUserAndWrongPasswordIndistinguishable", func(t *testing.T) {
		f := newLoginFixture(t, nil)
		f.expectLookup()
		f.users.On("FindOne", mock.Anything, authDomain.UserLookup{Column: "email", Value: "nobody@example.com"}).
			Return(nil, authDomain.ErrUserNotFound)

		_, wrongPasswordErr := f.useCase.Login(ctx, credentials("wrong-password-1"))
		_, unknownUserErr := f.useCase.Login(ctx, authDomain.LoginInput{Body: map[string]any{
			"email":    "nobody@example.com",
			"password": testPassword,
		}})

		assert.ErrorIs(t, wrongPasswordErr, authDomain.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownUserErr, authDomain.ErrInvalidCredentials)
		assert.Equal(t, wrongPasswordErr.Error(), unknownUserErr.Error())
		assert.Equal(t, []string{authDomain.ActionFailedLogin}, f.audit.actions())
		assert.Equal(t, authDomain.InvalidPasswordReason, f.audit.events[0].Data[authDomain.DataKeyReason])
	})

	t.Run("Error_UnknownUserStillVerifiesPassword", func(t *testing.T) {
		f := newLoginFixture(t, nil)
		f.users.On("FindOne", mock.Anything, authDomain.UserLookup{Column: "email", Value: "nobody@example.com"}).
			Return(nil, authDomain.ErrUserNotFound)
		input := authDomain.LoginInput{Body: map[string]any{
			"email":    "nobody@example.com",
			"password": testPassword,
		}}

		for range 3 {
			_, err := f.useCase.Login(ctx, input)
			require.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		}

		assert.Equal(t, 1, f.counter.hashes)
		assert.Equal(t, 3, f.counter.verifies)
		assert.Empty(t, f.audit.events)
	})

	t.Run("Error_PasswordNotSet", func(t *testing.T) {
		f := newLoginFixture(t, nil)
		f.user.PasswordHash = ""
		f.expectLookup()

		_, err := f.useCase.Login(ctx, credentials(testPassword))

		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		require.Len(t, f.audit.events, 1)
		assert.Equal(t, authDomain.PasswordNotSetReason, f.audit.events[0].Data[authDomain.DataKeyReason])
		assert.Equal(t, 1, f.counter.verifies)
	})

	t.Run("Error_LockoutAfterThreshold", func(t *testing.T) {
		f := newLoginFixture(t, nil)
		f.expectLookup()

		for range authDomain.DefaultLockoutThreshold {
			_, err := f.useCase.Login(ctx, credentials("wrong-password-1"))
			require.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		}

		for range 2 {
			_, err := f.useCase.Login(ctx, credentials(testPassword))

			var lockedErr *authDomain.AccountLockedError
			require.ErrorAs(t, err, &lockedErr)
			assert.ErrorIs(t, err, apperrors.ErrLocked)
			assert.Equal(
				t,
				"Your account is under a 5 minute lockout due to 10 failed login attempts",
				err.Error(),
			)
		}

		assert.Equal(t, authDomain.DefaultLockoutThreshold, f.audit.count(authDomain.ActionFailedLogin))
		assert.Equal(t, 1, f.audit.count(authDomain.ActionAccountLockout))
		assert.Equal(t, 0, f.audit.count(authDomain.ActionLogin))
		f.keys.AssertNotCalled(t, "SigningKey", mock.Anything)
	})

	t.Run("Success_OldFailuresOutsideWindowIgnored", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) {
			c.LockoutThreshold = 1
		})
		f.expectLookup()
		f.expectSigningKey()
		f.audit.events = append(f.audit.events, &authDomain.AuditEvent{
			ID:        uuid.Must(uuid.NewV7()),
			SubjectID: f.user.ID,
			Action:    authDomain.ActionFailedLogin,
			CreatedAt: time.Now().UTC().Add(-time.Hour),
		})

		_, err := f.useCase.Login(ctx, credentials(testPassword))

		require.NoError(t, err)
	})

	t.Run("Success_LockoutDisabled", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) {
			c.AccountLockout = false
			c.LockoutThreshold = 1
		})
		f.expectLookup()
		f.expectSigningKey()

		_, err := f.useCase.Login(ctx, credentials("wrong-password-1"))
		require.ErrorIs(t, err, authDomain.ErrInvalidCredentials)

		_, err = f.useCase.Login(ctx, credentials(testPassword))
		require.NoError(t, err)
	})

	t.Run("Success_AuditDisabled", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) {
			c.Audit = false
			c.AccountLockout = false
		})
		f.expectLookup()
		f.expectSigningKey()

		_, err := f.useCase.Login(ctx, credentials(testPassword))

		require.NoError(t, err)
		assert.Empty(t, f.audit.events)
	})

	t.Run("Success_AuditOverrides", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) {
			c.AuditActions.FailedLogin = "login_failed"
			c.AuditOverrides.Username = "login_name"
		})
		f.expectLookup()

		_, err := f.useCase.Login(ctx, credentials("wrong-password-1"))

		require.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		require.Len(t, f.audit.events, 1)
		assert.Equal(t, "login_failed", f.audit.events[0].Action)
		assert.Equal(t, testEmail, f.audit.events[0].Data["login_name"])
	})

	t.Run("Success_DeprecatedHashUpgraded", func(t *testing.T) {
		f := newLoginFixture(t, nil)
		legacy, err := credentialService.NewPasswordHasherFromPolicy(credentialDomain.Policy{
			Schemes:    []string{credentialDomain.SchemeBcrypt},
			BcryptCost: 4,
		})
		require.NoError(t, err)
		f.user.PasswordHash, err = legacy.Hash(testPassword)
		require.NoError(t, err)

		f.expectLookup()
		f.expectSigningKey()
		var stored string
		f.users.On("UpdatePassword", mock.Anything, f.user.ID, mock.MatchedBy(func(hash string) bool {
			return strings.HasPrefix(hash, "$pbkdf2-sha256$")
		})).
			Run(func(args mock.Arguments) { stored = args.String(2) }).
			Return(nil).
			Once()

		_, err = f.useCase.Login(ctx, credentials(testPassword))
		require.NoError(t, err)

		result, err := f.hasher.Verify(stored, testPassword)
		require.NoError(t, err)
		assert.True(t, result.Matched)
		assert.False(t, result.NeedsRehash())

		// The upgraded hash is used from now on, so no second update happens.
		_, err = f.useCase.Login(ctx, credentials(testPassword))
		require.NoError(t, err)
		f.users.AssertNumberOfCalls(t, "UpdatePassword", 1)
	})

	t.Run("Error_UpgradeFailureIsInternal", func(t *testing.T) {
		f := newLoginFixture(t, nil)
		legacy, err := credentialService.NewPasswordHasherFromPolicy(credentialDomain.Policy{
			Schemes:    []string{credentialDomain.SchemeBcrypt},
			BcryptCost: 4,
		})
		require.NoError(t, err)
		f.user.PasswordHash, err = legacy.Hash(testPassword)
		require.NoError(t, err)
		f.expectLookup()
		f.users.On("UpdatePassword", mock.Anything, f.user.ID, mock.Anything).Return(errors.New("db down"))

		_, err = f.useCase.Login(ctx, credentials(testPassword))

		require.Error(t, err)
		assert.NotErrorIs(t, err, authDomain.ErrInvalidCredentials)
	})

	t.Run("Error_LoginCheckRejects", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) {
			c.LoginChecks = []authDomain.LoginCheck{
				func(ctx context.Context, user *authDomain.User) string { return "" },
				func(ctx context.Context, user *authDomain.User) string { return "Account is disabled." },
			}
		})
		f.expectLookup()

		_, err := f.useCase.Login(ctx, credentials(testPassword))

		var rejectedErr *authDomain.LoginRejectedError
		require.ErrorAs(t, err, &rejectedErr)
		assert.Equal(t, "Account is disabled.", err.Error())
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		require.Len(t, f.audit.events, 1)
		assert.Equal(t, authDomain.ActionFailedLogin, f.audit.events[0].Action)
		assert.Equal(t, "Account is disabled.", f.audit.events[0].Data[authDomain.DataKeyReason])
		f.keys.AssertNotCalled(t, "SigningKey", mock.Anything)
	})

	t.Run("Error_NoSigningKey", func(t *testing.T) {
		f := newLoginFixture(t, nil)
		f.expectLookup()
		f.keys.On("SigningKey", mock.Anything).Return(nil, keysDomain.ErrNoSigningKey)

		_, err := f.useCase.Login(ctx, credentials(testPassword))

		assert.ErrorIs(t, err, keysDomain.ErrNoSigningKey)
		assert.Equal(t, LoginOutcomeError, LoginOutcome(err))
	})

	t.Run("Error_LookupFailureIsInternal", func(t *testing.T) {
		f := newLoginFixture(t, nil)
		f.users.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		_, err := f.useCase.Login(ctx, credentials(testPassword))

		require.Error(t, err)
		assert.NotErrorIs(t, err, authDomain.ErrInvalidCredentials)
	})
}

func TestLoginUseCase_MultiTenant(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_MissingTenant", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) { c.MultiTenant = true })

		_, err := f.useCase.Login(ctx, credentials(testPassword))

		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.users.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
		assert.Equal(t, 1, f.counter.verifies)
	})

	t.Run("Success_ScopedLookup", func(t *testing.T) {
		f := newLoginFixture(t, func(c *authDomain.LoginConfig) { c.MultiTenant = true })
		f.user.TenantID = "acme"
		f.users.On("FindOne", mock.Anything, authDomain.UserLookup{
			Column:       "email",
			Value:        testEmail,
			Scoped:       true,
			TenantColumn: "tenant_id",
			TenantID:     "acme",
		}).Return(f.user, nil)
		f.expectSigningKey()

		input := credentials(testPassword)
		input.TenantID = "acme"
		_, err := f.useCase.Login(ctx, input)

		require.NoError(t, err)
		require.Len(t, f.audit.events, 1)
		assert.Equal(t, "acme", f.audit.events[0].TenantID)
		assert.Equal(t, "acme", f.audit.events[0].Data[authDomain.DataKeyTenantID])
	})
}
