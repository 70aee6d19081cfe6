package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	apperrors "github.com/allisson/authserver/internal/errors"
	customValidation "github.com/allisson/authserver/internal/validation"
)

func testPasswordRules() []validation.Rule {
	return []validation.Rule{customValidation.LettersDigits{}}
}

func TestUserUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatesUserAndAuditEvent", func(t *testing.T) {
		txManager := &mockTxManager{}
		users := &mockUserRepository{}
		audit := &mockAuditEventRepository{}
		hasher := &mockPasswordHasher{}
		useCase := NewUserUseCase(txManager, users, audit, hasher, testPasswordRules(), true)

		txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		hasher.On("Hash", "secret123").Return("$pbkdf2-sha256$1000$c2FsdA$aGFzaA", nil)
		users.On("Create", ctx, mock.MatchedBy(func(u *authDomain.User) bool {
			return u.Email == testEmail && u.PasswordHash == "$pbkdf2-sha256$1000$c2FsdA$aGFzaA" && u.TenantID == "acme"
		})).Return(nil)
		audit.On("Create", ctx, mock.MatchedBy(func(e *authDomain.AuditEvent) bool {
			return e.Action == authDomain.ActionCreate && e.TenantID == "acme"
		})).Return(nil)

		user, err := useCase.Create(ctx, &authDomain.CreateUserInput{
			TenantID:   "acme",
			Email:      testEmail,
			Username:   "jane",
			Password:   "secret123",
			Attributes: map[string]any{"role": "admin"},
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "admin", user.Attributes["role"])
		assert.False(t, user.CreatedAt.IsZero())
		users.AssertExpectations(t)
		audit.AssertExpectations(t)
	})

	t.Run("Success_WithoutPassword", func(t *testing.T) {
		txManager := &mockTxManager{}
		users := &mockUserRepository{}
		hasher := &mockPasswordHasher{}
		useCase := NewUserUseCase(txManager, users, &mockAuditEventRepository{}, hasher, testPasswordRules(), false)

		txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		users.On("Create", ctx, mock.Anything).Return(nil)

		user, err := useCase.Create(ctx, &authDomain.CreateUserInput{Email: testEmail})

		require.NoError(t, err)
		assert.False(t, user.HasPassword())
		hasher.AssertNotCalled(t, "Hash", mock.Anything)
	})

	t.Run("Error_InvalidInput", func(t *testing.T) {
		useCase := NewUserUseCase(
			&mockTxManager{},
			&mockUserRepository{},
			&mockAuditEventRepository{},
			&mockPasswordHasher{},
			testPasswordRules(),
			true,
		)

		tests := []struct {
			name  string
			input authDomain.CreateUserInput
		}{
			{"MissingEmail", authDomain.CreateUserInput{Password: "secret123"}},
			{"InvalidEmail", authDomain.CreateUserInput{Email: "not-an-email"}},
			{"UsernameWhitespace", authDomain.CreateUserInput{Email: testEmail, Username: " jane"}},
			{"WeakPassword", authDomain.CreateUserInput{Email: testEmail, Password: "onlyletters"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := useCase.Create(ctx, &tt.input)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			})
		}
	})

	t.Run("Error_AlreadyExists", func(t *testing.T) {
		txManager := &mockTxManager{}
		users := &mockUserRepository{}
		useCase := NewUserUseCase(txManager, users, &mockAuditEventRepository{}, &mockPasswordHasher{}, nil, true)

		txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		users.On("Create", ctx, mock.Anything).Return(authDomain.ErrUserAlreadyExists)

		user, err := useCase.Create(ctx, &authDomain.CreateUserInput{Email: testEmail})

		assert.Nil(t, user)
		assert.ErrorIs(t, err, authDomain.ErrUserAlreadyExists)
	})

	t.Run("Error_AuditFailureFailsCreate", func(t *testing.T) {
		txManager := &mockTxManager{}
		users := &mockUserRepository{}
		audit := &mockAuditEventRepository{}
		useCase := NewUserUseCase(txManager, users, audit, &mockPasswordHasher{}, nil, true)

		txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		users.On("Create", ctx, mock.Anything).Return(nil)
		audit.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := useCase.Create(ctx, &authDomain.CreateUserInput{Email: testEmail})

		assert.Error(t, err)
	})
}

func TestUserUseCase_SetPassword(t *testing.T) {
	ctx := context.Background()
	user := &authDomain.User{ID: uuid.Must(uuid.NewV7()), Email: testEmail}

	t.Run("Success_EmptyPasswordIsNoOp", func(t *testing.T) {
		txManager := &mockTxManager{}
		useCase := NewUserUseCase(txManager, &mockUserRepository{}, &mockAuditEventRepository{}, &mockPasswordHasher{}, nil, true)

		err := useCase.SetPassword(ctx, user.ID, "")

		require.NoError(t, err)
		txManager.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
	})

	t.Run("Success_StoresHashAndRecordsChange", func(t *testing.T) {
		txManager := &mockTxManager{}
		users := &mockUserRepository{}
		audit := &mockAuditEventRepository{}
		hasher := &mockPasswordHasher{}
		useCase := NewUserUseCase(txManager, users, audit, hasher, testPasswordRules(), true)

		txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		hasher.On("Hash", "new-secret-1").Return("hashed", nil)
		users.On("GetByID", ctx, user.ID).Return(user, nil)
		users.On("UpdatePassword", ctx, user.ID, "hashed").Return(nil)
		audit.On("Create", ctx, mock.MatchedBy(func(e *authDomain.AuditEvent) bool {
			return e.Action == authDomain.ActionPasswordChange && e.SubjectID == user.ID
		})).Return(nil)

		err := useCase.SetPassword(ctx, user.ID, "new-secret-1")

		require.NoError(t, err)
		users.AssertExpectations(t)
		audit.AssertExpectations(t)
	})

	t.Run("Error_UserNotFound", func(t *testing.T) {
		txManager := &mockTxManager{}
		users := &mockUserRepository{}
		hasher := &mockPasswordHasher{}
		useCase := NewUserUseCase(txManager, users, &mockAuditEventRepository{}, hasher, nil, true)

		txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		hasher.On("Hash", "new-secret-1").Return("hashed", nil)
		users.On("GetByID", ctx, user.ID).Return(nil, authDomain.ErrUserNotFound)

		err := useCase.SetPassword(ctx, user.ID, "new-secret-1")

		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
		users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_WeakPassword", func(t *testing.T) {
		useCase := NewUserUseCase(
			&mockTxManager{},
			&mockUserRepository{},
			&mockAuditEventRepository{},
			&mockPasswordHasher{},
			testPasswordRules(),
			true,
		)

		err := useCase.SetPassword(ctx, user.ID, "12345678")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestUserUseCase_Get(t *testing.T) {
	ctx := context.Background()
	user := &authDomain.User{ID: uuid.Must(uuid.NewV7()), Email: testEmail}
	users := &mockUserRepository{}
	useCase := NewUserUseCase(&mockTxManager{}, users, &mockAuditEventRepository{}, &mockPasswordHasher{}, nil, true)

	users.On("GetByID", ctx, user.ID).Return(user, nil)

	got, err := useCase.Get(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user, got)
}
