package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	credentialService "github.com/allisson/authserver/internal/credential/service"
	"github.com/allisson/authserver/internal/database"
	apperrors "github.com/allisson/authserver/internal/errors"
	customValidation "github.com/allisson/authserver/internal/validation"
)

type userUseCase struct {
	txManager     database.TxManager
	userRepo      UserRepository
	auditRepo     AuditEventRepository
	hasher        credentialService.PasswordHasher
	passwordRules []validation.Rule
	audit         bool
}

// NewUserUseCase creates a UserUseCase. passwordRules are applied to every new password;
// audit controls whether create and password_change events are recorded.
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	auditRepo AuditEventRepository,
	hasher credentialService.PasswordHasher,
	passwordRules []validation.Rule,
	audit bool,
) UserUseCase {
	return &userUseCase{
		txManager:     txManager,
		userRepo:      userRepo,
		auditRepo:     auditRepo,
		hasher:        hasher,
		passwordRules: passwordRules,
		audit:         audit,
	}
}

func (u *userUseCase) validateCreateInput(input *authDomain.CreateUserInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			customValidation.NotBlank,
			customValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Username,
			customValidation.NoWhitespace,
			validation.Length(0, 255).Error("username must be at most 255 characters"),
		),
		validation.Field(&input.TenantID,
			customValidation.NoWhitespace,
			validation.Length(0, 255).Error("tenant_id must be at most 255 characters"),
		),
		validation.Field(&input.Password, u.passwordRules...),
	)
	return customValidation.WrapValidationError(err)
}

func (u *userUseCase) Create(ctx context.Context, input *authDomain.CreateUserInput) (*authDomain.User, error) {
	if err := u.validateCreateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &authDomain.User{
		ID:         uuid.Must(uuid.NewV7()),
		TenantID:   input.TenantID,
		Email:      input.Email,
		Username:   input.Username,
		Attributes: input.Attributes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if input.Password != "" {
		hash, err := u.hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := u.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return u.record(ctx, user, authDomain.ActionCreate)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (u *userUseCase) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	if password == "" {
		return nil
	}
	if err := validation.Validate(password, u.passwordRules...); err != nil {
		return customValidation.WrapValidationError(err)
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}

	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		user, err := u.userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := u.userRepo.UpdatePassword(ctx, id, hash); err != nil {
			return err
		}
		return u.record(ctx, user, authDomain.ActionPasswordChange)
	})
}

func (u *userUseCase) Get(ctx context.Context, id uuid.UUID) (*authDomain.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

func (u *userUseCase) record(ctx context.Context, user *authDomain.User, action string) error {
	if !u.audit {
		return nil
	}
	event := &authDomain.AuditEvent{
		ID:        uuid.Must(uuid.NewV7()),
		SubjectID: user.ID,
		TenantID:  user.TenantID,
		Action:    action,
		Data: map[string]any{
			authDomain.DataKeyUserID: user.ID.String(),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := u.auditRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit event")
	}
	return nil
}
