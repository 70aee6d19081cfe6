package usecase

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	authService "github.com/allisson/authserver/internal/auth/service"
	credentialService "github.com/allisson/authserver/internal/credential/service"
	apperrors "github.com/allisson/authserver/internal/errors"
	customValidation "github.com/allisson/authserver/internal/validation"
)

type loginUseCase struct {
	config      authDomain.LoginConfig
	fields      *authDomain.LoginFields
	userRepo    UserRepository
	auditRepo   AuditEventRepository
	keys        SigningKeyProvider
	hasher      credentialService.PasswordHasher
	tokenSigner authService.TokenSigner

	decoyOnce sync.Once
	decoyHash string
}

// NewLoginUseCase validates config against fields and creates a LoginUseCase.
func NewLoginUseCase(
	config authDomain.LoginConfig,
	fields *authDomain.FieldSet,
	userRepo UserRepository,
	auditRepo AuditEventRepository,
	keys SigningKeyProvider,
	hasher credentialService.PasswordHasher,
	tokenSigner authService.TokenSigner,
) (LoginUseCase, error) {
	resolved, err := config.Validate(fields)
	if err != nil {
		return nil, err
	}
	return &loginUseCase{
		config:      config,
		fields:      resolved,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		keys:        keys,
		hasher:      hasher,
		tokenSigner: tokenSigner,
	}, nil
}

func (l *loginUseCase) Login(ctx context.Context, input authDomain.LoginInput) (*authDomain.LoginOutput, error) {
	username, password, err := l.validateInput(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	lookup := authDomain.UserLookup{Column: l.fields.Username.Column(), Value: username}
	if l.config.MultiTenant {
		if input.TenantID == "" {
			l.verifyDecoy(password)
			return nil, authDomain.ErrInvalidCredentials
		}
		lookup.Scoped = true
		lookup.TenantColumn = l.fields.Tenant.TenantColumn()
		lookup.TenantID = input.TenantID
	}

	user, err := l.userRepo.FindOne(ctx, lookup)
	if err != nil {
		if apperrors.Is(err, authDomain.ErrUserNotFound) {
			l.verifyDecoy(password)
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "failed to find user")
	}

	if err := l.checkLockout(ctx, user, username); err != nil {
		return nil, err
	}

	stored := l.fields.Password.PasswordHash(user)
	if stored == "" {
		l.verifyDecoy(password)
		if err := l.recordFailure(ctx, user, username, authDomain.PasswordNotSetReason); err != nil {
			return nil, err
		}
		return nil, authDomain.ErrInvalidCredentials
	}

	result, err := l.hasher.Verify(stored, password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to verify password")
	}
	if !result.Matched {
		if err := l.recordFailure(ctx, user, username, authDomain.InvalidPasswordReason); err != nil {
			return nil, err
		}
		return nil, authDomain.ErrInvalidCredentials
	}
	if result.NeedsRehash() {
		if err := l.userRepo.UpdatePassword(ctx, user.ID, result.NewHash); err != nil {
			return nil, apperrors.Wrap(err, "failed to upgrade password hash")
		}
		user.PasswordHash = result.NewHash
	}

	for _, check := range l.config.LoginChecks {
		if reason := check(ctx, user); reason != "" {
			if err := l.recordFailure(ctx, user, username, reason); err != nil {
				return nil, err
			}
			return nil, &authDomain.LoginRejectedError{Reason: reason}
		}
	}

	if err := l.record(ctx, user, username, authDomain.ActionLogin, nil); err != nil {
		return nil, err
	}

	return l.issueToken(ctx, user)
}

// verifyDecoy runs a password verification whose result is discarded, so a login that
// fails before reaching a stored hash costs the same as a wrong password.
func (l *loginUseCase) verifyDecoy(password string) {
	l.decoyOnce.Do(func() {
		l.decoyHash, _ = l.hasher.Hash(uuid.NewString())
	})
	if l.decoyHash == "" {
		return
	}
	_, _ = l.hasher.Verify(l.decoyHash, password)
}

// validateInput accepts exactly the configured username and password fields and reports
// every problem at once.
func (l *loginUseCase) validateInput(ctx context.Context, body map[string]any) (string, string, error) {
	usernameField := l.config.UsernameField
	passwordField := l.config.PasswordField

	inputErrors := make(map[string]string)
	for name := range body {
		if name != usernameField && name != passwordField {
			inputErrors[name] = fmt.Sprintf("Input column '%s' is not an allowed column.", name)
		}
	}
	for _, name := range []string{usernameField, passwordField} {
		if err := validation.Validate(body[name], loginFieldRules(name)...); err != nil {
			inputErrors[name] = err.Error()
		}
	}
	if l.config.InputErrorsFunc != nil {
		maps.Copy(inputErrors, l.config.InputErrorsFunc(ctx, body))
	}

	if len(inputErrors) > 0 {
		return "", "", &authDomain.InputErrors{Fields: inputErrors}
	}
	return body[usernameField].(string), body[passwordField].(string), nil
}

func loginFieldRules(name string) []validation.Rule {
	required := fmt.Sprintf("'%s' is required.", name)
	return []validation.Rule{
		validation.Required.Error(required),
		validation.By(func(value interface{}) error {
			if _, ok := value.(string); !ok {
				return fmt.Errorf("'%s' must be a string.", name)
			}
			return nil
		}),
		customValidation.NotBlank.Error(required),
	}
}

// checkLockout fails while the user has too many recent failed logins. The lockout itself
// is recorded once per window.
func (l *loginUseCase) checkLockout(ctx context.Context, user *authDomain.User, username string) error {
	if !l.config.AccountLockout {
		return nil
	}

	since := time.Now().UTC().Add(-l.config.LockoutWindow)
	failures, err := l.auditRepo.CountSince(ctx, user.ID, l.config.ActionName(authDomain.ActionFailedLogin), since)
	if err != nil {
		return apperrors.Wrap(err, "failed to count failed logins")
	}
	if failures < int64(l.config.LockoutThreshold) {
		return nil
	}

	lockoutAction := l.config.ActionName(authDomain.ActionAccountLockout)
	lockouts, err := l.auditRepo.CountSince(ctx, user.ID, lockoutAction, since)
	if err != nil {
		return apperrors.Wrap(err, "failed to count account lockouts")
	}
	if lockouts == 0 {
		err := l.record(ctx, user, username, authDomain.ActionAccountLockout, map[string]any{
			authDomain.DataKeyReason: authDomain.AccountLockedReason,
		})
		if err != nil {
			return err
		}
	}

	return &authDomain.AccountLockedError{
		Threshold: l.config.LockoutThreshold,
		Window:    l.config.LockoutWindow,
	}
}

func (l *loginUseCase) recordFailure(ctx context.Context, user *authDomain.User, username, reason string) error {
	return l.record(ctx, user, username, authDomain.ActionFailedLogin, map[string]any{
		authDomain.DataKeyReason: reason,
	})
}

func (l *loginUseCase) record(
	ctx context.Context,
	user *authDomain.User,
	username, action string,
	extra map[string]any,
) error {
	if !l.config.Audit {
		return nil
	}

	data := map[string]any{
		l.config.DataKey(authDomain.DataKeyUsername): username,
		l.config.DataKey(authDomain.DataKeyUserID):   user.ID.String(),
	}
	if l.config.MultiTenant {
		data[l.config.DataKey(authDomain.DataKeyTenantID)] = user.TenantID
	}
	maps.Copy(data, extra)

	event := &authDomain.AuditEvent{
		ID:        uuid.Must(uuid.NewV7()),
		SubjectID: user.ID,
		TenantID:  user.TenantID,
		Action:    l.config.ActionName(action),
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.auditRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit event")
	}
	return nil
}

func (l *loginUseCase) issueToken(ctx context.Context, user *authDomain.User) (*authDomain.LoginOutput, error) {
	key, err := l.keys.SigningKey(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load signing key")
	}

	claims, err := l.claims(ctx, user)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := l.tokenSigner.Sign(key, claims, time.Now().UTC(), l.config.TokenLifetime)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign token")
	}

	return &authDomain.LoginOutput{Token: token, ExpiresAt: expiresAt}, nil
}

// claims builds the custom claims and then sets iss and aud over them.
func (l *loginUseCase) claims(ctx context.Context, user *authDomain.User) (map[string]any, error) {
	claims := make(map[string]any)
	if l.config.ClaimsFunc != nil {
		custom, err := l.config.ClaimsFunc(ctx, user)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to build token claims")
		}
		maps.Copy(claims, custom)
	} else {
		for _, field := range l.fields.Claims {
			name := strings.TrimPrefix(field.Name(), authDomain.AttributeFieldPrefix)
			claims[name] = field.Value(user)
		}
	}

	claims["iss"] = l.config.Issuer
	claims["aud"] = l.config.Audience
	return claims, nil
}
