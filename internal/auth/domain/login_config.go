package domain

import (
	"context"
	"time"

	apperrors "github.com/allisson/authserver/internal/errors"
)

// ClaimsFunc builds custom token claims for an authenticated user.
type ClaimsFunc func(ctx context.Context, user *User) (map[string]any, error)

// InputErrorsFunc adds request validation. It returns field names mapped to messages.
type InputErrorsFunc func(ctx context.Context, body map[string]any) map[string]string

// LoginCheck runs after the password matched. A non-empty result rejects the login and is
// shown to the caller verbatim.
type LoginCheck func(ctx context.Context, user *User) string

// AuditActions names the recorded login events. Empty names fall back to the defaults.
type AuditActions struct {
	Login          string
	FailedLogin    string
	AccountLockout string
}

// AuditOverrides renames keys in the audit data map. Empty names fall back to the defaults.
type AuditOverrides struct {
	Username string
	UserID   string
	TenantID string
}

// LoginConfig configures the password login flow.
type LoginConfig struct {
	Issuer        string
	Audience      string
	UsernameField string
	PasswordField string
	TokenLifetime time.Duration

	// Exactly one of ClaimFields and ClaimsFunc must be set.
	ClaimFields []string
	ClaimsFunc  ClaimsFunc

	InputErrorsFunc InputErrorsFunc
	LoginChecks     []LoginCheck

	Audit          bool
	AuditActions   AuditActions
	AuditOverrides AuditOverrides

	// AccountLockout requires Audit: failures are counted from the audit log.
	AccountLockout   bool
	LockoutThreshold int
	LockoutWindow    time.Duration

	// MultiTenant scopes user lookups by the tenant id taken from the route.
	MultiTenant bool
}

// DefaultLoginConfig returns a configuration with auditing and lockout enabled.
// Issuer, Audience and the claims still have to be set.
func DefaultLoginConfig() LoginConfig {
	return LoginConfig{
		UsernameField:    DefaultUsernameField,
		PasswordField:    DefaultPasswordField,
		TokenLifetime:    DefaultTokenLifetime,
		Audit:            true,
		AccountLockout:   true,
		LockoutThreshold: DefaultLockoutThreshold,
		LockoutWindow:    DefaultLockoutWindow,
	}
}

// LoginFields are the configured fields resolved against a FieldSet.
type LoginFields struct {
	Username Lookup
	Password PasswordCapable
	Claims   []Readable
	Tenant   TenantScoped
}

// Validate checks the configuration against fields and resolves the named fields.
// Problems are reported as ErrConfiguration.
func (c LoginConfig) Validate(fields *FieldSet) (*LoginFields, error) {
	if c.Issuer == "" {
		return nil, apperrors.Configurationf("missing required login configuration 'issuer'")
	}
	if c.Audience == "" {
		return nil, apperrors.Configurationf("missing required login configuration 'audience'")
	}
	if c.TokenLifetime <= 0 {
		return nil, apperrors.Configurationf("the token lifetime must be positive")
	}

	resolved := &LoginFields{}

	field, ok := fields.Get(c.UsernameField)
	if !ok {
		return nil, apperrors.Configurationf("the username field '%s' does not exist", c.UsernameField)
	}
	if resolved.Username, ok = field.(Lookup); !ok {
		return nil, apperrors.Configurationf("the username field '%s' cannot be used to find users", c.UsernameField)
	}

	field, ok = fields.Get(c.PasswordField)
	if !ok {
		return nil, apperrors.Configurationf("the password field '%s' does not exist", c.PasswordField)
	}
	if resolved.Password, ok = field.(PasswordCapable); !ok {
		return nil, apperrors.Configurationf("the password field '%s' does not hold passwords", c.PasswordField)
	}

	if c.UsernameField == c.PasswordField {
		return nil, apperrors.Configurationf("the username and password fields must differ")
	}

	switch {
	case len(c.ClaimFields) > 0 && c.ClaimsFunc != nil:
		return nil, apperrors.Configurationf("claim fields and a claims function were both set but only one can be set")
	case len(c.ClaimFields) == 0 && c.ClaimsFunc == nil:
		return nil, apperrors.Configurationf("either claim fields or a claims function must be set")
	}
	for _, name := range c.ClaimFields {
		field, ok := fields.Get(name)
		if !ok {
			return nil, apperrors.Configurationf("the claim field '%s' does not exist", name)
		}
		readable, ok := field.(Readable)
		if !ok {
			return nil, apperrors.Configurationf("the claim field '%s' is not readable", name)
		}
		resolved.Claims = append(resolved.Claims, readable)
	}

	if c.AccountLockout {
		if !c.Audit {
			return nil, apperrors.Configurationf("account lockout requires auditing to be enabled")
		}
		if c.LockoutThreshold < 1 {
			return nil, apperrors.Configurationf("the lockout threshold must be at least 1")
		}
		if c.LockoutWindow <= 0 {
			return nil, apperrors.Configurationf("the lockout window must be positive")
		}
		if c.LockoutWindow%time.Minute != 0 {
			return nil, apperrors.Configurationf("the lockout window must be a whole number of minutes, got %s", c.LockoutWindow)
		}
	}

	if c.MultiTenant {
		tenant, ok := fields.Tenant()
		if !ok {
			return nil, apperrors.Configurationf("multi-tenant login needs a tenant scoped user field")
		}
		resolved.Tenant = tenant
	}

	return resolved, nil
}

// ActionName returns the configured audit action for a default action name.
func (c LoginConfig) ActionName(action string) string {
	switch action {
	case ActionLogin:
		return firstNonEmpty(c.AuditActions.Login, action)
	case ActionFailedLogin:
		return firstNonEmpty(c.AuditActions.FailedLogin, action)
	case ActionAccountLockout:
		return firstNonEmpty(c.AuditActions.AccountLockout, action)
	}
	return action
}

// DataKey returns the configured audit data key for a default key.
func (c LoginConfig) DataKey(key string) string {
	switch key {
	case DataKeyUsername:
		return firstNonEmpty(c.AuditOverrides.Username, key)
	case DataKeyUserID:
		return firstNonEmpty(c.AuditOverrides.UserID, key)
	case DataKeyTenantID:
		return firstNonEmpty(c.AuditOverrides.TenantID, key)
	}
	return key
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
