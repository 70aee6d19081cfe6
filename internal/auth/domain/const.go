// Package domain defines users, the login configuration and the audit events recorded
// while authenticating.
package domain

import "time"

// Default audit action names.
const (
	ActionLogin          = "login"
	ActionFailedLogin    = "failed_login"
	ActionAccountLockout = "account_lockout"
	ActionCreate         = "create"
	ActionPasswordChange = "password_change"
)

// Default keys of the audit data map.
const (
	DataKeyUsername = "username"
	DataKeyUserID   = "user_id"
	DataKeyTenantID = "tenant_id"
	DataKeyReason   = "reason"
)

// Login messages returned to callers.
const (
	InvalidCredentialsMessage = "Invalid username/password combination"
	PasswordNotSetReason      = "Password not set - user is not configured for password login"
	InvalidPasswordReason     = "Invalid password"
	AccountLockedReason       = "Account Locked"
)

// Login defaults.
const (
	DefaultUsernameField    = FieldEmail
	DefaultPasswordField    = FieldPassword
	DefaultTokenLifetime    = 86400 * time.Second
	DefaultLockoutThreshold = 10
	DefaultLockoutWindow    = 5 * time.Minute
)

// User field names.
const (
	FieldID              = "id"
	FieldEmail           = "email"
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldTenantID        = "tenant_id"
	FieldCreatedAt       = "created_at"
	AttributeFieldPrefix = "attributes."
)
