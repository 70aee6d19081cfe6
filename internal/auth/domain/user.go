package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can log in with a password.
// TenantID is empty unless the deployment is multi-tenant.
type User struct {
	ID           uuid.UUID
	TenantID     string
	Email        string
	Username     string
	PasswordHash string
	Attributes   map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether a password hash is stored.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// UserLookup finds one user by an exact match on Column. When Scoped is set the match is
// restricted to TenantID through TenantColumn.
type UserLookup struct {
	Column       string
	Value        string
	Scoped       bool
	TenantColumn string
	TenantID     string
}

// CreateUserInput contains the data needed to create a user.
type CreateUserInput struct {
	TenantID   string         `json:"tenant_id"`
	Email      string         `json:"email"`
	Username   string         `json:"username"`
	Password   string         `json:"password"`
	Attributes map[string]any `json:"attributes"`
}
