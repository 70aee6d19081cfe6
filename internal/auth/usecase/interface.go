// Package usecase implements password login, user management and the audit log.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	keysDomain "github.com/allisson/authserver/internal/keys/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create stores a new user. Duplicate email or username within a tenant fails with
	// authDomain.ErrUserAlreadyExists.
	Create(ctx context.Context, user *authDomain.User) error

	// GetByID returns authDomain.ErrUserNotFound when no user has id.
	GetByID(ctx context.Context, id uuid.UUID) (*authDomain.User, error)

	// FindOne returns authDomain.ErrUserNotFound when nothing matches lookup.
	FindOne(ctx context.Context, lookup authDomain.UserLookup) (*authDomain.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// AuditEventRepository defines the interface for audit event persistence.
type AuditEventRepository interface {
	// Create appends an event.
	Create(ctx context.Context, event *authDomain.AuditEvent) error

	// CountSince counts the events of subjectID with action created after since.
	CountSince(ctx context.Context, subjectID uuid.UUID, action string, since time.Time) (int64, error)

	// ListBySubject returns the events of subjectID, newest first.
	ListBySubject(ctx context.Context, subjectID uuid.UUID, offset, limit int) ([]*authDomain.AuditEvent, error)

	// DeleteOlderThan removes events created before olderThan and returns how many were
	// (or, in dry-run mode, would be) removed.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// SigningKeyProvider returns the key new tokens are signed with.
type SigningKeyProvider interface {
	SigningKey(ctx context.Context) (*keysDomain.SigningKey, error)
}

// LoginUseCase authenticates users by password and issues signed tokens.
type LoginUseCase interface {
	// Login runs the login flow. Failures are reported as *authDomain.InputErrors,
	// authDomain.ErrInvalidCredentials, *authDomain.AccountLockedError or
	// *authDomain.LoginRejectedError; anything else is an internal failure.
	Login(ctx context.Context, input authDomain.LoginInput) (*authDomain.LoginOutput, error)
}

// UserUseCase manages users.
type UserUseCase interface {
	// Create validates input, hashes the password and stores the user.
	Create(ctx context.Context, input *authDomain.CreateUserInput) (*authDomain.User, error)

	// SetPassword hashes and stores password. An empty password leaves the stored hash untouched.
	SetPassword(ctx context.Context, id uuid.UUID, password string) error

	// Get returns the user with id.
	Get(ctx context.Context, id uuid.UUID) (*authDomain.User, error)
}

// AuditEventUseCase reads and prunes the audit log.
type AuditEventUseCase interface {
	// ListBySubject returns the events of a user, newest first.
	ListBySubject(ctx context.Context, subjectID uuid.UUID, offset, limit int) ([]*authDomain.AuditEvent, error)

	// DeleteOlderThan removes events older than days. With dryRun it only counts them.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
