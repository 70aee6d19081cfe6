package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	apperrors "github.com/allisson/authserver/internal/errors"
)

// User and login errors.
var (
	// ErrUserNotFound indicates no user has the requested id.
	ErrUserNotFound = apperrors.Wrap(apperrors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates the email or username is taken within the tenant.
	ErrUserAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "user already exists")

	// ErrInvalidCredentials hides which of username or password was wrong.
	ErrInvalidCredentials = apperrors.Wrap(apperrors.ErrUnauthorized, InvalidCredentialsMessage)
)

// InputErrors lists every problem found in a login request, keyed by field name.
type InputErrors struct {
	Fields map[string]string
}

func (e *InputErrors) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid login input: " + strings.Join(parts, "; ")
}

func (e *InputErrors) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// AccountLockedError is returned while too many recent logins failed.
type AccountLockedError struct {
	Threshold int
	Window    time.Duration
}

// Error reports the window in minutes, rounded up so a partial minute is never shown as 0.
func (e *AccountLockedError) Error() string {
	return fmt.Sprintf(
		"Your account is under a %d minute lockout due to %d failed login attempts",
		int(math.Ceil(e.Window.Minutes())),
		e.Threshold,
	)
}

func (e *AccountLockedError) Unwrap() error {
	return apperrors.ErrLocked
}

// LoginRejectedError carries the reason a login check refused the user.
type LoginRejectedError struct {
	Reason string
}

func (e *LoginRejectedError) Error() string {
	return e.Reason
}

func (e *LoginRejectedError) Unwrap() error {
	return apperrors.ErrForbidden
}
