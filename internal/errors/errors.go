// Package errors holds the sentinel errors shared by every domain. Use cases wrap them
// with context and the HTTP layer maps them to status codes.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrLocked       = errors.New("locked")

	// ErrConfiguration is only returned while the application is being assembled.
	ErrConfiguration = errors.New("configuration error")
)

// codes lists the sentinels in match order with their machine readable code.
var codes = []struct {
	sentinel error
	code     string
}{
	{ErrNotFound, "not_found"},
	{ErrConflict, "conflict"},
	{ErrInvalidInput, "invalid_input"},
	{ErrUnauthorized, "unauthorized"},
	{ErrLocked, "locked"},
	{ErrForbidden, "forbidden"},
	{ErrConfiguration, "configuration_error"},
}

// Code returns the code of the first sentinel found in err's tree, or "internal_error".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return "internal_error"
}

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Configurationf builds an ErrConfiguration with a formatted message.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join is errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
