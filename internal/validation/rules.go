// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/authserver/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// LettersDigits requires a password to contain at least one letter and one digit.
// Empty values pass so that Required stays in charge of presence.
type LettersDigits struct{}

// Validate implements validation.Rule.
func (LettersDigits) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_type", "password must be a string")
	}
	return checkLettersDigits(s)
}

// LettersDigitsSpecialCharacters requires at least one letter, one digit and one of
// SpecialCharacters.
type LettersDigitsSpecialCharacters struct {
	SpecialCharacters string
}

// Validate implements validation.Rule.
func (r LettersDigitsSpecialCharacters) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_type", "password must be a string")
	}
	if err := checkLettersDigits(s); err != nil {
		return err
	}
	if s == "" || r.SpecialCharacters == "" {
		return nil
	}
	if !strings.ContainsAny(s, r.SpecialCharacters) {
		chars := make([]string, 0, len(r.SpecialCharacters))
		for _, c := range r.SpecialCharacters {
			chars = append(chars, string(c))
		}
		return validation.NewError(
			"validation_password_special",
			"password must contain at least one special character from the following list: "+
				strings.Join(chars, ", "),
		)
	}
	return nil
}

func checkLettersDigits(s string) error {
	if s == "" {
		return nil
	}
	if !hasNumber(s) {
		return validation.NewError(
			"validation_password_number",
			"password must contain numbers and letters, but does not contain any numbers.",
		)
	}
	if !hasLetter(s) {
		return validation.NewError(
			"validation_password_letter",
			"password must contain numbers and letters, but does not contain any letters.",
		)
	}
	return nil
}

// hasLetter checks if string contains letters
func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// hasNumber checks if string contains numbers
func hasNumber(s string) bool {
	for _, r := range s {
		if unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
