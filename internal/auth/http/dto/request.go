// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	customValidation "github.com/allisson/authserver/internal/validation"
)

// CreateUserRequest contains the parameters for creating a user.
type CreateUserRequest struct {
	TenantID   string         `json:"tenant_id"`
	Email      string         `json:"email"`
	Username   string         `json:"username"`
	Password   string         `json:"password"` //nolint:gosec // request field
	Attributes map[string]any `json:"attributes"`
}

// Validate checks the shape of the request. Password strength is checked by the use case.
func (r *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
	)
}

// ToDomain converts the request into use case input.
func (r *CreateUserRequest) ToDomain() *authDomain.CreateUserInput {
	return &authDomain.CreateUserInput{
		TenantID:   r.TenantID,
		Email:      r.Email,
		Username:   r.Username,
		Password:   r.Password,
		Attributes: r.Attributes,
	}
}

// SetPasswordRequest contains the new password of a user.
type SetPasswordRequest struct {
	Password string `json:"password"` //nolint:gosec // request field
}

// Validate checks if the set password request is valid.
func (r *SetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password, validation.Required),
	)
}
