package dto

import (
	"time"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
)

// LoginResponse contains the issued token and its expiry as a unix timestamp.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// LoginErrorResponse is returned for every rejected login.
type LoginErrorResponse struct {
	Error string `json:"error"`
}

// UserResponse represents a user in API responses. The password hash is never included.
type UserResponse struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id,omitempty"`
	Email       string         `json:"email"`
	Username    string         `json:"username,omitempty"`
	HasPassword bool           `json:"has_password"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *authDomain.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		TenantID:    user.TenantID,
		Email:       user.Email,
		Username:    user.Username,
		HasPassword: user.HasPassword(),
		Attributes:  user.Attributes,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// AuditEventResponse represents an audit event in API responses.
type AuditEventResponse struct {
	ID        string         `json:"id"`
	SubjectID string         `json:"subject_id"`
	TenantID  string         `json:"tenant_id,omitempty"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListAuditEventsResponse represents a paginated list of audit events.
type ListAuditEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}

// MapAuditEventsToListResponse converts domain audit events to a list API response.
func MapAuditEventsToListResponse(events []*authDomain.AuditEvent) ListAuditEventsResponse {
	responses := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, AuditEventResponse{
			ID:        event.ID.String(),
			SubjectID: event.SubjectID.String(),
			TenantID:  event.TenantID,
			Action:    event.Action,
			Data:      event.Data,
			CreatedAt: event.CreatedAt,
		})
	}
	return ListAuditEventsResponse{Data: responses}
}
