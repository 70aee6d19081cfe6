package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent records something that happened to a user. Failed logins within the lockout
// window are counted from these events.
type AuditEvent struct {
	ID        uuid.UUID
	SubjectID uuid.UUID
	TenantID  string
	Action    string
	Data      map[string]any
	CreatedAt time.Time
}
