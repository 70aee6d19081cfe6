package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	"github.com/allisson/authserver/internal/database"
	apperrors "github.com/allisson/authserver/internal/errors"
)

// MySQLAuditEventRepository implements AuditEvent persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAuditEventRepository struct {
	db *sql.DB
}

// NewMySQLAuditEventRepository creates a new MySQL AuditEvent repository.
func NewMySQLAuditEventRepository(db *sql.DB) *MySQLAuditEventRepository {
	return &MySQLAuditEventRepository{db: db}
}

// Create appends an audit event. Nil data is stored as NULL.
func (m *MySQLAuditEventRepository) Create(ctx context.Context, event *authDomain.AuditEvent) error {
	querier := database.GetTx(ctx, m.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	subjectID, err := event.SubjectID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event subject_id")
	}

	data, err := marshalJSON(event.Data)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event data")
	}

	query := `INSERT INTO audit_events (id, subject_id, tenant_id, action, data, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, subjectID, event.TenantID, event.Action, data, event.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// CountSince counts the events of subjectID with action created after since.
func (m *MySQLAuditEventRepository) CountSince(
	ctx context.Context,
	subjectID uuid.UUID,
	action string,
	since time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	subjectIDBinary, err := subjectID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal audit event subject_id")
	}

	query := `SELECT COUNT(*) FROM audit_events WHERE subject_id = ? AND action = ? AND created_at > ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, subjectIDBinary, action, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}
	return count, nil
}

// ListBySubject retrieves the events of subjectID, newest first, with pagination.
// Returns an empty slice when there are none.
func (m *MySQLAuditEventRepository) ListBySubject(
	ctx context.Context,
	subjectID uuid.UUID,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	subjectIDBinary, err := subjectID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event subject_id")
	}

	query := `SELECT id, subject_id, tenant_id, action, data, created_at
			  FROM audit_events
			  WHERE subject_id = ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, subjectIDBinary, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*authDomain.AuditEvent, 0)
	for rows.Next() {
		var event authDomain.AuditEvent
		var idBinary, subjectBinary, data []byte

		if err := rows.Scan(
			&idBinary,
			&subjectBinary,
			&event.TenantID,
			&event.Action,
			&data,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}

		if err := event.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
		}
		if err := event.SubjectID.UnmarshalBinary(subjectBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event subject_id")
		}
		if event.Data, err = unmarshalJSON(data); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event data")
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}

// DeleteOlderThan removes audit events created before olderThan. When dryRun is true it
// only counts them.
func (m *MySQLAuditEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_events WHERE created_at < ?`
		var count int64
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit events")
		}
		return count, nil
	}

	query := `DELETE FROM audit_events WHERE created_at < ?`
	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}
	return count, nil
}
