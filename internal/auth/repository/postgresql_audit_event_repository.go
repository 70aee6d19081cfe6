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

// PostgreSQLAuditEventRepository implements AuditEvent persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditEventRepository creates a new PostgreSQL AuditEvent repository.
func NewPostgreSQLAuditEventRepository(db *sql.DB) *PostgreSQLAuditEventRepository {
	return &PostgreSQLAuditEventRepository{db: db}
}

// Create appends an audit event. Nil data is stored as NULL.
func (p *PostgreSQLAuditEventRepository) Create(ctx context.Context, event *authDomain.AuditEvent) error {
	querier := database.GetTx(ctx, p.db)

	data, err := marshalJSON(event.Data)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event data")
	}

	query := `INSERT INTO audit_events (id, subject_id, tenant_id, action, data, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.SubjectID,
		event.TenantID,
		event.Action,
		data,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// CountSince counts the events of subjectID with action created after since.
func (p *PostgreSQLAuditEventRepository) CountSince(
	ctx context.Context,
	subjectID uuid.UUID,
	action string,
	since time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM audit_events WHERE subject_id = $1 AND action = $2 AND created_at > $3`

	var count int64
	if err := querier.QueryRowContext(ctx, query, subjectID, action, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}
	return count, nil
}

// ListBySubject retrieves the events of subjectID, newest first, with pagination.
// Returns an empty slice when there are none.
func (p *PostgreSQLAuditEventRepository) ListBySubject(
	ctx context.Context,
	subjectID uuid.UUID,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, subject_id, tenant_id, action, data, created_at
			  FROM audit_events
			  WHERE subject_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, subjectID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*authDomain.AuditEvent, 0)
	for rows.Next() {
		var event authDomain.AuditEvent
		var data []byte

		if err := rows.Scan(
			&event.ID,
			&event.SubjectID,
			&event.TenantID,
			&event.Action,
			&data,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
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
func (p *PostgreSQLAuditEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_events WHERE created_at < $1`
		var count int64
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit events")
		}
		return count, nil
	}

	query := `DELETE FROM audit_events WHERE created_at < $1`
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
