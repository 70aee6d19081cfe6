package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	"github.com/allisson/authserver/internal/database"
	apperrors "github.com/allisson/authserver/internal/errors"
)

const mysqlUserColumns = `id, tenant_id, email, username, password_hash, attributes, created_at, updated_at`

// MySQLUserRepository handles user persistence for MySQL. UUIDs are stored as BINARY(16).
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// Create inserts a new user. A duplicate email or username within the tenant returns
// authDomain.ErrUserAlreadyExists.
func (r *MySQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, r.db)

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	attributes, err := marshalJSON(user.Attributes)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user attributes")
	}

	query := `INSERT INTO users (id, tenant_id, email, username, password_hash, attributes, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		user.TenantID,
		user.Email,
		nullableString(user.Username),
		user.PasswordHash,
		attributes,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return authDomain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*authDomain.User, error) {
	querier := database.GetTx(ctx, r.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = ?`, mysqlUserColumns)

	user, err := r.scanUser(querier.QueryRowContext(ctx, query, idBinary))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}
	return user, nil
}

// FindOne retrieves the oldest user whose lookup column equals the lookup value,
// restricted to the tenant when the lookup is scoped.
func (r *MySQLUserRepository) FindOne(ctx context.Context, lookup authDomain.UserLookup) (*authDomain.User, error) {
	if err := validateLookup(lookup); err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = ?`, mysqlUserColumns, lookup.Column)
	args := []any{lookup.Value}
	if lookup.Scoped {
		query += fmt.Sprintf(` AND %s = ?`, lookup.TenantColumn)
		args = append(args, lookup.TenantID)
	}
	query += ` ORDER BY created_at ASC LIMIT 1`

	user, err := r.scanUser(querier.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find user")
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *MySQLUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	querier := database.GetTx(ctx, r.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE users SET password_hash = ?, updated_at = UTC_TIMESTAMP(6) WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, passwordHash, idBinary)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user password")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows count")
	}
	if affected == 0 {
		return authDomain.ErrUserNotFound
	}
	return nil
}

func (r *MySQLUserRepository) scanUser(row rowScanner) (*authDomain.User, error) {
	var user authDomain.User
	var idBinary []byte
	var username sql.NullString
	var attributes []byte

	err := row.Scan(
		&idBinary,
		&user.TenantID,
		&user.Email,
		&username,
		&user.PasswordHash,
		&attributes,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := user.ID.UnmarshalBinary(idBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	user.Username = username.String
	if user.Attributes, err = unmarshalJSON(attributes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user attributes")
	}
	return &user, nil
}
