// Package repository persists users and audit events in PostgreSQL and MySQL.
package repository

import (
	"encoding/json"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	apperrors "github.com/allisson/authserver/internal/errors"
)

const (
	postgresUniqueViolation = "23505"
	mysqlDuplicateEntry     = 1062
)

// lookupColumns are the user columns FindOne accepts. Column names are interpolated into
// the query, so anything else is refused.
var lookupColumns = map[string]bool{
	"email":    true,
	"username": true,
}

var tenantColumns = map[string]bool{
	"tenant_id": true,
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func validateLookup(lookup authDomain.UserLookup) error {
	if !lookupColumns[lookup.Column] {
		return apperrors.Configurationf("users cannot be looked up by column '%s'", lookup.Column)
	}
	if lookup.Scoped && !tenantColumns[lookup.TenantColumn] {
		return apperrors.Configurationf("users cannot be scoped by column '%s'", lookup.TenantColumn)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == postgresUniqueViolation
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}

// marshalJSON stores a nil map as NULL.
func marshalJSON(value map[string]any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func unmarshalJSON(data []byte) (map[string]any, error) {
	if data == nil {
		return nil, nil
	}
	var value map[string]any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// nullableString stores an empty string as NULL so that unique indexes ignore it.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
