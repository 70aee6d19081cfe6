package domain

import (
	"sort"
	"strings"
	"time"
)

// Field is a named user field. What a field can do is expressed by the capability
// interfaces below, checked with type assertions.
type Field interface {
	Name() string
}

// Readable fields can be copied into token claims.
type Readable interface {
	Field
	Value(u *User) any
}

// Lookup fields can identify a user. Column is the storage column matched exactly.
type Lookup interface {
	Field
	Column() string
}

// PasswordCapable fields hold a password hash.
type PasswordCapable interface {
	Field
	PasswordHash(u *User) string
}

// TenantScoped fields partition users by tenant.
type TenantScoped interface {
	Field
	TenantColumn() string
}

type idField struct{}

func (idField) Name() string { return FieldID }
func (idField) Value(u *User) any { return u.ID.String() }

type emailField struct{}

func (emailField) Name() string { return FieldEmail }
func (emailField) Value(u *User) any { return u.Email }
func (emailField) Column() string { return "email" }

type usernameField struct{}

func (usernameField) Name() string { return FieldUsername }
func (usernameField) Value(u *User) any { return u.Username }
func (usernameField) Column() string { return "username" }

type passwordField struct{}

func (passwordField) Name() string { return FieldPassword }
func (passwordField) PasswordHash(u *User) string { return u.PasswordHash }

type tenantIDField struct{}

func (tenantIDField) Name() string { return FieldTenantID }
func (tenantIDField) Value(u *User) any { return u.TenantID }
func (tenantIDField) TenantColumn() string { return "tenant_id" }

type createdAtField struct{}

func (createdAtField) Name() string { return FieldCreatedAt }
func (createdAtField) Value(u *User) any {
	return u.CreatedAt.UTC().Format(time.RFC3339)
}

// attributeField exposes one entry of User.Attributes.
type attributeField struct {
	key string
}

func (f attributeField) Name() string { return AttributeFieldPrefix + f.key }
func (f attributeField) Value(u *User) any {
	if u.Attributes == nil {
		return nil
	}
	return u.Attributes[f.key]
}

// FieldSet is the catalogue of user fields known to the login flow.
type FieldSet struct {
	fields map[string]Field
}

// NewFieldSet builds a FieldSet from fields.
func NewFieldSet(fields ...Field) *FieldSet {
	set := &FieldSet{fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		set.fields[f.Name()] = f
	}
	return set
}

// DefaultFieldSet returns the fields of User.
func DefaultFieldSet() *FieldSet {
	return NewFieldSet(
		idField{},
		emailField{},
		usernameField{},
		passwordField{},
		tenantIDField{},
		createdAtField{},
	)
}

// Get returns the named field. "attributes.<key>" resolves to a readable attribute field.
func (s *FieldSet) Get(name string) (Field, bool) {
	if f, ok := s.fields[name]; ok {
		return f, true
	}
	if key, ok := strings.CutPrefix(name, AttributeFieldPrefix); ok && key != "" {
		return attributeField{key: key}, true
	}
	return nil, false
}

// Tenant returns the tenant scoped field, if any.
func (s *FieldSet) Tenant() (TenantScoped, bool) {
	for _, name := range s.Names() {
		if f, ok := s.fields[name].(TenantScoped); ok {
			return f, true
		}
	}
	return nil, false
}

// Names returns the registered field names, sorted.
func (s *FieldSet) Names() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
