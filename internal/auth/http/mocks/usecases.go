// Package mocks provides mock implementations for testing the auth HTTP handlers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
)

// MockLoginUseCase is a mock implementation of LoginUseCase for testing.
type MockLoginUseCase struct {
	mock.Mock
}

// Login mocks the Login method of LoginUseCase.
func (m *MockLoginUseCase) Login(ctx context.Context, input authDomain.LoginInput) (*authDomain.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.LoginOutput), args.Error(1)
}

// MockUserUseCase is a mock implementation of UserUseCase for testing.
type MockUserUseCase struct {
	mock.Mock
}

// Create mocks the Create method of UserUseCase.
func (m *MockUserUseCase) Create(ctx context.Context, input *authDomain.CreateUserInput) (*authDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// SetPassword mocks the SetPassword method of UserUseCase.
func (m *MockUserUseCase) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	args := m.Called(ctx, id, password)
	return args.Error(0)
}

// Get mocks the Get method of UserUseCase.
func (m *MockUserUseCase) Get(ctx context.Context, id uuid.UUID) (*authDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// MockAuditEventUseCase is a mock implementation of AuditEventUseCase for testing.
type MockAuditEventUseCase struct {
	mock.Mock
}

// ListBySubject mocks the ListBySubject method of AuditEventUseCase.
func (m *MockAuditEventUseCase) ListBySubject(
	ctx context.Context,
	subjectID uuid.UUID,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	args := m.Called(ctx, subjectID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.AuditEvent), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method of AuditEventUseCase.
func (m *MockAuditEventUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
