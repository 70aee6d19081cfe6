// Package mocks provides mock implementations for testing the key HTTP handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	keysDomain "github.com/allisson/authserver/internal/keys/domain"
)

// MockKeyUseCase is a mock implementation of KeyUseCase for testing.
type MockKeyUseCase struct {
	mock.Mock
}

// Create mocks the Create method of KeyUseCase.
func (m *MockKeyUseCase) Create(ctx context.Context) (*keysDomain.KeySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.KeySummary), args.Error(1)
}

// List mocks the List method of KeyUseCase.
func (m *MockKeyUseCase) List(ctx context.Context) ([]keysDomain.KeySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]keysDomain.KeySummary), args.Error(1)
}

// Delete mocks the Delete method of KeyUseCase.
func (m *MockKeyUseCase) Delete(ctx context.Context, keyID string) (string, error) {
	args := m.Called(ctx, keyID)
	return args.String(0), args.Error(1)
}

// DeleteOldest mocks the DeleteOldest method of KeyUseCase.
func (m *MockKeyUseCase) DeleteOldest(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// SigningKey mocks the SigningKey method of KeyUseCase.
func (m *MockKeyUseCase) SigningKey(ctx context.Context) (*keysDomain.SigningKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.SigningKey), args.Error(1)
}

// JWKS mocks the JWKS method of KeyUseCase.
func (m *MockKeyUseCase) JWKS(ctx context.Context) (*keysDomain.JWKS, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.JWKS), args.Error(1)
}
