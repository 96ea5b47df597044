package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		setup    func() *AppError
		expected string
	}{
		{
			name: "ErrorWithoutCause",
			setup: func() *AppError {
				return New(ValidationError, "test validation error")
			},
			expected: "VALIDATION_ERROR: test validation error",
		},
		{
			name: "ErrorWithCause",
			setup: func() *AppError {
				cause := fmt.Errorf("original error")
				return Wrap(DatabaseError, "database operation failed", cause)
			},
			expected: "DATABASE_ERROR: database operation failed (caused by: original error)",
		},
		{
			name: "UnauthorizedWithoutCause",
			setup: func() *AppError {
				return NewUnauthorizedError("token validation failed")
			},
			expected: "UNAUTHORIZED_ERROR: token validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setup()
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	tests := []struct {
		name  string
		setup func() (*AppError, error)
	}{
		{
			name: "ErrorWithCause",
			setup: func() (*AppError, error) {
				cause := fmt.Errorf("original error")
				err := Wrap(ExternalAPIError, "API call failed", cause)
				return err, cause
			},
		},
		{
			name: "ErrorWithoutCause",
			setup: func() (*AppError, error) {
				err := New(NotFoundError, "resource not found")
				return err, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err, expectedCause := tt.setup()
			unwrapped := err.Unwrap()
			assert.Equal(t, expectedCause, unwrapped)
		})
	}
}

func TestNew(t *testing.T) {
	err := New(TokenError, "invalid token")

	assert.Equal(t, TokenError, err.Type)
	assert.Equal(t, "invalid token", err.Message)
	assert.Nil(t, err.Cause)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name         string
		err          *AppError
		expectedType ErrorType
	}{
		{"Validation", NewValidationError("bad input"), ValidationError},
		{"NotFound", NewNotFoundError("missing"), NotFoundError},
		{"AlreadyExists", NewAlreadyExistsError("duplicate"), AlreadyExistsError},
		{"Token", NewTokenError("expired", nil), TokenError},
		{"Unauthorized", NewUnauthorizedError("no session"), UnauthorizedError},
		{"Database", NewDatabaseError("query failed", nil), DatabaseError},
		{"Storage", NewStorageError("write failed", nil), StorageError},
		{"ExternalAPI", NewExternalAPIError("upstream down", nil), ExternalAPIError},
		{"Push", NewPushError("delivery failed", nil), PushError},
		{"Configuration", NewConfigurationError("missing env", nil), ConfigurationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedType, tt.err.Type)
		})
	}
}
