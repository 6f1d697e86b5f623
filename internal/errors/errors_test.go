package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrTypeValidation, "test error message")

	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.Equal(t, "test error message", err.Message)
	assert.NoError(t, err.Cause)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrTypeConnection, "failed to connect to %s", "database")

	assert.Equal(t, ErrTypeConnection, err.Type)
	assert.Equal(t, "failed to connect to database", err.Message)
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(originalErr, ErrTypeQueryExecution, "query failed")

	assert.Equal(t, ErrTypeQueryExecution, wrappedErr.Type)
	assert.Equal(t, "query failed", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Cause)
}

func TestWrapf(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrappedErr := Wrapf(
		originalErr,
		ErrTypeConnection,
		"failed to connect to %s:%d",
		"localhost",
		5432,
	)

	assert.Equal(t, ErrTypeConnection, wrappedErr.Type)
	assert.Equal(t, "failed to connect to localhost:5432", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Cause)
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "error without cause",
			err: &Error{
				Type:    ErrTypeValidation,
				Message: "invalid input",
			},
			expected: "validation: invalid input",
		},
		{
			name: "error with cause",
			err: &Error{
				Type:    ErrTypeQueryExecution,
				Message: "query failed",
				Cause:   errors.New("connection timeout"),
			},
			expected: "query_execution: query failed (caused by: connection timeout)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	originalErr := errors.New("root cause")
	wrappedErr := Wrap(originalErr, ErrTypeSchema, "introspection failed")

	assert.ErrorIs(t, wrappedErr, originalErr)
}

func TestIsType(t *testing.T) {
	err := New(ErrTypeGeneration, "completion service unreachable")

	assert.True(t, IsType(err, ErrTypeGeneration))
	assert.False(t, IsType(err, ErrTypeConnection))
	assert.False(t, IsType(errors.New("plain error"), ErrTypeGeneration))
}

func TestGetType(t *testing.T) {
	assert.Equal(t, ErrTypeSchema, GetType(New(ErrTypeSchema, "boom")))
	assert.Equal(t, ErrTypeInternal, GetType(errors.New("plain error")))
}
