package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("fetch toggl time entries", cause)

	assert.True(t, err.IsType(ErrorTypeTransport))
	assert.Equal(t, "TRANSPORT_ERROR", err.Code)
	assert.Contains(t, err.Error(), "fetch toggl time entries")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, err.Unwrap())
}

func TestNewUnexpectedStatusError(t *testing.T) {
	err := NewUnexpectedStatusError("submit time entry", 422, "work package not found")

	assert.True(t, err.IsType(ErrorTypeTransport))
	assert.Equal(t, "UNEXPECTED_STATUS", err.Code)
	assert.Contains(t, err.Error(), "422")

	status, ok := err.GetContext("status")
	require.True(t, ok)
	assert.Equal(t, 422, status)
}

func TestNewResponseShapeError(t *testing.T) {
	err := NewResponseShapeError("decode time entries", nil)

	assert.True(t, err.IsType(ErrorTypeResponseShape))
	assert.Contains(t, err.Error(), "unexpected response shape")
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("openproject.host", "OPENPROJECT_HOST must be set")

	assert.True(t, err.IsType(ErrorTypeConfig))
	assert.Contains(t, err.Error(), "openproject.host")
}

func TestAsAppError(t *testing.T) {
	appErr := NewDatabaseError("create run", errors.New("disk full"))
	wrapped := WrapError(appErr, ErrorTypeDatabase, "journal write")

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeDatabase, got.Type)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsErrorType(t *testing.T) {
	err := NewNotFoundError("run", "abc")

	assert.True(t, IsErrorType(err, ErrorTypeNotFound))
	assert.False(t, IsErrorType(err, ErrorTypeTransport))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeNotFound))
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "should pass transport messages through",
			err:      NewUnexpectedStatusError("submit time entry", 500, "boom"),
			expected: "submit time entry returned status 500: boom",
		},
		{
			name:     "should soften response shape errors",
			err:      NewResponseShapeError("decode", nil),
			expected: "The server returned an unexpected response. Check the API version and credentials.",
		},
		{
			name:     "should soften database errors",
			err:      NewDatabaseError("create run", errors.New("locked")),
			expected: "The local journal could not be updated.",
		},
		{
			name:     "should fall back to the plain error text",
			err:      errors.New("something else"),
			expected: "something else",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetUserMessage(tt.err))
		})
	}
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "config", ErrorTypeConfig.String())
	assert.Equal(t, "transport", ErrorTypeTransport.String())
	assert.Equal(t, "response_shape", ErrorTypeResponseShape.String())
	assert.Equal(t, "database", ErrorTypeDatabase.String())
	assert.Equal(t, "not_found", ErrorTypeNotFound.String())
	assert.Equal(t, "unknown", ErrorType(99).String())
}
