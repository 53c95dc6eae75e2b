package errors

import (
	"errors"
	"fmt"
)

// NewConfigError creates a new configuration error
func NewConfigError(field string, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: fmt.Sprintf("%s: %s", field, message),
		Code:    "CONFIG_INVALID",
		Context: map[string]interface{}{
			"field": field,
		},
	}
}

// NewTransportError creates a new transport error for a failed HTTP exchange
func NewTransportError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: fmt.Sprintf("request failed: %s", operation),
		Code:    "TRANSPORT_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewUnexpectedStatusError creates a transport error for a non-success HTTP status
func NewUnexpectedStatusError(operation string, status int, body string) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: fmt.Sprintf("%s returned status %d: %s", operation, status, body),
		Code:    "UNEXPECTED_STATUS",
		Context: map[string]interface{}{
			"operation": operation,
			"status":    status,
		},
	}
}

// NewResponseShapeError creates an error for a response missing expected fields
func NewResponseShapeError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeResponseShape,
		Message: fmt.Sprintf("unexpected response shape: %s", operation),
		Code:    "RESPONSE_SHAPE",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    "DATABASE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetErrorCode returns the error code for structured errors, or empty string
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeConfig:
			return appErr.Message
		case ErrorTypeNotFound:
			return appErr.Message
		case ErrorTypeTransport:
			return appErr.Message
		case ErrorTypeResponseShape:
			return "The server returned an unexpected response. Check the API version and credentials."
		case ErrorTypeDatabase:
			return "The local journal could not be updated."
		default:
			return "An unexpected error occurred."
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
