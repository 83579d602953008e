package errors

import "fmt"

// APIError represents a standardized API error response. Validation errors
// carry the offending field; persistence failures never carry internal
// detail, that goes to the operator log only.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Status  int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationError creates a VALIDATION_ERROR for a specific field
func ValidationError(field, message string) *APIError {
	return &APIError{
		Code:    ErrValidation,
		Message: message,
		Field:   field,
		Status:  ErrValidation.StatusCode(),
	}
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return &APIError{
		Code:    ErrBadRequest,
		Message: message,
		Status:  ErrBadRequest.StatusCode(),
	}
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return &APIError{
		Code:    ErrUnauthorized,
		Message: message,
		Status:  ErrUnauthorized.StatusCode(),
	}
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return &APIError{
		Code:    ErrForbidden,
		Message: message,
		Status:  ErrForbidden.StatusCode(),
	}
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  ErrNotFound.StatusCode(),
	}
}

// MethodNotAllowed creates a METHOD_NOT_ALLOWED error
func MethodNotAllowed() *APIError {
	return &APIError{
		Code:    ErrMethodNotAllowed,
		Message: "method not allowed",
		Status:  ErrMethodNotAllowed.StatusCode(),
	}
}

// Conflict creates a CONFLICT error
func Conflict(message string) *APIError {
	return &APIError{
		Code:    ErrConflict,
		Message: message,
		Status:  ErrConflict.StatusCode(),
	}
}

// InternalError creates an INTERNAL_ERROR. The message is user-facing and
// must stay generic; log the underlying cause instead.
func InternalError(message string) *APIError {
	return &APIError{
		Code:    ErrInternalError,
		Message: message,
		Status:  ErrInternalError.StatusCode(),
	}
}

// IsAPIError extracts an *APIError from err if it is one
func IsAPIError(err error) (*APIError, bool) {
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}
