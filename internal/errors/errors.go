package errors

import "fmt"

// Error codes
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidGrade       = "INVALID_GRADE"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "CONFLICT")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewInvalidGradeError creates a new INVALID_GRADE error
func NewInvalidGradeError(grade interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidGrade,
		Message: fmt.Sprintf("unrecognized grade: %v", grade),
		Status:  400,
	}
}

// NewConflictError creates a new CONFLICT error for a concurrently modified card
func NewConflictError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf("%s was modified concurrently: %v", resource, id),
		Status:  409,
	}
}

// NewStorageUnavailableError creates a new STORAGE_UNAVAILABLE error
func NewStorageUnavailableError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeStorageUnavailable,
		Message: "storage did not complete the operation in time",
		Status:  503,
		Err:     err,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewInvariantError reports a broken internal invariant. It is an
// INTERNAL_ERROR that names the invariant so the defect is loud in logs.
func NewInvariantError(invariant string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf("invariant violated: %s", invariant),
		Status:  500,
	}
}
