package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// User errors
var (
	ErrUserNotFound       = NewCustomError(ErrResourceNotFound, "User not found")
	ErrEmailAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "User already exists")
	ErrCannotDeleteSelf   = NewCustomError(ErrBadRequest, "You cannot delete your own account")
	ErrCannotDisableSelf  = NewCustomError(ErrBadRequest, "You cannot deactivate your own account")
	ErrNoFieldsToUpdate   = NewCustomError(ErrValidationFailed, "No fields to update")
)

// Course errors
var (
	ErrCourseNotFound        = NewCustomError(ErrResourceNotFound, "Course not found")
	ErrCourseCodeExists      = NewCustomError(ErrResourceAlreadyExists, "Course code already exists")
	ErrCourseHasApplications = NewCustomError(ErrConflict, "Cannot delete course with existing applications. Please deactivate it instead.")
	ErrCourseUnavailable     = NewCustomError(ErrValidationFailed, "Selected course is not available").WithDetails(map[string]interface{}{"field": "courseId"})
)

// Application errors
var (
	ErrApplicationNotFound      = NewCustomError(ErrResourceNotFound, "Application not found")
	ErrApplicationAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "An application with this email already exists.")
	ErrApplicationDecided       = NewCustomError(ErrConflict, "Application has already been decided and can no longer change status")
	ErrApplicationStale         = NewCustomError(ErrConflict, "Application was modified by another request")
	ErrApplicationNotPending    = NewCustomError(ErrPermissionDenied, "Only pending applications can be changed by the applicant")
	ErrNotApplicationOwner      = NewCustomError(ErrPermissionDenied, "You do not have access to this application")
)

// NewValidationError creates a validation failure carrying the offending field
func NewValidationError(field, message string) error {
	return NewCustomError(ErrValidationFailed, message).WithDetails(map[string]interface{}{
		"field": field,
	})
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// Message returns the client-facing message of the outermost CustomError in the chain
func Message(err error) (string, bool) {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message, true
	}
	return "", false
}
