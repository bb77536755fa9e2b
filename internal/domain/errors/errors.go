package errors

import (
	"net/http"

	"booklib/internal/errors"
)

// Kind classifies a failure for callers deciding how to react (retry, re-authenticate, fix input).
type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindNotFound
	KindValidation
	KindUnauthorized
	KindUpstream
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	Kind() Kind        // Failure classification
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	kind      Kind
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(kind Kind, httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		kind:      kind,
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// Kind returns the failure classification
func (e *BaseError) Kind() Kind {
	return e.kind
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Is matches errors carrying the same business error code, so WithDetails copies still match.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		kind:      e.kind,
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// KindOf reports the classification of err. Errors that carry no AppError are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	if appErr, ok := errors.AsType[AppError](err); ok {
		return appErr.Kind()
	}

	return KindInternal
}

// Predefined error types
var (
	// Identity errors
	ErrDuplicateIdentity = NewBaseError(
		KindConflict,
		http.StatusConflict,
		"DUPLICATE_IDENTITY",
		"Username or email is already registered",
		"",
	)

	ErrPasswordMismatch = NewBaseError(
		KindValidation,
		http.StatusBadRequest,
		"PASSWORD_MISMATCH",
		"Password and confirmation password do not match",
		"",
	)

	ErrWeakPassword = NewBaseError(
		KindValidation,
		http.StatusBadRequest,
		"WEAK_PASSWORD",
		"Password must be at least 6 characters and contain a lowercase letter, an uppercase letter, a digit and a special character",
		"",
	)

	ErrUserNotFound = NewBaseError(
		KindNotFound,
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found",
		"",
	)

	// Authentication errors
	ErrInvalidCredentials = NewBaseError(
		KindUnauthorized,
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid email or password",
		"",
	)

	ErrInvalidToken = NewBaseError(
		KindUnauthorized,
		http.StatusUnauthorized,
		"INVALID_TOKEN",
		"Invalid, expired or revoked token",
		"",
	)

	ErrUnknownSubject = NewBaseError(
		KindNotFound,
		http.StatusNotFound,
		"UNKNOWN_SUBJECT",
		"Token subject does not exist",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		KindInternal,
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Password processing failed",
		"",
	)

	// Favorites and books
	ErrBookNotFound = NewBaseError(
		KindNotFound,
		http.StatusNotFound,
		"BOOK_NOT_FOUND",
		"Book not found",
		"",
	)

	ErrAlreadyFavorited = NewBaseError(
		KindConflict,
		http.StatusConflict,
		"ALREADY_FAVORITED",
		"Book is already in favorites",
		"",
	)

	ErrFavoriteNotFound = NewBaseError(
		KindNotFound,
		http.StatusNotFound,
		"FAVORITE_NOT_FOUND",
		"Book is not in favorites",
		"",
	)

	ErrBookProviderUnavailable = NewBaseError(
		KindUpstream,
		http.StatusBadGateway,
		"BOOK_PROVIDER_UNAVAILABLE",
		"Book provider is unavailable, please retry later",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		KindValidation,
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		KindInternal,
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// Kind returns the failure classification
func (e *DatabaseExecuteError) Kind() Kind {
	return KindInternal
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database operation failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
