// Package apperror defines a centralized system for application-specific errors.
// Every service returns *AppError values, and the HTTP layer turns them into a status
// code plus the structured `{code, description, fields}` body clients rely on.
package apperror

import (
	"errors"
	"fmt"
	// `net/http` is used for HTTP status codes.
	"net/http"
)

// ErrorType is an enumeration (using `iota`) for different categories of application errors.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the database
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// AuthError represents an authentication error (missing or invalid token)
	AuthError
	// UnauthorizedError represents an authorization error (e.g. insufficient permissions)
	UnauthorizedError
	// NotFoundError represents a resource not found error
	NotFoundError
	// ValidationError represents an input validation error
	ValidationError
	// BadRequestError represents a generic bad request
	BadRequestError
	// InternalError represents a generic internal server error
	InternalError
	// MigrationError represents an error during database migrations
	MigrationError
	// ConflictError represents a conflict, e.g., resource already exists
	ConflictError
)

// ErrorCode is the machine-readable code sent in the `code` field of error bodies.
type ErrorCode string

const (
	CodeTaskNotFound         ErrorCode = "TASK_NOT_FOUND"
	CodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	CodeRoleNotFound         ErrorCode = "ROLE_NOT_FOUND"
	CodeMissingToken         ErrorCode = "MISSING_TOKEN"
	CodeInvalidFields        ErrorCode = "INVALID_FIELDS"
	CodeUserNotAuthenticated ErrorCode = "USER_NOT_AUTHENTICATED"
	CodeUserNotAuthorized    ErrorCode = "USER_NOT_AUTHORIZED"
	CodeInvalidCredentials   ErrorCode = "INVALID_CREDENTIALS"
	CodeEmailAlreadyExists   ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeBadRequest           ErrorCode = "BAD_REQUEST"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR_SERVER"
)

// Message returns the default human-readable description for a code.
func (c ErrorCode) Message() string {
	switch c {
	case CodeTaskNotFound:
		return "Task not found"
	case CodeUserNotFound:
		return "User not found"
	case CodeRoleNotFound:
		return "Role not found"
	case CodeMissingToken:
		return "Authorization Token is missing"
	case CodeInvalidFields:
		return "The request body has invalid fields"
	case CodeUserNotAuthenticated:
		return "User not authenticated"
	case CodeUserNotAuthorized:
		return "User not authorized"
	case CodeInvalidCredentials:
		return "Invalid email or password"
	case CodeEmailAlreadyExists:
		return "Email already registered"
	case CodeBadRequest:
		return "Malformed request"
	default:
		return "Internal server error"
	}
}

// AppError is a custom error type for the application.
// It allows wrapping an underlying error (`Err`) for more detailed debugging,
// while only `Code`, `Message` and `Fields` ever reach the client.
type AppError struct {
	Type    ErrorType
	Code    ErrorCode
	Message string
	Fields  map[string]string
	Err     error // Underlying error
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error so `errors.Is` and `errors.As` can walk the chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	// This switch statement maps our custom `ErrorType` to standard HTTP status codes.
	switch e.Type {
	case DatabaseError, ConfigError, InternalError, MigrationError:
		return http.StatusInternalServerError
	case AuthError:
		// 401 is for authentication issues (no/invalid token).
		return http.StatusUnauthorized
	case UnauthorizedError:
		// 403 is for authorization issues (valid identity, no permission).
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError. This is a generic constructor.
// An empty message falls back to the code's default description.
func NewAppError(errType ErrorType, code ErrorCode, message string, underlyingError error) *AppError {
	if message == "" {
		message = code.Message()
	}
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Err:     underlyingError,
	}
}

// Constructor functions for specific error types
// These provide a more readable way to create common `AppError` types.

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, CodeInternalError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, CodeInternalError, message, underlyingError)
}

// NewAuthError creates a new AuthError (for authentication issues)
func NewAuthError(code ErrorCode, underlyingError error) *AppError {
	return NewAppError(AuthError, code, "", underlyingError)
}

// NewUnauthorizedError creates a new UnauthorizedError (for authorization issues)
func NewUnauthorizedError(code ErrorCode, underlyingError error) *AppError {
	return NewAppError(UnauthorizedError, code, "", underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(code ErrorCode, underlyingError error) *AppError {
	return NewAppError(NotFoundError, code, "", underlyingError)
}

// NewValidationError creates a new ValidationError carrying the offending fields.
func NewValidationError(fields map[string]string, underlyingError error) *AppError {
	appErr := NewAppError(ValidationError, CodeInvalidFields, "", underlyingError)
	appErr.Fields = fields
	return appErr
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, CodeBadRequest, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, CodeInternalError, message, underlyingError)
}

// NewMigrationError creates a new MigrationError
func NewMigrationError(message string, underlyingError error) *AppError {
	return NewAppError(MigrationError, CodeInternalError, message, underlyingError)
}

// NewConflictError creates a new ConflictError
func NewConflictError(code ErrorCode, underlyingError error) *AppError {
	return NewAppError(ConflictError, code, "", underlyingError)
}

// ErrorResponse represents the error payload sent to API clients.
type ErrorResponse struct {
	Code        string            `json:"code" example:"TASK_NOT_FOUND"`
	Description string            `json:"description" example:"Task not found"`
	Fields      map[string]string `json:"fields"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
// Internal failures never leak their message; they always read as the generic 500 code.
func (e *AppError) ToResponse() ErrorResponse {
	fields := e.Fields
	if fields == nil {
		// `fields` is always an object on the wire, never null.
		fields = map[string]string{}
	}
	if e.StatusCode() >= http.StatusInternalServerError {
		return ErrorResponse{
			Code:        string(CodeInternalError),
			Description: CodeInternalError.Message(),
			Fields:      fields,
		}
	}
	return ErrorResponse{Code: string(e.Code), Description: e.Message, Fields: fields}
}

// FromError converts a generic error to an *AppError, looking through wrapped errors.
// It returns the *AppError and true if successful, otherwise nil and false.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Helper functions to check error types

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError checks if an error is an AuthError (authentication problem)
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsUnauthorizedError checks if an error is an UnauthorizedError (authorization problem)
func IsUnauthorizedError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == UnauthorizedError
}

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsConflictError checks if an error is a Conflict error
func IsConflictError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConflictError
}

// HasCode reports whether err is an *AppError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
