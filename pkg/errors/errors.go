package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// NotFoundError represents a resource that was not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents invalid input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationError) Code() string {
	return "VALIDATION_ERROR"
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CompilationError represents a modification payload that is structurally
// invalid for its verb. It aborts the whole compilation: a partial workflow
// must never be persisted.
type CompilationError struct {
	ModificationID string
	Reason         string
}

func (e *CompilationError) Error() string {
	if e.ModificationID != "" {
		return fmt.Sprintf("invalid modification '%s': %s", e.ModificationID, e.Reason)
	}
	return fmt.Sprintf("invalid modification: %s", e.Reason)
}

func (e *CompilationError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

func (e *CompilationError) Code() string {
	return "INVALID_MODIFICATION"
}

// NewCompilationError creates a new CompilationError
func NewCompilationError(modificationID, reason string) *CompilationError {
	return &CompilationError{ModificationID: modificationID, Reason: reason}
}

// DependencyError represents a failed call to an external collaborator
// (customer/company data provider). Fatal to the current attempt; retry
// policy is the caller's concern.
type DependencyError struct {
	Dependency string
	Cause      error
}

func (e *DependencyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dependency '%s' unavailable: %v", e.Dependency, e.Cause)
	}
	return fmt.Sprintf("dependency '%s' unavailable", e.Dependency)
}

func (e *DependencyError) HTTPStatus() int {
	return http.StatusBadGateway
}

func (e *DependencyError) Code() string {
	return "DEPENDENCY_UNAVAILABLE"
}

func (e *DependencyError) Unwrap() error {
	return e.Cause
}

// NewDependencyError creates a new DependencyError
func NewDependencyError(dependency string, cause error) *DependencyError {
	return &DependencyError{Dependency: dependency, Cause: cause}
}

// UnauthorizedError represents authentication failures
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unauthorized: %s", e.Reason)
	}
	return "unauthorized"
}

func (e *UnauthorizedError) HTTPStatus() int {
	return http.StatusUnauthorized
}

func (e *UnauthorizedError) Code() string {
	return "UNAUTHORIZED"
}

// NewUnauthorizedError creates a new UnauthorizedError
func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

// InternalError represents unexpected server errors
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return "INTERNAL_ERROR"
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// Helper functions for error checking

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

// IsCompilation checks if an error is a CompilationError
func IsCompilation(err error) bool {
	var compilation *CompilationError
	return errors.As(err, &compilation)
}

// IsDependency checks if an error is a DependencyError
func IsDependency(err error) bool {
	var dependency *DependencyError
	return errors.As(err, &dependency)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ToResponse converts an error to an ErrorResponse
func ToResponse(err error) ErrorResponse {
	return ErrorResponse{
		Code:    GetErrorCode(err),
		Message: err.Error(),
	}
}
