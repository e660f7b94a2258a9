package ierr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrDuplicateKey   = errors.New("license key already exists")
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidPeriod  = errors.New("unknown validity period")
	ErrInvalidStatus  = errors.New("unknown license status")
	ErrNoFields       = errors.New("no fields to update")
	ErrConnectivity   = errors.New("datastore unreachable")
	ErrTransaction    = errors.New("transaction failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")

	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAPIKeyNotFound     = errors.New("api key not found or disabled")
)

// ValidationError carries the offending field so the caller can surface it.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
