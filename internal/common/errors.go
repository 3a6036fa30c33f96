// Package common defines shared constants and sentinel errors used across
// client and server layers of FitMacro. Callers should use errors.Is to
// match these values and errors.As to inspect the typed errors.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Token lifecycle errors.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Nutrition domain errors.
	ErrValidation      = errors.New("validation error")
	ErrNoGoalDefined   = errors.New("no goal defined")
	ErrUnsupportedUnit = errors.New("unsupported unit")
	ErrImport          = errors.New("import failed")
)

// ValidationError reports bad user input for a single field.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnsupportedUnitError is returned when no conversion factor to the
// reference unit is known.
type UnsupportedUnitError struct {
	Unit string
}

func (e *UnsupportedUnitError) Error() string {
	return fmt.Sprintf("unsupported unit %q", e.Unit)
}

func (e *UnsupportedUnitError) Is(target error) bool {
	return target == ErrUnsupportedUnit
}

// ImportError wraps a failure to fetch or parse data from an external
// food source. The local catalog is left untouched when it is returned,
// so the operation can be retried.
type ImportError struct {
	Source string
	Ref    string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("import from %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("import %q from %s: %v", e.Ref, e.Source, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func (e *ImportError) Is(target error) bool {
	return target == ErrImport
}
