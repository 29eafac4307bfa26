// Package platformerrors defines the typed error taxonomy used across the
// chat service. Every domain operation that can fail returns a *PlatformError
// so that transport code can map outcomes to HTTP statuses without inspecting
// error strings.
package platformerrors

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden     ErrorType = "FORBIDDEN"
	ErrorTypeInternal      ErrorType = "INTERNAL"
	ErrorTypeDatabaseError ErrorType = "DATABASE_ERROR"
)

// Layer represents the application layer where the error occurred.
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerHandler        Layer = "handler"
	LayerInfrastructure Layer = "infrastructure"
)

// PlatformError carries the error category, the layer it originated from and
// a human readable message. For FORBIDDEN errors the message is the denial
// reason and is part of the API contract, not incidental detail.
type PlatformError struct {
	Type    ErrorType
	Layer   Layer
	Message string
	Err     error
	Context map[string]any
}

// Error implements the error interface.
func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Layer, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Layer, e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *PlatformError) Unwrap() error {
	return e.Err
}

// WithContext attaches a key/value pair for logging.
func (e *PlatformError) WithContext(key string, value any) *PlatformError {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	e.Context[key] = value
	return e
}

// New creates a PlatformError.
func New(layer Layer, errorType ErrorType, message string, err error) *PlatformError {
	return &PlatformError{
		Type:    errorType,
		Layer:   layer,
		Message: message,
		Err:     err,
	}
}

// NewNotFound creates a NOT_FOUND error.
func NewNotFound(layer Layer, message string, err error) *PlatformError {
	return New(layer, ErrorTypeNotFound, message, err)
}

// NewValidation creates a VALIDATION error.
func NewValidation(layer Layer, message string) *PlatformError {
	return New(layer, ErrorTypeValidation, message, nil)
}

// NewConflict creates a CONFLICT error.
func NewConflict(layer Layer, message string, err error) *PlatformError {
	return New(layer, ErrorTypeConflict, message, err)
}

// NewForbidden creates a FORBIDDEN error whose message is the denial reason.
func NewForbidden(reason string) *PlatformError {
	return New(LayerDomain, ErrorTypeForbidden, reason, nil)
}

// NewDatabase creates a DATABASE_ERROR originating from the repository layer.
func NewDatabase(message string, err error) *PlatformError {
	return New(LayerRepository, ErrorTypeDatabaseError, message, err)
}

// GetPlatformError extracts a *PlatformError from an error chain, or nil.
func GetPlatformError(err error) *PlatformError {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

// IsType reports whether err is a PlatformError of the given type.
func IsType(err error, t ErrorType) bool {
	pe := GetPlatformError(err)
	return pe != nil && pe.Type == t
}

// LogError writes the error to the given logger with its metadata.
func LogError(log zerolog.Logger, err *PlatformError) {
	ev := log.Error().
		Str("error_type", string(err.Type)).
		Str("layer", string(err.Layer))
	for k, v := range err.Context {
		ev = ev.Interface(k, v)
	}
	if err.Err != nil {
		ev = ev.Err(err.Err)
	}
	ev.Msg(err.Message)
}
