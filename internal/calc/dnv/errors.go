package dnv

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the calculation packages wraps exactly one of them.
var (
	ErrValidation               = errors.New("validation error")
	ErrMissingGeometryParameter = errors.New("missing geometry parameter")
	ErrUnsupportedComponentType = errors.New("unsupported component type")
	ErrComputation              = errors.New("computation error")
)

// GeometryError names the geometry key that is missing or out of range.
type GeometryError struct {
	Type   ComponentType
	Key    string
	Reason string
	Err    error
}

func (e *GeometryError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("geometry: %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("%s geometry: %s: %s", e.Type, e.Key, e.Reason)
}

func (e *GeometryError) Unwrap() error { return e.Err }

func missing(t ComponentType, key string) error {
	return &GeometryError{Type: t, Key: key, Reason: "required parameter is missing", Err: ErrMissingGeometryParameter}
}

// OutOfRange reports a geometry value that is present but physically invalid.
func OutOfRange(t ComponentType, key, reason string) error {
	return &GeometryError{Type: t, Key: key, Reason: reason, Err: ErrValidation}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func computation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrComputation, fmt.Sprintf(format, args...))
}

// Kind returns the external name of the error kind carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingGeometryParameter):
		return "MissingGeometryParameter"
	case errors.Is(err, ErrUnsupportedComponentType):
		return "UnsupportedComponentType"
	case errors.Is(err, ErrComputation):
		return "ComputationError"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	}
	return "ComputationError"
}

// IsInputError reports whether err was caused by the caller's input rather than by the arithmetic.
func IsInputError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrMissingGeometryParameter) ||
		errors.Is(err, ErrUnsupportedComponentType)
}
