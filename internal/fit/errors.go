package fit

import (
	"errors"
	"fmt"
)

// ErrInvalidDimension is returned when a frame or source dimension is zero,
// negative, NaN or infinite.
var ErrInvalidDimension = errors.New("invalid dimension")

// DimensionError reports which dimension was rejected.
type DimensionError struct {
	Field string
	Value float64
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s must be a positive finite number, got %v", ErrInvalidDimension, e.Field, e.Value)
}

// Unwrap returns ErrInvalidDimension so callers can use errors.Is.
func (e *DimensionError) Unwrap() error {
	return ErrInvalidDimension
}
