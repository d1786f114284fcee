package domain

import (
	"errors"
	"fmt"
	"math"

	"courier-dispatch/internal/apperr"
)

// Validation errors. All of them wrap apperr.ErrInvalid.
var (
	ErrMissingField     = fmt.Errorf("%w: missing required field", apperr.ErrInvalid)
	ErrInvalidLatitude  = fmt.Errorf("%w: latitude must be between -90 and 90", apperr.ErrInvalid)
	ErrInvalidLongitude = fmt.Errorf("%w: longitude must be between -180 and 180", apperr.ErrInvalid)
	ErrStaleTimestamp   = fmt.Errorf("%w: timestamp is too old", apperr.ErrInvalid)
	ErrFutureTimestamp  = fmt.Errorf("%w: timestamp is too far in the future", apperr.ErrInvalid)
	ErrNegativeValue    = fmt.Errorf("%w: value cannot be negative", apperr.ErrInvalid)
)

// MissingField wraps ErrMissingField with the field name.
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

// Reason returns the human readable part of a validation error, suitable for
// a reject response.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	if !errors.Is(err, apperr.ErrInvalid) {
		return err.Error()
	}
	msg := err.Error()
	prefix := apperr.ErrInvalid.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the coordinate ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return ErrInvalidLatitude
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return ErrInvalidLongitude
	}
	return nil
}
