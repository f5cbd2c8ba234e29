package domain

import (
	"errors"
	"fmt"
)

// ConversionError is returned when a domain instance cannot be converted,
// either because its metadata cannot be resolved or a property read fails.
type ConversionError struct {
	Class    string
	Property string
	Err      error
}

// NewConversionError wraps err with the class and property being converted.
// An err that already is a ConversionError is returned unchanged so the
// innermost location is reported.
func NewConversionError(class, property string, err error) error {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConversionError{Class: class, Property: property, Err: err}
}

func (e *ConversionError) Error() string {
	switch {
	case e.Class == "":
		return fmt.Sprintf("conversion failed: %v", e.Err)
	case e.Property == "":
		return fmt.Sprintf("converting %s: %v", e.Class, e.Err)
	default:
		return fmt.Sprintf("converting %s.%s: %v", e.Class, e.Property, e.Err)
	}
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// IsConversionError reports whether err is or wraps a ConversionError.
func IsConversionError(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}
