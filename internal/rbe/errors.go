package rbe

import (
	"errors"
	"fmt"
)

// Sentinel errors for RBE access and decoding.
var (
	// ErrKeyNotFound is returned when a dictionary has no entry for a key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrTypeMismatch is returned when an element has an unexpected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidFormat is returned when encoded data is malformed.
	ErrInvalidFormat = errors.New("invalid rbe format")

	// ErrUnknownType is returned for an unrecognized type tag.
	ErrUnknownType = errors.New("unknown rbe type")

	// ErrTooDeep is returned when nesting exceeds MaxDepth.
	ErrTooDeep = errors.New("rbe tree too deep")

	// ErrTooLarge is returned when a length prefix exceeds MaxLength.
	ErrTooLarge = errors.New("rbe element too large")
)

// KeyError describes a failed typed lookup.
type KeyError struct {
	Key  string
	Want Type
	Got  Type // zero when the key is missing
	Err  error
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	if e.Got == 0 {
		return fmt.Sprintf("rbe key %q (%s): %v", e.Key, e.Want, e.Err)
	}
	return fmt.Sprintf("rbe key %q: want %s, got %s: %v", e.Key, e.Want, e.Got, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyError) Unwrap() error {
	return e.Err
}
