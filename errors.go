package texgen

import "errors"

var (
	// ErrInvalidParameter is returned for non-positive dimensions, square
	// sizes, worker counts and malformed colours.
	ErrInvalidParameter = errors.New("texgen: invalid parameter")

	// ErrIO is returned when the output cannot be written or read back.
	ErrIO = errors.New("texgen: io error")

	// ErrResourceExhausted is returned when a buffer would be too large to allocate.
	ErrResourceExhausted = errors.New("texgen: resource exhausted")
)
