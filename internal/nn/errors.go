package nn

import "errors"

// Common errors.
var (
	ErrInvalidConfig     = errors.New("invalid network config")
	ErrNumericDegeneracy = errors.New("non-finite value")
)
