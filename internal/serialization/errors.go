package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrOffsetOverlap      = errors.New("matrix offsets overlap")
	ErrOutOfBounds        = errors.New("matrix extends beyond data section")
	ErrNegativeOffset     = errors.New("negative offset or size")
	ErrTooManyMatrices    = errors.New("too many matrices in file")
	ErrInvalidName        = errors.New("invalid matrix name")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrShapeMismatch      = errors.New("payload shape does not match header")
	ErrNotFound           = errors.New("matrix not found")
	ErrClosed             = errors.New("file is closed")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "offset_overlap", "out_of_bounds")
	Name    string // Primary matrix name involved
	Name2   string // Secondary matrix name (for overlap errors)
	Details string // Additional details
	Err     error  // Matching sentinel, if any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Name2 != "" {
		return fmt.Sprintf("%s: matrices %q and %q: %s", e.Type, e.Name, e.Name2, e.Details)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: matrix %q: %s", e.Type, e.Name, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap returns the sentinel for errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
