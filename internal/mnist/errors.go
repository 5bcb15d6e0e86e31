package mnist

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrTruncated     = errors.New("file shorter than header implies")
	ErrBadMagic      = errors.New("invalid magic number")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrLabelRange    = errors.New("label out of range")
	ErrTooLarge      = errors.New("payload exceeds maximum size")
	ErrEmpty         = errors.New("no records")
)

// IOError reports a dataset file that could not be opened or read.
type IOError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("mnist: read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying OS error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// DecodeError reports a dataset file whose contents do not match the
// IDX layout. Expected and Actual are byte counts for truncation and
// magic values for magic mismatches.
type DecodeError struct {
	Path     string // Empty when decoding from a reader
	Section  string // "header", "labels", "images"
	Expected int64
	Actual   int64
	Err      error // ErrTruncated, ErrBadMagic or ErrTooLarge
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	name := e.Path
	if name == "" {
		name = "<stream>"
	}
	return fmt.Sprintf("mnist: decode %s: %s: %v (expected %d, got %d)",
		name, e.Section, e.Err, e.Expected, e.Actual)
}

// Unwrap returns the sentinel describing the failure.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ShapeError reports mismatched dimensions between two things that must
// agree: image and label counts, or a dataset and an initialized model.
type ShapeError struct {
	Op   string
	Want string
	Got  string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %v: want %s, got %s", e.Op, ErrShapeMismatch, e.Want, e.Got)
}

// Unwrap makes errors.Is(err, ErrShapeMismatch) hold.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}
