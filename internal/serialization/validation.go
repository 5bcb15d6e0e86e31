package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits.
const (
	MaxHeaderSize   = 16 * 1024 * 1024 // 16MB - maximum JSON header size
	MaxMatrixCount  = 1024             // Maximum number of matrices in a file
	MaxNameLen      = 256              // Maximum matrix name length
	MaxMatrixLength = 1 << 28          // Maximum rows*cols of a single matrix
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and shapes but not offsets.
	ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone
)

// ValidateOffsets checks that matrix payloads neither overlap nor run past
// the end of the data section.
func ValidateOffsets(matrices []MatrixMeta, dataSize int64) error {
	if len(matrices) > MaxMatrixCount {
		return &ValidationError{
			Type:    "too_many_matrices",
			Details: fmt.Sprintf("got %d, max %d", len(matrices), MaxMatrixCount),
			Err:     ErrTooManyMatrices,
		}
	}

	sorted := make([]MatrixMeta, len(matrices))
	copy(sorted, matrices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, m := range sorted {
		if m.Offset < 0 || m.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Name:    m.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", m.Offset, m.Size),
				Err:     ErrNegativeOffset,
			}
		}
		if m.Offset+m.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Name:    m.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", m.Offset, m.Size, dataSize),
				Err:     ErrOutOfBounds,
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if m.Offset+m.Size > next.Offset {
				return &ValidationError{
					Type:  "offset_overlap",
					Name:  m.Name,
					Name2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						m.Offset, m.Offset+m.Size, next.Offset, next.Offset+next.Size),
					Err: ErrOffsetOverlap,
				}
			}
		}
	}
	return nil
}

// ValidateName rejects empty names, over-long names and names containing
// path separators, ".." or NUL.
func ValidateName(name string) error {
	invalid := func(details string) error {
		return &ValidationError{Type: "invalid_name", Name: name, Details: details, Err: ErrInvalidName}
	}
	switch {
	case name == "":
		return invalid("empty name")
	case len(name) > MaxNameLen:
		return invalid(fmt.Sprintf("length %d > max %d", len(name), MaxNameLen))
	case strings.Contains(name, ".."):
		return invalid("contains '..'")
	case strings.ContainsAny(name, `/\`):
		return invalid("contains path separator")
	case strings.Contains(name, "\x00"):
		return invalid("contains null byte")
	}
	return nil
}

// ValidateShape checks the declared dimensions of a matrix.
func ValidateShape(m MatrixMeta) error {
	if m.Rows <= 0 || m.Cols <= 0 || m.Rows > MaxMatrixLength/m.Cols {
		return &ValidationError{
			Type:    "invalid_shape",
			Name:    m.Name,
			Details: fmt.Sprintf("%dx%d", m.Rows, m.Cols),
			Err:     ErrShapeMismatch,
		}
	}
	if m.DType != DTypeFloat64 || m.Encoding != EncodingDense {
		return &ValidationError{
			Type:    "unsupported_encoding",
			Name:    m.Name,
			Details: fmt.Sprintf("dtype %q encoding %q", m.DType, m.Encoding),
		}
	}
	return nil
}

// ValidateHeader validates h against a data section of dataSize bytes.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}
	if h.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: header declares %d", ErrUnsupportedVersion, h.FormatVersion)
	}
	if len(h.Matrices) > MaxMatrixCount {
		return &ValidationError{
			Type:    "too_many_matrices",
			Details: fmt.Sprintf("got %d, max %d", len(h.Matrices), MaxMatrixCount),
			Err:     ErrTooManyMatrices,
		}
	}

	seen := make(map[string]bool, len(h.Matrices))
	for _, m := range h.Matrices {
		if err := ValidateName(m.Name); err != nil {
			return err
		}
		if seen[m.Name] {
			return &ValidationError{Type: "duplicate_name", Name: m.Name, Details: "name appears twice", Err: ErrInvalidName}
		}
		seen[m.Name] = true
		if err := ValidateShape(m); err != nil {
			return err
		}
	}

	if level == ValidationStrict {
		return ValidateOffsets(h.Matrices, dataSize)
	}
	return nil
}
