package serialization

import (
	"errors"
	"strings"
	"testing"
)

func validMeta(name string, offset, size int64) MatrixMeta {
	return MatrixMeta{
		Name:     name,
		DType:    DTypeFloat64,
		Encoding: EncodingDense,
		Rows:     2,
		Cols:     3,
		Offset:   offset,
		Size:     size,
	}
}

// TestValidateOffsets covers overlap, bounds and negative values.
func TestValidateOffsets(t *testing.T) {
	tests := []struct {
		name     string
		matrices []MatrixMeta
		dataSize int64
		wantType string
		wantErr  error
	}{
		{
			name:     "adjacent regions",
			matrices: []MatrixMeta{validMeta("theta1", 0, 100), validMeta("theta2", 100, 100)},
			dataSize: 200,
		},
		{
			name:     "overlap by one byte",
			matrices: []MatrixMeta{validMeta("theta1", 0, 100), validMeta("theta2", 99, 100)},
			dataSize: 200,
			wantType: "offset_overlap",
			wantErr:  ErrOffsetOverlap,
		},
		{
			name:     "overlap in reverse order",
			matrices: []MatrixMeta{validMeta("theta2", 50, 100), validMeta("theta1", 0, 100)},
			dataSize: 200,
			wantType: "offset_overlap",
			wantErr:  ErrOffsetOverlap,
		},
		{
			name:     "past end of data",
			matrices: []MatrixMeta{validMeta("theta1", 100, 200)},
			dataSize: 250,
			wantType: "out_of_bounds",
			wantErr:  ErrOutOfBounds,
		},
		{
			name:     "negative offset",
			matrices: []MatrixMeta{validMeta("theta1", -100, 100)},
			dataSize: 500,
			wantType: "negative_offset",
			wantErr:  ErrNegativeOffset,
		},
		{
			name:     "negative size",
			matrices: []MatrixMeta{validMeta("theta1", 0, -1)},
			dataSize: 500,
			wantType: "negative_offset",
			wantErr:  ErrNegativeOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOffsets(tt.matrices, tt.dataSize)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateOffsets() unexpected error: %v", err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %T (%v)", err, err)
			}
			if validationErr.Type != tt.wantType {
				t.Errorf("Expected %s, got %s", tt.wantType, validationErr.Type)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected errors.Is(%v), got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateOffsets_TooManyMatrices(t *testing.T) {
	matrices := make([]MatrixMeta, MaxMatrixCount+1)
	for i := range matrices {
		matrices[i] = validMeta("m", int64(i*8), 8)
	}
	err := ValidateOffsets(matrices, int64(len(matrices)*8))
	if !errors.Is(err, ErrTooManyMatrices) {
		t.Errorf("Expected ErrTooManyMatrices, got %v", err)
	}
}

func TestValidateName(t *testing.T) {
	bad := []string{
		"",
		"../theta1",
		"theta/1",
		`theta\1`,
		"theta\x001",
		strings.Repeat("a", MaxNameLen+1),
	}
	for _, name := range bad {
		if err := ValidateName(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", name, err)
		}
	}

	for _, name := range []string{"theta1", "theta2", "layer.0.weight", "with_numbers_123"} {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) unexpected error: %v", name, err)
		}
	}
}

func TestValidateShape(t *testing.T) {
	m := validMeta("theta1", 0, 8)
	if err := ValidateShape(m); err != nil {
		t.Fatalf("ValidateShape() unexpected error: %v", err)
	}

	m.Rows = 0
	if err := ValidateShape(m); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for zero rows, got %v", err)
	}

	m = validMeta("theta1", 0, 8)
	m.Rows, m.Cols = MaxMatrixLength, 2
	if err := ValidateShape(m); err == nil {
		t.Error("Expected error for oversized matrix")
	}

	m = validMeta("theta1", 0, 8)
	m.DType = "float32"
	if err := ValidateShape(m); err == nil {
		t.Error("Expected error for unsupported dtype")
	}
}

// TestValidateHeader_Levels checks which rules each level applies.
func TestValidateHeader_Levels(t *testing.T) {
	overlapping := Header{
		FormatVersion: FormatVersion,
		Matrices:      []MatrixMeta{validMeta("theta1", 0, 100), validMeta("theta2", 50, 100)},
	}
	if err := ValidateHeader(&overlapping, 200, ValidationNormal); err != nil {
		t.Errorf("Normal validation should skip offsets, got: %v", err)
	}
	if err := ValidateHeader(&overlapping, 200, ValidationStrict); err == nil {
		t.Error("Strict validation should fail on overlap")
	}

	duplicate := Header{
		FormatVersion: FormatVersion,
		Matrices:      []MatrixMeta{validMeta("theta1", 0, 100), validMeta("theta1", 100, 100)},
	}
	if err := ValidateHeader(&duplicate, 200, ValidationNormal); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Expected duplicate name error, got %v", err)
	}

	wrongVersion := Header{FormatVersion: 1}
	if err := ValidateHeader(&wrongVersion, 0, ValidationNormal); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Expected ErrUnsupportedVersion, got %v", err)
	}

	garbage := Header{Matrices: []MatrixMeta{{Name: "../../etc/passwd", Offset: -1, Size: -1}}}
	if err := ValidateHeader(&garbage, 0, ValidationNone); err != nil {
		t.Errorf("ValidationNone should skip all checks, got: %v", err)
	}
}

func TestValidationError_ErrorMessages(t *testing.T) {
	tests := []struct {
		err      *ValidationError
		expected string
	}{
		{
			err:      &ValidationError{Type: "out_of_bounds", Name: "theta1", Details: "offset 100 + size 200 > data_size 250"},
			expected: `out_of_bounds: matrix "theta1": offset 100 + size 200 > data_size 250`,
		},
		{
			err:      &ValidationError{Type: "offset_overlap", Name: "theta1", Name2: "theta2", Details: "regions overlap"},
			expected: `offset_overlap: matrices "theta1" and "theta2": regions overlap`,
		},
		{
			err:      &ValidationError{Type: "too_many_matrices", Details: "got 1025, max 1024"},
			expected: "too_many_matrices: got 1025, max 1024",
		},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.expected {
			t.Errorf("Error message mismatch\nExpected: %s\nGot:      %s", tt.expected, got)
		}
	}
}

// FuzzValidateName ensures name validation never panics.
func FuzzValidateName(f *testing.F) {
	f.Add("theta1")
	f.Add("../malicious")
	f.Add("\x00")
	f.Fuzz(func(_ *testing.T, name string) {
		_ = ValidateName(name)
	})
}

// FuzzValidateOffsets ensures offset validation never panics.
func FuzzValidateOffsets(f *testing.F) {
	f.Add(int64(0), int64(100), int64(200))
	f.Add(int64(-100), int64(50), int64(1000))
	f.Fuzz(func(_ *testing.T, offset, size, dataSize int64) {
		_ = ValidateOffsets([]MatrixMeta{validMeta("fuzz", offset, size)}, dataSize)
	})
}
