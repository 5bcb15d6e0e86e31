package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Reader reads matrices from a .born file.
type Reader struct {
	src        io.ReaderAt
	closer     io.Closer
	header     Header
	flags      uint32
	dataOffset int64
	dataSize   int64
	closed     bool
}

// ReaderOptions configures Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Open opens a .born file with strict validation.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// OpenWithOptions opens a .born file with custom options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: checkpoint paths come from user configuration
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	r := &Reader{src: file, closer: file}
	if err := r.parse(info.Size(), opts); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r, nil
}

// Decode reads a complete .born stream from src.
func Decode(src io.Reader, opts ReaderOptions) (map[string]*mat.Dense, Header, error) {
	buf, err := io.ReadAll(src)
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to read stream: %w", err)
	}
	r := &Reader{src: bytes.NewReader(buf)}
	if err := r.parse(int64(len(buf)), opts); err != nil {
		return nil, Header{}, err
	}
	state, err := r.ReadStateDict()
	if err != nil {
		return nil, Header{}, err
	}
	return state, r.header, nil
}

// Load opens path, reads every matrix and closes the file.
func Load(path string, opts ReaderOptions) (map[string]*mat.Dense, Header, error) {
	r, err := OpenWithOptions(path, opts)
	if err != nil {
		return nil, Header{}, err
	}
	defer func() { _ = r.Close() }()

	state, err := r.ReadStateDict()
	if err != nil {
		return nil, Header{}, err
	}
	return state, r.header, nil
}

// parse reads and validates the fixed header, JSON header and checksum of
// a file of size bytes.
func (r *Reader) parse(size int64, opts ReaderOptions) error {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := r.src.ReadAt(fixed, 0); err != nil {
		return fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, fixed[0:4], MagicBytes)
	}
	if v := binary.LittleEndian.Uint32(fixed[4:8]); v != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, v, FormatVersion)
	}
	r.flags = binary.LittleEndian.Uint32(fixed[8:12])

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	var stored [32]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerBytes := make([]byte, headerSize)
	if _, err := r.src.ReadAt(headerBytes, FixedHeaderSize); err != nil {
		return fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	r.dataOffset = dataOffset(int64(headerSize))
	available := size - r.dataOffset
	if dataSize > uint64(max(available, 0)) {
		return &ValidationError{
			Type:    "truncated",
			Details: fmt.Sprintf("data section declares %d bytes, file holds %d", dataSize, available),
			Err:     ErrOutOfBounds,
		}
	}
	//nolint:gosec // G115: dataSize is bounded by the file size
	r.dataSize = int64(dataSize)

	if err := ValidateHeader(&r.header, r.dataSize, opts.ValidationLevel); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if !opts.SkipChecksumValidation {
		computed, err := checksumSection(r.src, r.dataOffset, r.dataSize)
		if err != nil {
			return fmt.Errorf("failed to read data for checksum: %w", err)
		}
		if err := ValidateChecksum(computed, stored); err != nil {
			return err
		}
	}
	return nil
}

// Header returns the parsed JSON header.
func (r *Reader) Header() Header {
	return r.header
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// Names returns the stored matrix names in file order.
func (r *Reader) Names() []string {
	names := make([]string, len(r.header.Matrices))
	for i, m := range r.header.Matrices {
		names[i] = m.Name
	}
	return names
}

// Info returns the metadata of the named matrix.
func (r *Reader) Info(name string) (*MatrixMeta, error) {
	for _, m := range r.header.Matrices {
		if m.Name == name {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// ReadData returns the raw payload of the named matrix.
func (r *Reader) ReadData(name string) ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	meta, err := r.Info(name)
	if err != nil {
		return nil, err
	}
	data := make([]byte, meta.Size)
	if _, err := r.src.ReadAt(data, r.dataOffset+meta.Offset); err != nil {
		return nil, fmt.Errorf("failed to read matrix %s: %w", name, err)
	}
	return data, nil
}

// LoadMatrix decodes the named matrix and checks its shape against the header.
func (r *Reader) LoadMatrix(name string) (*mat.Dense, error) {
	data, err := r.ReadData(name)
	if err != nil {
		return nil, err
	}
	meta, _ := r.Info(name)

	var m mat.Dense
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("failed to decode matrix %s: %w", name, err)
	}
	rows, cols := m.Dims()
	if rows != meta.Rows || cols != meta.Cols {
		return nil, fmt.Errorf("%w: %s is %dx%d, header says %dx%d",
			ErrShapeMismatch, name, rows, cols, meta.Rows, meta.Cols)
	}
	return &m, nil
}

// ReadStateDict decodes every stored matrix.
func (r *Reader) ReadStateDict() (map[string]*mat.Dense, error) {
	if r.closed {
		return nil, ErrClosed
	}
	state := make(map[string]*mat.Dense, len(r.header.Matrices))
	for _, meta := range r.header.Matrices {
		m, err := r.LoadMatrix(meta.Name)
		if err != nil {
			return nil, err
		}
		state[meta.Name] = m
	}
	return state, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
