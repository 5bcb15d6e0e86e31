package serialization

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Writer writes matrices to a .born file.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates (or truncates) the file at path.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: checkpoint paths come from user configuration
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &Writer{file: file}, nil
}

// WriteStateDict writes every matrix in state together with header.
// The Matrices, FormatVersion and (if zero) CreatedAt fields of header are
// filled in by the writer.
func (w *Writer) WriteStateDict(state map[string]*mat.Dense, header Header) error {
	if w.closed {
		return ErrClosed
	}
	return Encode(w.file, state, header)
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// Save writes state to path in one call.
func Save(path string, state map[string]*mat.Dense, header Header) error {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteStateDict(state, header); err != nil {
		return errors.Join(err, w.Close())
	}
	return w.Close()
}

// Encode writes state to dst.
//
// Layout:
//
//	0x00 magic "BORN"
//	0x04 version (uint32 LE)
//	0x08 flags (uint32 LE)
//	0x0C reserved
//	0x10 JSON header size (uint64 LE)
//	0x18 data size (uint64 LE)
//	0x20 SHA-256 of the data section
//	0x40 JSON header, zero padding to 64 bytes, data section
//
// Matrices are stored in name order so identical inputs give identical
// data sections.
func Encode(dst io.Writer, state map[string]*mat.Dense, header Header) error {
	names := make([]string, 0, len(state))
	for name := range state {
		if err := ValidateName(name); err != nil {
			return err
		}
		if state[name] == nil {
			return fmt.Errorf("matrix %q is nil", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var data []byte
	header.Matrices = make([]MatrixMeta, 0, len(names))
	for _, name := range names {
		m := state[name]
		payload, err := m.MarshalBinary()
		if err != nil {
			return fmt.Errorf("failed to marshal matrix %s: %w", name, err)
		}
		rows, cols := m.Dims()
		header.Matrices = append(header.Matrices, MatrixMeta{
			Name:     name,
			DType:    DTypeFloat64,
			Encoding: EncodingDense,
			Rows:     rows,
			Cols:     cols,
			Offset:   int64(len(data)),
			Size:     int64(len(payload)),
		})
		data = append(data, payload...)
	}

	header.FormatVersion = FormatVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.CheckpointMeta != nil {
		flags |= FlagHasCheckpoint
	}

	checksum := ComputeChecksum(data)
	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := dst.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := dst.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}
	if pad := padding(int64(FixedHeaderSize + len(headerJSON))); pad > 0 {
		if _, err := dst.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}
	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("failed to write matrix data: %w", err)
	}
	return nil
}
