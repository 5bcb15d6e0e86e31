package mnist

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/bits"
	"os"

	"gonum.org/v1/gonum/mat"
)

// IDX layout constants.
//
// Label file:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes, big-endian
//	label data: unsigned bytes
//
// Image file:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes, big-endian
//	number of rows: 4 bytes, big-endian
//	number of cols: 4 bytes, big-endian
//	pixel data: unsigned bytes, row-major per image
const (
	LabelMagic      = 2049
	ImageMagic      = 2051
	LabelHeaderSize = 8
	ImageHeaderSize = 16

	// MaxPayloadBytes bounds the declared payload of a single file.
	MaxPayloadBytes = 1 << 31
)

// DecodeOptions configures the IDX decoders.
type DecodeOptions struct {
	SkipMagicCheck bool // Accept any magic number
}

// ReadLabels decodes the label file at path.
func ReadLabels(path string, opts DecodeOptions) ([]int, error) {
	f, size, err := openSized(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	labels, err := decodeLabels(bufio.NewReader(f), size, opts)
	return labels, withPath(err, path)
}

// DecodeLabels decodes a label stream. Each label byte is copied verbatim.
func DecodeLabels(r io.Reader, opts DecodeOptions) ([]int, error) {
	return decodeLabels(r, -1, opts)
}

// ReadImages decodes the image file at path. Pixels are normalized to
// [0, 1] and laid out one image per row.
func ReadImages(path string, opts DecodeOptions) (*mat.Dense, int, int, error) {
	f, size, err := openSized(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	images, width, height, err := decodeImages(bufio.NewReader(f), size, opts)
	return images, width, height, withPath(err, path)
}

// DecodeImages decodes an image stream and returns the (N, rows*cols)
// pixel matrix together with the image width (cols) and height (rows).
func DecodeImages(r io.Reader, opts DecodeOptions) (*mat.Dense, int, int, error) {
	return decodeImages(r, -1, opts)
}

func decodeLabels(r io.Reader, size int64, opts DecodeOptions) ([]int, error) {
	var header [LabelHeaderSize]byte
	if n, err := io.ReadFull(r, header[:]); err != nil {
		return nil, readErr("header", LabelHeaderSize, int64(n), err)
	}
	magic := binary.BigEndian.Uint32(header[0:4])
	count := uint64(binary.BigEndian.Uint32(header[4:8]))

	if !opts.SkipMagicCheck && magic != LabelMagic {
		return nil, &DecodeError{Section: "header", Expected: LabelMagic, Actual: int64(magic), Err: ErrBadMagic}
	}
	if count == 0 {
		return nil, &DecodeError{Section: "header", Expected: 1, Actual: 0, Err: ErrEmpty}
	}
	payload, err := payloadSize("labels", LabelHeaderSize, count, 1, size)
	if err != nil {
		return nil, err
	}

	raw, err := readPayload(r, "labels", LabelHeaderSize, payload)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(raw))
	for i, b := range raw {
		labels[i] = int(b)
	}
	return labels, nil
}

func decodeImages(r io.Reader, size int64, opts DecodeOptions) (*mat.Dense, int, int, error) {
	var header [ImageHeaderSize]byte
	if n, err := io.ReadFull(r, header[:]); err != nil {
		return nil, 0, 0, readErr("header", ImageHeaderSize, int64(n), err)
	}
	magic := binary.BigEndian.Uint32(header[0:4])
	count := uint64(binary.BigEndian.Uint32(header[4:8]))
	rows := uint64(binary.BigEndian.Uint32(header[8:12]))
	cols := uint64(binary.BigEndian.Uint32(header[12:16]))

	if !opts.SkipMagicCheck && magic != ImageMagic {
		return nil, 0, 0, &DecodeError{Section: "header", Expected: ImageMagic, Actual: int64(magic), Err: ErrBadMagic}
	}
	if count == 0 || rows == 0 || cols == 0 {
		return nil, 0, 0, &DecodeError{Section: "header", Expected: 1, Actual: 0, Err: ErrEmpty}
	}
	// Both factors are below 2^32, so the product cannot wrap.
	pixels := rows * cols
	payload, err := payloadSize("images", ImageHeaderSize, count, pixels, size)
	if err != nil {
		return nil, 0, 0, err
	}

	raw, err := readPayload(r, "images", ImageHeaderSize, payload)
	if err != nil {
		return nil, 0, 0, err
	}
	data := make([]float64, len(raw))
	for i, b := range raw {
		data[i] = float64(b) / 255.0
	}
	return mat.NewDense(int(count), int(pixels), data), int(cols), int(rows), nil
}

// payloadSize returns count*recordSize in bytes. Payloads above
// MaxPayloadBytes are rejected with ErrTooLarge before anything is
// allocated. A non-negative size is the file length, which must hold the
// header and the payload. A negative size means the length is unknown.
func payloadSize(section string, headerSize int64, count, recordSize uint64, size int64) (int64, error) {
	if recordSize > MaxPayloadBytes || count > MaxPayloadBytes/recordSize {
		actual := int64(math.MaxInt64)
		if hi, lo := bits.Mul64(count, recordSize); hi == 0 && lo <= math.MaxInt64 {
			actual = int64(lo)
		}
		return 0, &DecodeError{Section: "header", Expected: MaxPayloadBytes, Actual: actual, Err: ErrTooLarge}
	}
	payload := int64(count * recordSize)
	if size >= 0 && size < headerSize+payload {
		return 0, &DecodeError{Section: section, Expected: headerSize + payload, Actual: size, Err: ErrTruncated}
	}
	return payload, nil
}

// readPayload reads exactly n bytes following a header of headerSize
// bytes. The buffer grows with the data actually read, so a header that
// overstates its payload costs no more memory than the stream holds.
func readPayload(r io.Reader, section string, headerSize, n int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, n))
	if err != nil {
		return nil, &IOError{Err: err}
	}
	if int64(len(raw)) < n {
		return nil, &DecodeError{
			Section:  section,
			Expected: headerSize + n,
			Actual:   headerSize + int64(len(raw)),
			Err:      ErrTruncated,
		}
	}
	return raw, nil
}

// readErr classifies a failed read: short reads are decode errors, anything
// else is an I/O failure.
func readErr(section string, expected, actual int64, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &DecodeError{Section: section, Expected: expected, Actual: actual, Err: ErrTruncated}
	}
	return &IOError{Err: err}
}

func openSized(path string) (*os.File, int64, error) {
	//nolint:gosec // G304: dataset paths come from user configuration
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &IOError{Path: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, &IOError{Path: path, Err: err}
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, 0, &IOError{Path: path, Err: errors.New("is a directory")}
	}
	return f, info.Size(), nil
}

// withPath attaches the file name to decoder errors produced from a stream.
func withPath(err error, path string) error {
	if err == nil {
		return nil
	}
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		decErr.Path = path
		return decErr
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		ioErr.Path = path
		return ioErr
	}
	return err
}
