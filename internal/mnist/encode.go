package mnist

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
)

// EncodeLabels writes labels in the IDX label layout.
func EncodeLabels(w io.Writer, labels []int) error {
	header := make([]byte, LabelHeaderSize)
	binary.BigEndian.PutUint32(header[0:4], LabelMagic)
	binary.BigEndian.PutUint32(header[4:8], uint32(len(labels)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write label header: %w", err)
	}

	payload := make([]byte, len(labels))
	for i, l := range labels {
		if l < 0 || l > math.MaxUint8 {
			return fmt.Errorf("%w: label %d at index %d does not fit in a byte", ErrLabelRange, l, i)
		}
		payload[i] = byte(l)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write labels: %w", err)
	}
	return nil
}

// EncodeImages writes images in the IDX image layout. Each row of images
// is one width*height image with intensities in [0, 1]; values are scaled
// back to bytes with rounding and clamped.
func EncodeImages(w io.Writer, images mat.Matrix, width, height int) error {
	n, pixels := images.Dims()
	if pixels != width*height {
		return &ShapeError{
			Op:   "encode images",
			Want: fmt.Sprintf("%d columns (%dx%d)", width*height, width, height),
			Got:  fmt.Sprintf("%d columns", pixels),
		}
	}

	header := make([]byte, ImageHeaderSize)
	binary.BigEndian.PutUint32(header[0:4], ImageMagic)
	binary.BigEndian.PutUint32(header[4:8], uint32(n))
	binary.BigEndian.PutUint32(header[8:12], uint32(height))
	binary.BigEndian.PutUint32(header[12:16], uint32(width))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write image header: %w", err)
	}

	buf := make([]byte, pixels)
	for i := 0; i < n; i++ {
		for j := range buf {
			v := math.Round(images.At(i, j) * 255)
			buf[j] = byte(math.Max(0, math.Min(255, v)))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("failed to write image %d: %w", i, err)
		}
	}
	return nil
}
