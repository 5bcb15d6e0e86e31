package serialization

import (
	"crypto/sha256"
	"io"
)

// ComputeChecksum computes the SHA-256 checksum of data.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum returns ErrChecksumMismatch if computed != stored.
func ValidateChecksum(computed, stored [32]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}

// checksumSection hashes n bytes of r starting at off. A short section
// yields io.ErrUnexpectedEOF.
func checksumSection(r io.ReaderAt, off, n int64) ([32]byte, error) {
	h := sha256.New()
	copied, err := io.Copy(h, io.NewSectionReader(r, off, n))
	if err != nil {
		return [32]byte{}, err
	}
	if copied != n {
		return [32]byte{}, io.ErrUnexpectedEOF
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
