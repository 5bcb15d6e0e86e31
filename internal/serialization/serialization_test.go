package serialization

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testState() map[string]*mat.Dense {
	return map[string]*mat.Dense{
		"theta2": mat.NewDense(2, 3, []float64{1, -2, 3.5, 0, 1e-300, -7}),
		"theta1": mat.NewDense(3, 2, []float64{0.12, -0.12, 0, 1, 2, 3}),
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.born")
	header := Header{
		ModelType: "sigmoid-mlp",
		Metadata:  map[string]string{"run_id": "abc"},
		CheckpointMeta: &CheckpointMeta{
			Step:         42,
			Cost:         0.25,
			LearningRate: 1,
			Lambda:       0.1,
		},
	}

	require.NoError(t, Save(path, testState(), header))

	state, got, err := Load(path, ReaderOptions{})
	require.NoError(t, err)

	for name, want := range testState() {
		require.Contains(t, state, name)
		assert.True(t, mat.Equal(want, state[name]), "matrix %s", name)
	}
	assert.Equal(t, FormatVersion, got.FormatVersion)
	assert.Equal(t, "sigmoid-mlp", got.ModelType)
	assert.Equal(t, "abc", got.Metadata["run_id"])
	require.NotNil(t, got.CheckpointMeta)
	assert.Equal(t, int64(42), got.CheckpointMeta.Step)
	assert.False(t, got.CreatedAt.IsZero())

	names := make([]string, len(got.Matrices))
	for i, m := range got.Matrices {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"theta1", "theta2"}, names, "matrices are stored in name order")
}

func TestReader_Accessors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.born")
	require.NoError(t, Save(path, testState(), Header{}))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"theta1", "theta2"}, r.Names())
	assert.NotNil(t, r.Metadata())

	info, err := r.Info("theta2")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Rows)
	assert.Equal(t, 3, info.Cols)
	assert.Equal(t, EncodingDense, info.Encoding)

	_, err = r.Info("theta3")
	assert.ErrorIs(t, err, ErrNotFound)

	m, err := r.LoadMatrix("theta1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.At(1, 1))

	require.NoError(t, r.Close())
	_, err = r.ReadStateDict()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEncode_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testState(), Header{Metadata: map[string]string{"k": "v"}}))
	raw := buf.Bytes()

	assert.Equal(t, MagicBytes, string(raw[0:4]))
	assert.Equal(t, uint32(FormatVersion), binary.LittleEndian.Uint32(raw[4:8]))
	assert.Equal(t, FlagHasMetadata, binary.LittleEndian.Uint32(raw[8:12]))

	headerSize := int64(binary.LittleEndian.Uint64(raw[16:24]))
	dataSize := int64(binary.LittleEndian.Uint64(raw[24:32]))
	off := dataOffset(headerSize)
	assert.Zero(t, off%HeaderAlignment)
	assert.Equal(t, int64(len(raw)), off+dataSize)

	var stored [32]byte
	copy(stored[:], raw[ChecksumOffset:ChecksumOffset+ChecksumSize])
	assert.Equal(t, ComputeChecksum(raw[off:]), stored)
}

func TestDecode_Corruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testState(), Header{}))
	good := buf.Bytes()

	t.Run("flipped data byte", func(t *testing.T) {
		raw := bytes.Clone(good)
		raw[len(raw)-1] ^= 0xff
		_, _, err := Decode(bytes.NewReader(raw), ReaderOptions{})
		assert.ErrorIs(t, err, ErrChecksumMismatch)

		_, _, err = Decode(bytes.NewReader(raw), ReaderOptions{SkipChecksumValidation: true})
		assert.NoError(t, err)
	})

	t.Run("bad magic", func(t *testing.T) {
		raw := bytes.Clone(good)
		copy(raw, "NROB")
		_, _, err := Decode(bytes.NewReader(raw), ReaderOptions{})
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("unknown version", func(t *testing.T) {
		raw := bytes.Clone(good)
		binary.LittleEndian.PutUint32(raw[4:8], 9)
		_, _, err := Decode(bytes.NewReader(raw), ReaderOptions{})
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("truncated", func(t *testing.T) {
		_, _, err := Decode(bytes.NewReader(good[:len(good)-10]), ReaderOptions{})
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})

	t.Run("huge header", func(t *testing.T) {
		raw := bytes.Clone(good)
		binary.LittleEndian.PutUint64(raw[16:24], MaxHeaderSize+1)
		_, _, err := Decode(bytes.NewReader(raw), ReaderOptions{})
		assert.ErrorIs(t, err, ErrHeaderTooLarge)
	})
}

func TestEncode_RejectsBadNames(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, map[string]*mat.Dense{"../x": mat.NewDense(1, 1, nil)}, Header{})
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Zero(t, buf.Len())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.born"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
