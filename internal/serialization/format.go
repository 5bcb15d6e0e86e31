package serialization

import "time"

// Format constants.
const (
	MagicBytes      = "BORN"
	FormatVersion   = 2    // Fixed 64-byte header with SHA-256 checksum
	HeaderAlignment = 64   // Matrix data starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Payload encodings.
const (
	// EncodingDense marks a payload produced by gonum's mat.Dense.MarshalBinary.
	EncodingDense = "gonum/mat.Dense"
	// DTypeFloat64 is the element type of every stored matrix.
	DTypeFloat64 = "float64"
)

// Flags for the fixed header.
const (
	FlagHasMetadata   uint32 = 1 << 2 // bit 2: custom metadata included
	FlagHasCheckpoint uint32 = 1 << 3 // bit 3: training state included
)

// Header is the JSON header that follows the fixed header.
type Header struct {
	FormatVersion  int               `json:"format_version"`       // Version of the format
	Version        string            `json:"version"`              // Version of mnistnet that wrote the file
	ModelType      string            `json:"model_type"`           // Model kind (e.g. "sigmoid-mlp")
	CreatedAt      time.Time         `json:"created_at"`           // When the file was created
	Matrices       []MatrixMeta      `json:"matrices"`             // Stored matrices, sorted by name
	Metadata       map[string]string `json:"metadata"`             // Custom metadata
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"` // Training state (optional)
}

// CheckpointMeta records where training stood when the file was written.
type CheckpointMeta struct {
	Step         int64   `json:"step"`          // Number of updates applied
	Cost         float64 `json:"cost"`          // Cost at the last forward pass
	LearningRate float64 `json:"learning_rate"` // Gradient step scale
	Lambda       float64 `json:"lambda"`        // Regularization strength
}

// MatrixMeta describes one matrix in the data section.
type MatrixMeta struct {
	Name     string `json:"name"`     // Matrix name (e.g. "theta1")
	DType    string `json:"dtype"`    // Element type
	Encoding string `json:"encoding"` // Payload encoding
	Rows     int    `json:"rows"`     // Row count
	Cols     int    `json:"cols"`     // Column count
	Offset   int64  `json:"offset"`   // Offset from the start of the data section
	Size     int64  `json:"size"`     // Payload size in bytes
}

// dataOffset returns the absolute file offset of the data section for a
// JSON header of headerSize bytes.
func dataOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + padding(pos)
}

func padding(pos int64) int64 {
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}
