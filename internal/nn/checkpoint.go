package nn

import (
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/born-ml/mnistnet/internal/mnist"
	"github.com/born-ml/mnistnet/internal/serialization"
	"gonum.org/v1/gonum/mat"
)

// ModelType is the model name written into checkpoint headers.
const ModelType = "sigmoid-mlp"

// Version is the mnistnet release stamped into every checkpoint.
const Version = "v0.1.0"

// Matrix names inside a checkpoint file.
const (
	Theta1Name = "theta1"
	Theta2Name = "theta2"
)

// Metadata keys written by Save.
const (
	MetaEncoding = "encoding"
	MetaFeatures = "features"
	MetaHidden   = "hidden"
)

// Checkpoint is a snapshot of a Network's parameters and training state.
//
// Example:
//
//	if err := net.Save("mnist.born", map[string]string{"run_id": id}); err != nil {
//	    return err
//	}
//	cp, err := nn.LoadCheckpoint("mnist.born")
//	fmt.Println(cp.Step, cp.Cost)
type Checkpoint struct {
	Theta1       *mat.Dense        // (Hidden, Features+1)
	Theta2       *mat.Dense        // (NumClasses, Hidden+1)
	Encoding     LabelEncoding     // Target layout the parameters were trained with
	Lambda       float64           // Regularization strength
	LearningRate float64           // Gradient step scale
	Step         int64             // Updates applied before saving
	Cost         float64           // Cost at the saved parameters
	Metadata     map[string]string // Caller metadata
	CreatedAt    time.Time         // When the checkpoint was written
	Version      string            // Release that wrote the file; set by LoadCheckpoint
}

// Hidden returns the hidden layer width of the stored parameters.
func (c *Checkpoint) Hidden() int {
	r, _ := c.Theta1.Dims()
	return r
}

// Features returns the input width of the stored parameters.
func (c *Checkpoint) Features() int {
	_, cols := c.Theta1.Dims()
	return cols - 1
}

// Checkpoint captures the current parameters. The recorded cost is
// computed at those parameters, which refreshes the activations.
func (n *Network) Checkpoint(metadata map[string]string) *Checkpoint {
	n.Forward()
	return &Checkpoint{
		Theta1:       n.Theta1(),
		Theta2:       n.Theta2(),
		Encoding:     n.cfg.Encoding,
		Lambda:       n.cfg.Lambda,
		LearningRate: n.cfg.LearningRate,
		Step:         int64(n.steps),
		Cost:         n.Cost(),
		Metadata:     maps.Clone(metadata),
		CreatedAt:    time.Now().UTC(),
	}
}

// Save writes the current parameters and training state to path.
func (n *Network) Save(path string, metadata map[string]string) error {
	return n.Checkpoint(metadata).Save(path)
}

// Save writes c to a .born file at path.
func (c *Checkpoint) Save(path string) error {
	meta := make(map[string]string, len(c.Metadata)+3)
	maps.Copy(meta, c.Metadata)
	meta[MetaEncoding] = c.Encoding.String()
	meta[MetaHidden] = strconv.Itoa(c.Hidden())
	meta[MetaFeatures] = strconv.Itoa(c.Features())

	header := serialization.Header{
		Version:   Version,
		ModelType: ModelType,
		CreatedAt: c.CreatedAt,
		Metadata:  meta,
		CheckpointMeta: &serialization.CheckpointMeta{
			Step:         c.Step,
			Cost:         c.Cost,
			LearningRate: c.LearningRate,
			Lambda:       c.Lambda,
		},
	}
	state := map[string]*mat.Dense{Theta1Name: c.Theta1, Theta2Name: c.Theta2}
	if err := serialization.Save(path, state, header); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint written by Save.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	state, header, err := serialization.Load(path, serialization.ReaderOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if header.ModelType != ModelType {
		return nil, fmt.Errorf("%s: model type %q is not %q", path, header.ModelType, ModelType)
	}

	theta1, theta2 := state[Theta1Name], state[Theta2Name]
	if theta1 == nil || theta2 == nil {
		return nil, fmt.Errorf("%s: %w: need %s and %s", path, serialization.ErrNotFound, Theta1Name, Theta2Name)
	}
	h, _ := theta1.Dims()
	r2, c2 := theta2.Dims()
	if r2 != NumClasses || c2 != h+1 {
		return nil, &mnist.ShapeError{
			Op:   "nn.LoadCheckpoint",
			Want: fmt.Sprintf("theta2 (%d, %d)", NumClasses, h+1),
			Got:  fmt.Sprintf("(%d, %d)", r2, c2),
		}
	}

	enc, err := ParseLabelEncoding(header.Metadata[MetaEncoding])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cp := &Checkpoint{
		Theta1:    theta1,
		Theta2:    theta2,
		Encoding:  enc,
		Metadata:  header.Metadata,
		CreatedAt: header.CreatedAt,
		Version:   header.Version,
	}
	if m := header.CheckpointMeta; m != nil {
		cp.Step = m.Step
		cp.Cost = m.Cost
		cp.Lambda = m.Lambda
		cp.LearningRate = m.LearningRate
	}
	return cp, nil
}

// Load builds a Network over ds with the parameters stored at path.
// Hidden width and label encoding come from the checkpoint; every other
// field of cfg is used as given.
func Load(path string, ds *mnist.Dataset, cfg Config) (*Network, error) {
	cp, err := LoadCheckpoint(path)
	if err != nil {
		return nil, err
	}
	cfg.Hidden = cp.Hidden()
	cfg.Encoding = cp.Encoding
	net, err := New(ds, cfg)
	if err != nil {
		return nil, err
	}
	if err := net.SetParameters(cp.Theta1, cp.Theta2); err != nil {
		return nil, err
	}
	net.steps = int(cp.Step)
	return net, nil
}

// LoadParameters replaces the parameters of n with those stored at path.
// The checkpoint must match the network's shape and label encoding.
func (n *Network) LoadParameters(path string) error {
	cp, err := LoadCheckpoint(path)
	if err != nil {
		return err
	}
	if cp.Encoding != n.cfg.Encoding {
		return fmt.Errorf("%w: checkpoint uses %s targets, network uses %s",
			ErrInvalidConfig, cp.Encoding, n.cfg.Encoding)
	}
	return n.SetParameters(cp.Theta1, cp.Theta2)
}
