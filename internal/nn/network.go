package nn

import (
	"fmt"
	"log"

	"github.com/born-ml/mnistnet/internal/mnist"
	"gonum.org/v1/gonum/mat"
)

// Network is a fully connected classifier with one sigmoid hidden layer
// and a sigmoid output layer of NumClasses units, trained by full-batch
// gradient descent on a single dataset.
//
// Parameters are stored with the bias weight in column 0:
//
//	theta1: (Hidden, Features+1)
//	theta2: (NumClasses, Hidden+1)
//
// Activations carry no bias column. a1 is the dataset image matrix itself,
// a2 is (N, Hidden) and a3 is (N, NumClasses).
//
// A Network is not safe for concurrent use.
type Network struct {
	cfg    Config
	ds     *mnist.Dataset
	n      int
	labels []int

	theta1 *mat.Dense
	theta2 *mat.Dense

	a1 mat.Matrix
	a2 *mat.Dense
	a3 *mat.Dense
	y  *mat.Dense

	delta2  *mat.Dense
	delta3  *mat.Dense
	dTheta1 *mat.Dense
	dTheta2 *mat.Dense

	logger *log.Logger
	warned bool
	steps  int
}

// New creates a Network bound to ds with randomly initialized parameters.
//
// Parameters:
//   - ds: Training data; the image matrix is used as a1 without copying
//   - cfg: Hyperparameters; zero fields take their defaults
//
// Returns ErrInvalidConfig for a bad config and a mnist.ShapeError for an
// empty dataset.
//
// Example:
//
//	train, _ := mnist.LoadSplit("data", mnist.TrainSet, mnist.DecodeOptions{})
//	net, err := nn.New(train, nn.Config{Hidden: 64, Lambda: 0.1, Seed: 1})
//	if err != nil {
//	    return err
//	}
//	err = net.Train(10000, nil)
func New(ds *mnist.Dataset, cfg Config) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ds == nil || ds.Len() == 0 {
		return nil, &mnist.ShapeError{Op: "nn.New", Want: "non-empty dataset", Got: "no images"}
	}
	cfg = cfg.withDefaults()

	n, f, h := ds.Len(), ds.Features(), cfg.Hidden
	rng := newRand(cfg.Seed)

	net := &Network{
		cfg:     cfg,
		ds:      ds,
		n:       n,
		labels:  ds.Labels(),
		theta1:  Uniform(h, f+1, cfg.InitEpsilon, rng),
		theta2:  Uniform(NumClasses, h+1, cfg.InitEpsilon, rng),
		a1:      ds.Images(),
		a2:      mat.NewDense(n, h, nil),
		a3:      mat.NewDense(n, NumClasses, nil),
		delta2:  mat.NewDense(n, h, nil),
		delta3:  mat.NewDense(n, NumClasses, nil),
		dTheta1: mat.NewDense(h, f+1, nil),
		dTheta2: mat.NewDense(NumClasses, h+1, nil),
		logger:  cfg.Logger,
	}
	net.y = targets(net.labels, cfg.Encoding)
	return net, nil
}

// targets builds the (N, NumClasses) target matrix for the encoding.
func targets(labels []int, enc LabelEncoding) *mat.Dense {
	y := mat.NewDense(len(labels), NumClasses, nil)
	for i, l := range labels {
		switch enc {
		case BiasAligned:
			if l > 0 {
				y.Set(i, l-1, 1)
			}
		default:
			y.Set(i, l, 1)
		}
	}
	return y
}

// decodeClass maps an output unit index back to a digit.
func decodeClass(idx int, enc LabelEncoding) int {
	if enc == BiasAligned {
		return idx + 1
	}
	return idx
}

// BiasAlignedTargets returns the (N, NumClasses+1) target matrix of the
// historical layout: column 0 is 1 for every row (it overlays the bias
// unit) and column label_i is set to 1. For label 0 the two coincide.
func (n *Network) BiasAlignedTargets() *mat.Dense {
	yy := mat.NewDense(n.n, NumClasses+1, nil)
	for i, l := range n.labels {
		yy.Set(i, 0, 1)
		yy.Set(i, l, 1)
	}
	return yy
}

// SetParameters replaces both parameter matrices with copies of theta1
// and theta2. Shapes must match the network exactly.
func (n *Network) SetParameters(theta1, theta2 mat.Matrix) error {
	if err := checkDims("theta1", theta1, n.theta1); err != nil {
		return err
	}
	if err := checkDims("theta2", theta2, n.theta2); err != nil {
		return err
	}
	n.theta1.Copy(theta1)
	n.theta2.Copy(theta2)
	return nil
}

func checkDims(name string, got mat.Matrix, want *mat.Dense) error {
	wr, wc := want.Dims()
	if got == nil {
		return &mnist.ShapeError{Op: "nn.SetParameters", Want: fmt.Sprintf("%s (%d, %d)", name, wr, wc), Got: "nil"}
	}
	gr, gc := got.Dims()
	if gr != wr || gc != wc {
		return &mnist.ShapeError{
			Op:   "nn.SetParameters",
			Want: fmt.Sprintf("%s (%d, %d)", name, wr, wc),
			Got:  fmt.Sprintf("(%d, %d)", gr, gc),
		}
	}
	return nil
}

// Theta1 returns a copy of the hidden layer parameters, bias in column 0.
func (n *Network) Theta1() *mat.Dense { return mat.DenseCopyOf(n.theta1) }

// Theta2 returns a copy of the output layer parameters, bias in column 0.
func (n *Network) Theta2() *mat.Dense { return mat.DenseCopyOf(n.theta2) }

// Weights1 returns a copy of theta1 without its bias column.
func (n *Network) Weights1() *mat.Dense { return mat.DenseCopyOf(weights(n.theta1)) }

// Weights2 returns a copy of theta2 without its bias column.
func (n *Network) Weights2() *mat.Dense { return mat.DenseCopyOf(weights(n.theta2)) }

// Output returns a copy of the output activations of the last forward pass.
func (n *Network) Output() *mat.Dense { return mat.DenseCopyOf(n.a3) }

// Hidden returns the hidden layer width.
func (n *Network) Hidden() int { return n.cfg.Hidden }

// Lambda returns the regularization strength.
func (n *Network) Lambda() float64 { return n.cfg.Lambda }

// Encoding returns the target layout.
func (n *Network) Encoding() LabelEncoding { return n.cfg.Encoding }

// Features returns the input width.
func (n *Network) Features() int { return n.ds.Features() }

// Len returns the number of training images.
func (n *Network) Len() int { return n.n }

// Steps returns the number of updates applied so far.
func (n *Network) Steps() int { return n.steps }

// weights returns a view of theta without the bias column.
func weights(theta *mat.Dense) *mat.Dense {
	r, c := theta.Dims()
	return theta.Slice(0, r, 1, c).(*mat.Dense)
}
