package nn

import (
	"fmt"

	"github.com/born-ml/mnistnet/internal/mnist"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Predict forward-propagates the training set and returns the fraction of
// images whose predicted class equals the label. Parameters are not changed.
func (n *Network) Predict() float64 {
	n.Forward()
	return accuracy(decodeRows(n.a3, n.cfg.Encoding), n.labels)
}

// Evaluate scores ds with the current parameters.
//
// Returns a mnist.ShapeError if ds has a different input width.
func (n *Network) Evaluate(ds *mnist.Dataset) (float64, error) {
	preds, err := n.Predictions(ds)
	if err != nil {
		return 0, err
	}
	return accuracy(preds, ds.Labels()), nil
}

// Predictions returns the predicted digit for each image of ds. Under
// BiasAligned the values range over 1..10.
func (n *Network) Predictions(ds *mnist.Dataset) ([]int, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, &mnist.ShapeError{Op: "nn.Predictions", Want: "non-empty dataset", Got: "no images"}
	}
	if ds.Features() != n.Features() {
		return nil, &mnist.ShapeError{
			Op:   "nn.Predictions",
			Want: fmt.Sprintf("%d features", n.Features()),
			Got:  fmt.Sprintf("%d features", ds.Features()),
		}
	}
	a2 := mat.NewDense(ds.Len(), n.cfg.Hidden, nil)
	a3 := mat.NewDense(ds.Len(), NumClasses, nil)
	forward(ds.Images(), n.theta1, n.theta2, a2, a3)
	return decodeRows(a3, n.cfg.Encoding), nil
}

// decodeRows takes the argmax of each row; ties resolve to the lowest index.
func decodeRows(a3 *mat.Dense, enc LabelEncoding) []int {
	rows, _ := a3.Dims()
	out := make([]int, rows)
	for i := range out {
		out[i] = decodeClass(floats.MaxIdx(a3.RawRowView(i)), enc)
	}
	return out
}

func accuracy(preds, labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	correct := 0
	for i, p := range preds {
		if p == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}
