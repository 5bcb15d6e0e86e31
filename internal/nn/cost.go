package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Cost returns the regularized cross-entropy of the activations from the
// most recent forward pass. It does not forward-propagate itself.
//
//	J = 1/N Σ_i Σ_k [-y log(a3) - (1-y) log(1-a3)]
//	  + lambda/(2N) (Σ W1² + Σ W2²)
//
// Bias weights are excluded from the penalty. With LogClamp > 0, a3 is
// clamped into [c, 1-c] before taking logs so saturated units give a
// finite cost.
func (n *Network) Cost() float64 {
	var total float64
	clamp := n.cfg.LogClamp
	for i := 0; i < n.n; i++ {
		h := n.a3.RawRowView(i)
		y := n.y.RawRowView(i)
		for k, p := range h {
			if clamp > 0 {
				p = math.Min(math.Max(p, clamp), 1-clamp)
			}
			total += -y[k]*math.Log(p) - (1-y[k])*math.Log(1-p)
		}
	}
	m := float64(n.n)
	cost := total / m

	if n.cfg.Lambda != 0 {
		cost += n.cfg.Lambda / (2 * m) * (sumSquares(weights(n.theta1)) + sumSquares(weights(n.theta2)))
	}
	return cost
}

// CheckedCost is Cost followed by the numeric policy check.
func (n *Network) CheckedCost() (float64, error) {
	c := n.Cost()
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return c, n.degenerate("cost")
	}
	return c, nil
}

func sumSquares(m *mat.Dense) float64 {
	var s float64
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		s += floats.Dot(row, row)
	}
	return s
}
