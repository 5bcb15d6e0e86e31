package nn

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Gradient computes dTheta1 and dTheta2 by backpropagation from the
// activations of the most recent forward pass.
//
//	delta3  = a3 - y
//	dTheta2 = [colsum(delta3) | delta3ᵀ·a2] / N
//	delta2  = (delta3·W2) ⊙ a2 ⊙ (1 - a2)
//	dTheta1 = [colsum(delta2) | delta2ᵀ·a1] / N
//
// With lambda != 0 the weight columns additionally receive lambda/N · W.
// The bias column is never regularized.
func (n *Network) Gradient() {
	m := float64(n.n)

	n.delta3.Sub(n.a3, n.y)
	biasGrad(n.dTheta2, n.delta3, m)
	dw2 := weights(n.dTheta2)
	dw2.Mul(n.delta3.T(), n.a2)
	dw2.Scale(1/m, dw2)

	n.delta2.Mul(n.delta3, weights(n.theta2))
	for i := 0; i < n.n; i++ {
		d := n.delta2.RawRowView(i)
		a := n.a2.RawRowView(i)
		for j := range d {
			d[j] *= SigmoidGradient(a[j])
		}
	}
	biasGrad(n.dTheta1, n.delta2, m)
	dw1 := weights(n.dTheta1)
	dw1.Mul(n.delta2.T(), n.a1)
	dw1.Scale(1/m, dw1)

	if n.cfg.Lambda != 0 {
		dw1.AddScaled(dw1, n.cfg.Lambda/m, weights(n.theta1))
		dw2.AddScaled(dw2, n.cfg.Lambda/m, weights(n.theta2))
	}
}

// Gradients returns copies of the last computed gradients.
func (n *Network) Gradients() (dTheta1, dTheta2 *mat.Dense) {
	return mat.DenseCopyOf(n.dTheta1), mat.DenseCopyOf(n.dTheta2)
}

// biasGrad writes colsum(delta)/m into column 0 of dTheta.
func biasGrad(dTheta, delta *mat.Dense, m float64) {
	rows, cols := delta.Dims()
	sums := make([]float64, cols)
	for i := 0; i < rows; i++ {
		floats.Add(sums, delta.RawRowView(i))
	}
	floats.Scale(1/m, sums)
	dTheta.SetCol(0, sums)
}
