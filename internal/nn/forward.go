package nn

import "gonum.org/v1/gonum/mat"

// Forward recomputes a2 and a3 from the current parameters.
func (n *Network) Forward() {
	forward(n.a1, n.theta1, n.theta2, n.a2, n.a3)
}

// forward computes a2 = sigmoid(a1·W1ᵀ + b1) and a3 = sigmoid(a2·W2ᵀ + b2)
// into the preallocated a2 and a3.
func forward(a1 mat.Matrix, theta1, theta2, a2, a3 *mat.Dense) {
	a2.Mul(a1, weights(theta1).T())
	biasSigmoid(a2, theta1)
	a3.Mul(a2, weights(theta2).T())
	biasSigmoid(a3, theta2)
}

// biasSigmoid adds the bias column of theta to every row of z and applies
// the sigmoid in place.
func biasSigmoid(z, theta *mat.Dense) {
	bias := mat.Col(nil, 0, theta)
	rows, _ := z.Dims()
	for i := 0; i < rows; i++ {
		row := z.RawRowView(i)
		for j := range row {
			row[j] = Sigmoid(row[j] + bias[j])
		}
	}
}
