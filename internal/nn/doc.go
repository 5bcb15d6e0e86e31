// Package nn implements a two-layer sigmoid classifier for MNIST trained
// by full-batch gradient descent on gonum matrices.
//
// One training step runs Forward, Gradient and a parameter update:
//
//	a2 = sigmoid(a1·W1ᵀ + b1)
//	a3 = sigmoid(a2·W2ᵀ + b2)
//	theta -= LearningRate · dTheta
//
// Cost and Gradient both read the activations left by the last Forward.
package nn
