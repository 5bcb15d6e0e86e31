package nn

import "math"

// Sigmoid computes the logistic function 1/(1+e^-x).
//
// Both branches only ever exponentiate a non-positive number, so large
// inputs of either sign saturate to 0 or 1 instead of overflowing.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// SigmoidGradient returns the derivative of the logistic function
// expressed in terms of its output a = Sigmoid(x).
func SigmoidGradient(a float64) float64 {
	return a * (1 - a)
}
