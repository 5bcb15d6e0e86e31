package nn

import (
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Uniform creates a (rows, cols) matrix with entries drawn from U(-eps, eps).
//
// Parameters:
//   - rows, cols: Shape of the matrix
//   - eps: Half-width of the sampling interval
//   - rng: Source of randomness
//
// Returns a freshly allocated matrix.
func Uniform(rows, cols int, eps float64, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2.0 - 1.0) * eps
	}
	return mat.NewDense(rows, cols, data)
}

// newRand returns a PRNG for seed, falling back to the clock when seed is 0.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	return rand.New(rand.NewSource(seed))
}
