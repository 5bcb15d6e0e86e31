package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ProgressFunc is called after every update with the zero-based step index
// and the total number of steps requested.
type ProgressFunc func(step, total int)

// Step performs one full-batch gradient descent update:
// forward, gradient, theta -= LearningRate · dTheta.
//
// Unless the policy is NumericIgnore, the cost at the pre-update
// activations is checked as well. Under NumericFail a non-finite cost or
// gradient aborts the step before the parameters are touched and
// ErrNumericDegeneracy is returned.
func (n *Network) Step() error {
	n.Forward()
	if n.cfg.Numeric != NumericIgnore {
		if _, err := n.CheckedCost(); err != nil {
			return err
		}
	}
	n.Gradient()
	if !allFinite(n.dTheta1) || !allFinite(n.dTheta2) {
		if err := n.degenerate("gradient"); err != nil {
			return err
		}
	}
	lr := n.cfg.LearningRate
	n.theta1.AddScaled(n.theta1, -lr, n.dTheta1)
	n.theta2.AddScaled(n.theta2, -lr, n.dTheta2)
	n.steps++
	return nil
}

// Train runs exactly steps updates, invoking progress (if non-nil) after
// each one. There is no early stopping. A nil return means every step ran.
func (n *Network) Train(steps int, progress ProgressFunc) error {
	if steps < 0 {
		return fmt.Errorf("%w: steps must be >= 0 (got %d)", ErrInvalidConfig, steps)
	}
	for i := 0; i < steps; i++ {
		if err := n.Step(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if progress != nil {
			progress(i, steps)
		}
	}
	return nil
}

// degenerate applies the numeric policy to a non-finite value found in stage.
func (n *Network) degenerate(stage string) error {
	switch n.cfg.Numeric {
	case NumericFail:
		return fmt.Errorf("%w in %s after %d steps", ErrNumericDegeneracy, stage, n.steps)
	case NumericWarn:
		if !n.warned {
			n.warned = true
			n.logger.Printf("nn: warning: non-finite %s after %d steps", stage, n.steps)
		}
	}
	return nil
}

func allFinite(m *mat.Dense) bool {
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		for _, v := range m.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
