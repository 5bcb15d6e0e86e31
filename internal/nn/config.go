package nn

import (
	"fmt"
	"log"
	"strings"

	"github.com/born-ml/mnistnet/internal/mnist"
)

// Network defaults.
const (
	NumClasses          = mnist.NumClasses
	DefaultHidden       = 64
	DefaultInitEpsilon  = 0.12
	DefaultLearningRate = 1.0
)

// LabelEncoding selects how digit labels map onto the ten output units.
type LabelEncoding int

const (
	// OneHot maps digit d to output unit d.
	OneHot LabelEncoding = iota

	// BiasAligned reproduces the historical layout in which the target
	// matrix shared column 0 with the bias unit: output unit c stands for
	// digit c+1, digit 0 has an all-zero target row and can never be
	// predicted, and predictions range over 1..10.
	BiasAligned
)

// String returns the config name of the encoding.
func (e LabelEncoding) String() string {
	switch e {
	case OneHot:
		return "onehot"
	case BiasAligned:
		return "bias_aligned"
	default:
		return fmt.Sprintf("LabelEncoding(%d)", int(e))
	}
}

// ParseLabelEncoding parses "onehot" or "bias_aligned".
func ParseLabelEncoding(s string) (LabelEncoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "onehot", "one_hot":
		return OneHot, nil
	case "bias_aligned", "biasaligned", "legacy":
		return BiasAligned, nil
	default:
		return 0, fmt.Errorf("%w: unknown label encoding %q", ErrInvalidConfig, s)
	}
}

// NumericPolicy controls the response to non-finite costs and gradients.
type NumericPolicy int

const (
	// NumericIgnore lets NaN and Inf propagate silently.
	NumericIgnore NumericPolicy = iota
	// NumericWarn logs the first occurrence and keeps training.
	NumericWarn
	// NumericFail aborts the step with ErrNumericDegeneracy.
	NumericFail
)

// String returns the config name of the policy.
func (p NumericPolicy) String() string {
	switch p {
	case NumericIgnore:
		return "ignore"
	case NumericWarn:
		return "warn"
	case NumericFail:
		return "fail"
	default:
		return fmt.Sprintf("NumericPolicy(%d)", int(p))
	}
}

// ParseNumericPolicy parses "ignore", "warn" or "fail".
func ParseNumericPolicy(s string) (NumericPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return NumericIgnore, nil
	case "warn":
		return NumericWarn, nil
	case "fail", "strict":
		return NumericFail, nil
	default:
		return 0, fmt.Errorf("%w: unknown numeric policy %q", ErrInvalidConfig, s)
	}
}

// Config holds the hyperparameters of a Network.
//
// The zero value is usable: it selects DefaultHidden hidden units,
// DefaultInitEpsilon, DefaultLearningRate, no regularization, one-hot
// targets, a time-based seed and no clamping.
type Config struct {
	Hidden       int           // Hidden layer width (default: 64)
	Lambda       float64       // L2 regularization strength, 0 disables it
	LearningRate float64       // Scale applied to each gradient step (default: 1)
	InitEpsilon  float64       // Initial weights are drawn from U(-eps, eps) (default: 0.12)
	Seed         int64         // PRNG seed for initialization, 0 seeds from the clock
	Encoding     LabelEncoding // Target layout
	LogClamp     float64       // Clamp outputs into (c, 1-c) inside the cost, 0 disables
	Numeric      NumericPolicy // Non-finite handling
	Logger       *log.Logger   // Destination for numeric warnings (default: log.Default())
}

func (c Config) withDefaults() Config {
	if c.Hidden == 0 {
		c.Hidden = DefaultHidden
	}
	if c.LearningRate == 0 {
		c.LearningRate = DefaultLearningRate
	}
	if c.InitEpsilon == 0 {
		c.InitEpsilon = DefaultInitEpsilon
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// Validate reports whether the config describes a trainable network.
func (c Config) Validate() error {
	if c.Hidden < 0 {
		return fmt.Errorf("%w: hidden must be > 0 (got %d)", ErrInvalidConfig, c.Hidden)
	}
	if c.Lambda < 0 {
		return fmt.Errorf("%w: lambda must be >= 0 (got %g)", ErrInvalidConfig, c.Lambda)
	}
	if c.LearningRate < 0 {
		return fmt.Errorf("%w: learning rate must be > 0 (got %g)", ErrInvalidConfig, c.LearningRate)
	}
	if c.InitEpsilon < 0 {
		return fmt.Errorf("%w: init epsilon must be > 0 (got %g)", ErrInvalidConfig, c.InitEpsilon)
	}
	if c.LogClamp < 0 || c.LogClamp >= 0.5 {
		return fmt.Errorf("%w: log clamp must be in [0, 0.5) (got %g)", ErrInvalidConfig, c.LogClamp)
	}
	if c.Encoding != OneHot && c.Encoding != BiasAligned {
		return fmt.Errorf("%w: unknown label encoding %d", ErrInvalidConfig, int(c.Encoding))
	}
	if c.Numeric < NumericIgnore || c.Numeric > NumericFail {
		return fmt.Errorf("%w: unknown numeric policy %d", ErrInvalidConfig, int(c.Numeric))
	}
	return nil
}
