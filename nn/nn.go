// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/mnistnet/internal/mnist"
	"github.com/born-ml/mnistnet/internal/nn"
)

// Network is a two-layer sigmoid classifier bound to one dataset.
type Network = nn.Network

// Config holds the network hyperparameters.
type Config = nn.Config

// Checkpoint is a snapshot of a Network's parameters and training state.
type Checkpoint = nn.Checkpoint

// ProgressFunc is called after every training step.
type ProgressFunc = nn.ProgressFunc

// LabelEncoding selects how digits map to output units.
type LabelEncoding = nn.LabelEncoding

// Label encodings.
const (
	OneHot      = nn.OneHot
	BiasAligned = nn.BiasAligned
)

// NumericPolicy controls the reaction to NaN or Inf values.
type NumericPolicy = nn.NumericPolicy

// Numeric policies.
const (
	NumericIgnore = nn.NumericIgnore
	NumericWarn   = nn.NumericWarn
	NumericFail   = nn.NumericFail
)

// Defaults.
const (
	NumClasses          = nn.NumClasses
	DefaultHidden       = nn.DefaultHidden
	DefaultInitEpsilon  = nn.DefaultInitEpsilon
	DefaultLearningRate = nn.DefaultLearningRate
)

// Errors.
var (
	ErrInvalidConfig     = nn.ErrInvalidConfig
	ErrNumericDegeneracy = nn.ErrNumericDegeneracy
)

// New creates a network for ds with randomly initialized parameters.
//
// Example:
//
//	net, err := nn.New(ds, nn.Config{Hidden: 64, Lambda: 0.1, Seed: 42})
func New(ds *mnist.Dataset, cfg Config) (*Network, error) {
	return nn.New(ds, cfg)
}

// Load restores a network saved with Network.Save and binds it to ds.
func Load(path string, ds *mnist.Dataset, cfg Config) (*Network, error) {
	return nn.Load(path, ds, cfg)
}

// LoadCheckpoint reads a checkpoint without binding it to a dataset.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	return nn.LoadCheckpoint(path)
}

// ParseLabelEncoding parses "onehot" or "bias_aligned".
func ParseLabelEncoding(s string) (LabelEncoding, error) {
	return nn.ParseLabelEncoding(s)
}

// ParseNumericPolicy parses "ignore", "warn" or "fail".
func ParseNumericPolicy(s string) (NumericPolicy, error) {
	return nn.ParseNumericPolicy(s)
}

// Sigmoid returns 1/(1+e^-x).
func Sigmoid(x float64) float64 {
	return nn.Sigmoid(x)
}

// SigmoidGradient returns a(1-a) for an activation a.
func SigmoidGradient(a float64) float64 {
	return nn.SigmoidGradient(a)
}
