// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mnist reads and writes MNIST datasets in the IDX format.
package mnist

import (
	"github.com/born-ml/mnistnet/internal/mnist"
	"gonum.org/v1/gonum/mat"
)

// Dataset holds normalized images and their labels.
type Dataset = mnist.Dataset

// Set selects one of the two standard MNIST splits.
type Set = mnist.Set

// Splits.
const (
	TrainSet = mnist.TrainSet
	TestSet  = mnist.TestSet
)

// NumClasses is the number of digit classes.
const NumClasses = mnist.NumClasses

// DecodeOptions controls IDX decoding.
type DecodeOptions = mnist.DecodeOptions

// Error types.
type (
	IOError     = mnist.IOError
	DecodeError = mnist.DecodeError
	ShapeError  = mnist.ShapeError
)

// Errors.
var (
	ErrTruncated     = mnist.ErrTruncated
	ErrBadMagic      = mnist.ErrBadMagic
	ErrShapeMismatch = mnist.ErrShapeMismatch
	ErrLabelRange    = mnist.ErrLabelRange
	ErrTooLarge      = mnist.ErrTooLarge
	ErrEmpty         = mnist.ErrEmpty
)

// New builds a dataset from an (N, width*height) image matrix.
func New(images *mat.Dense, labels []int, width, height int) (*Dataset, error) {
	return mnist.New(images, labels, width, height)
}

// Load reads an image file and its label file.
func Load(imagesPath, labelsPath string, opts DecodeOptions) (*Dataset, error) {
	return mnist.Load(imagesPath, labelsPath, opts)
}

// LoadSplit reads a split stored under its standard file names in dir.
//
// Example:
//
//	train, err := mnist.LoadSplit("data", mnist.TrainSet, mnist.DecodeOptions{})
func LoadSplit(dir string, split Set, opts DecodeOptions) (*Dataset, error) {
	return mnist.LoadSplit(dir, split, opts)
}

// ReadLabels reads an IDX1 label file.
func ReadLabels(path string, opts DecodeOptions) ([]int, error) {
	return mnist.ReadLabels(path, opts)
}

// ReadImages reads an IDX3 image file, scaling pixels to [0, 1].
func ReadImages(path string, opts DecodeOptions) (*mat.Dense, int, int, error) {
	return mnist.ReadImages(path, opts)
}
