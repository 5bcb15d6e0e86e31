// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"path/filepath"
	"testing"

	"github.com/born-ml/mnistnet/mnist"
	"github.com/born-ml/mnistnet/nn"
	"gonum.org/v1/gonum/mat"
)

func dataset(t *testing.T) *mnist.Dataset {
	t.Helper()
	images := mat.NewDense(10, 4, nil)
	labels := make([]int, 10)
	for i := range labels {
		labels[i] = i
		images.Set(i, i%4, 1)
	}
	ds, err := mnist.New(images, labels, 2, 2)
	if err != nil {
		t.Fatalf("mnist.New: %v", err)
	}
	return ds
}

// TestPublicAPI trains, saves and reloads a network through the facades.
func TestPublicAPI(t *testing.T) {
	ds := dataset(t)
	net, err := nn.New(ds, nn.Config{Hidden: 5, Seed: 7, Encoding: nn.OneHot})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := net.Train(5, nil); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if got := net.Steps(); got != 5 {
		t.Errorf("Steps() = %d, want 5", got)
	}

	path := filepath.Join(t.TempDir(), "net.born")
	if err := net.Save(path, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cp, err := nn.LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if cp.Hidden() != 5 || cp.Features() != 4 {
		t.Errorf("checkpoint shape = (%d, %d), want (5, 4)", cp.Hidden(), cp.Features())
	}

	restored, err := nn.Load(path, ds, nn.Config{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := restored.Predict(), net.Predict(); got != want {
		t.Errorf("restored accuracy = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	enc, err := nn.ParseLabelEncoding("bias_aligned")
	if err != nil || enc != nn.BiasAligned {
		t.Errorf("ParseLabelEncoding = %v, %v", enc, err)
	}
	policy, err := nn.ParseNumericPolicy("fail")
	if err != nil || policy != nn.NumericFail {
		t.Errorf("ParseNumericPolicy = %v, %v", policy, err)
	}
	if nn.Sigmoid(0) != 0.5 {
		t.Errorf("Sigmoid(0) = %v", nn.Sigmoid(0))
	}
	if nn.SigmoidGradient(0.5) != 0.25 {
		t.Errorf("SigmoidGradient(0.5) = %v", nn.SigmoidGradient(0.5))
	}
}
