// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a two-layer sigmoid network for MNIST digit
// classification.
//
// # Overview
//
// The network maps every image in a dataset to ten class scores through
// one hidden layer:
//
//	a2 = sigmoid(a1·W1ᵀ + b1)
//	a3 = sigmoid(a2·W2ᵀ + b2)
//
// Each parameter matrix (Theta1, Theta2) stores its bias in column 0.
// Training is full-batch gradient descent on the regularized
// cross-entropy cost.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mnistnet/mnist"
//	    "github.com/born-ml/mnistnet/nn"
//	)
//
//	func main() {
//	    ds, err := mnist.LoadSplit("data", mnist.TrainSet, mnist.DecodeOptions{})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    net, err := nn.New(ds, nn.Config{Hidden: 64, Lambda: 0.1})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := net.Train(10000, nil); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("accuracy: %.2f%%\n", net.Predict()*100)
//	}
//
// # Label Encodings
//
// OneHot maps digit d to target unit d. BiasAligned reproduces the
// legacy layout where unit c stands for digit c+1 and digit 0 has an
// all-zero target row.
//
// # Checkpoints
//
// Save and LoadCheckpoint use the .born format: a fixed header, a JSON
// description of every matrix and a 64-byte aligned data section
// protected by SHA-256.
package nn
