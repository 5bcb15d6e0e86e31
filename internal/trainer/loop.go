package trainer

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"github.com/born-ml/mnistnet/internal/config"
	"github.com/born-ml/mnistnet/internal/metrics"
	"github.com/born-ml/mnistnet/internal/mnist"
	"github.com/born-ml/mnistnet/internal/nn"
	"github.com/born-ml/mnistnet/internal/render"
	"github.com/google/uuid"
	"github.com/klauspost/cpuid/v2"
)

// Padding between weight tiles in the rendered PNGs.
const tilePadding = 2

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	TrainImages string
	TrainLabels string
	TestImages  string // Optional; empty skips test evaluation
	TestLabels  string
	MaxSamples  int // 0 uses every image
	Steps       int
	LogEvery    int
	Network     nn.Config
	Checkpoint  string // Optional .born output path
	WeightsDir  string // Optional directory for theta1.png and theta2.png
	Decode      mnist.DecodeOptions
}

// FromConfig converts a validated config into a RunConfig.
func FromConfig(c *config.Config) RunConfig {
	trainImages, trainLabels := c.Paths(mnist.TrainSet)
	testImages, testLabels := c.Paths(mnist.TestSet)
	return RunConfig{
		TrainImages: trainImages,
		TrainLabels: trainLabels,
		TestImages:  testImages,
		TestLabels:  testLabels,
		MaxSamples:  c.MaxSamples,
		Steps:       c.Steps,
		LogEvery:    c.LogEvery,
		Network:     c.Network(),
		Checkpoint:  c.Checkpoint,
		WeightsDir:  c.WeightsDir,
		Decode:      c.Decode(),
	}
}

// Report summarizes a finished run.
type Report struct {
	RunID         string
	Steps         int
	FinalCost     float64
	TrainAccuracy float64
	TestAccuracy  float64
	TestSamples   int
	Elapsed       time.Duration
	Files         []string // Checkpoint and images written
}

// Run loads the data, trains for cfg.Steps full-batch steps, scores the
// training and test sets and writes the optional outputs.
func Run(cfg RunConfig, logger *log.Logger) (*Report, error) {
	if cfg.Steps < 0 {
		return nil, errors.New("trainer: steps must be >= 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = config.DefaultLogEvery
	}
	if logger == nil {
		logger = log.Default()
	}
	cfg.Network.Logger = logger

	start := time.Now()
	report := &Report{RunID: uuid.NewString(), Steps: cfg.Steps}
	logger.Printf("run=%s cpu=%q cores=%d avx2=%t", report.RunID, cpuid.CPU.BrandName,
		cpuid.CPU.PhysicalCores, cpuid.CPU.Supports(cpuid.AVX2))

	train, err := loadSet("train", cfg.TrainImages, cfg.TrainLabels, cfg.MaxSamples, cfg.Decode, logger)
	if err != nil {
		return nil, err
	}
	var test *mnist.Dataset
	if cfg.TestImages != "" {
		test, err = loadSet("test", cfg.TestImages, cfg.TestLabels, cfg.MaxSamples, cfg.Decode, logger)
		if err != nil {
			return nil, err
		}
	}

	net, err := nn.New(train, cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	logger.Printf("hidden=%d lambda=%g learning_rate=%g encoding=%s steps=%d",
		net.Hidden(), net.Lambda(), cfg.Network.LearningRate, net.Encoding(), cfg.Steps)

	var (
		window metrics.Window
		last   = time.Now()
	)
	// Step already applied the numeric policy to this cost.
	err = net.Train(cfg.Steps, func(step, total int) {
		now := time.Now()
		cost := net.Cost()
		window.Record(train.Len(), now.Sub(last), cost)
		last = now
		report.FinalCost = cost

		if step%cfg.LogEvery == 0 || step == total-1 {
			snap := window.Snapshot()
			logger.Printf("step=%d/%d cost=%.6f steps_per_sec=%.2f images_per_sec=%.1f step_ms=%.2f",
				step, total, snap.LastCost, snap.StepsPerSec, snap.ImagesPerSec, snap.AvgStepMS)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}

	report.TrainAccuracy = net.Predict()
	logger.Printf("train_accuracy=%.4f samples=%d", report.TrainAccuracy, train.Len())
	if test != nil {
		report.TestAccuracy, err = net.Evaluate(test)
		if err != nil {
			return nil, fmt.Errorf("trainer: evaluate test set: %w", err)
		}
		report.TestSamples = test.Len()
		logger.Printf("test_accuracy=%.4f samples=%d", report.TestAccuracy, test.Len())
	}

	if cfg.Checkpoint != "" {
		meta := map[string]string{
			"run_id":         report.RunID,
			"cpu":            cpuid.CPU.BrandName,
			"train_images":   cfg.TrainImages,
			"train_accuracy": strconv.FormatFloat(report.TrainAccuracy, 'f', 6, 64),
		}
		if err := net.Save(cfg.Checkpoint, meta); err != nil {
			return nil, fmt.Errorf("trainer: %w", err)
		}
		report.Files = append(report.Files, cfg.Checkpoint)
		logger.Printf("checkpoint=%s", cfg.Checkpoint)
	}

	if cfg.WeightsDir != "" {
		files, err := writeWeights(cfg.WeightsDir, net, train)
		if err != nil {
			return nil, fmt.Errorf("trainer: %w", err)
		}
		report.Files = append(report.Files, files...)
		logger.Printf("weights=%v", files)
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

func loadSet(name, images, labels string, maxSamples int, opts mnist.DecodeOptions, logger *log.Logger) (*mnist.Dataset, error) {
	ds, err := mnist.Load(images, labels, opts)
	if err != nil {
		return nil, fmt.Errorf("trainer: load %s set: %w", name, err)
	}
	ds = ds.Head(maxSamples)
	logger.Printf("set=%s images=%d size=%dx%d", name, ds.Len(), ds.Width(), ds.Height())
	return ds, nil
}

// writeWeights renders theta1 with image-sized tiles and theta2 with
// tiles shaped from the hidden width.
func writeWeights(dir string, net *nn.Network, ds *mnist.Dataset) ([]string, error) {
	theta1 := filepath.Join(dir, "theta1.png")
	if err := render.WriteWeightPNG(theta1, net.Weights1(), ds.Width(), ds.Height(), tilePadding, tilePadding); err != nil {
		return nil, err
	}
	w, h := render.TileShape(net.Hidden())
	theta2 := filepath.Join(dir, "theta2.png")
	if err := render.WriteWeightPNG(theta2, net.Weights2(), w, h, tilePadding, tilePadding); err != nil {
		return nil, err
	}
	return []string{theta1, theta2}, nil
}
