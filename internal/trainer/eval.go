package trainer

import (
	"fmt"
	"log"

	"github.com/born-ml/mnistnet/internal/mnist"
	"github.com/born-ml/mnistnet/internal/nn"
)

// EvalConfig selects a checkpoint and the data to score it on.
type EvalConfig struct {
	Checkpoint string
	Images     string
	Labels     string
	MaxSamples int
	Decode     mnist.DecodeOptions
}

// EvalReport is the result of Evaluate.
type EvalReport struct {
	RunID    string // Run that produced the checkpoint, if recorded
	Step     int64
	Samples  int
	Accuracy float64
}

// Evaluate scores a saved checkpoint on a dataset.
func Evaluate(cfg EvalConfig, logger *log.Logger) (*EvalReport, error) {
	if logger == nil {
		logger = log.Default()
	}
	ds, err := loadSet("eval", cfg.Images, cfg.Labels, cfg.MaxSamples, cfg.Decode, logger)
	if err != nil {
		return nil, err
	}
	cp, err := nn.LoadCheckpoint(cfg.Checkpoint)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	net, err := nn.New(ds, nn.Config{Hidden: cp.Hidden(), Encoding: cp.Encoding, Seed: 1, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	if err := net.SetParameters(cp.Theta1, cp.Theta2); err != nil {
		return nil, fmt.Errorf("trainer: checkpoint %s: %w", cfg.Checkpoint, err)
	}

	report := &EvalReport{
		RunID:    cp.Metadata["run_id"],
		Step:     cp.Step,
		Samples:  ds.Len(),
		Accuracy: net.Predict(),
	}
	logger.Printf("checkpoint=%s run=%s step=%d accuracy=%.4f samples=%d",
		cfg.Checkpoint, report.RunID, report.Step, report.Accuracy, report.Samples)
	return report, nil
}
