// Package config loads training run settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/born-ml/mnistnet/internal/mnist"
	"github.com/born-ml/mnistnet/internal/nn"
	"gopkg.in/yaml.v3"
)

// Defaults reproduce the reference training run.
const (
	DefaultSteps        = 10000
	DefaultHidden       = 64
	DefaultLambda       = 0.1
	DefaultLearningRate = 1.0
	DefaultLogEvery     = 100
)

// Config captures the runtime knobs for a training run.
type Config struct {
	DataDir       string  `yaml:"data_dir"`
	TrainImages   string  `yaml:"train_images"`
	TrainLabels   string  `yaml:"train_labels"`
	TestImages    string  `yaml:"test_images"`
	TestLabels    string  `yaml:"test_labels"`
	MaxSamples    int     `yaml:"max_samples"`
	Steps         int     `yaml:"steps"`
	Hidden        int     `yaml:"hidden"`
	Lambda        float64 `yaml:"lambda"`
	LearningRate  float64 `yaml:"learning_rate"`
	Seed          int64   `yaml:"seed"`
	LogEvery      int     `yaml:"log_every"`
	LabelEncoding string  `yaml:"label_encoding"`
	LogClamp      float64 `yaml:"log_clamp"`
	Numeric       string  `yaml:"numeric"`
	Checkpoint    string  `yaml:"checkpoint"`
	WeightsDir    string  `yaml:"weights_dir"`
	SkipMagic     bool    `yaml:"skip_magic"`
}

// Overrides captures CLI supplied values. Zero values leave the config unchanged.
type Overrides struct {
	DataDir       string
	MaxSamples    int
	Steps         int
	Hidden        int
	Lambda        *float64
	LearningRate  float64
	Seed          int64
	LogEvery      int
	LabelEncoding string
	Numeric       string
	Checkpoint    string
	WeightsDir    string
	SkipMagic     bool
}

// Default returns the reference configuration reading from dir.
func Default(dir string) *Config {
	return &Config{
		DataDir:      dir,
		Steps:        DefaultSteps,
		Hidden:       DefaultHidden,
		Lambda:       DefaultLambda,
		LearningRate: DefaultLearningRate,
		LogEvery:     DefaultLogEvery,
	}
}

// Load reads a Config from YAML. Keys missing from the file keep their
// defaults. The result is not validated so that overrides can be applied
// first.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.MaxSamples > 0 {
		c.MaxSamples = o.MaxSamples
	}
	if o.Steps > 0 {
		c.Steps = o.Steps
	}
	if o.Hidden > 0 {
		c.Hidden = o.Hidden
	}
	if o.Lambda != nil {
		c.Lambda = *o.Lambda
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.LabelEncoding != "" {
		c.LabelEncoding = o.LabelEncoding
	}
	if o.Numeric != "" {
		c.Numeric = o.Numeric
	}
	if o.Checkpoint != "" {
		c.Checkpoint = o.Checkpoint
	}
	if o.WeightsDir != "" {
		c.WeightsDir = o.WeightsDir
	}
	if o.SkipMagic {
		c.SkipMagic = true
	}
}

// Validate verifies the config is runnable and fills derived defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataDir == "" && (c.TrainImages == "" || c.TrainLabels == "") {
		return errors.New("data_dir or both train_images and train_labels must be set")
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must be >= 0 (got %d)", c.Steps)
	}
	if c.Hidden <= 0 {
		return fmt.Errorf("hidden must be > 0 (got %d)", c.Hidden)
	}
	if c.Lambda < 0 {
		return fmt.Errorf("lambda must be >= 0 (got %g)", c.Lambda)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples must be >= 0 (got %d)", c.MaxSamples)
	}
	if _, err := nn.ParseLabelEncoding(c.LabelEncoding); err != nil {
		return err
	}
	if _, err := nn.ParseNumericPolicy(c.Numeric); err != nil {
		return err
	}
	if c.LogEvery <= 0 {
		c.LogEvery = DefaultLogEvery
	}
	return c.Network().Validate()
}

// Network returns the network hyperparameters. Unparseable enum values
// fall back to their defaults; Validate reports them.
func (c *Config) Network() nn.Config {
	enc, _ := nn.ParseLabelEncoding(c.LabelEncoding)
	policy, _ := nn.ParseNumericPolicy(c.Numeric)
	return nn.Config{
		Hidden:       c.Hidden,
		Lambda:       c.Lambda,
		LearningRate: c.LearningRate,
		Seed:         c.Seed,
		Encoding:     enc,
		LogClamp:     c.LogClamp,
		Numeric:      policy,
	}
}

// Decode returns the IDX decoder options.
func (c *Config) Decode() mnist.DecodeOptions {
	return mnist.DecodeOptions{SkipMagicCheck: c.SkipMagic}
}

// Paths returns the image and label files for split. Explicit paths win
// over the standard names under DataDir.
func (c *Config) Paths(split mnist.Set) (images, labels string) {
	images, labels = split.Files()
	images, labels = filepath.Join(c.DataDir, images), filepath.Join(c.DataDir, labels)
	switch split {
	case mnist.TrainSet:
		images, labels = orDefault(c.TrainImages, images), orDefault(c.TrainLabels, labels)
	case mnist.TestSet:
		images, labels = orDefault(c.TestImages, images), orDefault(c.TestLabels, labels)
	}
	return images, labels
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
