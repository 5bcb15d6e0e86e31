// Package main provides the mnistnet CLI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/born-ml/mnistnet/internal/config"
	"github.com/born-ml/mnistnet/internal/mnist"
	"github.com/born-ml/mnistnet/internal/nn"
	"github.com/born-ml/mnistnet/internal/trainer"
)

const version = nn.Version

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, log.New(os.Stderr, "", log.LstdFlags)); err != nil {
		if !errors.Is(err, errUsage) {
			log.Printf("error: %v", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, logger *log.Logger) error {
	if len(args) == 0 {
		printUsage(stdout)
		return errUsage
	}
	switch args[0] {
	case "train":
		return trainCmd(args[1:], stdout, logger)
	case "eval":
		return evalCmd(args[1:], stdout, logger)
	case "version":
		fmt.Fprintf(stdout, "mnistnet %s\n", version)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stdout, "unknown command %q\n\n", args[0])
		printUsage(stdout)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "mnistnet - two-layer sigmoid MNIST classifier")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train      Train on the MNIST training set and score the test set")
	fmt.Fprintln(w, "  eval       Score a saved checkpoint on a split")
	fmt.Fprintln(w, "  version    Show version")
}

func trainCmd(args []string, stdout io.Writer, logger *log.Logger) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stdout)
	cfgPath := fs.String("config", "", "Path to YAML config")
	dataDir := fs.String("data", "", "Directory holding the MNIST idx files")
	steps := fs.Int("steps", 0, "Number of gradient descent steps")
	hidden := fs.Int("hidden", 0, "Hidden layer width")
	lambda := fs.Float64("lambda", 0, "L2 regularization strength")
	lr := fs.Float64("lr", 0, "Learning rate")
	seed := fs.Int64("seed", 0, "PRNG seed for initialization")
	logEvery := fs.Int("log-every", 0, "Log every N steps")
	maxSamples := fs.Int("max-samples", 0, "Use only the first N images of each split")
	encoding := fs.String("encoding", "", "Label encoding: onehot or bias_aligned")
	numeric := fs.String("numeric", "", "Non-finite policy: ignore, warn or fail")
	checkpoint := fs.String("checkpoint", "", "Write the trained parameters to this .born file")
	weightsDir := fs.String("weights", "", "Write theta1.png and theta2.png to this directory")
	skipMagic := fs.Bool("skip-magic", false, "Do not check idx magic numbers")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg := config.Default("")
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	overrides := config.Overrides{
		DataDir:       *dataDir,
		MaxSamples:    *maxSamples,
		Steps:         *steps,
		Hidden:        *hidden,
		LearningRate:  *lr,
		Seed:          *seed,
		LogEvery:      *logEvery,
		LabelEncoding: *encoding,
		Numeric:       *numeric,
		Checkpoint:    *checkpoint,
		WeightsDir:    *weightsDir,
		SkipMagic:     *skipMagic,
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lambda" {
			overrides.Lambda = lambda
		}
	})
	cfg.ApplyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	report, err := trainer.Run(trainer.FromConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	fmt.Fprintf(stdout, "run:            %s\n", report.RunID)
	fmt.Fprintf(stdout, "steps:          %d\n", report.Steps)
	fmt.Fprintf(stdout, "final cost:     %.6f\n", report.FinalCost)
	fmt.Fprintf(stdout, "train accuracy: %.2f%%\n", report.TrainAccuracy*100)
	if report.TestSamples > 0 {
		fmt.Fprintf(stdout, "test accuracy:  %.2f%%\n", report.TestAccuracy*100)
	}
	fmt.Fprintf(stdout, "elapsed:        %s\n", report.Elapsed.Round(1e6))
	return nil
}

func evalCmd(args []string, stdout io.Writer, logger *log.Logger) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(stdout)
	checkpoint := fs.String("checkpoint", "", "Path to a .born checkpoint")
	dataDir := fs.String("data", "", "Directory holding the MNIST idx files")
	split := fs.String("split", "test", "Split to score: train or test")
	maxSamples := fs.Int("max-samples", 0, "Use only the first N images")
	skipMagic := fs.Bool("skip-magic", false, "Do not check idx magic numbers")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *checkpoint == "" || *dataDir == "" {
		fmt.Fprintln(stdout, "eval requires -checkpoint and -data")
		return errUsage
	}

	var set mnist.Set
	switch *split {
	case "train":
		set = mnist.TrainSet
	case "test":
		set = mnist.TestSet
	default:
		return fmt.Errorf("unknown split %q", *split)
	}
	images, labels := config.Default(*dataDir).Paths(set)

	report, err := trainer.Evaluate(trainer.EvalConfig{
		Checkpoint: *checkpoint,
		Images:     images,
		Labels:     labels,
		MaxSamples: *maxSamples,
		Decode:     mnist.DecodeOptions{SkipMagicCheck: *skipMagic},
	}, logger)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	fmt.Fprintf(stdout, "%s accuracy: %.2f%% (%d images)\n", set, report.Accuracy*100, report.Samples)
	return nil
}
