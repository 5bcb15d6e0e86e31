package trainer

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/mnistnet/internal/config"
	"github.com/born-ml/mnistnet/internal/mnist"
	"github.com/born-ml/mnistnet/internal/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// writeSplit writes n 4x3 images for split under dir; image i lights
// pixel label and pixel 11.
func writeSplit(t *testing.T, dir string, split mnist.Set, n int) {
	t.Helper()
	images := mat.NewDense(n, 12, nil)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i % mnist.NumClasses
		images.Set(i, labels[i], 1)
		images.Set(i, 11, 0.5)
	}
	ds, err := mnist.New(images, labels, 4, 3)
	require.NoError(t, err)
	imagesName, labelsName := split.Files()
	require.NoError(t, ds.Save(filepath.Join(dir, imagesName), filepath.Join(dir, labelsName)))
}

func TestRunAndEvaluate(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, mnist.TrainSet, 30)
	writeSplit(t, dir, mnist.TestSet, 10)

	cfg := config.Default(dir)
	cfg.ApplyOverrides(config.Overrides{
		Steps:      20,
		Hidden:     6,
		LogEvery:   5,
		Seed:       3,
		Checkpoint: filepath.Join(dir, "net.born"),
		WeightsDir: dir,
	})
	require.NoError(t, cfg.Validate())

	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)
	report, err := Run(FromConfig(cfg), logger)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 20, report.Steps)
	assert.Equal(t, 10, report.TestSamples)
	assert.Greater(t, report.FinalCost, 0.0)
	assert.GreaterOrEqual(t, report.TrainAccuracy, 0.0)
	assert.LessOrEqual(t, report.TrainAccuracy, 1.0)
	assert.Len(t, report.Files, 3)
	for _, f := range report.Files {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}

	out := logs.String()
	for _, want := range []string{"step=0/20", "step=5/20", "step=19/20", "train_accuracy=", "test_accuracy=", "hidden=6"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "step=6/20")

	evalReport, err := Evaluate(EvalConfig{
		Checkpoint: cfg.Checkpoint,
		Images:     filepath.Join(dir, "t10k-images-idx3-ubyte"),
		Labels:     filepath.Join(dir, "t10k-labels-idx1-ubyte"),
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, evalReport.RunID)
	assert.Equal(t, int64(20), evalReport.Step)
	assert.Equal(t, report.TestAccuracy, evalReport.Accuracy)
}

func TestRun_MaxSamplesAndNoTest(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, mnist.TrainSet, 30)

	var logs bytes.Buffer
	report, err := Run(RunConfig{
		TrainImages: filepath.Join(dir, "train-images-idx3-ubyte"),
		TrainLabels: filepath.Join(dir, "train-labels-idx1-ubyte"),
		MaxSamples:  10,
		Steps:       2,
		Network:     nn.Config{Hidden: 3, Seed: 1},
	}, log.New(&logs, "", 0))
	require.NoError(t, err)

	assert.Zero(t, report.TestSamples)
	assert.Empty(t, report.Files)
	assert.Contains(t, logs.String(), "set=train images=10 size=4x3")
}

func TestRun_SkipMagicFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, mnist.TrainSet, 10)
	imagesPath := filepath.Join(dir, "train-images-idx3-ubyte")
	raw, err := os.ReadFile(imagesPath)
	require.NoError(t, err)
	copy(raw[0:4], []byte{0, 0, 0, 0})
	require.NoError(t, os.WriteFile(imagesPath, raw, 0o644))

	cfg := config.Default(dir)
	cfg.ApplyOverrides(config.Overrides{Steps: 1, Hidden: 3, Seed: 1})
	require.NoError(t, cfg.Validate())
	runCfg := FromConfig(cfg)
	runCfg.TestImages = ""

	_, err = Run(runCfg, log.New(&bytes.Buffer{}, "", 0))
	assert.ErrorIs(t, err, mnist.ErrBadMagic)

	cfg.SkipMagic = true
	runCfg = FromConfig(cfg)
	runCfg.TestImages = ""
	assert.True(t, runCfg.Decode.SkipMagicCheck)
	_, err = Run(runCfg, log.New(&bytes.Buffer{}, "", 0))
	assert.NoError(t, err)
}

func TestRun_MissingData(t *testing.T) {
	_, err := Run(RunConfig{
		TrainImages: filepath.Join(t.TempDir(), "nope"),
		TrainLabels: filepath.Join(t.TempDir(), "nope"),
		Steps:       1,
	}, log.New(&bytes.Buffer{}, "", 0))

	var ioErr *mnist.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestRun_NumericFailure(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, mnist.TrainSet, 10)

	// Huge steps saturate the sigmoids and drive the unclamped cost to Inf.
	var logs bytes.Buffer
	report, err := Run(RunConfig{
		TrainImages: filepath.Join(dir, "train-images-idx3-ubyte"),
		TrainLabels: filepath.Join(dir, "train-labels-idx1-ubyte"),
		Steps:       50,
		LogEvery:    1,
		Network:     nn.Config{Hidden: 3, Seed: 1, LearningRate: 1e6, Numeric: nn.NumericFail},
	}, log.New(&logs, "", 0))
	assert.ErrorIs(t, err, nn.ErrNumericDegeneracy)
	assert.Nil(t, report)
	assert.NotContains(t, logs.String(), "step=49/50", "training stops at the failing step")
}
