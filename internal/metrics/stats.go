package metrics

import "time"

// Window accumulates step timings between two log lines.
type Window struct {
	samples  int
	elapsed  time.Duration
	steps    int
	lastCost float64
}

// Record adds one gradient step over samples images.
func (w *Window) Record(samples int, stepTime time.Duration, cost float64) {
	w.samples += samples
	w.elapsed += stepTime
	w.steps++
	w.lastCost = cost
}

// Steps returns the number of steps recorded since the last snapshot.
func (w *Window) Steps() int {
	return w.steps
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{LastCost: w.lastCost, Steps: w.steps}
	if w.elapsed > 0 {
		secs := w.elapsed.Seconds()
		snap.ImagesPerSec = float64(w.samples) / secs
		snap.StepsPerSec = float64(w.steps) / secs
	}
	if w.steps > 0 {
		snap.AvgStepMS = (w.elapsed.Seconds() * 1000) / float64(w.steps)
	}

	w.samples = 0
	w.elapsed = 0
	w.steps = 0
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Steps        int
	ImagesPerSec float64
	StepsPerSec  float64
	AvgStepMS    float64
	LastCost     float64
}
