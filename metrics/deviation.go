package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Deviation measures the euclidean distance of the states from a target state.
// It reports the mean, the maximum or the final distance depending on its mode.
type Deviation struct {
	name    string
	target  []float64
	mode    deviationMode
	sum     float64
	max     float64
	last    float64
	samples int
}

type deviationMode int

const (
	meanDeviation deviationMode = iota
	maxDeviation
	finalDeviation
)

// NewMeanDeviation creates new metric which reports mean distance from target over all steps.
func NewMeanDeviation(target mat.Vector) *Deviation {
	return newDeviation("mean_deviation", target, meanDeviation)
}

// NewMaxDeviation creates new metric which reports the largest distance from target.
func NewMaxDeviation(target mat.Vector) *Deviation {
	return newDeviation("max_deviation", target, maxDeviation)
}

// NewFinalDeviation creates new metric which reports mean distance from target in the last observed step.
func NewFinalDeviation(target mat.Vector) *Deviation {
	return newDeviation("final_deviation", target, finalDeviation)
}

func newDeviation(name string, target mat.Vector, mode deviationMode) *Deviation {
	return &Deviation{
		name:   name,
		target: mat.Col(nil, 0, target),
		mode:   mode,
	}
}

// Name returns metric name
func (d *Deviation) Name() string {
	return d.name
}

// Observe implements Metric.
// It panics if x does not have as many columns as there are target components.
func (d *Deviation) Observe(t int, x, u *mat.Dense) {
	rows, _ := x.Dims()
	diff := make([]float64, len(d.target))

	stepSum := 0.0
	for i := 0; i < rows; i++ {
		floats.SubTo(diff, x.RawRowView(i), d.target)
		dist := floats.Norm(diff, 2)
		stepSum += dist
		d.max = math.Max(d.max, dist)
	}

	d.sum += stepSum
	d.samples += rows
	if rows > 0 {
		d.last = stepSum / float64(rows)
	}
}

// Value implements Metric.
func (d *Deviation) Value() float64 {
	switch d.mode {
	case maxDeviation:
		return d.max
	case finalDeviation:
		return d.last
	}

	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

// Reset implements Metric.
func (d *Deviation) Reset() {
	d.sum = 0
	d.max = 0
	d.last = 0
	d.samples = 0
}
