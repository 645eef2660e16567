package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ControlEffort is the mean sum of absolute inputs per trajectory step.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

// NewControlEffort creates new control effort metric.
func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

// Name returns metric name
func (c *ControlEffort) Name() string {
	return c.name
}

// Observe implements Metric.
func (c *ControlEffort) Observe(t int, x, u *mat.Dense) {
	rows, cols := u.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c.sum += math.Abs(u.At(i, j))
		}
	}
	c.samples += rows
}

// Value implements Metric.
func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

// Reset implements Metric.
func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
