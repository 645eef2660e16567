// Package metrics computes summary statistics of batched rollouts.
package metrics

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/traj"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Metric observes a rollout step by step and summarizes it in a single value.
type Metric interface {
	// Name returns metric name
	Name() string
	// Observe observes batch of states x and batch of inputs u at step t
	Observe(t int, x, u *mat.Dense)
	// Value returns metric value
	Value() float64
	// Reset resets the metric
	Reset()
}

// Evaluate resets the metrics, feeds them every step of the rollout logs
// and returns their values keyed by metric name.
// It returns error if the logs do not share batch size and number of steps.
func Evaluate(xLog, uLog *traj.Tensor, ms ...Metric) (map[string]float64, error) {
	if xLog == nil || uLog == nil {
		return nil, fmt.Errorf("%w: nil rollout log", sysid.ErrDimensionMismatch)
	}

	xb, xs, _ := xLog.Dims()
	ub, us, _ := uLog.Dims()
	if xb != ub || xs != us {
		return nil, fmt.Errorf("%w: state log [%d x %d], input log [%d x %d]", sysid.ErrDimensionMismatch, xb, xs, ub, us)
	}

	for _, m := range ms {
		m.Reset()
	}

	for t := 0; t < xs; t++ {
		x, u := xLog.Step(t), uLog.Step(t)
		for _, m := range ms {
			m.Observe(t, x, u)
		}
	}

	values := make(map[string]float64, len(ms))
	for _, m := range ms {
		values[m.Name()] = m.Value()
	}

	return values, nil
}

// StateStd returns standard deviation of every state component over all steps of all trajectories.
func StateStd(xLog *traj.Tensor) []float64 {
	batch, steps, dim := xLog.Dims()

	std := make([]float64, dim)
	col := make([]float64, 0, batch*steps)
	for i := 0; i < dim; i++ {
		col = col[:0]
		for b := 0; b < batch; b++ {
			for s := 0; s < steps; s++ {
				col = append(col, xLog.At(b, s, i))
			}
		}
		std[i] = stat.StdDev(col, nil)
	}

	return std
}
