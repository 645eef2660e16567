package control

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"gonum.org/v1/gonum/mat"
)

// PID is a batched Proportional-Integral-Derivative position controller.
// Every axis is controlled independently: the first len(target) state components
// are treated as positions and drive the input of the same index.
// Integral and derivative terms are kept separately for every trajectory of the batch.
type PID struct {
	Kp float64
	Ki float64
	Kd float64
	// Dt is the time between two consecutive steps
	Dt float64

	target   []float64
	integral *mat.Dense
	prevErr  *mat.Dense
	prevT    int
	first    bool
}

// NewPID creates new PID controller with gains kp, ki, kd, step dt and target positions.
// It returns error if dt is not positive or target is empty.
func NewPID(kp, ki, kd, dt float64, target mat.Vector) (*PID, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: step must be positive: %f", sysid.ErrInvalidParam, dt)
	}

	if target == nil || target.Len() == 0 {
		return nil, fmt.Errorf("%w: empty target", sysid.ErrDimensionMismatch)
	}

	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Dt:     dt,
		target: mat.Col(nil, 0, target),
		first:  true,
	}, nil
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = nil
	p.prevErr = nil
	p.prevT = 0
	p.first = true
}

// Control returns the batch of inputs for the batch of states x.
// It returns error if x has fewer columns than there are target positions
// or if the batch size changes before the controller is reset.
func (p *PID) Control(t int, x *mat.Dense) (*mat.Dense, error) {
	rows, cols := x.Dims()
	axes := len(p.target)
	if rows == 0 || cols < axes {
		return nil, fmt.Errorf("%w: state batch [%d x %d], expected at least %d columns", sysid.ErrDimensionMismatch, rows, cols, axes)
	}

	e := mat.NewDense(rows, axes, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < axes; j++ {
			e.Set(i, j, p.target[j]-x.At(i, j))
		}
	}

	if p.first {
		p.integral = mat.NewDense(rows, axes, nil)
		p.prevErr = e
		p.prevT = t
		p.first = false

		u := new(mat.Dense)
		u.Scale(p.Kp, e)
		return u, nil
	}

	if r, _ := p.prevErr.Dims(); r != rows {
		return nil, fmt.Errorf("%w: batch size changed from %d to %d", sysid.ErrDimensionMismatch, r, rows)
	}

	dt := float64(t-p.prevT) * p.Dt
	if dt <= 0 {
		u := new(mat.Dense)
		u.Scale(p.Kp, e)
		return u, nil
	}

	// integral += e*dt
	p.integral.Apply(func(i, j int, v float64) float64 {
		return v + e.At(i, j)*dt
	}, p.integral)

	u := mat.NewDense(rows, axes, nil)
	u.Apply(func(i, j int, _ float64) float64 {
		derivative := (e.At(i, j) - p.prevErr.At(i, j)) / dt
		return p.Kp*e.At(i, j) + p.Ki*p.integral.At(i, j) + p.Kd*derivative
	}, u)

	p.prevErr = e
	p.prevT = t

	return u, nil
}
