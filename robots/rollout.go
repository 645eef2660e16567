package robots

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/matrix"
	"github.com/milosgajdos/go-sysid/traj"
)

// Rollout simulates the plant in closed loop with controller c for every sequence of process noise in w.
// Every trajectory starts in the initial state with the initial input. At step t the plant is propagated
// with the noise w[:, t, :] and the controller computes the input for the next step from the new state.
//
// Rollout returns the state log of shape batch x steps x StateDim and the input log of shape
// batch x steps x InDim. The controller is reset before the first step and after the last one,
// even when the rollout fails. The plant keeps no state between rollouts.
func (s *System) Rollout(c sysid.Controller, w *traj.Tensor) (*traj.Tensor, *traj.Tensor, error) {
	if c == nil {
		return nil, nil, fmt.Errorf("invalid controller: %v", c)
	}

	c.Reset()
	defer c.Reset()

	if w == nil {
		return nil, nil, fmt.Errorf("%w: nil noise", sysid.ErrDimensionMismatch)
	}

	batch, steps, _ := w.Dims()
	if batch <= 0 || steps <= 0 {
		return nil, nil, fmt.Errorf("%w: empty noise", sysid.ErrDimensionMismatch)
	}

	xLog, err := traj.New(batch, steps, StateDim, nil)
	if err != nil {
		return nil, nil, err
	}

	uLog, err := traj.New(batch, steps, InDim, nil)
	if err != nil {
		return nil, nil, err
	}

	x := matrix.RepeatRow(s.xInit, batch)
	u := matrix.RepeatRow(s.uInit, batch)

	for t := 0; t < steps; t++ {
		x, err = s.Forward(t, x, u, w.Step(t))
		if err != nil {
			return nil, nil, fmt.Errorf("step %d: %w", t, err)
		}

		if err := xLog.SetStep(t, x); err != nil {
			return nil, nil, fmt.Errorf("step %d: %w", t, err)
		}

		u, err = c.Control(t, x)
		if err != nil {
			return nil, nil, fmt.Errorf("step %d: control: %w", t, err)
		}

		if u == nil {
			return nil, nil, fmt.Errorf("step %d: %w: nil control", t, sysid.ErrDimensionMismatch)
		}

		if r, cols := u.Dims(); r != batch || cols != InDim {
			return nil, nil, fmt.Errorf("step %d: %w: control [%d x %d], expected [%d x %d]",
				t, sysid.ErrDimensionMismatch, r, cols, batch, InDim)
		}

		if err := uLog.SetStep(t, u); err != nil {
			return nil, nil, fmt.Errorf("step %d: %w", t, err)
		}
	}

	return xLog, uLog, nil
}
