package control

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/traj"
	"gonum.org/v1/gonum/mat"
)

// Open is an open loop controller which replays a precomputed batch of input sequences.
// It is used to excite the plant with known inputs when collecting identification data.
type Open struct {
	u *traj.Tensor
}

// NewOpen creates new open loop controller which returns u[:, t, :] at step t.
func NewOpen(u *traj.Tensor) (*Open, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: nil input sequence", sysid.ErrDimensionMismatch)
	}

	return &Open{u: u.Clone()}, nil
}

// Reset does nothing: the replayed sequence is indexed by step.
func (o *Open) Reset() {}

// Control returns the inputs of step t.
// It returns error if t is outside of the sequence or the batch size of x does not match.
func (o *Open) Control(t int, x *mat.Dense) (*mat.Dense, error) {
	batch, steps, _ := o.u.Dims()
	if t < 0 || t >= steps {
		return nil, fmt.Errorf("step %d outside of input sequence of %d steps", t, steps)
	}

	if rows, _ := x.Dims(); rows != batch {
		return nil, fmt.Errorf("%w: %d states, %d input sequences", sysid.ErrDimensionMismatch, rows, batch)
	}

	return o.u.Step(t), nil
}
