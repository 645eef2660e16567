package sim

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"gonum.org/v1/gonum/mat"
)

// Discrete is a basic model of a linear, discrete-time, dynamical system
type Discrete struct {
	System
}

// NewDiscrete creates a linear discrete-time model based on the control theory equations.
//
//	x[n+1] = A*x[n] + B*u[n] + wd[n]
func NewDiscrete(A, B *mat.Dense) (*Discrete, error) {
	sys, err := newSystem(A, B)
	if err != nil {
		return nil, err
	}
	return &Discrete{System: sys}, nil
}

// Propagate returns the next internal state x of a linear, discrete-time system
// given an input vector u and process noise wd. Both u and wd can be nil.
func (d *Discrete) Propagate(x, u, wd mat.Vector) (mat.Vector, error) {
	out, err := propagate(d.System, x, u, wd)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PropagateBatch propagates a batch of states x stored in rows given a batch of inputs u
// and a batch of process noise samples w, also stored in rows:
//
//	X[n+1] = X[n]*A^T + U[n]*B^T + W[n]
//
// The system matrices are shared by the whole batch so the batch is propagated
// with a single matrix multiplication. Both u and w can be nil.
func (d *Discrete) PropagateBatch(x, u, w mat.Matrix) (*mat.Dense, error) {
	nx, nu := d.SystemDims()
	batch, cols := x.Dims()
	if cols != nx {
		return nil, fmt.Errorf("%w: invalid state batch [%d x %d], expected %d columns", sysid.ErrDimensionMismatch, batch, cols, nx)
	}

	out := new(mat.Dense)
	out.Mul(x, d.A.T())

	if u != nil && d.B != nil {
		r, c := u.Dims()
		if r != batch || c != nu {
			return nil, fmt.Errorf("%w: invalid input batch [%d x %d], expected [%d x %d]", sysid.ErrDimensionMismatch, r, c, batch, nu)
		}
		outU := new(mat.Dense)
		outU.Mul(u, d.B.T())
		out.Add(out, outU)
	}

	if w != nil {
		r, c := w.Dims()
		if r != batch || c != nx {
			return nil, fmt.Errorf("%w: invalid noise batch [%d x %d], expected [%d x %d]", sysid.ErrDimensionMismatch, r, c, batch, nx)
		}
		out.Add(out, w)
	}

	return out, nil
}

// propagate computes A*x + B*u + wd
func propagate(s System, x, u, wd mat.Vector) (*mat.VecDense, error) {
	nx, nu := s.SystemDims()
	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("%w: invalid input vector", sysid.ErrDimensionMismatch)
	}

	if x.Len() != nx {
		return nil, fmt.Errorf("%w: invalid state vector", sysid.ErrDimensionMismatch)
	}

	if wd != nil && wd.Len() != nx {
		return nil, fmt.Errorf("%w: invalid noise vector", sysid.ErrDimensionMismatch)
	}

	out := mat.NewVecDense(nx, nil)
	out.MulVec(s.A, x)

	if u != nil && s.B != nil {
		outU := mat.NewVecDense(nx, nil)
		outU.MulVec(s.B, u)
		out.AddVec(out, outU)
	}

	if wd != nil {
		out.AddVec(out, wd)
	}

	return out, nil
}
