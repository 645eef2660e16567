// Package robots simulates a planar point mass robot stabilized around an equilibrium
// by a spring-damper pre-stabilizing controller. The plant propagates a whole batch
// of trajectories at once: every row of a batch matrix holds the state of one trajectory.
package robots

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/matrix"
	"github.com/milosgajdos/go-sysid/sim"
	"gonum.org/v1/gonum/mat"
)

// System is a discrete-time robot plant.
type System struct {
	params Params
	xbar   *mat.VecDense
	xInit  *mat.VecDense
	uInit  *mat.VecDense
	lin    *sim.Discrete
	dyn    Dynamics
}

// New creates new plant with default physical parameters, equilibrium xbar and spring gain k.
// If xInit is nil the plant starts in xbar. If uInit is nil the first input is zero.
func New(xbar mat.Vector, linear bool, xInit, uInit mat.Vector, k float64) (*System, error) {
	p := DefaultParams(xbar, linear)
	p.XInit = xInit
	p.UInit = uInit
	p.K = k

	return NewWithParams(p)
}

// NewWithParams creates new plant from the given parameters.
// It returns error if the parameters are invalid.
func NewWithParams(p Params) (*System, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	lin, err := discretize(p)
	if err != nil {
		return nil, err
	}

	s := &System{
		params: p,
		xbar:   mat.VecDenseCopyOf(p.XBar),
		lin:    lin,
	}

	s.xInit = s.xbar
	if p.XInit != nil {
		s.xInit = mat.VecDenseCopyOf(p.XInit)
	}

	s.uInit = mat.NewVecDense(InDim, nil)
	if p.UInit != nil {
		s.uInit = mat.VecDenseCopyOf(p.UInit)
	}

	if p.Linear {
		s.dyn = NewLinear(lin, s.xbar)
	} else {
		s.dyn = NewNonlinear(lin, s.xbar, p.H, p.Mass, p.B2)
	}

	// parameters must not alias caller vectors
	s.params.XBar, s.params.XInit, s.params.UInit = s.xbar, s.xInit, s.uInit

	return s, nil
}

// discretize builds the linear discrete-time model of the plant:
//
//	dx/dt = [0 I; -k/m*I -b/m*I]*x + [0; 1/m*I]*u
//
// discretized with forward Euler.
func discretize(p Params) (*sim.Discrete, error) {
	n := StateDim / 2
	A := mat.NewDense(StateDim, StateDim, nil)
	B := mat.NewDense(StateDim, InDim, nil)
	for i := 0; i < n; i++ {
		A.Set(i, n+i, 1.0)
		A.Set(n+i, i, -p.K/p.Mass)
		A.Set(n+i, n+i, -p.B/p.Mass)
		B.Set(n+i, i, 1/p.Mass)
	}

	ct, err := sim.NewContinuous(A, B)
	if err != nil {
		return nil, err
	}

	return ct.Euler(p.H)
}

// Dims returns the state and input dimensions of the plant.
func (s *System) Dims() (nx, nu int) {
	return StateDim, InDim
}

// Params returns the physical parameters of the plant.
func (s *System) Params() Params {
	p := s.params
	p.XBar = mat.VecDenseCopyOf(s.xbar)
	p.XInit = mat.VecDenseCopyOf(s.xInit)
	p.UInit = mat.VecDenseCopyOf(s.uInit)

	return p
}

// Linear returns true if the plant is linear.
func (s *System) Linear() bool {
	return s.params.Linear
}

// XBar returns a copy of the equilibrium point.
func (s *System) XBar() *mat.VecDense {
	return mat.VecDenseCopyOf(s.xbar)
}

// XInit returns a copy of the initial state.
func (s *System) XInit() *mat.VecDense {
	return mat.VecDenseCopyOf(s.xInit)
}

// UInit returns a copy of the initial input.
func (s *System) UInit() *mat.VecDense {
	return mat.VecDenseCopyOf(s.uInit)
}

// LinearStateMatrix returns a copy of the state matrix of the linear plant.
func (s *System) LinearStateMatrix() *mat.Dense {
	return mat.DenseCopyOf(s.lin.A)
}

// ControlMatrix returns a copy of the input matrix.
func (s *System) ControlMatrix() *mat.Dense {
	return mat.DenseCopyOf(s.lin.B)
}

// Dynamics returns the plant dynamics.
func (s *System) Dynamics() Dynamics {
	return s.dyn
}

// StateMatrix returns the state dependent matrix A(x) of the nonlinear plant for every
// batch element of x. It returns ErrLinearPlant if the plant is linear.
func (s *System) StateMatrix(x mat.Matrix) ([]*mat.Dense, error) {
	n, ok := s.dyn.(*Nonlinear)
	if !ok {
		return nil, sysid.ErrLinearPlant
	}

	xb, err := matrix.AsBatch(x, StateDim)
	if err != nil {
		return nil, err
	}

	batch, _ := xb.Dims()
	out := make([]*mat.Dense, batch)
	for i := range out {
		out[i] = n.StateMatrix(xb.RawRowView(i))
	}

	return out, nil
}

// NoiselessForward returns the next batch of states given the batch of states x and the batch of inputs u.
// Single states and inputs may be passed in as vectors. Step t is accepted for interface compatibility
// and does not affect the dynamics.
func (s *System) NoiselessForward(t int, x, u mat.Matrix) (*mat.Dense, error) {
	xb, err := matrix.AsBatch(x, StateDim)
	if err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}

	ub, err := matrix.AsBatch(u, InDim)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	xr, _ := xb.Dims()
	ur, _ := ub.Dims()
	if xr != ur {
		return nil, fmt.Errorf("%w: %d states, %d inputs", sysid.ErrDimensionMismatch, xr, ur)
	}

	return s.dyn.Next(xb, ub)
}

// Forward returns the next batch of states given the batch of states x, the batch of inputs u
// and the batch of process noise samples w.
func (s *System) Forward(t int, x, u, w mat.Matrix) (*mat.Dense, error) {
	next, err := s.NoiselessForward(t, x, u)
	if err != nil {
		return nil, err
	}

	wb, err := matrix.AsBatch(w, StateDim)
	if err != nil {
		return nil, fmt.Errorf("noise: %w", err)
	}

	nr, _ := next.Dims()
	wr, _ := wb.Dims()
	if nr != wr {
		return nil, fmt.Errorf("%w: %d states, %d noise samples", sysid.ErrDimensionMismatch, nr, wr)
	}

	next.Add(next, wb)

	return next, nil
}

// Propagate propagates a single state x given input u and process noise wd.
// Both u and wd can be nil.
func (s *System) Propagate(x, u, wd mat.Vector) (mat.Vector, error) {
	if u == nil {
		u = mat.NewVecDense(InDim, nil)
	}

	var (
		next *mat.Dense
		err  error
	)

	if wd == nil {
		next, err = s.NoiselessForward(0, x, u)
	} else {
		next, err = s.Forward(0, x, u, wd)
	}
	if err != nil {
		return nil, err
	}

	if r, _ := next.Dims(); r != 1 {
		return nil, fmt.Errorf("%w: expected a single state", sysid.ErrDimensionMismatch)
	}

	return mat.NewVecDense(StateDim, next.RawRowView(0)), nil
}
