package robots

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/matrix"
	"github.com/milosgajdos/go-sysid/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// parallelRows is the batch size from which nonlinear steps are split across goroutines
const parallelRows = 512

// Dynamics computes the noiseless transition of a batch of plant states.
type Dynamics interface {
	// Next returns the next batch of states given batch x of states and batch u of inputs.
	// Both x and u store one batch element per row.
	Next(x, u *mat.Dense) (*mat.Dense, error)
}

// Linear are linear plant dynamics around equilibrium xbar:
//
//	x[n+1] = A*(x[n] - xbar) + B*u[n] + xbar
//
// A and B are shared by the whole batch.
type Linear struct {
	d    *sim.Discrete
	xbar *mat.VecDense
}

// NewLinear creates new linear dynamics from discrete model d and equilibrium xbar.
func NewLinear(d *sim.Discrete, xbar mat.Vector) *Linear {
	return &Linear{
		d:    d,
		xbar: mat.VecDenseCopyOf(xbar),
	}
}

// Next implements Dynamics.
func (l *Linear) Next(x, u *mat.Dense) (*mat.Dense, error) {
	dx, err := matrix.SubRowVec(x, l.xbar)
	if err != nil {
		return nil, err
	}

	out, err := l.d.PropagateBatch(dx, u, nil)
	if err != nil {
		return nil, err
	}

	return matrix.AddRowVec(out, l.xbar)
}

// Nonlinear are plant dynamics with speed dependent friction.
// The state matrix is rebuilt from every batch element before it is propagated:
//
//	x[n+1] = A(x[n])*(x[n] - xbar) + B*u[n] + xbar
//	A(x)   = A - h*b2/m*diag(0, 0, |v|, |v|)
//
// where |v| is the norm of the velocity of the agent.
type Nonlinear struct {
	Linear
	h    float64
	mass float64
	b2   float64
}

// NewNonlinear creates new nonlinear dynamics from the linear discrete model d,
// equilibrium xbar, discretization step h, mass and friction coefficient b2.
func NewNonlinear(d *sim.Discrete, xbar mat.Vector, h, mass, b2 float64) *Nonlinear {
	return &Nonlinear{
		Linear: *NewLinear(d, xbar),
		h:      h,
		mass:   mass,
		b2:     b2,
	}
}

// StateMatrix returns the state matrix A(x) evaluated at state x.
// It panics if x does not have StateDim elements.
func (n *Nonlinear) StateMatrix(x []float64) *mat.Dense {
	a := mat.NewDense(StateDim, StateDim, nil)
	n.stateMatrixTo(a, x)

	return a
}

func (n *Nonlinear) stateMatrixTo(dst *mat.Dense, x []float64) {
	if len(x) != StateDim {
		panic("robots: invalid state length")
	}

	// the state is the block [p1 p2; v1 v2]; the position row is masked out
	// and the velocity row norm is applied to both velocity rows of A
	speed := floats.Norm(x[StateDim/2:], 2)
	c := -n.h * n.b2 / n.mass * speed

	dst.Copy(n.d.A)
	for i := StateDim / 2; i < StateDim; i++ {
		dst.Set(i, i, dst.At(i, i)+c)
	}
}

// Next implements Dynamics.
func (n *Nonlinear) Next(x, u *mat.Dense) (*mat.Dense, error) {
	dx, err := matrix.SubRowVec(x, n.xbar)
	if err != nil {
		return nil, err
	}

	batch, _ := x.Dims()
	ur, uc := u.Dims()
	if ur != batch || uc != InDim {
		return nil, fmt.Errorf("%w: invalid input batch [%d x %d], expected [%d x %d]", sysid.ErrDimensionMismatch, ur, uc, batch, InDim)
	}

	// input and equilibrium terms do not depend on the state matrix
	out := new(mat.Dense)
	out.Mul(u, n.d.B.T())
	for i := 0; i < batch; i++ {
		floats.Add(out.RawRowView(i), n.xbar.RawVector().Data)
	}

	parallelFor(batch, parallelRows, func(start, end int) {
		a := mat.NewDense(StateDim, StateDim, nil)
		next := mat.NewVecDense(StateDim, nil)
		for i := start; i < end; i++ {
			n.stateMatrixTo(a, x.RawRowView(i))
			next.MulVec(a, dx.RowView(i))
			floats.Add(out.RawRowView(i), next.RawVector().Data)
		}
	})

	return out, nil
}
