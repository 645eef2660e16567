package robots

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Linearize returns the Jacobians of the noiseless plant step with respect to
// the state (A) and the input (B) evaluated at state x and input u.
// Jacobians are computed with central finite differences.
func (s *System) Linearize(x, u mat.Vector) (A, B *mat.Dense, err error) {
	if x == nil || x.Len() != StateDim {
		return nil, nil, fmt.Errorf("%w: invalid state vector", sysid.ErrDimensionMismatch)
	}

	if u == nil || u.Len() != InDim {
		return nil, nil, fmt.Errorf("%w: invalid input vector", sysid.ErrDimensionMismatch)
	}

	xNow := mat.Col(nil, 0, x)
	uNow := mat.Col(nil, 0, u)

	settings := &fd.JacobianSettings{
		Formula:    fd.Central,
		Concurrent: true,
	}

	A = mat.NewDense(StateDim, StateDim, nil)
	fd.Jacobian(A, func(xOut, xVar []float64) {
		s.next(xOut, xVar, uNow)
	}, xNow, settings)

	B = mat.NewDense(StateDim, InDim, nil)
	fd.Jacobian(B, func(xOut, uVar []float64) {
		s.next(xOut, xNow, uVar)
	}, uNow, settings)

	return A, B, nil
}

// next writes the noiseless step from state x with input u to xOut.
func (s *System) next(xOut, x, u []float64) {
	xb := mat.NewDense(1, StateDim, append([]float64(nil), x...))
	ub := mat.NewDense(1, InDim, append([]float64(nil), u...))

	xNext, err := s.dyn.Next(xb, ub)
	if err != nil {
		panic(err)
	}

	copy(xOut, xNext.RawRowView(0))
}
