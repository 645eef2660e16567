package sim

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"gonum.org/v1/gonum/mat"
)

// System defines a linear model of a plant using
// traditional matrices of modern control theory.
//
// It contains the System (A) and input (B) matrices.
// Plants simulated by this module observe their full state,
// so no output matrices are kept.
type System struct {
	// System/State matrix A
	A *mat.Dense
	// Control/Input Matrix B
	B *mat.Dense
}

func newSystem(A, B *mat.Dense) (System, error) {
	if A == nil {
		return System{}, fmt.Errorf("system matrix must be defined for a model")
	}

	r, c := A.Dims()
	if r != c {
		return System{}, fmt.Errorf("%w: system matrix must be square, got [%d x %d]", sysid.ErrDimensionMismatch, r, c)
	}

	sys := System{A: mat.DenseCopyOf(A)}
	if B != nil {
		br, bc := B.Dims()
		if br != r {
			return System{}, fmt.Errorf("%w: control matrix [%d x %d] does not match [%d x %d] system matrix",
				sysid.ErrDimensionMismatch, br, bc, r, c)
		}
		sys.B = mat.DenseCopyOf(B)
	}

	return sys, nil
}

// SystemDims returns internal state length (nx) and input vector length (nu).
func (s System) SystemDims() (nx, nu int) {
	nx, _ = s.A.Dims()
	if s.B != nil {
		_, nu = s.B.Dims()
	}
	return nx, nu
}

// SystemMatrix returns a copy of state propagation matrix `A`.
func (s System) SystemMatrix() mat.Matrix {
	return mat.DenseCopyOf(s.A)
}

// ControlMatrix returns a copy of state propagation control matrix `B`.
// It returns nil if the system has no inputs.
func (s System) ControlMatrix() mat.Matrix {
	if s.B == nil {
		return nil
	}
	return mat.DenseCopyOf(s.B)
}
