package control

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/matrix"
	"gonum.org/v1/gonum/mat"
)

const (
	// riccatiIters is the maximum number of Riccati iterations
	riccatiIters = 10000
	// riccatiTol is the convergence tolerance of the Riccati iteration
	riccatiTol = 1e-10
)

// Feedback is a static state feedback controller:
//
//	u = -K*(x - target)
type Feedback struct {
	k      *mat.Dense
	target *mat.VecDense
}

// NewFeedback creates new state feedback controller with gain matrix K and target state.
// K must have one row per input and one column per state.
// If target is nil the controller drives the state to zero.
func NewFeedback(K mat.Matrix, target mat.Vector) (*Feedback, error) {
	if K == nil {
		return nil, fmt.Errorf("invalid gain matrix: %v", K)
	}

	_, nx := K.Dims()
	if target == nil {
		target = mat.NewVecDense(nx, nil)
	}

	if target.Len() != nx {
		return nil, fmt.Errorf("%w: target length %d, gain matrix columns %d", sysid.ErrDimensionMismatch, target.Len(), nx)
	}

	return &Feedback{
		k:      mat.DenseCopyOf(K),
		target: mat.VecDenseCopyOf(target),
	}, nil
}

// NewLQR creates new state feedback controller with the gain of infinite horizon
// discrete-time Linear Quadratic Regulator of the model A, B with state cost Q and input cost R.
// The gain is found by iterating the discrete Riccati equation until it converges.
func NewLQR(A, B, Q, R mat.Matrix, target mat.Vector) (*Feedback, error) {
	K, err := LQRGain(A, B, Q, R)
	if err != nil {
		return nil, err
	}

	return NewFeedback(K, target)
}

// LQRGain returns the gain of infinite horizon discrete-time LQR:
//
//	P = Q + A'*P*A - A'*P*B*(R + B'*P*B)^-1*B'*P*A
//	K = (R + B'*P*B)^-1*B'*P*A
//
// It returns error if the dimensions do not match or the iteration does not converge.
func LQRGain(A, B, Q, R mat.Matrix) (*mat.Dense, error) {
	ar, ac := A.Dims()
	br, bc := B.Dims()
	qr, qc := Q.Dims()
	rr, rc := R.Dims()
	if ar != ac || br != ar || qr != ar || qc != ar || rr != bc || rc != bc {
		return nil, fmt.Errorf("%w: A [%d x %d], B [%d x %d], Q [%d x %d], R [%d x %d]",
			sysid.ErrDimensionMismatch, ar, ac, br, bc, qr, qc, rr, rc)
	}

	P := mat.DenseCopyOf(Q)
	K := mat.NewDense(bc, ar, nil)

	for i := 0; i < riccatiIters; i++ {
		// S = R + B'*P*B
		PB := new(mat.Dense)
		PB.Mul(P, B)
		S := new(mat.Dense)
		S.Mul(B.T(), PB)
		S.Add(S, R)

		// K = S^-1*B'*P*A
		BPA := new(mat.Dense)
		BPA.Mul(PB.T(), A)
		if err := K.Solve(S, BPA); err != nil {
			return nil, fmt.Errorf("riccati iteration %d: %w", i, err)
		}

		// P' = Q + A'*P*(A - B*K)
		BK := new(mat.Dense)
		BK.Mul(B, K)
		ABK := new(mat.Dense)
		ABK.Sub(A, BK)
		PABK := new(mat.Dense)
		PABK.Mul(P, ABK)
		next := new(mat.Dense)
		next.Mul(A.T(), PABK)
		next.Add(next, Q)

		diff := new(mat.Dense)
		diff.Sub(next, P)
		P = next

		if mat.Norm(diff, 1) < riccatiTol*(1+mat.Norm(P, 1)) {
			return K, nil
		}
	}

	return nil, fmt.Errorf("riccati iteration did not converge after %d iterations", riccatiIters)
}

// Gain returns a copy of the feedback gain matrix.
func (f *Feedback) Gain() *mat.Dense {
	return mat.DenseCopyOf(f.k)
}

// Target returns a copy of the target state.
func (f *Feedback) Target() *mat.VecDense {
	return mat.VecDenseCopyOf(f.target)
}

// Reset does nothing: the controller is stateless.
func (f *Feedback) Reset() {}

// Control returns the batch of inputs -K*(x - target) computed for every row of x.
func (f *Feedback) Control(t int, x *mat.Dense) (*mat.Dense, error) {
	dx, err := matrix.SubRowVec(x, f.target)
	if err != nil {
		return nil, err
	}

	u := new(mat.Dense)
	u.Mul(dx, f.k.T())
	u.Scale(-1, u)

	return u, nil
}
