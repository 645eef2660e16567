package sim

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// Continuous is a basic model of a linear, continuous-time, dynamical system
type Continuous struct {
	System
}

// NewContinuous creates a linear continuous-time model based on the control theory equations.
//
//	dx/dt = A*x + B*u
func NewContinuous(A, B *mat.Dense) (*Continuous, error) {
	sys, err := newSystem(A, B)
	if err != nil {
		return nil, err
	}
	return &Continuous{System: sys}, nil
}

// Euler creates a discrete-time model from a continuous time model
// using the first order (forward Euler) approximation with step h:
//
//	Ad = I + h*A
//	Bd = h*B
//
// It returns error if h is not positive.
func (ct *Continuous) Euler(h float64) (*Discrete, error) {
	if h <= 0 {
		return nil, fmt.Errorf("%w: discretization step must be positive: %f", sysid.ErrInvalidParam, h)
	}

	nx, _ := ct.SystemDims()
	eye, err := matrix.NewDenseValIdentity(nx, 1.0)
	if err != nil {
		return nil, err
	}

	Ad := mat.NewDense(nx, nx, nil)
	Ad.Scale(h, ct.A)
	Ad.Add(eye, Ad)

	var Bd *mat.Dense
	if ct.B != nil {
		Bd = new(mat.Dense)
		Bd.Scale(h, ct.B)
	}

	return &Discrete{System: System{A: Ad, B: Bd}}, nil
}

// ToDiscrete creates a discrete-time model from a continuous time model
// using Ts as the sampling time and zero-order hold on the input.
//
// It returns error if Ts is not positive.
func (ct *Continuous) ToDiscrete(Ts float64) (*Discrete, error) {
	if Ts <= 0 {
		return nil, fmt.Errorf("%w: sampling time must be positive: %f", sysid.ErrInvalidParam, Ts)
	}

	nx, _ := ct.SystemDims()
	dsys, err := newSystem(ct.A, ct.B)
	if err != nil {
		return nil, err
	}
	// See Discrete-Time Control Systems by Katsuhiko Ogata
	// Eq. (5-73) p. 315  Second Edition (Spanish)
	dsys.A.Scale(Ts, dsys.A)
	dsys.A.Exp(dsys.A)

	if ct.B == nil {
		return &Discrete{System: dsys}, nil
	}

	Aaux := mat.NewDense(nx, nx, nil)
	eye, err := matrix.NewDenseValIdentity(nx, 1.0)
	if err != nil {
		return nil, err
	}

	// Bd(Ts) = (exp(A*Ts) - I)*inv(A)*B  Eq. (5-74 bis) Ogata
	Aaux.Sub(dsys.A, eye)
	Ainv := mat.NewDense(nx, nx, nil)
	if err := Ainv.Inverse(ct.A); err == nil {
		Aaux.Mul(Aaux, Ainv)
		dsys.B.Mul(Aaux, ct.B)
		return &Discrete{System: dsys}, nil
	}

	// singular A: Bd = integrate( exp(A*t)dt, 0, Ts ) * B   Eq. (5-74) Ogata
	// trapezoidal rule over n samples
	const n = 101
	dt := Ts / float64(n-1)
	Asum := mat.NewDense(nx, nx, nil)
	for i := 0; i < n; i++ {
		Aaux.Scale(dt*float64(i), ct.A)
		Aaux.Exp(Aaux)
		w := dt
		if i == 0 || i == n-1 {
			w = dt / 2
		}
		Aaux.Scale(w, Aaux)
		Asum.Add(Asum, Aaux)
	}
	dsys.B.Mul(Asum, ct.B)

	return &Discrete{System: dsys}, nil
}

// Propagate returns the next internal state x of a linear, continuous-time
// system given an input vector u and process noise wd.
// It propagates the solution by a timestep dt using forward Euler step.
func (ct *Continuous) Propagate(x, u, wd mat.Vector, dt float64) (mat.Vector, error) {
	dx, err := propagate(ct.System, x, u, wd)
	if err != nil {
		return nil, err
	}

	out := mat.NewVecDense(x.Len(), nil)
	out.AddScaledVec(x, dt, dx)

	return out, nil
}
