package sysid

import (
	"gonum.org/v1/gonum/mat"
)

// Propagator propagates internal state of the system to the next step
type Propagator interface {
	// Propagate propagates internal state x to the next step given input u and process noise wd
	Propagate(x, u, wd mat.Vector) (mat.Vector, error)
}

// Plant is a discrete-time plant which propagates a batch of states at once.
// Every row of a batch matrix holds one trajectory.
type Plant interface {
	// Propagator propagates a single trajectory
	Propagator
	// Forward returns the next batch of states given step t, states x, inputs u and noise w
	Forward(t int, x, u, w mat.Matrix) (*mat.Dense, error)
	// Dims returns state and input dimensions
	Dims() (nx, nu int)
}

// Controller computes plant inputs from plant states.
type Controller interface {
	// Reset clears internal controller state
	Reset()
	// Control returns a batch of inputs given step t and the batch of states x
	Control(t int, x *mat.Dense) (*mat.Dense, error)
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset()
}
