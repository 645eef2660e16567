package robots

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"gonum.org/v1/gonum/mat"
)

const (
	// StateDim is the dimension of the plant state: two positions followed by two velocities.
	StateDim = 4
	// InDim is the dimension of the plant input: a force along each axis.
	InDim = 2
)

const (
	// DefaultStep is the default discretization step
	DefaultStep = 0.05
	// DefaultMass is the default agent mass
	DefaultMass = 1.0
	// DefaultSpring is the default gain of the pre-stabilizing controller
	DefaultSpring = 1.0
	// DefaultDamping is the default linear damping coefficient
	DefaultDamping = 1.0
	// DefaultFriction is the default coefficient of the speed dependent friction
	DefaultFriction = 0.1
)

// Params are physical parameters of the plant.
type Params struct {
	// XBar is the equilibrium point
	XBar mat.Vector
	// XInit is the initial state; XBar is used when nil
	XInit mat.Vector
	// UInit is the initial input; zero input is used when nil
	UInit mat.Vector
	// Linear selects the linear plant; friction B2 is ignored when set
	Linear bool
	// H is the discretization step
	H float64
	// Mass is the agent mass
	Mass float64
	// K is the spring gain of the pre-stabilizing controller
	K float64
	// B is the linear damping coefficient
	B float64
	// B2 is the speed dependent friction coefficient
	B2 float64
}

// DefaultParams returns default plant parameters with equilibrium xbar.
func DefaultParams(xbar mat.Vector, linear bool) Params {
	return Params{
		XBar:   xbar,
		Linear: linear,
		H:      DefaultStep,
		Mass:   DefaultMass,
		K:      DefaultSpring,
		B:      DefaultDamping,
		B2:     DefaultFriction,
	}
}

// Validate checks the parameters and returns error if they are not valid.
func (p Params) Validate() error {
	if p.XBar == nil || p.XBar.Len() != StateDim {
		return fmt.Errorf("%w: equilibrium must have %d components", sysid.ErrDimensionMismatch, StateDim)
	}

	if p.XInit != nil && p.XInit.Len() != StateDim {
		return fmt.Errorf("%w: initial state must have %d components, got %d", sysid.ErrDimensionMismatch, StateDim, p.XInit.Len())
	}

	if p.UInit != nil && p.UInit.Len() != InDim {
		return fmt.Errorf("%w: initial input must have %d components, got %d", sysid.ErrDimensionMismatch, InDim, p.UInit.Len())
	}

	if p.H <= 0 {
		return fmt.Errorf("%w: discretization step must be positive: %f", sysid.ErrInvalidParam, p.H)
	}

	if p.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive: %f", sysid.ErrInvalidParam, p.Mass)
	}

	if !p.Linear && p.B2 < 0 {
		return fmt.Errorf("%w: friction must not be negative: %f", sysid.ErrInvalidParam, p.B2)
	}

	return nil
}
