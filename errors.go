package sysid

import "errors"

var (
	// ErrDimensionMismatch is returned when vector or matrix dimensions
	// do not match the dimensions of the plant.
	ErrDimensionMismatch = errors.New("sysid: dimension mismatch")

	// ErrLinearPlant is returned when a nonlinear-only operation
	// is requested from a plant configured as linear.
	ErrLinearPlant = errors.New("sysid: operation requires nonlinear plant")

	// ErrInvalidParam is returned when a physical parameter is out of range.
	ErrInvalidParam = errors.New("sysid: invalid parameter")
)
