package control

import (
	"gonum.org/v1/gonum/mat"
)

// Func is a stateless controller implemented by a function.
type Func func(t int, x *mat.Dense) (*mat.Dense, error)

// Reset does nothing.
func (f Func) Reset() {}

// Control calls f.
func (f Func) Control(t int, x *mat.Dense) (*mat.Dense, error) {
	return f(t, x)
}
