package control

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"gonum.org/v1/gonum/mat"
)

// None is a controller which always returns zero input.
type None struct {
	dim int
}

// NewNone creates new zero controller with input dimension dim.
// It returns error if dim is not positive.
func NewNone(dim int) (*None, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: invalid input dimension: %d", sysid.ErrDimensionMismatch, dim)
	}

	return &None{dim: dim}, nil
}

// Reset does nothing.
func (n *None) Reset() {}

// Control returns a batch of zero inputs, one for every row of x.
func (n *None) Control(t int, x *mat.Dense) (*mat.Dense, error) {
	rows, _ := x.Dims()
	if rows == 0 {
		return nil, fmt.Errorf("%w: empty state batch", sysid.ErrDimensionMismatch)
	}

	return mat.NewDense(rows, n.dim, nil), nil
}
