// Package traj provides a batched sequence container used to hold process
// noise and rollout logs.
//
// A Tensor has shape batch x steps x dim: every batch element is a sequence of
// steps vectors of length dim. Values are stored contiguously in row-major
// order so that a single step of the whole batch and a whole sequence of a
// single batch element can both be read without reshaping.
package traj

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tensor is a batch of sequences of vectors.
type Tensor struct {
	batch int
	steps int
	dim   int
	data  []float64
}

// New creates new zero valued Tensor of the given shape and returns it.
// If data is not nil it must have batch*steps*dim elements and is used as backing slice.
// It returns error if any of the dimensions is non-positive or data has wrong length.
func New(batch, steps, dim int, data []float64) (*Tensor, error) {
	if batch <= 0 || steps <= 0 || dim <= 0 {
		return nil, fmt.Errorf("%w: invalid tensor shape [%d x %d x %d]", sysid.ErrDimensionMismatch, batch, steps, dim)
	}

	size := batch * steps * dim
	if data == nil {
		data = make([]float64, size)
	}

	if len(data) != size {
		return nil, fmt.Errorf("%w: tensor data length %d, expected %d", sysid.ErrDimensionMismatch, len(data), size)
	}

	return &Tensor{
		batch: batch,
		steps: steps,
		dim:   dim,
		data:  data,
	}, nil
}

// NewFromSeries creates new Tensor from a slice of steps x dim matrices, one per batch element.
// It returns error if series is empty or the matrices do not share the same dimensions.
func NewFromSeries(series ...mat.Matrix) (*Tensor, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty series", sysid.ErrDimensionMismatch)
	}

	steps, dim := series[0].Dims()
	t, err := New(len(series), steps, dim, nil)
	if err != nil {
		return nil, err
	}

	for b, s := range series {
		r, c := s.Dims()
		if r != steps || c != dim {
			return nil, fmt.Errorf("%w: series %d has dimensions [%d x %d], expected [%d x %d]",
				sysid.ErrDimensionMismatch, b, r, c, steps, dim)
		}
		for i := 0; i < steps; i++ {
			for j := 0; j < dim; j++ {
				t.data[t.offset(b, i)+j] = s.At(i, j)
			}
		}
	}

	return t, nil
}

// Dims returns tensor dimensions.
func (t *Tensor) Dims() (batch, steps, dim int) {
	return t.batch, t.steps, t.dim
}

// RawData returns the underlying data slice.
func (t *Tensor) RawData() []float64 {
	return t.data
}

func (t *Tensor) offset(b, s int) int {
	if b < 0 || b >= t.batch {
		panic(fmt.Sprintf("traj: batch index %d out of range [0, %d)", b, t.batch))
	}
	if s < 0 || s >= t.steps {
		panic(fmt.Sprintf("traj: step index %d out of range [0, %d)", s, t.steps))
	}
	return (b*t.steps + s) * t.dim
}

// At returns the value of element i of step s of batch element b.
// It panics if any of the indices is out of range.
func (t *Tensor) At(b, s, i int) float64 {
	if i < 0 || i >= t.dim {
		panic(fmt.Sprintf("traj: dim index %d out of range [0, %d)", i, t.dim))
	}
	return t.data[t.offset(b, s)+i]
}

// Set sets the value of element i of step s of batch element b.
// It panics if any of the indices is out of range.
func (t *Tensor) Set(b, s, i int, v float64) {
	if i < 0 || i >= t.dim {
		panic(fmt.Sprintf("traj: dim index %d out of range [0, %d)", i, t.dim))
	}
	t.data[t.offset(b, s)+i] = v
}

// Step returns a batch x dim copy of step s of all batch elements.
// It panics if s is out of range.
func (t *Tensor) Step(s int) *mat.Dense {
	out := mat.NewDense(t.batch, t.dim, nil)
	for b := 0; b < t.batch; b++ {
		off := t.offset(b, s)
		out.SetRow(b, t.data[off:off+t.dim])
	}

	return out
}

// SetStep copies batch x dim matrix m into step s.
// It returns error if m dimensions do not match the tensor batch and dim.
func (t *Tensor) SetStep(s int, m mat.Matrix) error {
	r, c := m.Dims()
	if r != t.batch || c != t.dim {
		return fmt.Errorf("%w: step has dimensions [%d x %d], expected [%d x %d]",
			sysid.ErrDimensionMismatch, r, c, t.batch, t.dim)
	}

	for b := 0; b < t.batch; b++ {
		off := t.offset(b, s)
		for j := 0; j < t.dim; j++ {
			t.data[off+j] = m.At(b, j)
		}
	}

	return nil
}

// Series returns steps x dim copy of the sequence of batch element b.
// It panics if b is out of range.
func (t *Tensor) Series(b int) *mat.Dense {
	off := t.offset(b, 0)
	data := make([]float64, t.steps*t.dim)
	copy(data, t.data[off:off+t.steps*t.dim])

	return mat.NewDense(t.steps, t.dim, data)
}

// Element returns a 1 x steps x dim copy of batch element b.
// It panics if b is out of range.
func (t *Tensor) Element(b int) *Tensor {
	off := t.offset(b, 0)
	data := make([]float64, t.steps*t.dim)
	copy(data, t.data[off:off+t.steps*t.dim])

	return &Tensor{batch: 1, steps: t.steps, dim: t.dim, data: data}
}

// Clone returns a deep copy of t.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)

	return &Tensor{batch: t.batch, steps: t.steps, dim: t.dim, data: data}
}

// Equal returns true if a and b have the same shape and elements.
func Equal(a, b *Tensor) bool {
	return EqualApprox(a, b, 0)
}

// EqualApprox returns true if a and b have the same shape and their
// elements are equal within absolute tolerance tol.
func EqualApprox(a, b *Tensor, tol float64) bool {
	if a.batch != b.batch || a.steps != b.steps || a.dim != b.dim {
		return false
	}

	return floats.EqualApprox(a.data, b.data, tol)
}

// String implements the Stringer interface.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor{batch=%d steps=%d dim=%d}", t.batch, t.steps, t.dim)
}
