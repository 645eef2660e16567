package matrix

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RowSums returns a slice containing m row sums.
// It panics if m is nil.
func RowSums(m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	sum := make([]float64, rows)

	for i := 0; i < rows; i++ {
		sum[i] = floats.Sum(m.RawRowView(i))
	}

	return sum
}

// ColSums returns a slice containing m column sums.
// It panics if m is nil.
func ColSums(m *mat.Dense) []float64 {
	_, cols := m.Dims()
	sum := make([]float64, cols)

	for i := 0; i < cols; i++ {
		sum[i] = mat.Sum(m.ColView(i))
	}

	return sum
}

// RowNorms returns a slice containing L2 norms of m rows.
// It panics if m is nil.
func RowNorms(m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	norms := make([]float64, rows)

	for i := 0; i < rows; i++ {
		norms[i] = floats.Norm(m.RawRowView(i), 2)
	}

	return norms
}

// RepeatRow returns n x len(v) matrix which contains a copy of v in each row.
// It panics if n is not positive.
func RepeatRow(v mat.Vector, n int) *mat.Dense {
	cols := v.Len()
	out := mat.NewDense(n, cols, nil)
	row := mat.Col(nil, 0, v)
	for i := 0; i < n; i++ {
		out.SetRow(i, row)
	}

	return out
}

// AddRowVec adds v to every row of m and returns the result.
// It returns error if the length of v does not match the number of columns of m.
func AddRowVec(m mat.Matrix, v mat.Vector) (*mat.Dense, error) {
	return rowVecOp(m, v, 1.0)
}

// SubRowVec subtracts v from every row of m and returns the result.
// It returns error if the length of v does not match the number of columns of m.
func SubRowVec(m mat.Matrix, v mat.Vector) (*mat.Dense, error) {
	return rowVecOp(m, v, -1.0)
}

func rowVecOp(m mat.Matrix, v mat.Vector, alpha float64) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if v.Len() != cols {
		return nil, fmt.Errorf("%w: row vector length %d, matrix columns %d", sysid.ErrDimensionMismatch, v.Len(), cols)
	}

	out := mat.DenseCopyOf(m)
	row := mat.Col(nil, 0, v)
	for i := 0; i < rows; i++ {
		floats.AddScaled(out.RawRowView(i), alpha, row)
	}

	return out, nil
}

// AsBatch returns a copy of m laid out as a batch matrix with cols columns:
// every row of the returned matrix is one batch element.
// Matrices with cols columns are copied as they are. Row and column vectors
// whose length is a multiple of cols are reshaped in row-major order.
// It returns error if m can not be laid out with cols columns.
func AsBatch(m mat.Matrix, cols int) (*mat.Dense, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil matrix", sysid.ErrDimensionMismatch)
	}

	r, c := m.Dims()
	if c == cols {
		return mat.DenseCopyOf(m), nil
	}

	n := r * c
	if (r == 1 || c == 1) && cols > 0 && n%cols == 0 {
		data := make([]float64, 0, n)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				data = append(data, m.At(i, j))
			}
		}
		return mat.NewDense(n/cols, cols, data), nil
	}

	return nil, fmt.Errorf("%w: can not lay out [%d x %d] matrix with %d columns", sysid.ErrDimensionMismatch, r, c, cols)
}
