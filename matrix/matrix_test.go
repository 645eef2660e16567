package matrix

import (
	"errors"
	"testing"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestRowColSums(t *testing.T) {
	assert := assert.New(t)

	data := []float64{1.2, 3.4, 4.5, 6.7, 8.9, 10.0}
	rowSums := []float64{4.6, 11.2, 18.9}
	colSums := []float64{14.6, 20.1}
	delta := 0.001

	m := mat.NewDense(3, 2, data)
	assert.NotNil(m)

	// check rows
	resRows := RowSums(m)
	assert.NotNil(resRows)
	assert.InDeltaSlice(rowSums, resRows, delta)
	// check cols
	resCols := ColSums(m)
	assert.NotNil(resCols)
	assert.InDeltaSlice(colSums, resCols, delta)
	// should panic
	assert.Panics(func() { RowSums(nil) })
	assert.Panics(func() { ColSums(nil) })
}

func TestRowNorms(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(2, 2, []float64{3, 4, 0, 0})
	assert.InDeltaSlice([]float64{5, 0}, RowNorms(m), 1e-12)
	assert.Panics(func() { RowNorms(nil) })
}

func TestRepeatRow(t *testing.T) {
	assert := assert.New(t)

	v := mat.NewVecDense(3, []float64{1, 2, 3})
	m := RepeatRow(v, 4)

	r, c := m.Dims()
	assert.Equal(4, r)
	assert.Equal(3, c)
	for i := 0; i < r; i++ {
		assert.Equal([]float64{1, 2, 3}, m.RawRowView(i))
	}

	// rows must be independent copies
	m.Set(0, 0, 10)
	assert.Equal(1.0, m.At(1, 0))
	assert.Equal(1.0, v.AtVec(0))
}

func TestAddSubRowVec(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	v := mat.NewVecDense(2, []float64{1, -1})

	sum, err := AddRowVec(m, v)
	assert.NoError(err)
	assert.True(mat.Equal(mat.NewDense(2, 2, []float64{2, 1, 4, 3}), sum))

	diff, err := SubRowVec(m, v)
	assert.NoError(err)
	assert.True(mat.Equal(mat.NewDense(2, 2, []float64{0, 3, 2, 5}), diff))

	// m must not be modified
	assert.True(mat.Equal(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), m))

	_, err = AddRowVec(m, mat.NewVecDense(3, nil))
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))
	_, err = SubRowVec(m, mat.NewVecDense(1, nil))
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))
}

func TestAsBatch(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		name  string
		m     mat.Matrix
		cols  int
		rows  int
		valid bool
	}{
		{"batch matrix", mat.NewDense(3, 4, nil), 4, 3, true},
		{"column vector", mat.NewVecDense(4, []float64{1, 2, 3, 4}), 4, 1, true},
		{"row vector", mat.NewDense(1, 8, nil), 4, 2, true},
		{"long column vector", mat.NewVecDense(8, nil), 2, 4, true},
		{"short vector", mat.NewVecDense(3, nil), 4, 0, false},
		{"wrong matrix", mat.NewDense(3, 3, nil), 4, 0, false},
		{"nil", nil, 4, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := AsBatch(tc.m, tc.cols)
			if !tc.valid {
				assert.Nil(b)
				assert.True(errors.Is(err, sysid.ErrDimensionMismatch))
				return
			}
			assert.NoError(err)
			r, c := b.Dims()
			assert.Equal(tc.rows, r)
			assert.Equal(tc.cols, c)
		})
	}

	// reshaping keeps row-major order
	b, err := AsBatch(mat.NewVecDense(4, []float64{1, 2, 3, 4}), 2)
	assert.NoError(err)
	assert.True(mat.Equal(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), b))
}
