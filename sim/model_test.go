package sim

import (
	"errors"
	"math"
	"os"
	"testing"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

var (
	x, u, q *mat.VecDense
	A, B    *mat.Dense
)

func setup() {
	x = mat.NewVecDense(2, []float64{0.5, 0.6})
	u = mat.NewVecDense(1, []float64{-1.0})

	// state noise
	q = mat.NewVecDense(2, []float64{0.1, -0.1})

	A = mat.NewDense(2, 2, []float64{1.0, 1.0, 0.0, 1.0})
	B = mat.NewDense(2, 1, []float64{0.5, 1.0})
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestNewDiscrete(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B)
	assert.NotNil(f)
	assert.NoError(err)

	f, err = NewDiscrete(nil, B)
	assert.Nil(f)
	assert.Error(err)

	f, err = NewDiscrete(mat.NewDense(2, 3, nil), B)
	assert.Nil(f)
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))

	f, err = NewDiscrete(A, mat.NewDense(3, 1, nil))
	assert.Nil(f)
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))

	// no inputs
	f, err = NewDiscrete(A, nil)
	assert.NotNil(f)
	assert.NoError(err)
	assert.Nil(f.ControlMatrix())
}

func TestDiscretePropagate(t *testing.T) {
	assert := assert.New(t)

	var _ sysid.Propagator = (*Discrete)(nil)

	f, err := NewDiscrete(A, B)
	assert.NotNil(f)
	assert.NoError(err)

	v, err := f.Propagate(x, u, q)
	assert.NoError(err)
	// A*x + B*u + q
	assert.InDeltaSlice([]float64{0.1 + 0.6, 0.6 - 1.0 - 0.1}, mat.Col(nil, 0, v), 1e-12)

	_u := mat.NewVecDense(10, nil)
	v, err = f.Propagate(x, _u, q)
	assert.Nil(v)
	assert.Error(err)

	_x := mat.NewVecDense(10, nil)
	v, err = f.Propagate(_x, u, q)
	assert.Nil(v)
	assert.Error(err)

	_q := mat.NewVecDense(3, nil)
	v, err = f.Propagate(x, u, _q)
	assert.Nil(v)
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))

	v, err = f.Propagate(x, u, nil)
	assert.NotNil(v)
	assert.NoError(err)

	v, err = f.Propagate(x, nil, nil)
	assert.NoError(err)
	assert.InDeltaSlice([]float64{1.1, 0.6}, mat.Col(nil, 0, v), 1e-12)
}

func TestDiscretePropagateBatch(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B)
	assert.NoError(err)

	X := mat.NewDense(3, 2, []float64{0.5, 0.6, 1, 2, -1, 0})
	U := mat.NewDense(3, 1, []float64{-1, 0, 2})
	W := mat.NewDense(3, 2, []float64{0.1, -0.1, 0, 0, 0, 1})

	out, err := f.PropagateBatch(X, U, W)
	assert.NoError(err)

	// every row must match the single vector propagation
	for i := 0; i < 3; i++ {
		v, err := f.Propagate(X.RowView(i), U.RowView(i), W.RowView(i))
		assert.NoError(err)
		assert.InDeltaSlice(mat.Col(nil, 0, v), out.RawRowView(i), 1e-12)
	}

	_, err = f.PropagateBatch(mat.NewDense(3, 3, nil), U, W)
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))

	_, err = f.PropagateBatch(X, mat.NewDense(2, 1, nil), W)
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))

	_, err = f.PropagateBatch(X, U, mat.NewDense(3, 3, nil))
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))

	out, err = f.PropagateBatch(X, nil, nil)
	assert.NoError(err)
	assert.InDeltaSlice([]float64{1.1, 0.6}, out.RawRowView(0), 1e-12)
}

func TestContinuousEuler(t *testing.T) {
	assert := assert.New(t)

	ct, err := NewContinuous(A, B)
	assert.NoError(err)

	h := 0.1
	d, err := ct.Euler(h)
	assert.NoError(err)

	expA := mat.NewDense(2, 2, []float64{1.1, 0.1, 0, 1.1})
	expB := mat.NewDense(2, 1, []float64{0.05, 0.1})
	assert.True(mat.EqualApprox(expA, d.SystemMatrix(), 1e-12))
	assert.True(mat.EqualApprox(expB, d.ControlMatrix(), 1e-12))

	// continuous model must not be modified
	assert.True(mat.Equal(A, ct.SystemMatrix()))

	d, err = ct.Euler(0)
	assert.Nil(d)
	assert.True(errors.Is(err, sysid.ErrInvalidParam))
}

func TestContinuousToDiscrete(t *testing.T) {
	assert := assert.New(t)

	Ts := 0.1

	// non-singular system matrix
	ct, err := NewContinuous(mat.NewDense(1, 1, []float64{-1}), mat.NewDense(1, 1, []float64{1}))
	assert.NoError(err)
	d, err := ct.ToDiscrete(Ts)
	assert.NoError(err)
	assert.InDelta(math.Exp(-Ts), d.A.At(0, 0), 1e-9)
	assert.InDelta(1-math.Exp(-Ts), d.B.At(0, 0), 1e-9)

	// singular system matrix: double integrator
	ct, err = NewContinuous(mat.NewDense(2, 2, []float64{0, 1, 0, 0}), mat.NewDense(2, 1, []float64{0, 1}))
	assert.NoError(err)
	d, err = ct.ToDiscrete(Ts)
	assert.NoError(err)
	assert.True(mat.EqualApprox(mat.NewDense(2, 2, []float64{1, Ts, 0, 1}), d.A, 1e-9))
	assert.InDelta(Ts*Ts/2, d.B.At(0, 0), 1e-6)
	assert.InDelta(Ts, d.B.At(1, 0), 1e-6)

	d, err = ct.ToDiscrete(-1)
	assert.Nil(d)
	assert.True(errors.Is(err, sysid.ErrInvalidParam))
}

func TestContinuousPropagate(t *testing.T) {
	assert := assert.New(t)

	ct, err := NewContinuous(A, B)
	assert.NoError(err)

	dt := 0.1
	v, err := ct.Propagate(x, u, nil, dt)
	assert.NoError(err)

	d, err := ct.Euler(dt)
	assert.NoError(err)
	vd, err := d.Propagate(x, u, nil)
	assert.NoError(err)

	// forward Euler step equals propagation of the Euler discretized model
	assert.InDeltaSlice(mat.Col(nil, 0, vd), mat.Col(nil, 0, v), 1e-12)

	v, err = ct.Propagate(mat.NewVecDense(3, nil), u, nil, dt)
	assert.Nil(v)
	assert.Error(err)
}

func TestSystemDims(t *testing.T) {
	assert := assert.New(t)
	f := System{A, B}

	nx, nu := f.SystemDims()
	r, c := A.Dims()
	assert.Equal(nx, r) // A is square [n,n]
	assert.Equal(nx, c)
	r, c = B.Dims()
	assert.Equal(nx, r) // B [n,p]
	assert.Equal(nu, c)

	m := f.SystemMatrix()
	assert.True(mat.EqualApprox(m, A, 0.001))

	m = f.ControlMatrix()
	assert.True(mat.EqualApprox(m, B, 0.001))
}
