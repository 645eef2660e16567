package robots

import (
	"errors"
	"testing"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/traj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// mockCtrl is a stateless proportional controller which counts resets.
type mockCtrl struct {
	gain   float64
	resets int
	steps  []int
	fail   bool
	cols   int
}

func (c *mockCtrl) Reset() {
	c.resets++
	c.steps = nil
}

func (c *mockCtrl) Control(t int, x *mat.Dense) (*mat.Dense, error) {
	if c.fail {
		return nil, errors.New("controller failure")
	}

	c.steps = append(c.steps, t)

	rows, _ := x.Dims()
	cols := InDim
	if c.cols > 0 {
		cols = c.cols
	}

	u := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols && j < StateDim; j++ {
			u.Set(i, j, -c.gain*x.At(i, j))
		}
	}

	return u, nil
}

func noiseTensor(t *testing.T, batch, steps, dim int, seed uint64) *traj.Tensor {
	w, err := traj.New(batch, steps, dim, nil)
	require.NoError(t, err)

	for s := 0; s < steps; s++ {
		require.NoError(t, w.SetStep(s, randomBatch(batch, dim, seed+uint64(s))))
	}

	return w
}

func TestRollout(t *testing.T) {
	assert := assert.New(t)

	batch, steps := 3, 10
	w := noiseTensor(t, batch, steps, StateDim, 1)

	for _, linear := range []bool{true, false} {
		s, err := New(xbar, linear, xInit, uInit, 1.0)
		require.NoError(t, err)

		c := &mockCtrl{gain: 0.5}
		xLog, uLog, err := s.Rollout(c, w)
		require.NoError(t, err)
		assert.Equal(2, c.resets)

		b, st, d := xLog.Dims()
		assert.Equal([]int{batch, steps, StateDim}, []int{b, st, d})
		b, st, d = uLog.Dims()
		assert.Equal([]int{batch, steps, InDim}, []int{b, st, d})

		// replay the loop step by step
		ref := &mockCtrl{gain: 0.5}
		x := mat.NewDense(batch, StateDim, nil)
		u := mat.NewDense(batch, InDim, nil)
		for i := 0; i < batch; i++ {
			x.SetRow(i, xInit.RawVector().Data)
			u.SetRow(i, uInit.RawVector().Data)
		}
		for k := 0; k < steps; k++ {
			x, err = s.Forward(k, x, u, w.Step(k))
			require.NoError(t, err)
			u, err = ref.Control(k, x)
			require.NoError(t, err)

			assert.True(mat.Equal(x, xLog.Step(k)))
			assert.True(mat.Equal(u, uLog.Step(k)))
		}
	}
}

func TestRolloutDeterministic(t *testing.T) {
	assert := assert.New(t)

	w := noiseTensor(t, 4, 25, StateDim, 11)

	s, err := New(xbar, false, xInit, nil, 1.0)
	require.NoError(t, err)

	c := &mockCtrl{gain: 1.0}
	xLog1, uLog1, err := s.Rollout(c, w)
	require.NoError(t, err)
	xLog2, uLog2, err := s.Rollout(c, w)
	require.NoError(t, err)

	assert.True(traj.Equal(xLog1, xLog2))
	assert.True(traj.Equal(uLog1, uLog2))
	assert.Equal(4, c.resets)
}

func TestRolloutBatchIndependence(t *testing.T) {
	assert := assert.New(t)

	batch := 2
	w := noiseTensor(t, batch, 30, StateDim, 21)

	for _, linear := range []bool{true, false} {
		s, err := New(xbar, linear, xInit, uInit, 1.0)
		require.NoError(t, err)

		xLog, uLog, err := s.Rollout(&mockCtrl{gain: 0.8}, w)
		require.NoError(t, err)

		for b := 0; b < batch; b++ {
			xb, ub, err := s.Rollout(&mockCtrl{gain: 0.8}, w.Element(b))
			require.NoError(t, err)

			assert.True(traj.EqualApprox(xLog.Element(b), xb, 1e-12))
			assert.True(traj.EqualApprox(uLog.Element(b), ub, 1e-12))
		}
	}
}

func TestRolloutEquilibrium(t *testing.T) {
	assert := assert.New(t)

	batch, steps := 2, 50
	w, err := traj.New(batch, steps, StateDim, nil)
	require.NoError(t, err)

	for _, linear := range []bool{true, false} {
		s, err := New(xbar, linear, nil, nil, 1.0)
		require.NoError(t, err)

		xLog, _, err := s.Rollout(&mockCtrl{}, w)
		require.NoError(t, err)

		for b := 0; b < batch; b++ {
			for k := 0; k < steps; k++ {
				for i := 0; i < StateDim; i++ {
					assert.Equal(xbar.AtVec(i), xLog.At(b, k, i))
				}
			}
		}
	}
}

func TestRolloutSingleStep(t *testing.T) {
	assert := assert.New(t)

	w := noiseTensor(t, 1, 1, StateDim, 3)

	s, err := New(xbar, true, xInit, uInit, 1.0)
	require.NoError(t, err)

	xLog, _, err := s.Rollout(&mockCtrl{}, w)
	require.NoError(t, err)

	exp, err := s.Forward(0, xInit, uInit, w.Step(0))
	require.NoError(t, err)
	assert.True(mat.Equal(exp, xLog.Step(0)))
}

func TestRolloutConverges(t *testing.T) {
	assert := assert.New(t)

	// the pre-stabilized plant returns to equilibrium without noise and input
	w, err := traj.New(1, 400, StateDim, nil)
	require.NoError(t, err)

	for _, linear := range []bool{true, false} {
		s, err := New(xbar, linear, xInit, nil, 1.0)
		require.NoError(t, err)

		xLog, _, err := s.Rollout(&mockCtrl{}, w)
		require.NoError(t, err)

		last := xLog.Step(399)
		for i := 0; i < StateDim; i++ {
			assert.InDelta(xbar.AtVec(i), last.At(0, i), 1e-2)
		}
	}
}

func TestRolloutInvalid(t *testing.T) {
	assert := assert.New(t)

	s, err := New(xbar, false, nil, nil, 1.0)
	require.NoError(t, err)

	w := noiseTensor(t, 2, 5, StateDim, 9)

	testCases := []struct {
		ctrl  *mockCtrl
		noise *traj.Tensor
		is    error
	}{
		{&mockCtrl{}, noiseTensor(t, 2, 5, 3, 9), sysid.ErrDimensionMismatch},
		{&mockCtrl{}, nil, sysid.ErrDimensionMismatch},
		{&mockCtrl{}, &traj.Tensor{}, sysid.ErrDimensionMismatch},
		{&mockCtrl{cols: 3}, w, sysid.ErrDimensionMismatch},
		{&mockCtrl{fail: true}, w, nil},
	}

	for _, tc := range testCases {
		xLog, uLog, err := s.Rollout(tc.ctrl, tc.noise)
		assert.Nil(xLog)
		assert.Nil(uLog)
		assert.Error(err)
		if tc.is != nil {
			assert.True(errors.Is(err, tc.is))
		}
		// reset before and after
		assert.Equal(2, tc.ctrl.resets)
	}

	xLog, uLog, err := s.Rollout(nil, w)
	assert.Nil(xLog)
	assert.Nil(uLog)
	assert.Error(err)
}
