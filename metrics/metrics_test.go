package metrics

import (
	"errors"
	"os"
	"testing"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/traj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var (
	xLog   *traj.Tensor
	uLog   *traj.Tensor
	target *mat.VecDense
)

func setup() {
	// 2 trajectories, 2 steps, 2 states
	xLog, _ = traj.New(2, 2, 2, []float64{
		3, 4, 0, 0,
		0, 1, 0, 2,
	})
	uLog, _ = traj.New(2, 2, 1, []float64{
		1, -1,
		2, 0,
	})
	target = mat.NewVecDense(2, nil)
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestEvaluate(t *testing.T) {
	assert := assert.New(t)

	values, err := Evaluate(xLog, uLog,
		NewControlEffort(),
		NewMeanDeviation(target),
		NewMaxDeviation(target),
		NewFinalDeviation(target),
		NewStability(target, 1.5),
	)
	require.NoError(t, err)

	assert.InDelta(1.0, values["control_effort"], 1e-12)
	// distances: 5, 0, 1, 2
	assert.InDelta(2.0, values["mean_deviation"], 1e-12)
	assert.InDelta(5.0, values["max_deviation"], 1e-12)
	// last step: 0 and 2
	assert.InDelta(1.0, values["final_deviation"], 1e-12)
	// 5 and 2 are out of bounds
	assert.InDelta(0.5, values["stability"], 1e-12)
}

func TestEvaluateReset(t *testing.T) {
	assert := assert.New(t)

	m := NewControlEffort()
	v1, err := Evaluate(xLog, uLog, m)
	require.NoError(t, err)
	v2, err := Evaluate(xLog, uLog, m)
	require.NoError(t, err)
	assert.Equal(v1, v2)
}

func TestEvaluateInvalid(t *testing.T) {
	assert := assert.New(t)

	short, err := traj.New(2, 1, 1, nil)
	require.NoError(t, err)

	values, err := Evaluate(xLog, short, NewControlEffort())
	assert.Nil(values)
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))

	values, err = Evaluate(nil, uLog)
	assert.Nil(values)
	assert.Error(err)
}

func TestEmptyMetrics(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0.0, NewControlEffort().Value())
	assert.Equal(0.0, NewMeanDeviation(target).Value())
	assert.Equal(1.0, NewStability(target, 1).Value())
}

func TestStateStd(t *testing.T) {
	assert := assert.New(t)

	std := StateStd(xLog)
	assert.Len(std, 2)
	// first component: 3, 0, 0, 0
	assert.InDelta(1.5, std[0], 1e-12)
	// second component: 4, 0, 1, 2
	assert.InDelta(1.707825127659933, std[1], 1e-12)
}
