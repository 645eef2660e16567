package experiment

import (
	"errors"
	"testing"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/config"
	"github.com/milosgajdos/go-sysid/control"
	"github.com/milosgajdos/go-sysid/store"
	"github.com/milosgajdos/go-sysid/traj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"
)

func TestRunRelease(t *testing.T) {
	assert := assert.New(t)

	r := NewRunner(nil, nil)
	res, err := r.Run(config.GetPreset("release"))
	require.NoError(t, err)

	assert.Empty(res.ID)
	b, s, d := res.XLog.Dims()
	assert.Equal([]int{1, 300, 4}, []int{b, s, d})
	assert.Len(res.StateStd, 4)

	// the released agent returns to equilibrium
	assert.Less(res.Metrics["final_deviation"], 0.05)
	assert.Greater(res.Metrics["max_deviation"], 2.0)
	assert.Equal(0.0, res.Metrics["control_effort"])
}

func TestRunPresets(t *testing.T) {
	assert := assert.New(t)

	core, logs := observer.New(zapcore.InfoLevel)
	st := store.New(t.TempDir())
	r := NewRunner(zap.New(core), st)

	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		cfg.Horizon = 50

		res, err := r.Run(cfg)
		require.NoError(t, err, name)
		assert.NotEmpty(res.ID)

		meta, err := st.Load(res.ID)
		require.NoError(t, err)
		assert.Equal(name, meta.Name)
		assert.Equal(cfg.Batch, meta.Batch)
		assert.Equal(50, meta.Steps)

		xLog, uLog, err := st.LoadRollout(res.ID)
		require.NoError(t, err)
		assert.True(traj.Equal(res.XLog, xLog))
		assert.True(traj.Equal(res.ULog, uLog))
	}

	runs, err := st.List()
	assert.NoError(err)
	assert.Len(runs, len(config.Presets))

	assert.Equal(len(config.Presets), logs.FilterMessage("rollout finished").Len())
	assert.Equal(len(config.Presets), logs.FilterMessage("run stored").Len())
}

func TestRunDeterministic(t *testing.T) {
	assert := assert.New(t)

	r := NewRunner(nil, nil)
	cfg := config.GetPreset("pid")
	cfg.Horizon = 40

	res1, err := r.Run(cfg)
	require.NoError(t, err)
	res2, err := r.Run(cfg)
	require.NoError(t, err)

	assert.True(traj.Equal(res1.XLog, res2.XLog))
	assert.Equal(res1.Metrics, res2.Metrics)
}

func TestRunInvalid(t *testing.T) {
	assert := assert.New(t)

	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRunner(zap.New(core), nil)

	res, err := r.Run(nil)
	assert.Nil(res)
	assert.Error(err)

	cfg := config.DefaultConfig()
	cfg.Batch = 0
	res, err = r.Run(cfg)
	assert.Nil(res)
	assert.True(errors.Is(err, sysid.ErrInvalidParam))

	// invalid configs are rejected before anything runs
	assert.Equal(0, logs.Len())
}

func TestNewController(t *testing.T) {
	assert := assert.New(t)

	plant, err := NewPlant(config.DefaultConfig().Plant)
	require.NoError(t, err)

	testCases := []struct {
		cfg config.ControllerConfig
		exp interface{}
	}{
		{config.ControllerConfig{Type: config.ControllerNone}, &control.None{}},
		{config.ControllerConfig{Type: config.ControllerPID, Kp: 1}, &control.PID{}},
		{config.ControllerConfig{Type: config.ControllerFeedback, Gain: make([]float64, 8)}, &control.Feedback{}},
		{config.ControllerConfig{Type: config.ControllerLQR}, &control.Feedback{}},
		{config.ControllerConfig{Type: config.ControllerOpen, Amplitude: 1}, &control.Open{}},
		{config.ControllerConfig{Type: config.ControllerOpen}, &control.Open{}},
	}

	for _, tc := range testCases {
		c, err := NewController(tc.cfg, plant, 2, 10, 1)
		assert.NoError(err)
		assert.IsType(tc.exp, c)
	}

	c, err := NewController(config.ControllerConfig{Type: "mpc"}, plant, 2, 10, 1)
	assert.Nil(c)
	assert.Error(err)

	c, err = NewController(config.ControllerConfig{Type: config.ControllerFeedback}, plant, 2, 10, 1)
	assert.Nil(c)
	assert.True(errors.Is(err, sysid.ErrDimensionMismatch))
}

func TestLQRStabilizes(t *testing.T) {
	assert := assert.New(t)

	cfg := config.GetPreset("lqr")
	plant, err := NewPlant(cfg.Plant)
	require.NoError(t, err)

	c, err := NewController(cfg.Controller, plant, 1, 1, 1)
	require.NoError(t, err)
	K := c.(*control.Feedback).Gain()

	// closed loop around the equilibrium is stable
	A := plant.LinearStateMatrix()
	BK := new(mat.Dense)
	BK.Mul(plant.ControlMatrix(), K)
	A.Sub(A, BK)

	var eig mat.Eigen
	require.True(t, eig.Factorize(A, mat.EigenNone))
	for _, v := range eig.Values(nil) {
		assert.Less(real(v)*real(v)+imag(v)*imag(v), 1.0)
	}
}

func TestNewNoise(t *testing.T) {
	assert := assert.New(t)

	n, err := NewNoise(config.NoiseConfig{Type: config.NoiseZero})
	assert.NoError(err)
	assert.Len(n.Mean(), 4)

	n, err = NewNoise(config.NoiseConfig{Type: config.NoiseGaussian, Std: 0.1, Seed: 1})
	assert.NoError(err)
	assert.Len(n.Mean(), 4)

	n, err = NewNoise(config.NoiseConfig{Type: "pink"})
	assert.Nil(n)
	assert.Error(err)
}
