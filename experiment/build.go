package experiment

import (
	"fmt"

	sysid "github.com/milosgajdos/go-sysid"
	"github.com/milosgajdos/go-sysid/config"
	"github.com/milosgajdos/go-sysid/control"
	"github.com/milosgajdos/go-sysid/metrics"
	"github.com/milosgajdos/go-sysid/noise"
	"github.com/milosgajdos/go-sysid/robots"
	"github.com/milosgajdos/go-sysid/traj"
	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// stabilityThreshold is the largest per component distance from target counted as stable
const stabilityThreshold = 0.1

// NewPlant creates the robot plant configured by cfg.
func NewPlant(cfg config.PlantConfig) (*robots.System, error) {
	p := robots.Params{
		XBar:   vec(cfg.XBar),
		XInit:  vec(cfg.XInit),
		UInit:  vec(cfg.UInit),
		Linear: cfg.Linear,
		H:      cfg.H,
		Mass:   cfg.Mass,
		K:      cfg.K,
		B:      cfg.B,
		B2:     cfg.B2,
	}

	return robots.NewWithParams(p)
}

// vec returns nil for empty slices so that plant defaults apply.
func vec(data []float64) mat.Vector {
	if len(data) == 0 {
		return nil
	}
	return mat.NewVecDense(len(data), append([]float64(nil), data...))
}

// Target returns the controller target: the configured one or the plant equilibrium.
func Target(cfg config.ControllerConfig, plant *robots.System) *mat.VecDense {
	if len(cfg.Target) == robots.StateDim {
		return mat.NewVecDense(robots.StateDim, append([]float64(nil), cfg.Target...))
	}
	return plant.XBar()
}

// NewNoise creates the process noise source configured by cfg.
func NewNoise(cfg config.NoiseConfig) (sysid.Noise, error) {
	n, err := newNoise(cfg)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func newNoise(cfg config.NoiseConfig) (sysid.Noise, error) {
	switch cfg.Type {
	case config.NoiseZero:
		return noise.NewZero(robots.StateDim)
	case config.NoiseGaussian:
		return noise.NewIsotropic(robots.StateDim, cfg.Std, cfg.Seed)
	}

	return nil, fmt.Errorf("%w: unknown noise type: %q", sysid.ErrInvalidParam, cfg.Type)
}

// NewController creates the controller configured by cfg for the given plant.
// Open loop controllers replay batch x horizon random inputs seeded by seed.
func NewController(cfg config.ControllerConfig, plant *robots.System, batch, horizon int, seed uint64) (sysid.Controller, error) {
	c, err := newController(cfg, plant, batch, horizon, seed)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newController(cfg config.ControllerConfig, plant *robots.System, batch, horizon int, seed uint64) (sysid.Controller, error) {
	target := Target(cfg, plant)
	_, nu := plant.Dims()

	switch cfg.Type {
	case config.ControllerNone:
		return control.NewNone(nu)
	case config.ControllerPID:
		return control.NewPID(cfg.Kp, cfg.Ki, cfg.Kd, plant.Params().H, target.SliceVec(0, nu))
	case config.ControllerFeedback:
		nx, _ := plant.Dims()
		if len(cfg.Gain) != nu*nx {
			return nil, fmt.Errorf("%w: feedback gain must have %d elements", sysid.ErrDimensionMismatch, nu*nx)
		}
		return control.NewFeedback(mat.NewDense(nu, nx, append([]float64(nil), cfg.Gain...)), target)
	case config.ControllerLQR:
		return newLQR(cfg, plant, target)
	case config.ControllerOpen:
		u, err := excitation(cfg.Amplitude, nu, batch, horizon, seed)
		if err != nil {
			return nil, err
		}
		return control.NewOpen(u)
	}

	return nil, fmt.Errorf("%w: unknown controller type: %q", sysid.ErrInvalidParam, cfg.Type)
}

func newLQR(cfg config.ControllerConfig, plant *robots.System, target *mat.VecDense) (*control.Feedback, error) {
	nx, nu := plant.Dims()

	A, B, err := plant.Linearize(target, mat.NewVecDense(nu, nil))
	if err != nil {
		return nil, err
	}

	q, r := cfg.Q, cfg.R
	if q <= 0 {
		q = 1.0
	}
	if r <= 0 {
		r = 1.0
	}

	Q, err := matrix.NewDenseValIdentity(nx, q)
	if err != nil {
		return nil, err
	}

	R, err := matrix.NewDenseValIdentity(nu, r)
	if err != nil {
		return nil, err
	}

	return control.NewLQR(A, B, Q, R, target)
}

// excitation returns batch x horizon x dim tensor of gaussian inputs with standard deviation amplitude.
func excitation(amplitude float64, dim, batch, horizon int, seed uint64) (*traj.Tensor, error) {
	if amplitude <= 0 {
		return traj.New(batch, horizon, dim, nil)
	}

	n, err := noise.NewIsotropic(dim, amplitude, seed)
	if err != nil {
		return nil, err
	}

	return noise.Batch(n, batch, horizon)
}

// NewMetrics returns rollout metrics measured against target.
func NewMetrics(target mat.Vector) []metrics.Metric {
	return []metrics.Metric{
		metrics.NewControlEffort(),
		metrics.NewMeanDeviation(target),
		metrics.NewMaxDeviation(target),
		metrics.NewFinalDeviation(target),
		metrics.NewStability(target, stabilityThreshold),
	}
}
