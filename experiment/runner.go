// Package experiment runs configured rollouts of the robot plant.
package experiment

import (
	"fmt"
	"time"

	"github.com/milosgajdos/go-sysid/config"
	"github.com/milosgajdos/go-sysid/metrics"
	"github.com/milosgajdos/go-sysid/noise"
	"github.com/milosgajdos/go-sysid/store"
	"github.com/milosgajdos/go-sysid/traj"
	"go.uber.org/zap"
)

// Result is the result of a single experiment.
type Result struct {
	// ID is the ID of the stored run; empty if the run was not stored
	ID       string
	Config   *config.Config
	XLog     *traj.Tensor
	ULog     *traj.Tensor
	Metrics  map[string]float64
	StateStd []float64
	Elapsed  time.Duration
}

// Runner runs experiments and stores their results.
type Runner struct {
	logger *zap.Logger
	store  *store.Store
}

// NewRunner creates new experiment runner.
// Results are not stored if st is nil. If logger is nil nothing is logged.
func NewRunner(logger *zap.Logger, st *store.Store) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		logger: logger,
		store:  st,
	}
}

// Run builds the plant, controller and process noise from cfg, runs the rollout,
// evaluates it and stores it if the runner has a store.
func (r *Runner) Run(cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("invalid config: %v", cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := r.logger.With(
		zap.String("name", cfg.Name),
		zap.Bool("linear", cfg.Plant.Linear),
		zap.String("controller", cfg.Controller.Type),
		zap.String("noise", cfg.Noise.Type),
	)

	plant, err := NewPlant(cfg.Plant)
	if err != nil {
		log.Error("failed to create plant", zap.Error(err))
		return nil, fmt.Errorf("plant: %w", err)
	}

	ctrl, err := NewController(cfg.Controller, plant, cfg.Batch, cfg.Horizon, cfg.Noise.Seed+1)
	if err != nil {
		log.Error("failed to create controller", zap.Error(err))
		return nil, fmt.Errorf("controller: %w", err)
	}

	n, err := NewNoise(cfg.Noise)
	if err != nil {
		log.Error("failed to create noise", zap.Error(err))
		return nil, fmt.Errorf("noise: %w", err)
	}

	w, err := noise.Batch(n, cfg.Batch, cfg.Horizon)
	if err != nil {
		return nil, fmt.Errorf("noise: %w", err)
	}

	log.Info("rollout started", zap.Int("batch", cfg.Batch), zap.Int("horizon", cfg.Horizon))

	start := time.Now()
	xLog, uLog, err := plant.Rollout(ctrl, w)
	if err != nil {
		log.Error("rollout failed", zap.Error(err))
		return nil, fmt.Errorf("rollout: %w", err)
	}
	elapsed := time.Since(start)

	target := Target(cfg.Controller, plant)
	values, err := metrics.Evaluate(xLog, uLog, NewMetrics(target)...)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	res := &Result{
		Config:   cfg.Clone(),
		XLog:     xLog,
		ULog:     uLog,
		Metrics:  values,
		StateStd: metrics.StateStd(xLog),
		Elapsed:  elapsed,
	}

	fields := []zap.Field{zap.Duration("elapsed", elapsed)}
	for name, v := range values {
		fields = append(fields, zap.Float64(name, v))
	}
	log.Info("rollout finished", fields...)

	if r.store == nil {
		return res, nil
	}

	p := plant.Params()
	meta := store.Metadata{
		Name:       cfg.Name,
		Linear:     cfg.Plant.Linear,
		Controller: cfg.Controller.Type,
		Noise:      cfg.Noise.Type,
		Seed:       cfg.Noise.Seed,
		Dt:         p.H,
		Params: map[string]float64{
			"h":    p.H,
			"mass": p.Mass,
			"k":    p.K,
			"b":    p.B,
			"b2":   p.B2,
		},
		Metrics: values,
	}

	id, err := r.store.Save(meta, xLog, uLog)
	if err != nil {
		log.Error("failed to store run", zap.Error(err))
		return nil, fmt.Errorf("store: %w", err)
	}
	res.ID = id

	log.Info("run stored", zap.String("id", id), zap.String("dir", r.store.Dir()))

	return res, nil
}
