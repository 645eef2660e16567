// Package config provides experiment configuration stored as YAML.
package config

import (
	"fmt"
	"os"

	sysid "github.com/milosgajdos/go-sysid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBatch   = 8
	DefaultHorizon = 200
	DefaultStd     = 0.01
	DefaultSeed    = 1
	DefaultKp      = 2.0
	DefaultKi      = 0.1
	DefaultKd      = 0.5
	DefaultDataDir = "runs"
)

// Controller types
const (
	ControllerNone     = "none"
	ControllerFeedback = "feedback"
	ControllerLQR      = "lqr"
	ControllerPID      = "pid"
	ControllerOpen     = "open"
)

// Noise types
const (
	NoiseGaussian = "gaussian"
	NoiseZero     = "zero"
)

// Config is a rollout experiment configuration.
type Config struct {
	Name       string           `yaml:"name"`
	Plant      PlantConfig      `yaml:"plant"`
	Controller ControllerConfig `yaml:"controller"`
	Noise      NoiseConfig      `yaml:"noise"`
	Batch      int              `yaml:"batch"`
	Horizon    int              `yaml:"horizon"`
	DataDir    string           `yaml:"data_dir"`
}

// PlantConfig configures the robot plant.
type PlantConfig struct {
	Linear bool      `yaml:"linear"`
	XBar   []float64 `yaml:"xbar"`
	XInit  []float64 `yaml:"x_init,omitempty"`
	UInit  []float64 `yaml:"u_init,omitempty"`
	H      float64   `yaml:"h"`
	Mass   float64   `yaml:"mass"`
	K      float64   `yaml:"k"`
	B      float64   `yaml:"b"`
	B2     float64   `yaml:"b2"`
}

// ControllerConfig configures the controller.
type ControllerConfig struct {
	Type string  `yaml:"type"`
	Kp   float64 `yaml:"kp"`
	Ki   float64 `yaml:"ki"`
	Kd   float64 `yaml:"kd"`
	// Gain is the row-major feedback gain matrix with one row per input
	Gain []float64 `yaml:"gain,omitempty"`
	// Q and R are diagonal LQR state and input weights
	Q float64 `yaml:"q,omitempty"`
	R float64 `yaml:"r,omitempty"`
	// Amplitude is the standard deviation of open loop excitation inputs
	Amplitude float64 `yaml:"amplitude,omitempty"`
	// Target is the controller target; plant equilibrium is used when empty
	Target []float64 `yaml:"target,omitempty"`
}

// NoiseConfig configures the process noise.
type NoiseConfig struct {
	Type string  `yaml:"type"`
	Std  float64 `yaml:"std"`
	Seed uint64  `yaml:"seed"`
}

// DefaultConfig returns default configuration:
// nonlinear plant at the origin released from a displaced state without control.
func DefaultConfig() *Config {
	return &Config{
		Name: "default",
		Plant: PlantConfig{
			XBar:  []float64{0, 0, 0, 0},
			XInit: []float64{2, -1, 0, 0},
			H:     0.05,
			Mass:  1.0,
			K:     1.0,
			B:     1.0,
			B2:    0.1,
		},
		Controller: ControllerConfig{
			Type: ControllerNone,
			Kp:   DefaultKp,
			Ki:   DefaultKi,
			Kd:   DefaultKd,
		},
		Noise: NoiseConfig{
			Type: NoiseGaussian,
			Std:  DefaultStd,
			Seed: DefaultSeed,
		},
		Batch:   DefaultBatch,
		Horizon: DefaultHorizon,
		DataDir: DefaultDataDir,
	}
}

// Load reads configuration from YAML file in path.
// Values missing in the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to YAML file in path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Plant.XBar = cloneSlice(c.Plant.XBar)
	out.Plant.XInit = cloneSlice(c.Plant.XInit)
	out.Plant.UInit = cloneSlice(c.Plant.UInit)
	out.Controller.Gain = cloneSlice(c.Controller.Gain)
	out.Controller.Target = cloneSlice(c.Controller.Target)

	return &out
}

func cloneSlice(s []float64) []float64 {
	if s == nil {
		return nil
	}
	return append([]float64(nil), s...)
}

// Validate checks the configuration and returns error if it is not valid.
func (c *Config) Validate() error {
	if c.Batch <= 0 {
		return fmt.Errorf("%w: batch must be positive: %d", sysid.ErrInvalidParam, c.Batch)
	}

	if c.Horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive: %d", sysid.ErrInvalidParam, c.Horizon)
	}

	if err := c.Plant.validate(); err != nil {
		return fmt.Errorf("plant: %w", err)
	}

	if err := c.Controller.validate(); err != nil {
		return fmt.Errorf("controller: %w", err)
	}

	if err := c.Noise.validate(); err != nil {
		return fmt.Errorf("noise: %w", err)
	}

	return nil
}

func (p PlantConfig) validate() error {
	if len(p.XBar) != 4 {
		return fmt.Errorf("%w: xbar must have 4 components, got %d", sysid.ErrDimensionMismatch, len(p.XBar))
	}

	if p.XInit != nil && len(p.XInit) != 4 {
		return fmt.Errorf("%w: x_init must have 4 components, got %d", sysid.ErrDimensionMismatch, len(p.XInit))
	}

	if p.UInit != nil && len(p.UInit) != 2 {
		return fmt.Errorf("%w: u_init must have 2 components, got %d", sysid.ErrDimensionMismatch, len(p.UInit))
	}

	if p.H <= 0 || p.Mass <= 0 {
		return fmt.Errorf("%w: h and mass must be positive", sysid.ErrInvalidParam)
	}

	return nil
}

func (c ControllerConfig) validate() error {
	switch c.Type {
	case ControllerNone, ControllerPID, ControllerLQR:
	case ControllerFeedback:
		if len(c.Gain) != 2*4 {
			return fmt.Errorf("%w: feedback gain must have 8 elements, got %d", sysid.ErrDimensionMismatch, len(c.Gain))
		}
	case ControllerOpen:
		if c.Amplitude < 0 {
			return fmt.Errorf("%w: negative amplitude: %f", sysid.ErrInvalidParam, c.Amplitude)
		}
	default:
		return fmt.Errorf("%w: unknown controller type: %q", sysid.ErrInvalidParam, c.Type)
	}

	if c.Target != nil && len(c.Target) != 4 {
		return fmt.Errorf("%w: target must have 4 components, got %d", sysid.ErrDimensionMismatch, len(c.Target))
	}

	return nil
}

func (n NoiseConfig) validate() error {
	switch n.Type {
	case NoiseZero:
	case NoiseGaussian:
		if n.Std <= 0 {
			return fmt.Errorf("%w: standard deviation must be positive: %f", sysid.ErrInvalidParam, n.Std)
		}
	default:
		return fmt.Errorf("%w: unknown noise type: %q", sysid.ErrInvalidParam, n.Type)
	}

	return nil
}
