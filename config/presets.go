package config

import "sort"

// Presets are named experiment configurations.
var Presets = map[string]*Config{
	"release": {
		Name: "release",
		Plant: PlantConfig{
			XBar: []float64{0, 0, 0, 0}, XInit: []float64{2, -1, 0, 0},
			H: 0.05, Mass: 1.0, K: 1.0, B: 1.0, B2: 0.1,
		},
		Controller: ControllerConfig{Type: ControllerNone},
		Noise:      NoiseConfig{Type: NoiseZero},
		Batch:      1, Horizon: 300, DataDir: DefaultDataDir,
	},
	"linear": {
		Name: "linear",
		Plant: PlantConfig{
			Linear: true, XBar: []float64{1, 1, 0, 0}, XInit: []float64{-1, 2, 0, 0},
			H: 0.05, Mass: 1.0, K: 1.0, B: 1.0,
		},
		Controller: ControllerConfig{Type: ControllerNone},
		Noise:      NoiseConfig{Type: NoiseGaussian, Std: 0.01, Seed: 1},
		Batch:      16, Horizon: 200, DataDir: DefaultDataDir,
	},
	"friction": {
		Name: "friction",
		Plant: PlantConfig{
			XBar: []float64{0, 0, 0, 0}, XInit: []float64{0, 0, 4, -3},
			H: 0.05, Mass: 1.0, K: 1.0, B: 1.0, B2: 0.5,
		},
		Controller: ControllerConfig{Type: ControllerNone},
		Noise:      NoiseConfig{Type: NoiseGaussian, Std: 0.01, Seed: 2},
		Batch:      16, Horizon: 200, DataDir: DefaultDataDir,
	},
	"pid": {
		Name: "pid",
		Plant: PlantConfig{
			XBar: []float64{0, 0, 0, 0}, XInit: []float64{2, 2, 0, 0},
			H: 0.05, Mass: 1.0, K: 1.0, B: 1.0, B2: 0.1,
		},
		Controller: ControllerConfig{
			Type: ControllerPID, Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd,
			Target: []float64{1, -1, 0, 0},
		},
		Noise: NoiseConfig{Type: NoiseGaussian, Std: 0.005, Seed: 3},
		Batch: 8, Horizon: 400, DataDir: DefaultDataDir,
	},
	"lqr": {
		Name: "lqr",
		Plant: PlantConfig{
			XBar: []float64{0, 0, 0, 0}, XInit: []float64{3, -2, 0, 0},
			H: 0.05, Mass: 1.0, K: 1.0, B: 1.0, B2: 0.1,
		},
		Controller: ControllerConfig{Type: ControllerLQR, Q: 10, R: 1},
		Noise:      NoiseConfig{Type: NoiseGaussian, Std: 0.01, Seed: 4},
		Batch:      8, Horizon: 200, DataDir: DefaultDataDir,
	},
	"excitation": {
		Name: "excitation",
		Plant: PlantConfig{
			XBar: []float64{0, 0, 0, 0},
			H:    0.05, Mass: 1.0, K: 1.0, B: 1.0, B2: 0.1,
		},
		Controller: ControllerConfig{Type: ControllerOpen, Amplitude: 1.0},
		Noise:      NoiseConfig{Type: NoiseGaussian, Std: 0.01, Seed: 5},
		Batch:      32, Horizon: 300, DataDir: DefaultDataDir,
	},
}

// GetPreset returns a copy of the named preset or nil if it does not exist.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns sorted names of all presets.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
