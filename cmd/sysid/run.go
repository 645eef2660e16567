package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/milosgajdos/go-sysid/config"
	"github.com/milosgajdos/go-sysid/experiment"
	"github.com/milosgajdos/go-sysid/store"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// loadConfig returns the configuration selected by --config and --preset.
// The config file overrides the preset.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	return cfg, nil
}

func runRollout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// explicit flags override the configuration
	flags := cmd.Flags()
	if flags.Changed("linear") {
		cfg.Plant.Linear = linear
	}
	if flags.Changed("controller") {
		cfg.Controller.Type = controller
	}
	if flags.Changed("batch") {
		cfg.Batch = batch
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("seed") {
		cfg.Noise.Seed = seed
	}
	if flags.Changed("std") {
		cfg.Noise.Std = std
		cfg.Noise.Type = config.NoiseGaussian
		if std == 0 {
			cfg.Noise.Type = config.NoiseZero
		}
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var st *store.Store
	if !noStore {
		st = store.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return fmt.Errorf("failed to init store: %w", err)
		}
	}

	res, err := experiment.NewRunner(logger, st).Run(cfg)
	if err != nil {
		return err
	}

	if res.ID != "" {
		fmt.Printf("run: %s\n", res.ID)
	}
	fmt.Printf("elapsed: %s\n\n", res.Elapsed)

	return printMetrics(res.Metrics)
}

func printMetrics(values map[string]float64) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6f\n", name, values[name])
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPLANT\tCTRL\tNOISE\tBATCH\tHORIZON")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		plant := "nonlinear"
		if cfg.Plant.Linear {
			plant = "linear"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", name, plant, cfg.Controller.Type, cfg.Noise.Type, cfg.Batch, cfg.Horizon)
	}

	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := "sysid.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Printf("config written to %s\n", path)

	return nil
}

func linearizePlant(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	plant, err := experiment.NewPlant(cfg.Plant)
	if err != nil {
		return err
	}

	_, nu := plant.Dims()
	A, B, err := plant.Linearize(plant.XBar(), mat.NewVecDense(nu, nil))
	if err != nil {
		return err
	}

	fmt.Printf("A = %.6f\n\n", mat.Formatted(A, mat.Prefix("    "), mat.Squeeze()))
	fmt.Printf("B = %.6f\n", mat.Formatted(B, mat.Prefix("    "), mat.Squeeze()))

	return nil
}
