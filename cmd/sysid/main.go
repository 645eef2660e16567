package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	linear     bool
	controller string
	batch      int
	horizon    int
	seed       uint64
	std        float64
	noStore    bool
	trajIdx    int
	outFile    string
	plotKind   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sysid",
		Short:         "batched robot plant simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batched rollout and store it",
		Args:  cobra.NoArgs,
		RunE:  runRollout,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&linear, "linear", false, "use linear plant")
	runCmd.Flags().StringVar(&controller, "controller", "none", "controller: none|pid|lqr|feedback|open")
	runCmd.Flags().IntVar(&batch, "batch", 8, "number of trajectories")
	runCmd.Flags().IntVar(&horizon, "horizon", 200, "number of steps")
	runCmd.Flags().Uint64Var(&seed, "seed", 1, "noise seed")
	runCmd.Flags().Float64Var(&std, "std", 0.01, "process noise standard deviation; 0 disables noise")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "show run metadata and plot trajectory in terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&trajIdx, "traj", 0, "trajectory index")

	plotCmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot run trajectories to an image",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (defaults to <run-id>.png)")
	plotCmd.Flags().StringVar(&plotKind, "kind", "position", "plot kind: position|time")
	plotCmd.Flags().IntVar(&trajIdx, "traj", 0, "trajectory index for time plots")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write default or preset configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	configCmd.Flags().StringVar(&preset, "preset", "", "write preset configuration")

	linearizeCmd := &cobra.Command{
		Use:   "linearize",
		Short: "print the plant Jacobians at the equilibrium",
		Args:  cobra.NoArgs,
		RunE:  linearizePlant,
	}
	linearizeCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	linearizeCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, presetsCmd, configCmd, linearizeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true

	return cfg.Build()
}
