package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/milosgajdos/go-sysid/config"
	"github.com/milosgajdos/go-sysid/sim"
	"github.com/milosgajdos/go-sysid/store"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"
)

var stateLabels = []string{"p1", "p2", "v1", "v2"}

func openStore() *store.Store {
	dir := dataDir
	if dir == "" {
		dir = config.DefaultDataDir
	}
	return store.New(dir)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openStore().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tPLANT\tCTRL\tNOISE\tBATCH\tSTEPS")

	for _, run := range runs {
		plant := "nonlinear"
		if run.Linear {
			plant = "linear"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			plant,
			run.Controller,
			run.Noise,
			run.Batch,
			run.Steps,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := openStore()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	xLog, _, err := st.LoadRollout(meta.ID)
	if err != nil {
		return err
	}

	if trajIdx < 0 || trajIdx >= meta.Batch {
		return fmt.Errorf("trajectory index %d out of range [0, %d)", trajIdx, meta.Batch)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("controller: %s, noise: %s, seed: %d\n", meta.Controller, meta.Noise, meta.Seed)
	fmt.Printf("trajectories: %d, steps: %d\n\n", meta.Batch, meta.Steps)

	if err := printMetrics(meta.Metrics); err != nil {
		return err
	}
	fmt.Println()

	series := xLog.Series(trajIdx)
	for i := 0; i < meta.StateDim; i++ {
		caption := fmt.Sprintf("x%d vs step", i)
		if i < len(stateLabels) {
			caption = fmt.Sprintf("%s vs step (trajectory %d)", stateLabels[i], trajIdx)
		}

		graph := asciigraph.Plot(mat.Col(nil, i, series),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := openStore()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	xLog, _, err := st.LoadRollout(meta.ID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".png"
	}

	switch plotKind {
	case "position":
		series := make([]*mat.Dense, meta.Batch)
		for b := range series {
			series[b] = xLog.Series(b)
		}

		p, err := sim.NewPositionPlot(fmt.Sprintf("%s: positions", meta.Name), series...)
		if err != nil {
			return err
		}

		if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
			return err
		}
	case "time":
		if trajIdx < 0 || trajIdx >= meta.Batch {
			return fmt.Errorf("trajectory index %d out of range [0, %d)", trajIdx, meta.Batch)
		}

		p, err := sim.NewTimePlot(fmt.Sprintf("%s: trajectory %d", meta.Name, trajIdx), xLog.Series(trajIdx), meta.Dt, stateLabels...)
		if err != nil {
			return err
		}

		if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown plot kind: %s", plotKind)
	}

	fmt.Printf("plot written to %s\n", path)

	return nil
}
