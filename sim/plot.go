package sim

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewPositionPlot creates new plot of planar agent trajectories.
// Every series is a steps x dim matrix whose first two columns hold
// the position of the agent; one line is drawn per series and
// the starting point of every trajectory is marked.
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * no series or a nil series is supplied
// * either of the supplied data matrices does not have at least 2 columns
// * gonum plot fails to be created
func NewPositionPlot(title string, series ...*mat.Dense) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("invalid data supplied")
	}

	for _, s := range series {
		if s == nil {
			return nil, fmt.Errorf("invalid data supplied")
		}
		if _, c := s.Dims(); c < 2 {
			return nil, fmt.Errorf("invalid data dimensions")
		}
	}

	p := plot.New()

	p.Title.Text = title
	p.X.Label.Text = "p1"
	p.Y.Label.Text = "p2"
	p.Legend.Top = true

	for i, s := range series {
		pts := makePoints(s, 0, 1)

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line: %v", err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1)

		start, err := plotter.NewScatter(pts[:1])
		if err != nil {
			return nil, fmt.Errorf("failed to create scatter: %v", err)
		}
		start.GlyphStyle.Color = color.RGBA{R: 169, G: 169, B: 169, A: 255}
		start.Shape = draw.CrossGlyph{}
		start.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, start)
		p.Legend.Add(fmt.Sprintf("trajectory %d", i), line)
	}

	return p, nil
}

// NewTimePlot creates new plot of all the columns of the steps x dim matrix series
// against time, with steps sampled every dt seconds.
// Labels name the columns; missing labels default to the column index.
// It returns error if series is nil or dt is not positive.
func NewTimePlot(title string, series *mat.Dense, dt float64, labels ...string) (*plot.Plot, error) {
	if series == nil {
		return nil, fmt.Errorf("invalid data supplied")
	}

	if dt <= 0 {
		return nil, fmt.Errorf("invalid time step: %f", dt)
	}

	p := plot.New()

	p.Title.Text = title
	p.X.Label.Text = "time"
	p.Y.Label.Text = "value"
	p.Legend.Top = true

	steps, cols := series.Dims()
	for j := 0; j < cols; j++ {
		pts := make(plotter.XYs, steps)
		for i := 0; i < steps; i++ {
			pts[i].X = float64(i) * dt
			pts[i].Y = series.At(i, j)
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line: %v", err)
		}
		line.LineStyle.Color = plotutil.Color(j)
		line.LineStyle.Dashes = plotutil.Dashes(j)

		label := fmt.Sprintf("x%d", j)
		if j < len(labels) {
			label = labels[j]
		}

		p.Add(line)
		p.Legend.Add(label, line)
	}

	return p, nil
}

func makePoints(m *mat.Dense, xCol, yCol int) plotter.XYs {
	r, _ := m.Dims()
	pts := make(plotter.XYs, r)
	for i := 0; i < r; i++ {
		pts[i].X = m.At(i, xCol)
		pts[i].Y = m.At(i, yCol)
	}

	return pts
}
