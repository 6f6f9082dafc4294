package render

import (
	"github.com/LdDl/blobtrack/mot"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNothingToPlot is returned when there are no trajectories
var ErrNothingToPlot = errors.New("no trajectories to plot")

// PlotTrajectories saves paths of all objects into image file. Format is taken from extension (.png, .svg, .pdf)
func PlotTrajectories(state mot.State, path string) error {
	if len(state) == 0 {
		return ErrNothingToPlot
	}
	p := plot.New()
	p.Title.Text = "Trajectories"
	p.X.Label.Text = "x, px"
	p.Y.Label.Text = "y, px"
	// image coordinates grow downwards
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	for i, object := range state.Sorted() {
		pts := make(plotter.XYs, len(object.History))
		for j, pt := range object.History {
			pts[j].X = pt.X
			pts[j].Y = pt.Y
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "can't create line for object %d", object.ID)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(Label(object.ID), line)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "can't save plot to '%s'", path)
	}
	return nil
}
