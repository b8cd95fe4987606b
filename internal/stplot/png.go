package stplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/stgraph/internal/stgraph"
)

// NewPlot builds the gonum plot for boundaries without saving it.
func NewPlot(boundaries []*stgraph.Boundary, o Options) (*plot.Plot, error) {
	if len(boundaries) == 0 {
		return nil, ErrNoBoundaries
	}

	p := plot.New()
	p.Title.Text = o.title()
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Station (m)"
	p.Add(plotter.NewGrid())

	for i, b := range boundaries {
		pts := b.STPoints()
		xys := make(plotter.XYs, len(pts))
		for j, pt := range pts {
			xys[j] = plotter.XY{X: pt.T, Y: pt.S}
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, fmt.Errorf("boundary %s: %w", b.ID(), err)
		}
		c := typeColor(b.Type())
		poly.LineStyle.Color = c
		poly.LineStyle.Width = vg.Points(1.5)
		fill := c
		fill.A = 0x55
		poly.Color = fill

		p.Add(poly)
		p.Legend.Add(seriesName(b, i), poly)
	}

	if !o.HideCeiling {
		tMin, tMax, ceiling := extent(boundaries)
		line, err := plotter.NewLine(plotter.XYs{{X: tMin, Y: ceiling}, {X: tMax, Y: ceiling}})
		if err != nil {
			return nil, fmt.Errorf("ceiling line: %w", err)
		}
		line.Width = vg.Points(1)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("station ceiling %.0f m", ceiling), line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SavePNG renders boundaries to an image file. The format follows the file
// extension, as with plot.Save.
func SavePNG(path string, boundaries []*stgraph.Boundary, o Options) error {
	p, err := NewPlot(boundaries, o)
	if err != nil {
		return err
	}
	w, h := o.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save S-T plot: %w", err)
	}
	return nil
}
