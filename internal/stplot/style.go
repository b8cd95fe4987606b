package stplot

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/stgraph/internal/stgraph"
)

// ErrNoBoundaries is returned when there is nothing to draw.
var ErrNoBoundaries = errors.New("no boundaries to plot")

const (
	defaultWidth  = 10 * vg.Inch
	defaultHeight = 6 * vg.Inch
)

// Options controls chart rendering. The zero value is usable.
type Options struct {
	Title    string
	Subtitle string

	// Width and Height size the PNG output.
	Width, Height vg.Length

	// HideCeiling omits the station ceiling line.
	HideCeiling bool

	// AssetsHost overrides where the HTML page loads echarts from.
	AssetsHost string
}

func (o Options) title() string {
	if o.Title == "" {
		return "S-T graph"
	}
	return o.Title
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func typeColor(bt stgraph.BoundaryType) color.RGBA {
	switch bt {
	case stgraph.BoundaryTypeStop:
		return color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	case stgraph.BoundaryTypeFollow:
		return color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	case stgraph.BoundaryTypeYield:
		return color.RGBA{R: 0xbc, G: 0xbd, B: 0x22, A: 0xff}
	case stgraph.BoundaryTypeOvertake:
		return color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	case stgraph.BoundaryTypeUnknown:
		return color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}
	default:
		return color.RGBA{A: 0xff}
	}
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func seriesName(b *stgraph.Boundary, i int) string {
	id := b.ID()
	if id == "" {
		id = fmt.Sprintf("#%d", i)
	}
	return fmt.Sprintf("%s (%s)", id, b.Type())
}

// extent returns the time range covered by all boundaries and the largest
// station ceiling among them.
func extent(boundaries []*stgraph.Boundary) (tMin, tMax, ceiling float64) {
	tMin, tMax = math.Inf(1), math.Inf(-1)
	for _, b := range boundaries {
		lo, hi := b.TimeScope()
		tMin = math.Min(tMin, lo)
		tMax = math.Max(tMax, hi)
		ceiling = math.Max(ceiling, b.StationCeiling())
	}
	return tMin, tMax, ceiling
}
