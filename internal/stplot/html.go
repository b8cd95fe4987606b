package stplot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/stgraph/internal/stgraph"
)

// NewChart builds the go-echarts line chart for boundaries. Each boundary is
// one closed series tracing its polygon.
func NewChart(boundaries []*stgraph.Boundary, o Options) (*charts.Line, error) {
	if len(boundaries) == 0 {
		return nil, ErrNoBoundaries
	}
	tMin, tMax, ceiling := extent(boundaries)

	initOpts := opts.Initialization{PageTitle: o.title(), Width: "1000px", Height: "640px"}
	if o.AssetsHost != "" {
		initOpts.AssetsHost = o.AssetsHost
	}
	subtitle := o.Subtitle
	if subtitle == "" {
		subtitle = fmt.Sprintf("boundaries=%d t=[%.2f, %.2f]", len(boundaries), tMin, tMax)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: o.title(), Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Station (m)", NameLocation: "middle", NameGap: 40}),
	)

	for i, b := range boundaries {
		pts := b.STPoints()
		data := make([]opts.LineData, 0, len(pts)+1)
		for _, pt := range pts {
			data = append(data, opts.LineData{Value: []interface{}{pt.T, pt.S}})
		}
		data = append(data, opts.LineData{Value: []interface{}{pts[0].T, pts[0].S}})
		line.AddSeries(seriesName(b, i), data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: hexColor(typeColor(b.Type())), Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(typeColor(b.Type()))}),
		)
	}

	if !o.HideCeiling {
		line.AddSeries("station ceiling", []opts.LineData{
			{Value: []interface{}{tMin, ceiling}},
			{Value: []interface{}{tMax, ceiling}},
		}, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Width: 1}))
	}
	return line, nil
}

// WriteHTML renders boundaries as a standalone HTML page.
func WriteHTML(w io.Writer, boundaries []*stgraph.Boundary, o Options) error {
	line, err := NewChart(boundaries, o)
	if err != nil {
		return err
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render S-T chart: %w", err)
	}
	return nil
}
