package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/swarmfield/internal/geom"
)

func scatterData(pts []geom.Vec2) []opts.ScatterData {
	data := make([]opts.ScatterData, len(pts))
	for i, p := range pts {
		data[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y}}
	}
	return data
}

// WriteHTML renders an interactive chart of the scene, one series per agent.
func WriteHTML(w io.Writer, s Scene) error {
	lo, hi := s.Bounds()
	pad := 0.2

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: s.Title, Subtitle: fmt.Sprintf("agents=%d obstacles=%d", len(s.Paths), len(s.Obstacles))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: lo.X - pad, Max: hi.X + pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: lo.Y - pad, Max: hi.Y + pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	for _, p := range s.Paths {
		scatter.AddSeries(p.ID, scatterData(p.Points), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	}
	var outlines []geom.Vec2
	for _, o := range s.Obstacles {
		outlines = append(outlines, circle(o, 48)...)
	}
	if len(outlines) > 0 {
		scatter.AddSeries("obstacles", scatterData(outlines), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))
	}
	if s.HasGoal {
		scatter.AddSeries("goal", scatterData([]geom.Vec2{s.Goal}), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	}

	return scatter.Render(w)
}
