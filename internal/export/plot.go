package export

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/swarmfield/internal/geom"
)

func xys(pts []geom.Vec2) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return out
}

// NewPlot lays the scene out on a gonum plot.
func NewPlot(s Scene) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	for i, o := range s.Obstacles {
		outline, err := plotter.NewLine(xys(circle(o, 48)))
		if err != nil {
			return nil, fmt.Errorf("obstacle %s: %w", o.ID, err)
		}
		outline.Color = plotutil.Color(0)
		outline.Width = vg.Points(1)
		outline.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(outline)
		if i == 0 {
			p.Legend.Add("obstacles", outline)
		}
	}

	for i, path := range s.Paths {
		if len(path.Points) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys(path.Points))
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", path.ID, err)
		}
		line.Color = plotutil.Color(i + 1)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(path.ID, line)
	}

	if s.HasGoal {
		goal, err := plotter.NewScatter(xys([]geom.Vec2{s.Goal}))
		if err != nil {
			return nil, err
		}
		goal.GlyphStyle.Shape = draw.CrossGlyph{}
		goal.GlyphStyle.Radius = vg.Points(4)
		p.Add(goal)
		p.Legend.Add("goal", goal)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePlot renders the scene in format ("png", "svg", "pdf", ...).
func WritePlot(w io.Writer, s Scene, format string) error {
	p, err := NewPlot(s)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SavePlot writes the scene to file, picking the format from its extension.
func SavePlot(file string, s Scene) error {
	p, err := NewPlot(s)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 8*vg.Inch, file)
}
