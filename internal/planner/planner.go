// Package planner turns a potential field into fixed-length world steps by
// following the smoothed negative gradient.
package planner

import (
	"github.com/san-kum/swarmfield/internal/field"
	"github.com/san-kum/swarmfield/internal/geom"
)

const (
	DefaultStepLength = 0.06 // meters per tick
	DefaultWindow     = 20   // cells

	// stallNorm is the gradient magnitude below which the planner holds.
	stallNorm = 1e-12
)

type Planner struct {
	StepLength float64
	Window     int
}

func New() *Planner {
	return &Planner{StepLength: DefaultStepLength, Window: DefaultWindow}
}

// Step is the outcome of one planning step.
type Step struct {
	Next     geom.Vec2
	Gradient geom.Vec2 // smoothed negative gradient, per cell
	Stalled  bool
}

// Step moves current one StepLength along the negative gradient of f,
// averaged over a Window x Window neighborhood of current's cell. A flat
// neighborhood holds position and reports Stalled: gradient descent has no
// escape from a local minimum.
func (p *Planner) Step(f *field.Field, current geom.Vec2) Step {
	v := p.Descent(f, current)
	n := v.Norm()
	if n < stallNorm {
		return Step{Next: current, Gradient: v, Stalled: true}
	}
	return Step{Next: current.Add(v.Scale(p.StepLength / n)), Gradient: v}
}

// Descent returns the mean negative gradient around current. Window cells
// past the grid edge are dropped and a current position outside the grid is
// clamped to the nearest edge cell.
func (p *Planner) Descent(f *field.Field, current geom.Vec2) geom.Vec2 {
	fr := f.Frame
	c := fr.Clamp(fr.CellOf(current))

	half := p.Window / 2
	row0, row1 := max(c.Row-half, 0), min(c.Row+p.Window-half, fr.Rows)
	col0, col1 := max(c.Col-half, 0), min(c.Col+p.Window-half, fr.Cols)

	var sum geom.Vec2
	n := 0
	for row := row0; row < row1; row++ {
		for col := col0; col < col1; col++ {
			g := gradient(f, col, row)
			sum = sum.Sub(g)
			n++
		}
	}
	if n == 0 {
		return geom.Vec2{}
	}
	return sum.Scale(1 / float64(n))
}

// gradient uses central differences inside the grid and one-sided
// differences on its edges.
func gradient(f *field.Field, col, row int) geom.Vec2 {
	fr := f.Frame
	at := func(c, r int) float64 { return f.Values[r*fr.Cols+c] }

	var g geom.Vec2
	switch {
	case fr.Cols < 2:
	case col == 0:
		g.X = at(1, row) - at(0, row)
	case col == fr.Cols-1:
		g.X = at(col, row) - at(col-1, row)
	default:
		g.X = (at(col+1, row) - at(col-1, row)) / 2
	}
	switch {
	case fr.Rows < 2:
	case row == 0:
		g.Y = at(col, 1) - at(col, 0)
	case row == fr.Rows-1:
		g.Y = at(col, row) - at(col, row-1)
	default:
		g.Y = (at(col, row+1) - at(col, row-1)) / 2
	}
	return g
}
