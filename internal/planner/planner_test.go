package planner

import (
	"math"
	"testing"

	"github.com/san-kum/swarmfield/internal/field"
	"github.com/san-kum/swarmfield/internal/geom"
)

// run steps from start toward goal until within tol or limit ticks, and
// returns the tick count (0 when never reached) and the visited positions.
func run(p *Planner, f *field.Field, start, goal geom.Vec2, tol float64, limit int) (int, []geom.Vec2) {
	pos := start
	path := []geom.Vec2{pos}
	for tick := 1; tick <= limit; tick++ {
		pos = p.Step(f, pos).Next
		path = append(path, pos)
		if pos.Dist(goal) < tol {
			return tick, path
		}
	}
	return 0, path
}

func TestFreeSpaceConvergence(t *testing.T) {
	occ := field.BuildOccupancy(geom.DefaultFrame(), nil, 1)
	rep := field.NewRepulsion(occ, field.DefaultParams())
	p := New()

	tests := []struct {
		start, goal geom.Vec2
	}{
		{geom.Vec2{X: -1.2, Y: 1.2}, geom.Vec2{X: 1.2, Y: -1.2}},
		{geom.Vec2{X: 1.0, Y: 0.3}, geom.Vec2{X: -0.8, Y: -1.1}},
		{geom.Vec2{}, geom.Vec2{X: 1.4, Y: 1.4}},
		{geom.Vec2{X: -1.4, Y: -0.2}, geom.Vec2{X: 0.5, Y: 0.9}},
	}

	for _, tt := range tests {
		f := rep.Toward(tt.goal)
		bound := int(math.Ceil((tt.start.Dist(tt.goal) - 0.1) / p.StepLength))

		ticks, path := run(p, f, tt.start, tt.goal, 0.1, 3*bound)
		if ticks == 0 {
			t.Errorf("%v -> %v: not within 0.1 m after %d ticks", tt.start, tt.goal, 3*bound)
			continue
		}
		if ticks > bound+2 {
			t.Errorf("%v -> %v: took %d ticks, straight-line bound %d", tt.start, tt.goal, ticks, bound)
		}
		for i := 1; i < len(path); i++ {
			if path[i].Dist(tt.goal) >= path[i-1].Dist(tt.goal) {
				t.Fatalf("%v -> %v: distance did not decrease at tick %d", tt.start, tt.goal, i)
			}
		}
	}
}

func TestStepLength(t *testing.T) {
	f := field.Compute(field.BuildOccupancy(geom.DefaultFrame(), nil, 1), geom.Vec2{X: 1}, field.DefaultParams())
	p := New()

	s := p.Step(f, geom.Vec2{X: -0.5, Y: 0.2})
	if s.Stalled {
		t.Fatal("unexpected stall")
	}
	if d := s.Next.Dist(geom.Vec2{X: -0.5, Y: 0.2}); math.Abs(d-p.StepLength) > 1e-12 {
		t.Errorf("step length: got %.15f, want %.2f", d, p.StepLength)
	}
}

func TestStallHoldsPosition(t *testing.T) {
	occ := field.BuildOccupancy(geom.DefaultFrame(), nil, 1)
	flat := field.Compute(occ, geom.Vec2{}, field.Params{InfluenceRadius: 2})
	p := New()

	cur := geom.Vec2{X: 0.3, Y: -0.4}
	s := p.Step(flat, cur)
	if !s.Stalled {
		t.Error("expected a stall on a flat field")
	}
	if !s.Next.Equal(cur) {
		t.Errorf("stalled step moved: %v -> %v", cur, s.Next)
	}
}

func TestOutOfGridPositionIsClamped(t *testing.T) {
	occ := field.BuildOccupancy(geom.DefaultFrame(), nil, 1)
	f := field.Compute(occ, geom.Vec2{}, field.DefaultParams())
	p := New()

	for _, cur := range []geom.Vec2{{X: 9, Y: 9}, {X: -3, Y: 0}, {X: 0, Y: -2.6}} {
		s := p.Step(f, cur)
		if s.Stalled {
			t.Errorf("%v: unexpected stall", cur)
		}
		if math.IsNaN(s.Next.X) || math.IsNaN(s.Next.Y) {
			t.Errorf("%v: non-finite step %v", cur, s.Next)
		}
		if s.Next.Norm() >= cur.Norm() {
			t.Errorf("%v: step %v should head back toward the target", cur, s.Next)
		}
	}
}

func TestEdgeGradientOneSided(t *testing.T) {
	frame := geom.Frame{Cols: 4, Rows: 3, Resolution: 1}
	f := &field.Field{Frame: frame, Values: []float64{
		0, 1, 4, 9,
		0, 1, 4, 9,
		0, 1, 4, 9,
	}}

	tests := []struct {
		col, row int
		want     float64
	}{
		{col: 0, want: 1},
		{col: 1, want: 2},
		{col: 2, want: 4},
		{col: 3, want: 5},
	}
	for _, tt := range tests {
		g := gradient(f, tt.col, tt.row)
		if g.X != tt.want || g.Y != 0 {
			t.Errorf("col %d: got %v, want (%g, 0)", tt.col, g, tt.want)
		}
	}
}
