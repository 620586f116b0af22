// Package export renders recorded swarm runs as SVG, PNG or HTML charts.
package export

import (
	"math"

	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/obstacle"
	"github.com/san-kum/swarmfield/internal/storage"
)

// Path is the setpoint track of one agent.
type Path struct {
	ID     string
	Points []geom.Vec2
}

// Scene is everything drawn for one run, in world meters.
type Scene struct {
	Title     string
	Paths     []Path
	Obstacles []obstacle.Obstacle
	Goal      geom.Vec2
	HasGoal   bool
}

// FromTrajectory builds a scene from stored rows. The goal is the last
// target seen.
func FromTrajectory(title string, rows []storage.TrajectoryRow, obstacles []obstacle.Obstacle) Scene {
	s := Scene{Title: title, Obstacles: obstacles}
	ids, paths := storage.Paths(rows)
	for _, id := range ids {
		s.Paths = append(s.Paths, Path{ID: id, Points: paths[id]})
	}
	if n := len(rows); n > 0 {
		s.Goal, s.HasGoal = rows[n-1].Target.XY(), true
	}
	return s
}

// Bounds returns the box holding every path point, obstacle and the goal.
func (s Scene) Bounds() (lo, hi geom.Vec2) {
	lo = geom.Vec2{X: math.Inf(1), Y: math.Inf(1)}
	hi = geom.Vec2{X: math.Inf(-1), Y: math.Inf(-1)}
	grow := func(p geom.Vec2, r float64) {
		lo.X, lo.Y = math.Min(lo.X, p.X-r), math.Min(lo.Y, p.Y-r)
		hi.X, hi.Y = math.Max(hi.X, p.X+r), math.Max(hi.Y, p.Y+r)
	}
	for _, p := range s.Paths {
		for _, pt := range p.Points {
			grow(pt, 0)
		}
	}
	for _, o := range s.Obstacles {
		grow(o.Position, o.Radius)
	}
	if s.HasGoal {
		grow(s.Goal, 0)
	}
	if math.IsInf(lo.X, 1) {
		return geom.Vec2{X: -1, Y: -1}, geom.Vec2{X: 1, Y: 1}
	}
	return lo, hi
}

// circle samples an obstacle outline.
func circle(o obstacle.Obstacle, n int) []geom.Vec2 {
	pts := make([]geom.Vec2, n+1)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = o.Position.Add(geom.Vec2{X: math.Cos(a), Y: math.Sin(a)}.Scale(o.Radius))
	}
	return pts
}
