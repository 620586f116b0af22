package metrics

import (
	"math"

	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/swarm"
)

type PathLength struct {
	name   string
	length float64
	prev   geom.Vec2
	seen   bool
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(f *swarm.Frame) {
	sp := f.Leader().Setpoint.XY()
	if p.seen {
		p.length += sp.Dist(p.prev)
	}
	p.prev, p.seen = sp, true
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	p.length = 0
	p.seen = false
}

type GoalDistance struct {
	name string
	dist float64
}

func NewGoalDistance() *GoalDistance {
	return &GoalDistance{name: "goal_distance", dist: math.NaN()}
}

func (g *GoalDistance) Name() string { return g.name }

func (g *GoalDistance) Observe(f *swarm.Frame) {
	g.dist = f.Leader().Setpoint.XY().Dist(f.Target.XY())
}

// Value is NaN before the first frame.
func (g *GoalDistance) Value() float64 { return g.dist }

func (g *GoalDistance) Reset() { g.dist = math.NaN() }

type Clearance struct {
	name string
	min  float64
}

func NewClearance() *Clearance {
	return &Clearance{name: "min_clearance", min: math.Inf(1)}
}

func (c *Clearance) Name() string { return c.name }

func (c *Clearance) Observe(f *swarm.Frame) {
	for _, a := range f.Agents {
		sp := a.Setpoint.XY()
		for _, o := range f.Obstacles {
			c.min = math.Min(c.min, sp.Dist(o.Position)-o.Radius)
		}
	}
}

// Value is +Inf when no obstacle was ever seen.
func (c *Clearance) Value() float64 { return c.min }

func (c *Clearance) Reset() { c.min = math.Inf(1) }
