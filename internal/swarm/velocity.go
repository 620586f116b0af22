package swarm

import "github.com/san-kum/swarmfield/internal/geom"

// velocityEstimator differentiates successive planar positions.
type velocityEstimator struct {
	prev  geom.Vec2
	prevT float64
	vel   geom.Vec2
	init  bool
}

// Update returns the velocity between the previous sample and p. The first
// sample, and any sample not later than the previous one, keep the last
// estimate.
func (e *velocityEstimator) Update(p geom.Vec2, t float64) geom.Vec2 {
	if !e.init {
		e.prev, e.prevT, e.init = p, t, true
		return e.vel
	}
	dt := t - e.prevT
	if dt <= 0 {
		return e.vel
	}
	e.vel = p.Sub(e.prev).Scale(1 / dt)
	e.prev, e.prevT = p, t
	return e.vel
}
