// Package obstacle models circular obstacles drifting toward private goals.
package obstacle

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/swarmfield/internal/field"
	"github.com/san-kum/swarmfield/internal/geom"
)

const (
	DefaultRadius = 0.2  // meters
	DefaultSpeed  = 0.01 // meters per tick
)

type Obstacle struct {
	ID       string    `json:"id"`
	Position geom.Vec2 `json:"position"`
	Radius   float64   `json:"radius"`
	Goal     geom.Vec2 `json:"goal"`
}

// Disc returns the footprint used for occupancy.
func (o Obstacle) Disc() field.Disc {
	return field.Disc{Center: o.Position, Radius: o.Radius}
}

func (o Obstacle) AtGoal() bool {
	return o.Position.Equal(o.Goal)
}

// Advance returns a copy of obstacles with each one moved speed meters
// toward its goal. An obstacle closer than one step lands on its goal.
func Advance(obstacles []Obstacle, speed float64) []Obstacle {
	out := make([]Obstacle, len(obstacles))
	for i, o := range obstacles {
		out[i] = o
		delta := o.Goal.Sub(o.Position)
		d := delta.Norm()
		switch {
		case d == 0:
		case d <= speed:
			out[i].Position = o.Goal
		default:
			out[i].Position = o.Position.Add(delta.Scale(speed / d))
		}
	}
	return out
}

func Discs(obstacles []Obstacle) []field.Disc {
	discs := make([]field.Disc, len(obstacles))
	for i, o := range obstacles {
		discs[i] = o.Disc()
	}
	return discs
}

// Layout bounds for random obstacles, in meters.
const (
	RandomSpread     = 2.5
	RandomGoalSpread = 1.3
)

// Random places n obstacles uniformly in [-2.5, 2.5]^2 with goals uniformly
// in [-1.3, 1.3]^2.
func Random(rng *rand.Rand, n int, radius float64) []Obstacle {
	out := make([]Obstacle, n)
	for i := range out {
		out[i] = Obstacle{
			ID:       name(i),
			Position: uniform(rng, RandomSpread),
			Radius:   radius,
		}
	}
	for i := range out {
		out[i].Goal = uniform(rng, RandomGoalSpread)
	}
	return out
}

// Fixed is the six-obstacle room layout with every goal at the origin.
func Fixed(radius float64) []Obstacle {
	positions := []geom.Vec2{
		{X: -2, Y: 1}, {X: 1.5, Y: 0.5}, {X: -1.0, Y: 1.5},
		{X: 0.1, Y: 0.1}, {X: 1, Y: -2}, {X: -1.8, Y: -1.8},
	}
	out := make([]Obstacle, len(positions))
	for i, p := range positions {
		out[i] = Obstacle{ID: name(i), Position: p, Radius: radius}
	}
	return out
}

func uniform(rng *rand.Rand, spread float64) geom.Vec2 {
	return geom.Vec2{X: (rng.Float64()*2 - 1) * spread, Y: (rng.Float64()*2 - 1) * spread}
}

func name(i int) string { return fmt.Sprintf("obstacle_%d", i) }
