package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/swarmfield/internal/swarm"
)

// FormationError collects, per tick, the mean distance of the followers'
// setpoints to their slots.
type FormationError struct {
	name    string
	samples []float64
}

func NewFormationError() *FormationError {
	return &FormationError{name: "formation_error"}
}

func (e *FormationError) Name() string { return e.name }

func (e *FormationError) Observe(f *swarm.Frame) {
	if len(f.Slots) == 0 || len(f.Agents) < 2 {
		return
	}
	dists := make([]float64, 0, len(f.Slots))
	for i, s := range f.Slots {
		if i+1 >= len(f.Agents) {
			break
		}
		dists = append(dists, f.Agents[i+1].Setpoint.XY().Dist(s.Target))
	}
	e.samples = append(e.samples, stat.Mean(dists, nil))
}

func (e *FormationError) Value() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return stat.Mean(e.samples, nil)
}

func (e *FormationError) StdDev() float64 {
	if len(e.samples) < 2 {
		return 0
	}
	return stat.StdDev(e.samples, nil)
}

func (e *FormationError) Max() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return floats.Max(e.samples)
}

func (e *FormationError) Reset() { e.samples = e.samples[:0] }
