package metrics

import "github.com/san-kum/swarmfield/internal/swarm"

type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(f *swarm.Frame) {
	for _, a := range f.Agents {
		c.sum += a.Velocity.Norm()
		c.samples++
	}
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

type Stalls struct {
	name  string
	count int
}

func NewStalls() *Stalls {
	return &Stalls{name: "stalls"}
}

func (s *Stalls) Name() string { return s.name }

func (s *Stalls) Observe(f *swarm.Frame) {
	for _, a := range f.Agents {
		if a.Stalled {
			s.count++
		}
	}
}

func (s *Stalls) Value() float64 { return float64(s.count) }

func (s *Stalls) Reset() { s.count = 0 }

// Standard returns the metrics every run records.
func Standard() []swarm.Metric {
	return []swarm.Metric{
		NewPathLength(),
		NewClearance(),
		NewFormationError(),
		NewGoalDistance(),
		NewStalls(),
		NewControlEffort(),
	}
}
