// Package impedance filters operator velocity through a planar
// mass-spring-damper, producing a compliant displacement for the swarm.
//
// Each axis obeys M*a + D*v + K*x = F with F the operator velocity. The
// filter state persists across ticks and is advanced by wall-clock time.
package impedance

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/swarmfield/internal/dynamo"
	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/integrators"
)

type Mode int

const (
	Underdamped Mode = iota
	CriticallyDamped
	Overdamped
)

var modeNames = map[Mode]string{
	Underdamped:      "underdamped",
	CriticallyDamped: "critically_damped",
	Overdamped:       "overdamped",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the mode names, case-insensitive, with '-' or '_'.
func ParseMode(s string) (Mode, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for m, name := range modeNames {
		if name == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("impedance: unknown mode %q", s)
}

// Params are the per-axis mass, damping and stiffness.
type Params struct {
	M, D, K float64
}

func (m Mode) Params() Params {
	switch m {
	case Underdamped:
		return Params{M: 1, D: 2, K: 10}
	case Overdamped:
		return Params{M: 1, D: 20, K: 10}
	default:
		return Params{M: 1, D: 2 * math.Sqrt(10), K: 10}
	}
}

// DampingRatio is D / (2 sqrt(K M)).
func (p Params) DampingRatio() float64 {
	return p.D / (2 * math.Sqrt(p.K*p.M))
}

// Model is the planar system with state [x, y, vx, vy] and control [Fx, Fy].
type Model struct {
	Params
}

var _ dynamo.Hamiltonian = (*Model)(nil)

func (m *Model) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	var fx, fy float64
	if len(u) >= 2 {
		fx, fy = u[0], u[1]
	}
	return dynamo.State{
		x[2],
		x[3],
		(fx - m.D*x[2] - m.K*x[0]) / m.M,
		(fy - m.D*x[3] - m.K*x[1]) / m.M,
	}
}

func (m *Model) StateDim() int   { return 4 }
func (m *Model) ControlDim() int { return 2 }

// Energy is the stored spring plus kinetic energy.
func (m *Model) Energy(x dynamo.State) float64 {
	return 0.5*m.K*(x[0]*x[0]+x[1]*x[1]) + 0.5*m.M*(x[2]*x[2]+x[3]*x[3])
}

// State is the persistent filter memory.
type State struct {
	Offset    geom.Vec2
	Rate      geom.Vec2
	Timestamp float64 // seconds
}

// NewState starts a filter at rest at time now.
func NewState(now float64) State {
	return State{Timestamp: now}
}

func (s State) vector() dynamo.State {
	return dynamo.State{s.Offset.X, s.Offset.Y, s.Rate.X, s.Rate.Y}
}

const (
	DefaultMaxSubstep = 0.01
	DefaultMaxGap     = 1.0
)

// Filter advances a State. It is not safe for concurrent use since the
// integrator keeps scratch buffers.
type Filter struct {
	Integrator dynamo.Integrator
	MaxSubstep float64
	MaxGap     float64
}

// NewFilter builds a filter over the named integrator.
func NewFilter(integrator string) (*Filter, error) {
	integ, err := integrators.New(integrator)
	if err != nil {
		return nil, err
	}
	return &Filter{Integrator: integ, MaxSubstep: DefaultMaxSubstep, MaxGap: DefaultMaxGap}, nil
}

// Step advances s to now under operator velocity humanVel. A now at or
// before s.Timestamp returns s unchanged; a gap longer than MaxGap is
// integrated as MaxGap but the timestamp still moves to now.
func (f *Filter) Step(humanVel geom.Vec2, s State, mode Mode, now float64) (State, error) {
	dt := now - s.Timestamp
	if !(dt > 0) {
		return s, nil
	}
	if f.MaxGap > 0 && dt > f.MaxGap {
		dt = f.MaxGap
	}

	n := 1
	if f.MaxSubstep > 0 {
		n = int(math.Ceil(dt / f.MaxSubstep))
	}
	h := dt / float64(n)

	sys := &Model{Params: mode.Params()}
	u := dynamo.Control{humanVel.X, humanVel.Y}
	x := s.vector()
	t := s.Timestamp
	for i := 0; i < n; i++ {
		x = f.Integrator.Step(sys, x, u, t, h)
		t += h
	}
	if !x.IsValid() {
		return s, dynamo.ErrInvalidState
	}

	return State{
		Offset:    geom.Vec2{X: x[0], Y: x[1]},
		Rate:      geom.Vec2{X: x[2], Y: x[3]},
		Timestamp: now,
	}, nil
}
