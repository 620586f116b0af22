package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/swarmfield/internal/config"
	"github.com/san-kum/swarmfield/internal/dynamo"
	"github.com/san-kum/swarmfield/internal/formation"
	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/integrators"
	"github.com/san-kum/swarmfield/internal/swarm"
)

var ErrUnknownEntity = errors.New("sim: unknown entity")

const (
	defaultDrag     = 1.0
	defaultMaxAccel = 20.0 // m/s^2
)

// World simulates the operator and the vehicles of one swarm.
type World struct {
	mu       sync.Mutex
	dt       float64
	t        float64
	human    string
	operator Operator
	vehicles map[string]*Vehicle
	order    []string
	dyn      dynamo.System
	integ    dynamo.Integrator
	log      *zap.Logger
}

var (
	_ swarm.PoseSource    = (*World)(nil)
	_ swarm.ActuationSink = (*World)(nil)
	_ swarm.Observer      = (*World)(nil)
)

// NewWorld places the leader at cfg.Sim.LeaderStart and the followers on
// their formation slots for the operator's initial heading, on the ground.
func NewWorld(cfg *config.Config, op Operator, logger *zap.Logger) (*World, error) {
	if len(cfg.Agents) == 0 {
		return nil, swarm.ErrNoLeader
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	integ, err := integrators.New("rk4")
	if err != nil {
		return nil, err
	}

	w := &World{
		dt:       cfg.Dt(),
		human:    cfg.Human,
		operator: op,
		vehicles: make(map[string]*Vehicle, len(cfg.Agents)),
		dyn:      &PointMass{Drag: defaultDrag},
		integ:    integ,
		log:      logger,
	}

	_, yaw := op.Pose()
	slots, err := formation.Offsets(len(cfg.Agents)-1, cfg.Sim.LeaderStart, geom.Heading(yaw), cfg.SwarmRadius)
	if err != nil {
		return nil, err
	}
	starts := []geom.Vec2{cfg.Sim.LeaderStart}
	for _, s := range slots {
		starts = append(starts, s.Target)
	}

	s := cfg.Sim
	for i, id := range cfg.Agents {
		v := NewVehicle(id, starts[i].WithZ(0), s.Kp, s.Ki, s.Kd, defaultMaxAccel)
		v.MaxSpeed = s.MaxSpeed
		w.vehicles[id] = v
		w.order = append(w.order, id)
	}
	return w, nil
}

// NewScriptedWorld builds a world whose operator follows cfg.Sim.Waypoints.
func NewScriptedWorld(cfg *config.Config, logger *zap.Logger) (*World, error) {
	op := NewScripted(cfg.Sim.HumanStart, cfg.Sim.Waypoints, cfg.Sim.HumanSpeed)
	return NewWorld(cfg, op, logger)
}

func (w *World) Position(id string) (geom.Vec3, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id == w.human {
		p, _ := w.operator.Pose()
		return p, nil
	}
	v, ok := w.vehicles[id]
	if !ok {
		return geom.Vec3{}, fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	return v.Position(), nil
}

func (w *World) Yaw(id string) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id == w.human {
		_, yaw := w.operator.Pose()
		return yaw, nil
	}
	if _, ok := w.vehicles[id]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	return 0, nil
}

// Takeoff raises the vehicle setpoint straight up. The duration is not
// simulated; the tracking controller sets the pace.
func (w *World) Takeoff(ctx context.Context, id string, height float64, duration time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.vehicles[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	p := v.Position()
	v.Setpoint = geom.Vec3{X: p.X, Y: p.Y, Z: height}
	return nil
}

func (w *World) Send(ctx context.Context, id string, sp geom.Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.vehicles[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	v.Setpoint = sp
	return nil
}

// OnTick advances the world by one control period.
func (w *World) OnTick(f *swarm.Frame) {
	w.Advance()
}

func (w *World) Advance() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.operator.Advance(w.dt)
	for _, id := range w.order {
		if err := w.vehicles[id].Step(w.dyn, w.integ, w.t, w.dt); err != nil {
			w.log.Error("vehicle step failed", zap.String("agent", id), zap.Error(err))
		}
	}
	w.t += w.dt
}

func (w *World) Time() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.t
}

// Velocities returns the vehicle velocities by id.
func (w *World) Velocities() map[string]geom.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]geom.Vec3, len(w.vehicles))
	for id, v := range w.vehicles {
		out[id] = v.Velocity()
	}
	return out
}

// NewLoop wires a world into a fresh swarm loop, with the world advancing
// after every tick.
func NewLoop(cfg *config.Config, w *World, logger *zap.Logger) (*swarm.Loop, error) {
	loop, err := swarm.New(cfg, w, w, logger)
	if err != nil {
		return nil, err
	}
	loop.AddObserver(w)
	return loop, nil
}

// Factory builds scripted worlds for ensembles.
func Factory(logger *zap.Logger) swarm.Factory {
	return func(cfg *config.Config) (*swarm.Loop, error) {
		w, err := NewScriptedWorld(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewLoop(cfg, w, logger)
	}
}
