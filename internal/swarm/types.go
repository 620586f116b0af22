package swarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/swarmfield/internal/formation"
	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/impedance"
	"github.com/san-kum/swarmfield/internal/obstacle"
)

var ErrNoLeader = errors.New("swarm: no leader configured")

type Role string

const (
	Leader   Role = "leader"
	Follower Role = "follower"
)

type Agent struct {
	ID       string    `json:"id"`
	Role     Role      `json:"role"`
	Position geom.Vec3 `json:"position"`
	Setpoint geom.Vec3 `json:"setpoint"`
	Velocity geom.Vec2 `json:"velocity"` // setpoint rate, m/s
	Stalled  bool      `json:"stalled,omitempty"`
}

// PoseSource reports tracked poses in world meters and radians.
type PoseSource interface {
	Position(id string) (geom.Vec3, error)
	Yaw(id string) (float64, error)
}

type ActuationSink interface {
	Takeoff(ctx context.Context, id string, height float64, duration time.Duration) error
	Send(ctx context.Context, id string, setpoint geom.Vec3) error
}

// Frame is the loop state after one tick. Observers must not keep
// references to its slices past OnTick.
type Frame struct {
	Tick      int                 `json:"tick"`
	Time      float64             `json:"time"`
	Human     geom.Vec3           `json:"human"`
	HumanYaw  float64             `json:"human_yaw"`
	HumanVel  geom.Vec2           `json:"human_vel"`
	Target    geom.Vec3           `json:"target"`
	Agents    []Agent             `json:"agents"`
	Slots     []formation.Slot    `json:"slots,omitempty"`
	Obstacles []obstacle.Obstacle `json:"obstacles"`
	Impedance impedance.State     `json:"impedance"`
}

func (f *Frame) Leader() Agent { return f.Agents[0] }

type Observer interface {
	OnTick(f *Frame)
}

type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

type Result struct {
	Ticks    int
	Stalls   int
	Final    *Frame
	Metrics  map[string]float64
	Errors   []error
	Duration time.Duration
}

// TickError wraps a failure that prevented a tick from producing setpoints.
type TickError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.3f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e TickError) Unwrap() error { return e.Wrapped }
