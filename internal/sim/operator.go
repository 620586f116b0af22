package sim

import (
	"math"
	"sync"

	"github.com/san-kum/swarmfield/internal/geom"
)

// Operator is the simulated human the swarm follows.
type Operator interface {
	Pose() (geom.Vec3, float64)
	Advance(dt float64)
}

// Scripted walks through waypoints at a constant speed, facing along its
// direction of travel. It stops at the last waypoint and keeps its heading.
type Scripted struct {
	pos       geom.Vec2
	yaw       float64
	waypoints []geom.Vec2
	speed     float64
}

func NewScripted(start geom.Vec2, waypoints []geom.Vec2, speed float64) *Scripted {
	s := &Scripted{pos: start, waypoints: append([]geom.Vec2(nil), waypoints...), speed: speed}
	if len(waypoints) > 0 {
		if h, ok := waypoints[0].Sub(start).Unit(); ok {
			s.yaw = math.Atan2(h.Y, h.X)
		}
	}
	return s
}

func (s *Scripted) Pose() (geom.Vec3, float64) {
	return s.pos.WithZ(0), s.yaw
}

func (s *Scripted) Done() bool { return len(s.waypoints) == 0 }

func (s *Scripted) Advance(dt float64) {
	budget := s.speed * dt
	for budget > 0 && len(s.waypoints) > 0 {
		next := s.waypoints[0]
		delta := next.Sub(s.pos)
		d := delta.Norm()
		if d > 0 {
			s.yaw = math.Atan2(delta.Y, delta.X)
		}
		if d <= budget {
			s.pos = next
			s.waypoints = s.waypoints[1:]
			budget -= d
			continue
		}
		s.pos = s.pos.Add(delta.Scale(budget / d))
		budget = 0
	}
}

// Keyboard is moved by discrete key presses. It is safe for concurrent use
// so a UI goroutine can drive it while the loop reads it.
type Keyboard struct {
	mu   sync.Mutex
	pos  geom.Vec2
	yaw  float64
	Step float64 // meters per nudge
	Turn float64 // radians per rotation
}

func NewKeyboard(start geom.Vec2) *Keyboard {
	return &Keyboard{pos: start, Step: 0.05, Turn: math.Pi / 12}
}

func (k *Keyboard) Pose() (geom.Vec3, float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.pos.WithZ(0), k.yaw
}

func (k *Keyboard) Advance(dt float64) {}

// Nudge moves the operator by (dx, dy) steps in the world frame.
func (k *Keyboard) Nudge(dx, dy int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pos = k.pos.Add(geom.Vec2{X: float64(dx), Y: float64(dy)}.Scale(k.Step))
}

// Rotate turns the operator by n increments, counterclockwise positive.
func (k *Keyboard) Rotate(n int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.yaw = math.Remainder(k.yaw+float64(n)*k.Turn, 2*math.Pi)
}
