package sim

import (
	"github.com/san-kum/swarmfield/internal/control"
	"github.com/san-kum/swarmfield/internal/dynamo"
	"github.com/san-kum/swarmfield/internal/geom"
)

// PointMass is a 3-D point mass with linear drag. State is
// [x, y, z, vx, vy, vz] and control is the commanded acceleration.
type PointMass struct {
	Drag float64
}

var (
	_ dynamo.System      = (*PointMass)(nil)
	_ dynamo.Hamiltonian = (*PointMass)(nil)
)

func (p *PointMass) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, 6)
	for i := 0; i < 3; i++ {
		dx[i] = x[3+i]
		var a float64
		if i < len(u) {
			a = u[i]
		}
		dx[3+i] = a - p.Drag*x[3+i]
	}
	return dx
}

func (p *PointMass) StateDim() int   { return 6 }
func (p *PointMass) ControlDim() int { return 3 }

func (p *PointMass) Energy(x dynamo.State) float64 {
	return 0.5 * (x[3]*x[3] + x[4]*x[4] + x[5]*x[5])
}

// Vehicle tracks a setpoint with one PID per axis.
type Vehicle struct {
	ID       string
	Setpoint geom.Vec3
	MaxSpeed float64

	state dynamo.State
	pids  [3]*control.PID
}

func NewVehicle(id string, start geom.Vec3, kp, ki, kd, maxAccel float64) *Vehicle {
	v := &Vehicle{
		ID:       id,
		Setpoint: start,
		state:    dynamo.State{start.X, start.Y, start.Z, 0, 0, 0},
	}
	for i := range v.pids {
		v.pids[i] = control.NewPID(kp, ki, kd)
		v.pids[i].Limit = maxAccel
	}
	return v
}

func (v *Vehicle) Position() geom.Vec3 {
	return geom.Vec3{X: v.state[0], Y: v.state[1], Z: v.state[2]}
}

func (v *Vehicle) Velocity() geom.Vec3 {
	return geom.Vec3{X: v.state[3], Y: v.state[4], Z: v.state[5]}
}

// Step advances the vehicle by dt at time t.
func (v *Vehicle) Step(dyn dynamo.System, integ dynamo.Integrator, t, dt float64) error {
	sp := [3]float64{v.Setpoint.X, v.Setpoint.Y, v.Setpoint.Z}
	u := make(dynamo.Control, 3)
	for i := range u {
		u[i] = v.pids[i].Update(sp[i], v.state[i], t)
	}

	if err := dynamo.CheckDims(dyn, v.state, u); err != nil {
		return err
	}
	next := integ.Step(dyn, v.state, u, t, dt)
	if !next.IsValid() {
		return dynamo.ErrInvalidState
	}

	if v.MaxSpeed > 0 {
		vel := geom.Vec3{X: next[3], Y: next[4], Z: next[5]}
		if n := vel.Norm(); n > v.MaxSpeed {
			vel = vel.Scale(v.MaxSpeed / n)
			next[3], next[4], next[5] = vel.X, vel.Y, vel.Z
		}
	}
	v.state = next
	return nil
}
