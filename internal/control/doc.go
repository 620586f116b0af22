// Package control provides the feedback controllers the simulated vehicles
// use to track their setpoints.
//
//	pid := control.NewPID(8, 0.2, 2)
//	accel := pid.Update(setpoint.X, position.X, t)
//
// Controllers support live tuning through [PID.SetParam].
package control
