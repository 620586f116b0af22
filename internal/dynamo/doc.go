// Package dynamo provides the numeric primitives shared by the swarm's
// continuous-time components.
//
// The package defines the interfaces used to integrate ordinary differential
// equations of the form dX/dt = f(X, u, t):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems
//   - [Integrator]: numerical stepping interface
//   - [Hamiltonian]: optional energy accessor used by tests and metrics
//
// # Example
//
//	model := impedance.NewModel(impedance.CriticallyDamped.Params())
//	integ := integrators.NewRK4()
//	x = integ.Step(model, x, dynamo.Control{fx, fy}, 0, dt)
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
// Give each goroutine its own instance.
package dynamo
