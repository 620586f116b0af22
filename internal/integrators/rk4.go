package integrators

import "github.com/san-kum/swarmfield/internal/dynamo"

// rk4Stages holds the classic Runge-Kutta stage offsets and weights.
var rk4Stages = [4]struct{ offset, weight float64 }{
	{0, 1.0 / 6.0},
	{0.5, 2.0 / 6.0},
	{0.5, 2.0 / 6.0},
	{1, 1.0 / 6.0},
}

type RK4 struct {
	acc     dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.acc) != n {
		r.acc = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)
	for i := range r.acc {
		r.acc[i] = 0
	}

	// k holds the previous stage slope; the first stage evaluates at x itself.
	var k dynamo.State
	for _, stage := range rk4Stages {
		in := x
		if stage.offset > 0 {
			for i := 0; i < n; i++ {
				r.scratch[i] = x[i] + dt*stage.offset*k[i]
			}
			in = r.scratch
		}
		k = dyn.Derive(in, u, t+dt*stage.offset)
		for i := 0; i < n; i++ {
			r.acc[i] += stage.weight * k[i]
		}
	}

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt*r.acc[i]
	}
	return result
}
