package dynamo

import "math"

// State is a flat state vector. Second-order systems store positions in the
// first half and rates in the second half.
type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Control is the external input applied to a system during a step.
type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// CheckDims reports whether x and u fit the dimensions declared by dyn.
func CheckDims(dyn System, x State, u Control) error {
	if len(x) != dyn.StateDim() || len(u) > dyn.ControlDim() {
		return ErrDimensionMismatch
	}
	return nil
}
