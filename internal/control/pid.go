package control

// PID is a scalar PID controller. The derivative acts on the measurement so
// setpoint jumps do not kick the output.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Limit    float64 // output bound, 0 for none
	integral float64
	prevMeas float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp:    kp,
		Ki:    ki,
		Kd:    kd,
		first: true,
	}
}

// Update returns the control output for target given measured at time t.
func (p *PID) Update(target, measured, t float64) float64 {
	err := target - measured

	if p.first {
		p.prevMeas = measured
		p.prevT = t
		p.first = false
		return p.clamp(p.Kp * err)
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.clamp(p.Kp*err + p.Ki*p.integral)
	}

	derivative := -(measured - p.prevMeas) / dt
	u := p.Kp*err + p.Ki*(p.integral+err*dt) + p.Kd*derivative

	// conditional integration: hold the integral while saturated
	if p.Limit == 0 || (u < p.Limit && u > -p.Limit) {
		p.integral += err * dt
	}

	p.prevMeas = measured
	p.prevT = t
	return p.clamp(u)
}

func (p *PID) clamp(u float64) float64 {
	if p.Limit <= 0 {
		return u
	}
	if u > p.Limit {
		return p.Limit
	}
	if u < -p.Limit {
		return -p.Limit
	}
	return u
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevMeas = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Kp,
		"Ki": p.Ki,
		"Kd": p.Kd,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	}
}
