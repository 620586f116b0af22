package impedance

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/integrators"
)

func newFilter(t *testing.T, name string) *Filter {
	t.Helper()
	f, err := NewFilter(name)
	if err != nil {
		t.Fatalf("NewFilter(%q): %v", name, err)
	}
	return f
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"underdamped", Underdamped},
		{"critically_damped", CriticallyDamped},
		{"Critically-Damped", CriticallyDamped},
		{" overdamped ", Overdamped},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if _, err := ParseMode(got.String()); err != nil {
			t.Errorf("String() of %v does not parse back: %v", got, err)
		}
	}
	if _, err := ParseMode("springy"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

func TestDampingRatios(t *testing.T) {
	tests := []struct {
		mode     Mode
		lo, hi   float64
		exactOne bool
	}{
		{Underdamped, 0, 1, false},
		{CriticallyDamped, 1, 1, true},
		{Overdamped, 1, math.Inf(1), false},
	}
	for _, tt := range tests {
		z := tt.mode.Params().DampingRatio()
		if tt.exactOne {
			if math.Abs(z-1) > 1e-12 {
				t.Errorf("%v: damping ratio %f, want 1", tt.mode, z)
			}
			continue
		}
		if z <= tt.lo || z >= tt.hi {
			t.Errorf("%v: damping ratio %f outside (%g, %g)", tt.mode, z, tt.lo, tt.hi)
		}
	}
}

// release lets the filter relax from a displaced rest state with no input
// and reports whether either axis ever crossed zero.
func release(t *testing.T, f *Filter, mode Mode) (crossed bool, final State) {
	t.Helper()
	s := State{Offset: geom.Vec2{X: 0.5, Y: -0.3}}
	prev := s.Offset.Norm()
	for tick := 1; tick <= 600; tick++ {
		var err error
		s, err = f.Step(geom.Vec2{}, s, mode, float64(tick)*0.005)
		if err != nil {
			t.Fatal(err)
		}
		if s.Offset.X < 0 || s.Offset.Y > 0 {
			crossed = true
		}
		if mode != Underdamped && s.Offset.Norm() > prev+1e-12 {
			t.Fatalf("%v: offset grew at tick %d", mode, tick)
		}
		prev = s.Offset.Norm()
	}
	return crossed, s
}

func TestCriticallyDampedDecay(t *testing.T) {
	for _, name := range integrators.Names() {
		t.Run(name, func(t *testing.T) {
			crossed, s := release(t, newFilter(t, name), CriticallyDamped)
			if crossed {
				t.Error("critically damped response changed sign")
			}
			if n := s.Offset.Norm(); n > 0.01 {
				t.Errorf("offset after 3 s: %.4f, want below 0.01", n)
			}
		})
	}
}

func TestOverdampedNoOvershoot(t *testing.T) {
	crossed, _ := release(t, newFilter(t, "rk4"), Overdamped)
	if crossed {
		t.Error("overdamped response changed sign")
	}
}

func TestUnderdampedOvershoots(t *testing.T) {
	crossed, _ := release(t, newFilter(t, "rk4"), Underdamped)
	if !crossed {
		t.Error("underdamped response should overshoot")
	}
}

func TestSteadyStateOffset(t *testing.T) {
	f := newFilter(t, "rk4")
	vel := geom.Vec2{X: 1, Y: 0.5}
	s := NewState(0)
	for tick := 1; tick <= 100; tick++ {
		s, _ = f.Step(vel, s, CriticallyDamped, float64(tick)*0.1)
	}

	k := CriticallyDamped.Params().K
	want := vel.Scale(1 / k)
	if s.Offset.Dist(want) > 1e-6 {
		t.Errorf("steady offset %v, want %v", s.Offset, want)
	}
	if s.Rate.Norm() > 1e-6 {
		t.Errorf("steady rate %v, want 0", s.Rate)
	}
}

func TestJitteryTicksMatchUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	f := newFilter(t, "rk4")
	vel := geom.Vec2{X: 0.4, Y: -0.2}

	jittery := NewState(0)
	now := 0.0
	for now < 2 {
		now = math.Min(now+0.001+rng.Float64()*0.03, 2)
		jittery, _ = f.Step(vel, jittery, CriticallyDamped, now)
	}

	uniform := NewState(0)
	for tick := 1; tick <= 400; tick++ {
		uniform, _ = f.Step(vel, uniform, CriticallyDamped, float64(tick)*0.005)
	}

	if d := jittery.Offset.Dist(uniform.Offset); d > 1e-5 {
		t.Errorf("jittery and uniform ticks differ by %g", d)
	}
	if jittery.Timestamp != 2 {
		t.Errorf("timestamp %f, want 2", jittery.Timestamp)
	}
}

func TestTimestampNeverMovesBack(t *testing.T) {
	f := newFilter(t, "rk4")
	s := State{Offset: geom.Vec2{X: 0.1}, Rate: geom.Vec2{Y: 0.2}, Timestamp: 5}

	for _, now := range []float64{5, 4.9, 0, math.NaN()} {
		got, err := f.Step(geom.Vec2{X: 1}, s, CriticallyDamped, now)
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Errorf("now=%v: state changed to %+v", now, got)
		}
	}
}

func TestGapIsCapped(t *testing.T) {
	f := newFilter(t, "rk4")
	vel := geom.Vec2{X: 1}

	capped, _ := f.Step(vel, NewState(0), CriticallyDamped, 5)
	oneSecond, _ := f.Step(vel, NewState(0), CriticallyDamped, 1)

	if capped.Offset.Dist(oneSecond.Offset) > 1e-12 {
		t.Errorf("5 s gap integrated past the cap: %v vs %v", capped.Offset, oneSecond.Offset)
	}
	if capped.Timestamp != 5 {
		t.Errorf("timestamp %f, want 5", capped.Timestamp)
	}
}

func TestModelEnergyDissipates(t *testing.T) {
	m := &Model{Params: CriticallyDamped.Params()}
	integ := integrators.NewRK4()
	x := State{Offset: geom.Vec2{X: 0.3}, Rate: geom.Vec2{Y: -0.4}}.vector()

	e0 := m.Energy(x)
	for i := 0; i < 200; i++ {
		x = integ.Step(m, x, nil, float64(i)*0.01, 0.01)
	}
	if e := m.Energy(x); e >= e0*0.05 {
		t.Errorf("energy %.4f after 2 s, started at %.4f", e, e0)
	}
}
