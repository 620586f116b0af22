package obstacle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/swarmfield/internal/geom"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name string
		pos  geom.Vec2
		goal geom.Vec2
		want geom.Vec2
	}{
		{"step", geom.Vec2{X: 1}, geom.Vec2{}, geom.Vec2{X: 0.99}},
		{"diagonal", geom.Vec2{X: 0.3, Y: 0.4}, geom.Vec2{}, geom.Vec2{X: 0.294, Y: 0.392}},
		{"lands", geom.Vec2{X: 0.005}, geom.Vec2{}, geom.Vec2{}},
		{"at goal", geom.Vec2{X: 0.2, Y: -0.1}, geom.Vec2{X: 0.2, Y: -0.1}, geom.Vec2{X: 0.2, Y: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []Obstacle{{Position: tt.pos, Goal: tt.goal, Radius: DefaultRadius}}
			out := Advance(in, DefaultSpeed)
			if out[0].Position.Dist(tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", out[0].Position, tt.want)
			}
			if !in[0].Position.Equal(tt.pos) {
				t.Error("Advance modified its input")
			}
		})
	}
}

func TestAdvanceReachesGoal(t *testing.T) {
	obs := Fixed(DefaultRadius)
	for tick := 0; tick < 400; tick++ {
		obs = Advance(obs, DefaultSpeed)
	}
	for _, o := range obs {
		if !o.AtGoal() {
			t.Errorf("%s still at %v after 400 ticks", o.ID, o.Position)
		}
	}
}

func TestRandomLayout(t *testing.T) {
	a := Random(rand.New(rand.NewSource(42)), 8, 0.2)
	b := Random(rand.New(rand.NewSource(42)), 8, 0.2)

	if len(a) != 8 {
		t.Fatalf("expected 8 obstacles, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("obstacle %d differs for the same seed", i)
		}
		if math.Abs(a[i].Position.X) > RandomSpread || math.Abs(a[i].Position.Y) > RandomSpread {
			t.Errorf("position %v outside the layout", a[i].Position)
		}
		if math.Abs(a[i].Goal.X) > RandomGoalSpread || math.Abs(a[i].Goal.Y) > RandomGoalSpread {
			t.Errorf("goal %v outside the goal area", a[i].Goal)
		}
	}
}

func TestDiscs(t *testing.T) {
	discs := Discs(Fixed(0.25))
	if len(discs) != 6 {
		t.Fatalf("expected 6 discs, got %d", len(discs))
	}
	if discs[3].Center != (geom.Vec2{X: 0.1, Y: 0.1}) || discs[3].Radius != 0.25 {
		t.Errorf("unexpected disc %+v", discs[3])
	}
}
