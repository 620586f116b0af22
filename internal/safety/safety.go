// Package safety keeps setpoints inside the flight envelope.
package safety

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmfield/internal/geom"
)

// Envelope is an axis-aligned box in world meters.
type Envelope struct {
	Lower geom.Vec3 `yaml:"lower" json:"lower"`
	Upper geom.Vec3 `yaml:"upper" json:"upper"`
}

func DefaultEnvelope() Envelope {
	return Envelope{
		Lower: geom.Vec3{X: -1.7, Y: -1.5, Z: -0.1},
		Upper: geom.Vec3{X: 1.7, Y: 1.7, Z: 2.5},
	}
}

// Apply clamps sp into the envelope axis by axis.
func (e Envelope) Apply(sp geom.Vec3) geom.Vec3 {
	return geom.Vec3{
		X: math.Min(math.Max(sp.X, e.Lower.X), e.Upper.X),
		Y: math.Min(math.Max(sp.Y, e.Lower.Y), e.Upper.Y),
		Z: math.Min(math.Max(sp.Z, e.Lower.Z), e.Upper.Z),
	}
}

func (e Envelope) Contains(p geom.Vec3) bool {
	return p.X >= e.Lower.X && p.X <= e.Upper.X &&
		p.Y >= e.Lower.Y && p.Y <= e.Upper.Y &&
		p.Z >= e.Lower.Z && p.Z <= e.Upper.Z
}

func (e Envelope) Validate() error {
	if !e.Lower.IsValid() || !e.Upper.IsValid() {
		return fmt.Errorf("safety: envelope bounds must be finite")
	}
	if e.Lower.X > e.Upper.X || e.Lower.Y > e.Upper.Y || e.Lower.Z > e.Upper.Z {
		return fmt.Errorf("safety: lower bound %v exceeds upper bound %v", e.Lower, e.Upper)
	}
	return nil
}
