// Package formation places followers in fixed slots around the leader.
//
// The topology depends only on the follower count: one follower trails the
// leader, two form a symmetric pair behind it, three add the trailing slot
// to the pair (a diamond with the leader at the front).
package formation

import (
	"errors"
	"math"

	"github.com/san-kum/swarmfield/internal/geom"
)

const MaxFollowers = 3

var (
	ErrFormationSize = errors.New("formation: at most 3 followers are supported")
	ErrZeroHeading   = errors.New("formation: zero heading")
)

// Slot is one follower position relative to the leader.
type Slot struct {
	Offset geom.Vec2
	Target geom.Vec2
	// Lateral is +1 on the left of the heading, -1 on the right and 0 on
	// the center line.
	Lateral float64
}

// Offsets returns the n follower slots for a leader at leader facing along
// heading. Heading is normalized; its length only has to be nonzero.
func Offsets(n int, leader, heading geom.Vec2, radius float64) ([]Slot, error) {
	if n < 0 || n > MaxFollowers {
		return nil, ErrFormationSize
	}
	h, ok := heading.Unit()
	if !ok {
		return nil, ErrZeroHeading
	}
	u := h.Perp()
	back := radius * math.Sqrt(3)

	rear := Slot{Offset: h.Scale(-back)}
	left := Slot{Offset: h.Scale(-back / 2).Add(u.Scale(radius / 2)), Lateral: 1}
	right := Slot{Offset: h.Scale(-back / 2).Sub(u.Scale(radius / 2)), Lateral: -1}

	var slots []Slot
	switch n {
	case 0:
		return []Slot{}, nil
	case 1:
		slots = []Slot{rear}
	case 2:
		slots = []Slot{left, right}
	case 3:
		slots = []Slot{left, right, rear}
	}
	for i := range slots {
		slots[i].Target = leader.Add(slots[i].Offset)
	}
	return slots, nil
}

// Correction distributes a leader displacement over a slot: the component
// along u moves the slot sideways according to its side and the component
// along heading moves it straight.
func Correction(s Slot, disp, heading geom.Vec2) geom.Vec2 {
	h, ok := heading.Unit()
	if !ok {
		return geom.Vec2{}
	}
	u := h.Perp()
	du, dv := disp.Dot(u), disp.Dot(h)
	return u.Scale(s.Lateral * du).Add(h.Scale(dv))
}
