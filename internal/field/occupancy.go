package field

import (
	"math"

	"github.com/san-kum/swarmfield/internal/geom"
)

// Disc is a circular obstacle footprint in world meters.
type Disc struct {
	Center geom.Vec2
	Radius float64
}

// Occupancy is a binary grid: 1 for occupied cells, 0 for free ones.
type Occupancy struct {
	Frame geom.Frame
	Cells []uint8
}

func (o *Occupancy) At(c geom.Cell) uint8 {
	return o.Cells[o.Frame.Index(c)]
}

func (o *Occupancy) Occupied(c geom.Cell) bool {
	return o.Frame.Contains(c) && o.At(c) == 1
}

// BuildOccupancy marks every cell closer to a disc center than its radius,
// plus a band of borderCells on each grid edge. Discs reaching past the grid
// are clipped to it. borderCells below 1 is raised to 1 so the planning
// domain is always closed.
func BuildOccupancy(frame geom.Frame, discs []Disc, borderCells int) *Occupancy {
	occ := &Occupancy{Frame: frame, Cells: make([]uint8, frame.Len())}

	for _, d := range discs {
		occ.fillDisc(d)
	}

	if borderCells < 1 {
		borderCells = 1
	}
	for row := 0; row < frame.Rows; row++ {
		for col := 0; col < frame.Cols; col++ {
			if col < borderCells || col >= frame.Cols-borderCells ||
				row < borderCells || row >= frame.Rows-borderCells {
				occ.Cells[row*frame.Cols+col] = 1
			}
		}
	}
	return occ
}

func (o *Occupancy) fillDisc(d Disc) {
	if d.Radius <= 0 {
		return
	}
	f := o.Frame
	center := f.CellOf(d.Center)
	r := d.Radius * f.Resolution
	r2 := r * r
	ext := int(math.Ceil(r))

	row0, row1 := max(center.Row-ext, 0), min(center.Row+ext, f.Rows-1)
	col0, col1 := max(center.Col-ext, 0), min(center.Col+ext, f.Cols-1)
	for row := row0; row <= row1; row++ {
		dy := float64(row - center.Row)
		for col := col0; col <= col1; col++ {
			dx := float64(col - center.Col)
			if dx*dx+dy*dy < r2 {
				o.Cells[row*f.Cols+col] = 1
			}
		}
	}
}
