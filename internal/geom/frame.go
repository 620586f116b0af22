package geom

import "math"

const (
	DefaultResolution = 100.0 // cells per meter
	DefaultGridSize   = 500
)

// Cell is a grid index pair; Col follows x and Row follows y.
type Cell struct {
	Col, Row int
}

// Frame maps world meters to grid cells. The world origin sits at the grid
// center.
type Frame struct {
	Cols, Rows int
	Resolution float64
}

func DefaultFrame() Frame {
	return Frame{Cols: DefaultGridSize, Rows: DefaultGridSize, Resolution: DefaultResolution}
}

// ToGrid returns the continuous grid coordinates of p.
func (f Frame) ToGrid(p Vec2) Vec2 {
	return Vec2{
		X: p.X*f.Resolution + float64(f.Cols)/2,
		Y: p.Y*f.Resolution + float64(f.Rows)/2,
	}
}

// cellEps absorbs the rounding of ToWorld so cell -> world -> cell is exact.
const cellEps = 1e-9

// CellOf returns the cell containing p. The result may lie outside the grid.
func (f Frame) CellOf(p Vec2) Cell {
	g := f.ToGrid(p)
	return Cell{Col: int(math.Floor(g.X + cellEps)), Row: int(math.Floor(g.Y + cellEps))}
}

// ToWorld returns the world position of a cell index.
func (f Frame) ToWorld(c Cell) Vec2 {
	return Vec2{
		X: (float64(c.Col) - float64(f.Cols)/2) / f.Resolution,
		Y: (float64(c.Row) - float64(f.Rows)/2) / f.Resolution,
	}
}

func (f Frame) Contains(c Cell) bool {
	return c.Col >= 0 && c.Col < f.Cols && c.Row >= 0 && c.Row < f.Rows
}

// Clamp moves c onto the nearest in-grid cell.
func (f Frame) Clamp(c Cell) Cell {
	return Cell{Col: clampInt(c.Col, 0, f.Cols-1), Row: clampInt(c.Row, 0, f.Rows-1)}
}

// Extent returns the world half-widths covered by the grid.
func (f Frame) Extent() Vec2 {
	return Vec2{X: float64(f.Cols) / f.Resolution / 2, Y: float64(f.Rows) / f.Resolution / 2}
}

func (f Frame) Len() int { return f.Cols * f.Rows }

// Index returns the row-major offset of an in-grid cell.
func (f Frame) Index(c Cell) int { return c.Row*f.Cols + c.Col }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
