package field

import (
	"math"

	"github.com/san-kum/swarmfield/internal/geom"
)

// Params are the coefficients a field is built from.
type Params struct {
	Attractive      float64 `yaml:"attractive_coef" json:"attractive_coef"`
	Repulsive       float64 `yaml:"repulsive_coef" json:"repulsive_coef"`
	InfluenceRadius float64 `yaml:"influence_radius" json:"influence_radius"`
}

func DefaultParams() Params {
	return Params{Attractive: 1.0 / 700, Repulsive: 200, InfluenceRadius: 2}
}

// RepulsiveValue is the obstacle term for a cell dist cells away from the
// nearest occupied cell at the given resolution. It is exactly zero once the
// rescaled distance reaches the influence radius.
func RepulsiveValue(dist, resolution float64, p Params) float64 {
	d := dist/resolution + 1
	if d >= p.InfluenceRadius {
		return 0
	}
	t := 1/d - 1/p.InfluenceRadius
	return p.Repulsive * t * t
}

// Repulsion is the target-independent obstacle layer of a field.
type Repulsion struct {
	Frame  geom.Frame
	Params Params
	Values []float64
}

func NewRepulsion(occ *Occupancy, p Params) *Repulsion {
	dist := DistanceTransform(occ)
	res := occ.Frame.Resolution
	for i, d := range dist {
		dist[i] = RepulsiveValue(d, res, p)
	}
	return &Repulsion{Frame: occ.Frame, Params: p, Values: dist}
}

// Toward adds the attractive paraboloid centered on target's cell.
func (r *Repulsion) Toward(target geom.Vec2) *Field {
	f := r.Frame
	tc := f.CellOf(target)
	out := make([]float64, len(r.Values))

	parallelFor(f.Rows, 64, func(start, end int) {
		for row := start; row < end; row++ {
			dy := float64(row - tc.Row)
			base := row * f.Cols
			for col := 0; col < f.Cols; col++ {
				dx := float64(col - tc.Col)
				out[base+col] = r.Params.Attractive*(dx*dx+dy*dy) + r.Values[base+col]
			}
		}
	})

	return &Field{Frame: f, Params: r.Params, Target: target, Values: out}
}

// Compute builds the full field for one target. Callers planning several
// targets over the same obstacles should build a Repulsion once instead.
func Compute(occ *Occupancy, target geom.Vec2, p Params) *Field {
	return NewRepulsion(occ, p).Toward(target)
}

// Field is a scalar potential sampled on a grid, row-major.
type Field struct {
	Frame  geom.Frame
	Params Params
	Target geom.Vec2
	Values []float64
}

func (f *Field) At(c geom.Cell) float64 {
	return f.Values[f.Frame.Index(c)]
}

// Range returns the smallest and largest values in the field.
func (f *Field) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range f.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
