// Package optim tunes swarm parameters by exhaustive grid search.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/swarmfield/internal/config"
	"github.com/san-kum/swarmfield/internal/swarm"
)

// Params maps tunable names to the config field they set.
var Params = map[string]func(c *config.Config, v float64){
	"attractive_coef":  func(c *config.Config, v float64) { c.Field.Attractive = v },
	"repulsive_coef":   func(c *config.Config, v float64) { c.Field.Repulsive = v },
	"influence_radius": func(c *config.Config, v float64) { c.Field.InfluenceRadius = v },
	"step_length":      func(c *config.Config, v float64) { c.Planner.StepLength = v },
	"swarm_radius":     func(c *config.Config, v float64) { c.SwarmRadius = v },
	"impedance_gain":   func(c *config.Config, v float64) { c.Impedance.Gain = v },
	"pos_coef":         func(c *config.Config, v float64) { c.PosCoef = v },
}

func ParamNames() []string {
	names := make([]string, 0, len(Params))
	for k := range Params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, p := range params {
		if _, ok := Params[p]; !ok {
			return nil, fmt.Errorf("optim: unknown param %q (available: %s)", p, strings.Join(ParamNames(), ", "))
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %q", p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point on a clone of base and returns the point
// minimizing metric, plus all trials in grid order. Points whose config is
// invalid or whose run fails are recorded with their error and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	build swarm.Factory,
	metric func(*swarm.Result) float64,
) (map[string]float64, float64, []Trial, error) {

	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, build, metric, &trials)
	if err != nil {
		return nil, 0, trials, err
	}

	for _, tr := range trials {
		if tr.Err == nil && tr.Value < best {
			best = tr.Value
			bestParams = tr.Params
		}
	}
	if bestParams == nil {
		return nil, 0, trials, fmt.Errorf("optim: no grid point succeeded")
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	build swarm.Factory,
	metric func(*swarm.Result) float64,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		*trials = append(*trials, g.evaluate(ctx, current, base, build, metric))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, build, metric, trials); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, params map[string]float64, base *config.Config, build swarm.Factory, metric func(*swarm.Result) float64) Trial {
	tr := Trial{Params: params}
	cfg := base.Clone()
	for name, v := range params {
		Params[name](cfg, v)
	}
	if err := cfg.Validate(); err != nil {
		tr.Err = err
		return tr
	}

	loop, err := build(cfg)
	if err != nil {
		tr.Err = err
		return tr
	}
	result, err := loop.Run(ctx, false)
	if err != nil {
		tr.Err = err
		return tr
	}
	tr.Value = metric(result)
	if math.IsNaN(tr.Value) {
		tr.Err = fmt.Errorf("optim: metric is NaN")
	}
	return tr
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}
