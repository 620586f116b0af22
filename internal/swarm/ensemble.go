package swarm

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/swarmfield/internal/config"
)

// Factory builds a ready-to-run loop, world included, for one config.
type Factory func(cfg *config.Config) (*Loop, error)

// Ensemble runs the same scenario over consecutive seeds.
type Ensemble struct {
	base      *config.Config
	build     Factory
	numRuns   int
	seedStart int64
	// Tolerance is the leader-to-target distance counted as reaching it.
	Tolerance float64
}

func NewEnsemble(base *config.Config, build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: base, build: build, numRuns: numRuns, seedStart: seedStart, Tolerance: 0.1}
}

type EnsembleRun struct {
	Seed     int64
	Result   *Result
	Reached  bool
	Distance float64 // final leader setpoint to target
}

// Run executes the runs on up to GOMAXPROCS goroutines. The first build or
// run error cancels the rest.
func (e *Ensemble) Run(ctx context.Context) ([]EnsembleRun, error) {
	runs := make([]EnsembleRun, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < e.numRuns; i++ {
		i := i
		g.Go(func() error {
			cfg := e.base.Clone()
			cfg.Seed = e.seedStart + int64(i)

			loop, err := e.build(cfg)
			if err != nil {
				return err
			}
			res, err := loop.Run(ctx, false)
			if err != nil {
				return err
			}

			run := EnsembleRun{Seed: cfg.Seed, Result: res, Distance: -1}
			if res.Final != nil {
				run.Distance = res.Final.Leader().Setpoint.XY().Dist(res.Final.Target.XY())
				run.Reached = run.Distance < e.Tolerance
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// SuccessRate is the fraction of runs that reached their target.
func SuccessRate(runs []EnsembleRun) float64 {
	if len(runs) == 0 {
		return 0
	}
	n := 0
	for _, r := range runs {
		if r.Reached {
			n++
		}
	}
	return float64(n) / float64(len(runs))
}
