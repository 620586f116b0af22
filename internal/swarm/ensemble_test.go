package swarm_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swarmfield/internal/config"
	"github.com/san-kum/swarmfield/internal/swarm"
)

var _ = Describe("Ensemble", func() {
	build := func(cfg *config.Config) (*swarm.Loop, error) {
		tr := crossing(cfg)
		return swarm.New(cfg, tr, tr, nil)
	}

	It("reaches the target on every seed in free space", func() {
		cfg := config.GetPreset("diagonal")
		cfg.Duration = 1

		runs, err := swarm.NewEnsemble(cfg, build, 3, 10).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(3))
		for i, r := range runs {
			Expect(r.Seed).To(Equal(int64(10 + i)))
			Expect(r.Result.Ticks).To(Equal(200))
			Expect(r.Reached).To(BeTrue())
		}
		Expect(swarm.SuccessRate(runs)).To(Equal(1.0))
	})

	It("draws a different random layout per seed", func() {
		cfg := config.GetPreset("diagonal")
		cfg.Duration = 0.05
		cfg.Obstacles.Disabled = false
		cfg.Features.RandomObstacles = true

		runs, err := swarm.NewEnsemble(cfg, build, 2, 1).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		a, b := runs[0].Result.Final.Obstacles, runs[1].Result.Final.Obstacles
		Expect(a).To(HaveLen(cfg.Obstacles.Count))
		Expect(a[0].Position).NotTo(Equal(b[0].Position))
		Expect(swarm.SuccessRate(runs)).To(BeNumerically("<=", 1))
	})

	It("reports zero success for no runs", func() {
		Expect(swarm.SuccessRate(nil)).To(BeZero())
	})
})
