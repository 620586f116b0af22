package swarm_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/swarmfield/internal/config"
	"github.com/san-kum/swarmfield/internal/formation"
	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/swarm"
)

type frameCounter struct{ frames []*swarm.Frame }

func (c *frameCounter) OnTick(f *swarm.Frame) { c.frames = append(c.frames, f) }

// crossing sets the operator at the origin for the latching tick and then
// 0.9 m down the diagonal, so the leader target jumps to (1.8, -1.8).
func crossing(cfg *config.Config) *tracker {
	tr := newTracker(cfg.Human)
	tr.place(cfg.Agents[0], geom.Vec3{X: -1.8, Y: 1.8})
	tr.humanPath = []geom.Vec3{{}, {X: 0.9, Y: -0.9}}
	return tr
}

func quietFormation() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Features = config.Features{PutLimits: true}
	cfg.Obstacles.Disabled = true
	return cfg
}

var _ = Describe("Loop", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("crossing the arena", func() {
		goal := geom.Vec2{X: 1.8, Y: -1.8}

		It("reaches the far corner in free space within the straight-line bound", func() {
			cfg := config.GetPreset("diagonal")
			tr := crossing(cfg)
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = loop.Step(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			reached := 0
			for tick := 1; tick <= 200 && reached == 0; tick++ {
				f, err := loop.Step(ctx, float64(tick)*cfg.Dt())
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Target.XY().Dist(goal)).To(BeNumerically("<", 1e-9))
				if f.Leader().Setpoint.XY().Dist(goal) < 0.1 {
					reached = tick
				}
			}
			// 5.09 m at 0.06 m per tick from the corner, plus the latching step
			Expect(reached).To(BeNumerically(">", 0))
			Expect(reached).To(BeNumerically("<=", 87))
		})

		It("routes around an obstacle on the straight path", func() {
			cfg := config.GetPreset("diagonal_obstacle")
			tr := crossing(cfg)
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())

			clearance := math.Inf(1)
			reached := false
			for tick := 0; tick <= 1000 && !reached; tick++ {
				f, err := loop.Step(ctx, float64(tick)*cfg.Dt())
				Expect(err).NotTo(HaveOccurred())
				sp := f.Leader().Setpoint.XY()
				clearance = math.Min(clearance, sp.Dist(f.Obstacles[0].Position))
				reached = tick > 0 && sp.Dist(goal) < 0.1
			}
			Expect(reached).To(BeTrue())
			Expect(clearance).To(BeNumerically(">", 0.3))
		})
	})

	Describe("formation", func() {
		It("places rigid followers on their slots", func() {
			cfg := quietFormation()
			tr := newTracker(cfg.Human)
			tr.yaw = math.Pi / 2
			tr.place(cfg.Human, geom.Vec3{X: 0.2})
			for i, id := range cfg.Agents {
				tr.place(id, geom.Vec3{X: 0.1 * float64(i), Y: -0.5})
			}
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())

			f, err := loop.Step(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			leader := f.Leader().Setpoint.XY()
			slots, err := formation.Offsets(3, leader, geom.Heading(tr.yaw), cfg.SwarmRadius)
			Expect(err).NotTo(HaveOccurred())
			for i, a := range f.Agents[1:] {
				Expect(a.Role).To(Equal(swarm.Follower))
				Expect(a.Setpoint.XY().Dist(slots[i].Target)).To(BeNumerically("<", 1e-12))
				Expect(a.Setpoint.Z).To(Equal(cfg.TakeoffHeight))
			}
		})

		It("steers followers onto their slots with the formation gradient", func() {
			cfg := quietFormation()
			cfg.Features.FormationGradient = true
			tr := newTracker(cfg.Human)
			tr.place(cfg.Human, geom.Vec3{})
			tr.place(cfg.Agents[0], geom.Vec3{})
			for _, id := range cfg.Agents[1:] {
				tr.place(id, geom.Vec3{X: 0.8, Y: 0.9})
			}
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())

			var f *swarm.Frame
			for tick := 0; tick < 100; tick++ {
				f, err = loop.Step(ctx, float64(tick)*cfg.Dt())
				Expect(err).NotTo(HaveOccurred())
			}
			for i, a := range f.Agents[1:] {
				Expect(a.Setpoint.XY().Dist(f.Slots[i].Target)).To(BeNumerically("<", 0.2), a.ID)
			}
		})
	})

	Describe("impedance", func() {
		It("builds an offset along the operator velocity", func() {
			cfg := quietFormation()
			cfg.Features.Impedance = true
			tr := newTracker(cfg.Human)
			tr.place(cfg.Agents[0], geom.Vec3{})
			for tick := 0; tick < 40; tick++ {
				tr.humanPath = append(tr.humanPath, geom.Vec3{X: 0.005 * float64(tick)})
			}
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())

			prevStamp := -1.0
			var f *swarm.Frame
			for tick := 0; tick < 40; tick++ {
				f, err = loop.Step(ctx, float64(tick)*cfg.Dt())
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Impedance.Timestamp).To(BeNumerically(">=", prevStamp))
				prevStamp = f.Impedance.Timestamp
			}
			Expect(f.HumanVel.X).To(BeNumerically("~", 1.0, 1e-9))
			Expect(f.Impedance.Offset.X).To(BeNumerically(">", 0))
			Expect(math.Abs(f.Impedance.Offset.Y)).To(BeNumerically("<", 1e-12))
		})

		It("leaves the state at rest when disabled", func() {
			cfg := quietFormation()
			tr := newTracker(cfg.Human)
			tr.place(cfg.Agents[0], geom.Vec3{})
			tr.humanPath = []geom.Vec3{{}, {X: 0.1}, {X: 0.2}}
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())

			for tick := 0; tick < 3; tick++ {
				f, err := loop.Step(ctx, float64(tick)*cfg.Dt())
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Impedance.Offset.IsZero()).To(BeTrue())
			}
		})
	})

	Describe("obstacles", func() {
		It("advances moving obstacles before planning", func() {
			cfg := quietFormation()
			cfg.Obstacles.Disabled = false
			cfg.Features.MovingObstacles = true
			tr := newTracker(cfg.Human)
			tr.place(cfg.Human, geom.Vec3{})
			tr.place(cfg.Agents[0], geom.Vec3{})
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())

			before := loop.Obstacles()
			f, err := loop.Step(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			for i, o := range f.Obstacles {
				moved := o.Position.Dist(before[i].Position)
				Expect(moved).To(BeNumerically("~", cfg.Obstacles.Speed, 1e-12))
			}
		})
	})

	Describe("collaborator failures", func() {
		It("fails the tick when the operator was never seen", func() {
			cfg := quietFormation()
			tr := newTracker(cfg.Human)
			tr.noHuman = true
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = loop.Step(ctx, 0)
			var tickErr swarm.TickError
			Expect(errors.As(err, &tickErr)).To(BeTrue())
			Expect(tickErr.Tick).To(Equal(0))
			Expect(errors.Is(err, errOffline)).To(BeTrue())
		})

		It("reuses the last operator pose and keeps sending after a send failure", func() {
			core, logs := observer.New(zapcore.WarnLevel)
			cfg := quietFormation()
			tr := newTracker(cfg.Human)
			tr.place(cfg.Human, geom.Vec3{})
			for _, id := range cfg.Agents {
				tr.place(id, geom.Vec3{})
			}
			tr.failSend[cfg.Agents[1]] = true
			loop, err := swarm.New(cfg, tr, tr, zap.New(core))
			Expect(err).NotTo(HaveOccurred())

			_, err = loop.Step(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			tr.noHuman = true
			_, err = loop.Step(ctx, cfg.Dt())
			Expect(err).NotTo(HaveOccurred())

			Expect(tr.sent[cfg.Agents[0]]).To(HaveLen(2))
			Expect(tr.sent[cfg.Agents[2]]).To(HaveLen(2))
			Expect(logs.FilterMessage("send setpoint failed").Len()).To(Equal(2))
			Expect(logs.FilterMessage("operator pose unavailable, reusing last").Len()).To(Equal(1))
		})
	})

	Describe("Run", func() {
		It("notifies observers and metrics on every tick", func() {
			cfg := config.GetPreset("diagonal")
			cfg.Duration = 0.5
			tr := crossing(cfg)
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())
			counter := &frameCounter{}
			loop.AddObserver(counter)

			res, err := loop.Run(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ticks).To(Equal(100))
			Expect(counter.frames).To(HaveLen(100))
			Expect(tr.takeoffs).To(ConsistOf(cfg.Agents[0]))
			Expect(res.Final.Tick).To(Equal(99))
		})

		It("stops on a cancelled context", func() {
			cfg := config.GetPreset("diagonal")
			tr := crossing(cfg)
			loop, err := swarm.New(cfg, tr, tr, nil)
			Expect(err).NotTo(HaveOccurred())

			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			res, err := loop.Run(cancelled, false)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Ticks).To(BeZero())
		})
	})

	It("rejects a config without agents", func() {
		cfg := config.DefaultConfig()
		cfg.Agents = nil
		_, err := swarm.New(cfg, nil, nil, nil)
		Expect(err).To(MatchError(swarm.ErrNoLeader))
	})
})
