package swarm

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/swarmfield/internal/config"
	"github.com/san-kum/swarmfield/internal/field"
	"github.com/san-kum/swarmfield/internal/formation"
	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/impedance"
	"github.com/san-kum/swarmfield/internal/obstacle"
	"github.com/san-kum/swarmfield/internal/planner"
)

type Loop struct {
	cfg     *config.Config
	poses   PoseSource
	act     ActuationSink
	log     *zap.Logger
	frame   geom.Frame
	planner *planner.Planner
	filter  *impedance.Filter
	mode    impedance.Mode

	metrics   []Metric
	observers []Observer

	agents    []Agent
	obstacles []obstacle.Obstacle
	imp       impedance.State
	humanVel  velocityEstimator

	latched    bool
	humanInit  geom.Vec3
	leaderInit geom.Vec3
	lastHuman  geom.Vec3
	lastYaw    float64
	hasHuman   bool

	tick   int
	stalls int
}

// New validates cfg and builds a loop over the given collaborators. A nil
// logger logs nothing.
func New(cfg *config.Config, poses PoseSource, act ActuationSink, logger *zap.Logger) (*Loop, error) {
	if len(cfg.Agents) == 0 {
		return nil, ErrNoLeader
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mode, err := impedance.ParseMode(cfg.Impedance.Mode)
	if err != nil {
		return nil, err
	}
	filter, err := impedance.NewFilter(cfg.Impedance.Integrator)
	if err != nil {
		return nil, err
	}
	filter.MaxSubstep = cfg.Impedance.MaxSubstep
	filter.MaxGap = cfg.Impedance.MaxGap

	agents := make([]Agent, len(cfg.Agents))
	for i, id := range cfg.Agents {
		agents[i] = Agent{ID: id, Role: Follower}
	}
	agents[0].Role = Leader

	return &Loop{
		cfg:       cfg,
		poses:     poses,
		act:       act,
		log:       logger,
		frame:     cfg.Frame(),
		planner:   &planner.Planner{StepLength: cfg.Planner.StepLength, Window: cfg.Planner.Window},
		filter:    filter,
		mode:      mode,
		agents:    agents,
		obstacles: cfg.InitialObstacles(rand.New(rand.NewSource(cfg.Seed))),
	}, nil
}

func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

// Obstacles returns the current obstacle layout.
func (l *Loop) Obstacles() []obstacle.Obstacle {
	return append([]obstacle.Obstacle(nil), l.obstacles...)
}

// Takeoff commands every agent to the takeoff height. Failures are logged
// and the remaining agents still take off.
func (l *Loop) Takeoff(ctx context.Context) {
	d := time.Duration(l.cfg.TakeoffTime * float64(time.Second))
	for _, a := range l.agents {
		if err := l.act.Takeoff(ctx, a.ID, l.cfg.TakeoffHeight, d); err != nil {
			l.log.Warn("takeoff failed", zap.String("agent", a.ID), zap.Error(err))
			continue
		}
		l.log.Info("takeoff", zap.String("agent", a.ID), zap.Float64("height", l.cfg.TakeoffHeight))
	}
}

// Step runs one tick at time now (seconds).
func (l *Loop) Step(ctx context.Context, now float64) (*Frame, error) {
	defer func() { l.tick++ }()

	if l.cfg.Features.MovingObstacles {
		l.obstacles = obstacle.Advance(l.obstacles, l.cfg.Obstacles.Speed)
	}

	l.readPoses()
	human, yaw, err := l.readHuman()
	if err != nil {
		return nil, TickError{Tick: l.tick, Time: now, Wrapped: err}
	}

	if !l.latched {
		l.humanInit = human
		l.leaderInit = l.agents[0].Position
		for i := range l.agents {
			l.agents[i].Setpoint = l.agents[i].Position
		}
		l.imp = impedance.NewState(now)
		l.latched = true
		l.log.Info("human position initialized",
			zap.String("human", l.cfg.Human),
			zap.Float64("x", human.X), zap.Float64("y", human.Y))
	}

	height := l.cfg.TakeoffHeight
	target := l.leaderInit.XY().Add(human.Sub(l.humanInit).XY().Scale(l.cfg.PosCoef)).WithZ(height)

	occ := field.BuildOccupancy(l.frame, obstacle.Discs(l.obstacles), l.cfg.Field.Border)
	rep := field.NewRepulsion(occ, l.cfg.Field.Params)

	leader := &l.agents[0]
	prevLeader := leader.Setpoint.XY()
	l.plan(leader, rep, target.XY())

	if l.cfg.Features.PutLimits {
		leader.Setpoint = l.cfg.Limits.Apply(leader.Setpoint)
	}

	heading := geom.Heading(yaw)
	slots, err := formation.Offsets(len(l.agents)-1, leader.Setpoint.XY(), heading, l.cfg.SwarmRadius)
	if err != nil {
		return nil, TickError{Tick: l.tick, Time: now, Wrapped: err}
	}

	humanVel := l.humanVel.Update(human.XY(), now)
	if l.cfg.Features.Impedance {
		next, err := l.filter.Step(humanVel, l.imp, l.mode, now)
		if err != nil {
			l.log.Warn("impedance step rejected", zap.Int("tick", l.tick), zap.Error(err))
		} else {
			l.imp = next
		}
		disp := l.imp.Offset.Scale(l.cfg.Impedance.Gain)
		leader.Setpoint = leader.Setpoint.Add(disp.WithZ(0))
		for i := range slots {
			slots[i].Target = slots[i].Target.Add(formation.Correction(slots[i], disp, heading))
		}
	}
	leader.Velocity = leader.Setpoint.XY().Sub(prevLeader).Scale(l.cfg.Rate)

	if err := l.planFollowers(ctx, rep, slots); err != nil {
		return nil, TickError{Tick: l.tick, Time: now, Wrapped: err}
	}

	for _, a := range l.agents {
		if err := l.act.Send(ctx, a.ID, a.Setpoint); err != nil {
			l.log.Warn("send setpoint failed", zap.String("agent", a.ID), zap.Int("tick", l.tick), zap.Error(err))
		}
	}

	f := &Frame{
		Tick:      l.tick,
		Time:      now,
		Human:     human,
		HumanYaw:  yaw,
		HumanVel:  humanVel,
		Target:    target,
		Agents:    append([]Agent(nil), l.agents...),
		Slots:     slots,
		Obstacles: l.Obstacles(),
		Impedance: l.imp,
	}
	for _, m := range l.metrics {
		m.Observe(f)
	}
	for _, o := range l.observers {
		o.OnTick(f)
	}
	return f, nil
}

// plan steps a from its previous setpoint toward goal and records a stall.
func (l *Loop) plan(a *Agent, rep *field.Repulsion, goal geom.Vec2) {
	st := l.planner.Step(rep.Toward(goal), a.Setpoint.XY())
	a.Setpoint = st.Next.WithZ(l.cfg.TakeoffHeight)
	a.Stalled = st.Stalled
	if st.Stalled {
		l.stalls++
		l.log.Debug("gradient stalled", zap.String("agent", a.ID), zap.Int("tick", l.tick))
	}
}

// planFollowers moves every follower toward its slot. With the formation
// gradient enabled each follower plans on its own field, concurrently; the
// goroutines share the read-only repulsion layer and write only their own
// agent.
func (l *Loop) planFollowers(ctx context.Context, rep *field.Repulsion, slots []formation.Slot) error {
	followers := l.agents[1:]
	if len(slots) != len(followers) {
		return fmt.Errorf("swarm: %d slots for %d followers", len(slots), len(followers))
	}

	height := l.cfg.TakeoffHeight
	if !l.cfg.Features.FormationGradient {
		for i := range followers {
			prev := followers[i].Setpoint.XY()
			followers[i].Setpoint = slots[i].Target.WithZ(height)
			followers[i].Stalled = false
			followers[i].Velocity = slots[i].Target.Sub(prev).Scale(l.cfg.Rate)
		}
		return nil
	}

	steps := make([]planner.Step, len(followers))
	g, _ := errgroup.WithContext(ctx)
	for i := range followers {
		i := i
		g.Go(func() error {
			steps[i] = l.planner.Step(rep.Toward(slots[i].Target), followers[i].Setpoint.XY())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, st := range steps {
		a := &followers[i]
		a.Velocity = st.Next.Sub(a.Setpoint.XY()).Scale(l.cfg.Rate)
		a.Setpoint = st.Next.WithZ(height)
		a.Stalled = st.Stalled
		if st.Stalled {
			l.stalls++
			l.log.Debug("gradient stalled", zap.String("agent", a.ID), zap.Int("tick", l.tick))
		}
	}
	return nil
}

// readPoses refreshes agent positions; an agent whose pose cannot be read
// keeps its last one.
func (l *Loop) readPoses() {
	for i := range l.agents {
		p, err := l.poses.Position(l.agents[i].ID)
		if err != nil {
			l.log.Warn("pose unavailable", zap.String("agent", l.agents[i].ID), zap.Error(err))
			continue
		}
		l.agents[i].Position = p
	}
}

// readHuman returns the operator pose, falling back to the last good one.
func (l *Loop) readHuman() (geom.Vec3, float64, error) {
	p, err := l.poses.Position(l.cfg.Human)
	if err == nil {
		var yaw float64
		yaw, err = l.poses.Yaw(l.cfg.Human)
		if err == nil {
			l.lastHuman, l.lastYaw, l.hasHuman = p, yaw, true
			return p, yaw, nil
		}
	}
	if !l.hasHuman {
		return geom.Vec3{}, 0, fmt.Errorf("swarm: operator %q pose: %w", l.cfg.Human, err)
	}
	l.log.Warn("operator pose unavailable, reusing last", zap.String("human", l.cfg.Human), zap.Error(err))
	return l.lastHuman, l.lastYaw, nil
}

// Run takes off and steps the loop for the configured duration on a
// simulated clock, checking ctx once per tick. With realtime set, ticks are
// paced at the control rate and stamped with wall-clock time.
func (l *Loop) Run(ctx context.Context, realtime bool) (*Result, error) {
	start := time.Now()
	result := &Result{Metrics: make(map[string]float64)}
	for _, m := range l.metrics {
		m.Reset()
	}

	l.Takeoff(ctx)

	var ticker *time.Ticker
	if realtime {
		ticker = time.NewTicker(time.Duration(float64(time.Second) / l.cfg.Rate))
		defer ticker.Stop()
	}

	steps := l.cfg.Ticks()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			l.finish(result, start)
			return result, ctx.Err()
		default:
		}

		now := float64(i) / l.cfg.Rate
		if realtime {
			select {
			case <-ctx.Done():
				l.finish(result, start)
				return result, ctx.Err()
			case <-ticker.C:
			}
			now = time.Since(start).Seconds()
		}

		f, err := l.Step(ctx, now)
		if err != nil {
			l.log.Warn("tick failed", zap.Error(err))
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Final = f
		result.Ticks++
	}

	l.finish(result, start)
	return result, nil
}

func (l *Loop) finish(r *Result, start time.Time) {
	r.Stalls = l.stalls
	r.Duration = time.Since(start)
	for _, m := range l.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
