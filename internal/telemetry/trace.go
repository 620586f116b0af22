package telemetry

import (
	"sync"

	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/swarm"
)

const DefaultLimit = 1000

type Kind string

const (
	KindAgent    Kind = "agent"
	KindHuman    Kind = "human"
	KindObstacle Kind = "obstacle"
)

type Sample struct {
	Tick     int       `json:"tick"`
	Time     float64   `json:"time"`
	Position geom.Vec3 `json:"position"`
	Setpoint geom.Vec3 `json:"setpoint"`
}

// Trace keeps the most recent samples of one entity.
type Trace struct {
	ID      string
	Kind    Kind
	limit   int
	samples []Sample
}

func NewTrace(id string, kind Kind, limit int) *Trace {
	return &Trace{ID: id, Kind: kind, limit: limit}
}

// Append adds s, dropping the oldest sample once the limit is reached. A
// limit of 0 keeps everything.
func (t *Trace) Append(s Sample) {
	if t.limit > 0 && len(t.samples) >= t.limit {
		copy(t.samples, t.samples[1:])
		t.samples = t.samples[:len(t.samples)-1]
	}
	t.samples = append(t.samples, s)
}

func (t *Trace) Len() int { return len(t.samples) }

// Samples returns a copy of the retained samples, oldest first.
func (t *Trace) Samples() []Sample {
	return append([]Sample(nil), t.samples...)
}

func (t *Trace) Last() (Sample, bool) {
	if len(t.samples) == 0 {
		return Sample{}, false
	}
	return t.samples[len(t.samples)-1], true
}

// Recorder is a loop observer collecting a trace per agent, obstacle and the
// operator, plus the full leader history for storage.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	traces  map[string]*Trace
	order   []string
	history []swarm.Agent
	times   []float64
	targets []geom.Vec3
}

func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit, traces: make(map[string]*Trace)}
}

func (r *Recorder) OnTick(f *swarm.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range f.Agents {
		r.trace(a.ID, KindAgent).Append(Sample{Tick: f.Tick, Time: f.Time, Position: a.Position, Setpoint: a.Setpoint})
	}
	r.trace("human", KindHuman).Append(Sample{Tick: f.Tick, Time: f.Time, Position: f.Human, Setpoint: f.Target})
	for _, o := range f.Obstacles {
		p := o.Position.WithZ(f.Target.Z)
		r.trace(o.ID, KindObstacle).Append(Sample{Tick: f.Tick, Time: f.Time, Position: p, Setpoint: o.Goal.WithZ(p.Z)})
	}

	r.history = append(r.history, f.Agents...)
	r.times = append(r.times, f.Time)
	r.targets = append(r.targets, f.Target)
}

func (r *Recorder) trace(id string, kind Kind) *Trace {
	t, ok := r.traces[id]
	if !ok {
		t = NewTrace(id, kind, r.limit)
		r.traces[id] = t
		r.order = append(r.order, id)
	}
	return t
}

// Traces returns copies of the traces in first-seen order.
func (r *Recorder) Traces() []*Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Trace, 0, len(r.order))
	for _, id := range r.order {
		t := r.traces[id]
		out = append(out, &Trace{ID: t.ID, Kind: t.Kind, limit: t.limit, samples: t.Samples()})
	}
	return out
}

func (r *Recorder) Trace(id string) (*Trace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.traces[id]
	if !ok {
		return nil, false
	}
	return &Trace{ID: t.ID, Kind: t.Kind, limit: t.limit, samples: t.Samples()}, true
}

// Row is one agent at one tick of the unbounded history.
type Row struct {
	Time   float64
	Agent  swarm.Agent
	Target geom.Vec3
}

// History returns every recorded agent state, tick by tick.
func (r *Recorder) History() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.times) == 0 {
		return nil
	}
	per := len(r.history) / len(r.times)
	rows := make([]Row, len(r.history))
	for i, a := range r.history {
		tick := i / per
		rows[i] = Row{Time: r.times[tick], Agent: a, Target: r.targets[tick]}
	}
	return rows
}
