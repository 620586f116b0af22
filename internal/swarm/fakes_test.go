package swarm_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/san-kum/swarmfield/internal/geom"
)

var errOffline = errors.New("offline")

// tracker is a pose source and actuation sink in one: every agent sits
// exactly on its last setpoint.
type tracker struct {
	mu        sync.Mutex
	positions map[string]geom.Vec3
	yaw       float64
	human     string
	sent      map[string][]geom.Vec3
	takeoffs  []string
	failSend  map[string]bool
	noHuman   bool
	// humanPath, when set, replaces the human position: read k returns
	// humanPath[k], holding the last entry.
	humanPath  []geom.Vec3
	humanReads int
}

func newTracker(human string) *tracker {
	return &tracker{
		positions: make(map[string]geom.Vec3),
		human:     human,
		sent:      make(map[string][]geom.Vec3),
		failSend:  make(map[string]bool),
	}
}

func (t *tracker) place(id string, p geom.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions[id] = p
}

func (t *tracker) Position(id string) (geom.Vec3, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == t.human && t.noHuman {
		return geom.Vec3{}, errOffline
	}
	if id == t.human && len(t.humanPath) > 0 {
		k := min(t.humanReads, len(t.humanPath)-1)
		t.humanReads++
		return t.humanPath[k], nil
	}
	p, ok := t.positions[id]
	if !ok {
		return geom.Vec3{}, errOffline
	}
	return p, nil
}

func (t *tracker) Yaw(id string) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.yaw, nil
}

func (t *tracker) Takeoff(ctx context.Context, id string, height float64, d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.takeoffs = append(t.takeoffs, id)
	return nil
}

func (t *tracker) Send(ctx context.Context, id string, sp geom.Vec3) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failSend[id] {
		return errOffline
	}
	t.sent[id] = append(t.sent[id], sp)
	t.positions[id] = sp
	return nil
}
