package viz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/obstacle"
	"github.com/san-kum/swarmfield/internal/swarm"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(3, 2)
	w, h := c.Dots()
	assert.Equal(t, 6, w)
	assert.Equal(t, 8, h)

	c.Set(3, 5)
	assert.True(t, c.IsSet(3, 5))
	assert.False(t, c.IsSet(2, 5))
	assert.Equal(t, rune(blank|0x10), c.Grid[1][1])

	c.Set(-1, 0)
	c.Set(6, 0)
	c.Set(0, 8)
	assert.False(t, c.IsSet(6, 0))

	c.Clear()
	assert.False(t, c.IsSet(3, 5))
	assert.Equal(t, 2, strings.Count(c.String(), "\n"))
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 9, 9)
	for i := 0; i <= 9; i++ {
		assert.True(t, c.IsSet(i, i), "dot %d", i)
	}
}

func TestCanvasDrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8)
	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		assert.True(t, c.IsSet(p[0], p[1]), "%v", p)
	}
	assert.False(t, c.IsSet(20, 20))

	c.Clear()
	c.DrawCircle(5, 5, 0)
	assert.True(t, c.IsSet(5, 5))
}

func TestViewport(t *testing.T) {
	v := Fit(geom.Vec2{X: 2.5, Y: 2.5}, 120, 96)
	assert.InDelta(t, 96.0/5, v.Scale, 1e-12)

	x, y := v.Dot(geom.Vec2{})
	assert.Equal(t, 60, x)
	assert.Equal(t, 48, y)

	x, y = v.Dot(geom.Vec2{X: 2.5, Y: 2.5})
	assert.Equal(t, 108, x)
	assert.Equal(t, 0, y, "+y is up")
	assert.Equal(t, 19, v.Length(1))
}

func TestNextTheme(t *testing.T) {
	th := Themes[0]
	for range Themes {
		th = NextTheme(th)
	}
	assert.Equal(t, Themes[0].Name, th.Name)
	assert.Equal(t, Themes[0].Name, NextTheme(Theme{Name: "missing"}).Name)
}

type fakeLoop struct {
	calls []float64
	fail  bool
}

func (f *fakeLoop) Step(_ context.Context, now float64) (*swarm.Frame, error) {
	f.calls = append(f.calls, now)
	if f.fail {
		return nil, errors.New("no pose")
	}
	x := float64(len(f.calls)) * 0.01
	return &swarm.Frame{
		Tick:      len(f.calls) - 1,
		Time:      now,
		Target:    geom.Vec3{X: 1, Z: 1},
		Agents:    []swarm.Agent{{ID: "cf1", Setpoint: geom.Vec3{X: x, Z: 1}}, {ID: "cf2", Stalled: true}},
		Obstacles: []obstacle.Obstacle{{ID: "o1", Position: geom.Vec2{Y: 1}, Radius: 0.2}},
	}, nil
}

type fakePilot struct{ dx, dy, turns int }

func (p *fakePilot) Nudge(dx, dy int) { p.dx += dx; p.dy += dy }
func (p *fakePilot) Rotate(n int)     { p.turns += n }

func press(t *testing.T, m Model, key string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTicks(t *testing.T) {
	loop := &fakeLoop{}
	m := NewModel(context.Background(), loop, nil, "room", geom.Vec2{X: 2.5, Y: 2.5}, 200)

	next, cmd := m.Update(TickMsg(time.Now()))
	require.NotNil(t, cmd)
	m = next.(Model)

	require.Len(t, loop.calls, 7)
	assert.InDelta(t, 0.005, loop.calls[1], 1e-12)
	require.NotNil(t, m.frame)
	assert.Len(t, m.trails["cf1"], 7)
	assert.Len(t, m.dist, 7)
	assert.InDelta(t, 0.93, m.dist[6], 1e-12)

	out := m.View()
	assert.Contains(t, out, "ROOM")
	assert.Contains(t, out, "stalled")
}

func TestModelPauseAndStep(t *testing.T) {
	loop := &fakeLoop{}
	m := NewModel(context.Background(), loop, nil, "room", geom.Vec2{X: 2.5, Y: 2.5}, 30)

	m = press(t, m, " ")
	assert.False(t, m.running)
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	assert.Empty(t, loop.calls)

	m = press(t, m, "n")
	assert.Len(t, loop.calls, 1)
	assert.Contains(t, m.View(), "PAUSED")
}

func TestModelPilotKeys(t *testing.T) {
	p := &fakePilot{}
	m := NewModel(context.Background(), &fakeLoop{}, p, "live", geom.Vec2{X: 2.5, Y: 2.5}, 200)
	for _, k := range []string{"up", "w", "a", "e", "e", "r"} {
		m = press(t, m, k)
	}
	assert.Equal(t, -1, p.dx)
	assert.Equal(t, 2, p.dy)
	assert.Equal(t, 1, p.turns)

	m = press(t, m, "t")
	assert.Equal(t, Themes[1].Name, m.theme.Name)
}

func TestModelCountsErrors(t *testing.T) {
	m := NewModel(context.Background(), &fakeLoop{fail: true}, nil, "room", geom.Vec2{X: 1, Y: 1}, 60)
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	assert.Equal(t, 2, m.errs)
	assert.Nil(t, m.frame)
	assert.Contains(t, m.View(), "tick error")
}

func TestModelQuit(t *testing.T) {
	m := NewModel(context.Background(), &fakeLoop{}, nil, "room", geom.Vec2{X: 1, Y: 1}, 60)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
