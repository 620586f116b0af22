package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/swarm"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	trailLength     = 120
	frameRate       = 30
)

// Stepper advances the control loop one tick.
type Stepper interface {
	Step(ctx context.Context, now float64) (*swarm.Frame, error)
}

// Pilot moves the operator from key presses.
type Pilot interface {
	Nudge(dx, dy int)
	Rotate(n int)
}

type TickMsg time.Time

// Model renders a running swarm: obstacles, agents with their trails, the
// operator and the leader target.
type Model struct {
	ctx    context.Context
	loop   Stepper
	pilot  Pilot
	title  string
	dt     float64
	stride int

	now     float64
	frame   *swarm.Frame
	errs    int
	lastErr error

	canvas *Canvas
	view   Viewport
	trails map[string][]geom.Vec2
	dist   []float64

	theme    Theme
	styles   styles
	running  bool
	showHelp bool
}

// NewModel draws an arena of the given half-extent in meters. The loop runs
// at rate ticks per second of simulated time, several ticks per frame. A nil
// pilot disables the movement keys.
func NewModel(ctx context.Context, loop Stepper, pilot Pilot, title string, arena geom.Vec2, rate float64) Model {
	c := NewCanvas(width, height)
	w, h := c.Dots()
	stride := int(rate/frameRate + 0.5)
	if stride < 1 {
		stride = 1
	}
	return Model{
		ctx:     ctx,
		loop:    loop,
		pilot:   pilot,
		title:   title,
		dt:      1 / rate,
		stride:  stride,
		canvas:  c,
		view:    Fit(arena, w, h),
		trails:  make(map[string][]geom.Vec2),
		dist:    make([]float64, 0, historyCapacity),
		theme:   ThemeCyberpunk,
		styles:  newStyles(ThemeCyberpunk),
		running: true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "up", "w":
			m.nudge(0, 1)
		case "down", "s":
			m.nudge(0, -1)
		case "left", "a":
			m.nudge(-1, 0)
		case "right", "d":
			m.nudge(1, 0)
		case "e":
			if m.pilot != nil {
				m.pilot.Rotate(1)
			}
		case "r":
			if m.pilot != nil {
				m.pilot.Rotate(-1)
			}
		}
	case TickMsg:
		if m.running {
			m.advance(m.stride)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) nudge(dx, dy int) {
	if m.pilot != nil {
		m.pilot.Nudge(dx, dy)
	}
}

// advance steps the loop n ticks, recording trails and the leader's
// distance to its target.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		f, err := m.loop.Step(m.ctx, m.now)
		m.now += m.dt
		if err != nil {
			m.errs++
			m.lastErr = err
			continue
		}
		m.frame = f
		for _, a := range f.Agents {
			t := append(m.trails[a.ID], a.Setpoint.XY())
			if len(t) > trailLength {
				t = t[1:]
			}
			m.trails[a.ID] = t
		}
		m.dist = append(m.dist, f.Leader().Setpoint.XY().Dist(f.Target.XY()))
		if len(m.dist) > historyCapacity {
			m.dist = m.dist[1:]
		}
	}
}

// draw renders the current frame onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	f := m.frame
	if f == nil {
		return
	}

	for _, o := range f.Obstacles {
		x, y := m.view.Dot(o.Position)
		m.canvas.DrawCircle(x, y, m.view.Length(o.Radius))
	}
	for _, trail := range m.trails {
		for _, p := range trail {
			m.canvas.Set(m.view.Dot(p))
		}
	}
	for i, a := range f.Agents {
		x, y := m.view.Dot(a.Setpoint.XY())
		half := 1
		if i == 0 {
			half = 2
		}
		m.canvas.Blob(x, y, half)
	}

	tx, ty := m.view.Dot(f.Target.XY())
	m.canvas.DrawLine(tx-3, ty-3, tx+3, ty+3)
	m.canvas.DrawLine(tx-3, ty+3, tx+3, ty-3)

	hx, hy := m.view.Dot(f.Human.XY())
	m.canvas.DrawCircle(hx, hy, 2)
	heading := f.Human.XY().Add(geom.Heading(f.HumanYaw).Scale(0.25))
	ex, ey := m.view.Dot(heading)
	m.canvas.DrawLine(hx, hy, ex, ey)
}

func (m Model) View() string {
	m.draw()
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	switch {
	case m.running:
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	if len(m.dist) > 1 {
		chart := asciigraph.Plot(m.dist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Leader to target (m)"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.now))
	if f := m.frame; f != nil {
		l := f.Leader()
		row("Tick", fmt.Sprintf("%d", f.Tick))
		row("Operator", fmt.Sprintf("(%.2f, %.2f)", f.Human.X, f.Human.Y))
		row("Target", fmt.Sprintf("(%.2f, %.2f)", f.Target.X, f.Target.Y))
		row("Leader", fmt.Sprintf("(%.2f, %.2f)", l.Setpoint.X, l.Setpoint.Y))
		row("Speed", fmt.Sprintf("%.2f m/s", l.Velocity.Norm()))
		row("Obstacles", fmt.Sprintf("%d", len(f.Obstacles)))
		stalled := 0
		for _, a := range f.Agents {
			if a.Stalled {
				stalled++
			}
		}
		if stalled > 0 {
			s.WriteString(st.alert.Render(fmt.Sprintf("%d agent(s) stalled", stalled)) + "\n")
		}
	}
	if m.errs > 0 {
		s.WriteString(st.alert.Render(fmt.Sprintf("%d tick error(s): %v", m.errs, m.lastErr)) + "\n")
	}

	s.WriteString(st.help.Render("─────────────────────\nSP:Pause N:Step Q:Quit\nWASD/←↑↓→:Move E/R:Turn\nT:Theme ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single tick when paused  ║
║  W/A/S/D  - Move the operator        ║
║  E / R    - Turn left / right        ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the UI full screen and blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
