package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/control"
	"github.com/san-kum/spheresim/internal/sim"
)

const (
	width           = 80
	height          = 24
	fps             = 60
	historyCapacity = 600
	zoomStep        = 5
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the bubbletea live viewer for a Simulator.
type Model struct {
	sim        *sim.Simulator
	dt         float32
	title      string
	canvas     *Canvas
	camera     *OrbitCamera
	zoom       harmonica.Spring
	zoomVel    float64
	zoomTarget float64
	orbit      bool
	running    bool
	showHelp   bool
	theme      Theme
	styles     Styles
	eHistory   []float64
	speeds     []float64
	last       sim.StepStats
	err        error
}

func NewModel(s *sim.Simulator, dt float64, title string) Model {
	cam := NewOrbitCamera()
	return Model{
		sim:        s,
		dt:         float32(dt),
		title:      title,
		canvas:     NewCanvas(width, height),
		camera:     cam,
		zoom:       harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		zoomTarget: float64(cam.Distance),
		orbit:      true,
		running:    true,
		theme:      ThemeClassic,
		styles:     NewStyles(ThemeClassic),
		eHistory:   make([]float64, 0, historyCapacity),
		speeds:     make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case TickMsg:
		m.advance()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	if cmd, ok := control.TerminalKeys[key]; ok {
		m.sim.Enqueue(cmd)
		if cmd.Kind == sim.Reset {
			m.eHistory = m.eHistory[:0]
			m.speeds = m.speeds[:0]
		}
		return m, nil
	}

	switch key {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "o":
		m.orbit = !m.orbit
	case "c":
		m.camera.Reset()
		m.zoomTarget = float64(m.camera.Distance)
	case "+", "=":
		m.zoomTarget = float64(mgl32.Clamp(float32(m.zoomTarget)-zoomStep, MinDistance, MaxDistance))
	case "-", "_":
		m.zoomTarget = float64(mgl32.Clamp(float32(m.zoomTarget)+zoomStep, MinDistance, MaxDistance))
	case "left", "h":
		m.camera.Pan(-10, 0)
	case "right", "l":
		m.camera.Pan(10, 0)
	case "up", "k":
		m.camera.Pan(0, 10)
	case "down", "j":
		m.camera.Pan(0, -10)
	case "x":
		m.camera.Rotate(0.1)
	case "X":
		m.camera.Rotate(-0.1)
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = NewStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// advance runs one frame. While paused, queued commands are still applied
// through a zero length step.
func (m *Model) advance() {
	dist, vel := m.zoom.Update(float64(m.camera.Distance), m.zoomVel, m.zoomTarget)
	m.zoomVel = vel
	m.camera.SetDistance(float32(dist))
	if m.orbit {
		m.camera.Orbit()
	}

	dt := m.dt
	if !m.running {
		if m.sim.Pending() == 0 {
			return
		}
		dt = 0
	}

	stats, err := m.sim.Step(dt)
	m.last = stats
	m.err = err
	if stats.Skipped {
		return
	}

	counts := m.sim.Counts()
	m.eHistory = appendCapped(m.eHistory, float64(counts.E))
	speed := 0.0
	pop := m.sim.Population()
	for i := 0; i < pop.LenE(); i++ {
		e := pop.E(i)
		speed += float64(e.Velocity.Len())
	}
	if pop.LenE() > 0 {
		speed /= float64(pop.LenE())
	}
	m.speeds = appendCapped(m.speeds, speed)
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

type splat struct {
	x, y, r int
	depth   float32
}

// draw projects the population onto the canvas, far particles first.
func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.Dots()
	pop := m.sim.Population()

	splats := make([]splat, 0, pop.LenE()+pop.LenMP())
	for i := 0; i < pop.LenE(); i++ {
		if x, y, d, ok := m.camera.Project(pop.E(i).Position, w, h); ok {
			splats = append(splats, splat{x: x, y: y, depth: d})
		}
	}
	for i := 0; i < pop.LenMP(); i++ {
		mp := pop.MP(i)
		if x, y, d, ok := m.camera.Project(mp.Position, w, h); ok {
			r := int(m.camera.ScreenRadius(mp.Size*0.5, d, h))
			splats = append(splats, splat{x: x, y: y, r: max(r, 1), depth: d})
		}
	}
	sort.Slice(splats, func(i, j int) bool { return splats[i].depth > splats[j].depth })

	for _, s := range splats {
		m.canvas.Disc(s.x, s.y, s.r)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render("ERROR: " + m.err.Error())
	case !m.running:
		return m.styles.Paused.Render("PAUSED")
	default:
		return m.styles.Running.Render("RUNNING")
	}
}

func (m Model) View() string {
	m.draw()
	st := m.styles
	counts := m.sim.Counts()

	var s strings.Builder
	s.WriteString(st.Header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	s.WriteString(st.E.Render(fmt.Sprintf("E Particles: %d/%d", counts.E, counts.MaxE)) + "\n")
	s.WriteString(st.E.Render(CapacityBar(counts.E, counts.MaxE, 30)) + "\n")
	s.WriteString(st.MP.Render(fmt.Sprintf("MP Particles: %d/%d", counts.MP, counts.MaxMP)) + "\n")
	s.WriteString(st.MP.Render(CapacityBar(counts.MP, counts.MaxMP, 30)) + "\n\n")

	s.WriteString(st.Label.Render("Frame") + st.Value.Render(fmt.Sprintf("%d", m.sim.FrameNumber())) + "\n")
	s.WriteString(st.Label.Render("Time") + st.Value.Render(fmt.Sprintf("%.2fs", m.sim.Time())) + "\n")
	s.WriteString(st.Label.Render("Mode") + st.Value.Render(m.sim.Config().Mode.String()) + "\n")
	s.WriteString(st.Label.Render("Force law") + st.Value.Render(m.sim.Config().Law.String()) + "\n")
	s.WriteString(st.Label.Render("Camera") + st.Value.Render(fmt.Sprintf("d=%.1f", m.camera.Distance)) + "\n")
	if m.last.Clamped > 0 || m.last.Rejected > 0 {
		s.WriteString(st.Label.Render("Clamped") + st.Value.Render(fmt.Sprintf("%d", m.last.Clamped)) + "\n")
		s.WriteString(st.Label.Render("Rejected") + st.Value.Render(fmt.Sprintf("%d", m.last.Rejected)) + "\n")
	}

	if len(m.eHistory) > 1 {
		chart := asciigraph.Plot(m.eHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("E count"))
		s.WriteString("\n" + st.Graph.Render(chart) + "\n")
	}
	if len(m.speeds) > 0 {
		s.WriteString(st.Label.Render("E speed") + st.Graph.Render(Sparkline(m.speeds, 28)) + "\n")
	}

	s.WriteString(st.Help.Render("1/2 add E/MP  3/4 remove E/MP\n! +100E  @ +10E  # -10E\nctrl+r reset  space pause  ? help  q quit"))

	canvasView := st.Canvas.Render(lipgloss.NewStyle().Foreground(m.theme.E).Render(m.canvas.String()))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.Panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  1 / 2    - Add E / MP particle      ║
║  3 / 4    - Remove E / MP particle   ║
║  !  @  #  - +100 E, +10 E, -10 E     ║
║  Ctrl+R   - Reset population         ║
║  Space    - Pause/Resume             ║
║  + / -    - Zoom in / out            ║
║  Arrows   - Pan                      ║
║  x / X    - Rotate                   ║
║  o        - Toggle auto orbit        ║
║  c        - Reset camera             ║
║  t        - Cycle themes             ║
║  q / Esc  - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the live viewer in the alternate screen.
func Run(s *sim.Simulator, dt float64, title string) error {
	_, err := tea.NewProgram(NewModel(s, dt, title), tea.WithAltScreen()).Run()
	return err
}

