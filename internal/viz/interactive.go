package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/sim"
)

var presetInfo = map[string]string{
	"default": "10 E around 2 MP",
	"crowd":   "500 E, 10 MP",
	"dense":   "full caps, snapshot mode",
	"pair":    "two MPs alone",
	"lonely":  "E without MPs",
	"legacy":  "unnormalised force law",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

var tunables = []string{"initial_e", "initial_mp", "repulsion", "attraction", "mp_size", "seed"}

// app picks a preset, lets the user tune it and then hands over to Model.
type app struct {
	state       int
	cursor      int
	presets     []string
	cfg         *config.Config
	paramCursor int
	editing     bool
	editBuf     string
	err         error
	live        Model
}

func NewInteractiveApp() *app {
	return &app{state: stateMenu, presets: config.ListPresets()}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(key.String())
		case stateConfig:
			return m.configKey(key.String())
		}
	}
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(key string) (app, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.presets)-1)
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(key string) (app, tea.Cmd) {
	name := tunables[m.paramCursor]
	if m.editing {
		switch key {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.err = m.setParam(name, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(key) == 1 && strings.ContainsAny(key, "0123456789.-") {
				m.editBuf += key
			}
		}
		return m, nil
	}

	switch key {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		m.paramCursor = max(m.paramCursor-1, 0)
	case "down", "j":
		m.paramCursor = min(m.paramCursor+1, len(tunables)-1)
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(m.param(name), 'f', -1, 64)
	case "left", "h":
		m.err = m.setParam(name, m.param(name)-step(name))
	case "right", "l":
		m.err = m.setParam(name, m.param(name)+step(name))
	case "s":
		return m.start()
	}
	return m, nil
}

func step(name string) float64 {
	switch name {
	case "initial_e", "initial_mp", "seed":
		return 1
	}
	return 0.1
}

func (m app) param(name string) float64 {
	switch name {
	case "initial_e":
		return float64(m.cfg.Population.InitialE)
	case "initial_mp":
		return float64(m.cfg.Population.InitialMP)
	case "seed":
		return float64(m.cfg.Seed)
	}
	return m.cfg.GetParams()[name]
}

func (m *app) setParam(name string, v float64) error {
	switch name {
	case "initial_e":
		m.cfg.Population.InitialE = max(int(v), 0)
	case "initial_mp":
		m.cfg.Population.InitialMP = max(int(v), 0)
	case "seed":
		m.cfg.Seed = int64(v)
	default:
		return m.cfg.SetParam(name, v)
	}
	return nil
}

func (m app) start() (app, tea.Cmd) {
	sc, err := m.cfg.SimConfig()
	if err != nil {
		m.err = err
		return m, nil
	}
	s, err := sim.New(sc)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live = NewModel(s, m.cfg.Dt, m.presets[m.cursor])
	m.state = stateSim
	return m, m.live.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	default:
		return m.live.View()
	}
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("SPHERESIM") + "\n    " + menuSub.Render("E / MP particle sandbox") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", name)), menuDesc.Render(presetInfo[name]))
		} else {
			fmt.Fprintf(&b, "    %s  %s\n", menuInactive.Render(fmt.Sprintf("  %-10s", name)), menuInactive.Render(presetInfo[name]))
		}
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuSub.Render(" navigate  ") + menuKey.Render("enter") + menuSub.Render(" select  ") + menuKey.Render("q") + menuSub.Render(" quit") + "\n")
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	name := m.presets[m.cursor]
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(name)) + "\n    " + menuSub.Render(presetInfo[name]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, p := range tunables {
		val := fmt.Sprintf("%10.3f", m.param(p))
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-12s", p)), menuDesc.Render(val))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", menuInactive.Render(fmt.Sprintf("  %-12s", p)), menuInactive.Render(val))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuSub.Render(" select  ") + menuKey.Render("h/l") + menuSub.Render(" adjust  ") + menuKey.Render("s") + menuSub.Render(" start  ") + menuKey.Render("esc") + menuSub.Render(" back") + "\n")
	return b.String()
}

func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
