package control

import "github.com/san-kum/spheresim/internal/sim"

type Key int

const (
	Key1 Key = iota
	Key2
	Key3
	Key4
	KeyR
	numKeys
)

func (k Key) String() string {
	switch k {
	case Key1:
		return "1"
	case Key2:
		return "2"
	case Key3:
		return "3"
	case Key4:
		return "4"
	case KeyR:
		return "R"
	default:
		return "?"
	}
}

// Input is the polled keyboard state for one frame.
type Input struct {
	Down [numKeys]bool
	Ctrl bool
}

func (in *Input) Press(keys ...Key) {
	for _, k := range keys {
		in.Down[k] = true
	}
}

type Binding struct {
	Key     Key
	Ctrl    bool
	Command sim.Command
	Label   string
}

// Bindings is the windowed key map.
var Bindings = []Binding{
	{Key1, false, sim.Command{Kind: sim.AddE}, "add E"},
	{Key2, false, sim.Command{Kind: sim.AddMP}, "add MP"},
	{Key3, false, sim.Command{Kind: sim.RemoveE}, "remove E"},
	{Key4, false, sim.Command{Kind: sim.RemoveMP}, "remove MP"},
	{Key1, true, sim.Command{Kind: sim.AddEBatch, Count: 100}, "+100 E"},
	{Key2, true, sim.Command{Kind: sim.AddEBatch, Count: 10}, "+10 E"},
	{Key3, true, sim.Command{Kind: sim.RemoveEBatch, Count: 10}, "-10 E"},
	{KeyR, true, sim.Command{Kind: sim.Reset}, "reset"},
}

// TerminalKeys maps key names as reported by terminal UIs. Terminals
// cannot report ctrl+digit, so the batch commands sit on the shifted
// digits.
var TerminalKeys = map[string]sim.Command{
	"1":      {Kind: sim.AddE},
	"2":      {Kind: sim.AddMP},
	"3":      {Kind: sim.RemoveE},
	"4":      {Kind: sim.RemoveMP},
	"!":      {Kind: sim.AddEBatch, Count: 100},
	"@":      {Kind: sim.AddEBatch, Count: 10},
	"#":      {Kind: sim.RemoveEBatch, Count: 10},
	"ctrl+r": {Kind: sim.Reset},
}

// Manual remembers the previous frame's keys.
type Manual struct {
	prev Input
}

func NewManual() *Manual {
	return &Manual{}
}

// Update returns the command for the first binding, in Bindings order,
// whose key went down since the last call. At most one command is issued
// per call; other keys pressed in the same frame are consumed.
func (m *Manual) Update(cur Input) []sim.Command {
	defer func() { m.prev = cur }()
	for _, b := range Bindings {
		if b.Ctrl != cur.Ctrl {
			continue
		}
		if cur.Down[b.Key] && !m.prev.Down[b.Key] {
			return []sim.Command{b.Command}
		}
	}
	return nil
}

func (m *Manual) Reset() {
	m.prev = Input{}
}
