package sim

import (
	"fmt"
	"strings"
)

type CommandKind int

const (
	AddE CommandKind = iota
	AddMP
	RemoveE
	RemoveMP
	Reset
	AddEBatch
	RemoveEBatch
)

var commandNames = map[CommandKind]string{
	AddE:         "add_e",
	AddMP:        "add_mp",
	RemoveE:      "remove_e",
	RemoveMP:     "remove_mp",
	Reset:        "reset",
	AddEBatch:    "add_e_batch",
	RemoveEBatch: "remove_e_batch",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is a population change requested between frames. Count is only
// read by the batch kinds.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Count int         `json:"count,omitempty"`
}

func (c Command) String() string {
	if c.Kind == AddEBatch || c.Kind == RemoveEBatch {
		return fmt.Sprintf("%s(%d)", c.Kind, c.Count)
	}
	return c.Kind.String()
}

// ParseCommand resolves a command by name.
func ParseCommand(name string, count int) (Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range commandNames {
		if n == name {
			return Command{Kind: kind, Count: count}, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// Apply runs cmd against the population and returns how many particles
// were added or removed. Rejected adds and empty removes change nothing.
func (p *Population) Apply(cmd Command) (int, error) {
	changed := func(ok bool) int {
		if ok {
			return 1
		}
		return 0
	}

	switch cmd.Kind {
	case AddE:
		return changed(p.SpawnENearRandomMP()), nil
	case AddMP:
		return changed(p.SpawnMPRandom()), nil
	case RemoveE:
		return changed(p.RemoveRandomE()), nil
	case RemoveMP:
		return changed(p.RemoveRandomMP()), nil
	case Reset:
		p.Reset()
		return len(p.es) + len(p.mps), nil
	case AddEBatch:
		return p.AddERandomN(cmd.Count), nil
	case RemoveEBatch:
		return p.RemoveRandomEN(cmd.Count), nil
	default:
		return 0, fmt.Errorf("%w: kind %d", ErrUnknownCommand, int(cmd.Kind))
	}
}
