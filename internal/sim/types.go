package sim

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/particle"
	"github.com/san-kum/spheresim/internal/physics"
)

type Mode int

const (
	Sequential Mode = iota
	Snapshot
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Snapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "sequential":
		return Sequential, nil
	case "snapshot":
		return Snapshot, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, name)
	}
}

type PopulationConfig struct {
	InitialE  int
	InitialMP int
	MaxE      int
	MaxMP     int

	// Repulsion is used for bulk spawns, RequestRepulsion for single
	// request-driven adds.
	Repulsion        float32
	RequestRepulsion float32
	Attraction       float32
	MPSize           float32

	SpawnExtent    float32
	NearExtent     float32
	FallbackExtent float32
}

func DefaultPopulationConfig() PopulationConfig {
	return PopulationConfig{
		InitialE:         10,
		InitialMP:        2,
		MaxE:             1000,
		MaxMP:            100,
		Repulsion:        5.0,
		RequestRepulsion: 1.0,
		Attraction:       3.0,
		MPSize:           particle.DefaultMPSize,
		SpawnExtent:      20,
		NearExtent:       0.5,
		FallbackExtent:   5,
	}
}

func (c PopulationConfig) Validate() error {
	switch {
	case c.MaxE < 0 || c.MaxMP < 0:
		return fmt.Errorf("%w: capacities must be non-negative (max_e=%d, max_mp=%d)", ErrInvalidConfig, c.MaxE, c.MaxMP)
	case c.InitialE < 0 || c.InitialMP < 0:
		return fmt.Errorf("%w: initial counts must be non-negative", ErrInvalidConfig)
	case c.InitialE > c.MaxE:
		return fmt.Errorf("%w: initial_e %d exceeds max_e %d", ErrInvalidConfig, c.InitialE, c.MaxE)
	case c.InitialMP > c.MaxMP:
		return fmt.Errorf("%w: initial_mp %d exceeds max_mp %d", ErrInvalidConfig, c.InitialMP, c.MaxMP)
	case c.SpawnExtent < 0 || c.NearExtent < 0 || c.FallbackExtent < 0:
		return fmt.Errorf("%w: spawn extents must be non-negative", ErrInvalidConfig)
	case c.MPSize <= 0:
		return fmt.Errorf("%w: mp_size must be positive, got %f", ErrInvalidConfig, c.MPSize)
	}
	return nil
}

type Config struct {
	Population     PopulationConfig
	Bounds         float32
	Law            physics.Law
	Mode           Mode
	Workers        int
	GuardNonFinite bool
	Seed           int64
}

func DefaultConfig() Config {
	return Config{
		Population:     DefaultPopulationConfig(),
		Bounds:         physics.DefaultBounds,
		Law:            physics.InverseSquare,
		Mode:           Sequential,
		Workers:        4,
		GuardNonFinite: true,
	}
}

func (c Config) Validate() error {
	if c.Bounds <= 0 {
		return fmt.Errorf("%w: bounds must be positive, got %f", ErrInvalidConfig, c.Bounds)
	}
	if c.Mode == Snapshot && c.Workers < 1 {
		return fmt.Errorf("%w: snapshot mode needs at least one worker", ErrInvalidConfig)
	}
	return c.Population.Validate()
}

// Counts is the population summary shown by overlays.
type Counts struct {
	E     int `json:"e"`
	MP    int `json:"mp"`
	MaxE  int `json:"max_e"`
	MaxMP int `json:"max_mp"`
}

func (c Counts) String() string {
	return fmt.Sprintf("E %d/%d  MP %d/%d", c.E, c.MaxE, c.MP, c.MaxMP)
}

type Body struct {
	Position mgl32.Vec3 `json:"p"`
	Velocity mgl32.Vec3 `json:"v"`
}

type MPBody struct {
	Position mgl32.Vec3 `json:"p"`
	Velocity mgl32.Vec3 `json:"v"`
	Size     float32    `json:"size"`
}

// Frame is a read-only copy of the population after a step.
type Frame struct {
	Number int      `json:"frame"`
	Time   float64  `json:"time"`
	E      []Body   `json:"e"`
	MP     []MPBody `json:"mp"`
	Counts Counts   `json:"counts"`
}

func (f *Frame) IsFinite() bool {
	for _, b := range f.E {
		if !particle.IsFinite(b.Position) || !particle.IsFinite(b.Velocity) {
			return false
		}
	}
	for _, b := range f.MP {
		if !particle.IsFinite(b.Position) || !particle.IsFinite(b.Velocity) {
			return false
		}
	}
	return true
}

// StepStats describes what happened during one Step.
type StepStats struct {
	Frame    int
	Applied  int
	Changed  int
	Clamped  int
	Rejected int
	Skipped  bool
}

// Observer is notified after every step that advanced the simulation.
type Observer interface {
	OnStep(f *Frame, stats StepStats)
}
