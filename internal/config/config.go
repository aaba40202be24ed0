package config

import (
	"fmt"
	"os"

	"github.com/san-kum/spheresim/internal/physics"
	"github.com/san-kum/spheresim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 1.0 / 60.0
	DefaultFrames   = 600
	DefaultWorkers  = 4
	DefaultLogLevel = "info"
)

type Config struct {
	Seed           int64            `yaml:"seed"`
	Dt             float64          `yaml:"dt"`
	Frames         int              `yaml:"frames"`
	Mode           string           `yaml:"mode"`
	Workers        int              `yaml:"workers"`
	ForceLaw       string           `yaml:"force_law"`
	GuardNonFinite bool             `yaml:"guard_non_finite"`
	Bounds         float64          `yaml:"bounds"`
	Population     PopulationConfig `yaml:"population"`
	LogLevel       string           `yaml:"log_level"`
}

type PopulationConfig struct {
	InitialE         int     `yaml:"initial_e"`
	InitialMP        int     `yaml:"initial_mp"`
	MaxE             int     `yaml:"max_e"`
	MaxMP            int     `yaml:"max_mp"`
	Repulsion        float64 `yaml:"repulsion"`
	RequestRepulsion float64 `yaml:"request_repulsion"`
	Attraction       float64 `yaml:"attraction"`
	MPSize           float64 `yaml:"mp_size"`
	SpawnExtent      float64 `yaml:"spawn_extent"`
	NearExtent       float64 `yaml:"near_extent"`
	FallbackExtent   float64 `yaml:"fallback_extent"`
}

func DefaultConfig() *Config {
	p := sim.DefaultPopulationConfig()
	return &Config{
		Dt:             DefaultDt,
		Frames:         DefaultFrames,
		Mode:           sim.Sequential.String(),
		Workers:        DefaultWorkers,
		ForceLaw:       physics.InverseSquare.String(),
		GuardNonFinite: true,
		Bounds:         float64(physics.DefaultBounds),
		Population: PopulationConfig{
			InitialE:         p.InitialE,
			InitialMP:        p.InitialMP,
			MaxE:             p.MaxE,
			MaxMP:            p.MaxMP,
			Repulsion:        float64(p.Repulsion),
			RequestRepulsion: float64(p.RequestRepulsion),
			Attraction:       float64(p.Attraction),
			MPSize:           float64(p.MPSize),
			SpawnExtent:      float64(p.SpawnExtent),
			NearExtent:       float64(p.NearExtent),
			FallbackExtent:   float64(p.FallbackExtent),
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureSeed replaces a zero seed with now() and reports whether it did.
// A zero seed in a file or flag means "unset".
func (c *Config) EnsureSeed(now func() int64) bool {
	if c.Seed != 0 {
		return false
	}
	c.Seed = now()
	if c.Seed == 0 {
		c.Seed = 1
	}
	return true
}

// Validate checks the driver settings and everything SimConfig checks.
func (c *Config) Validate() error {
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must be non-negative, got %d", sim.ErrInvalidConfig, c.Frames)
	}
	_, err := c.SimConfig()
	return err
}

// SimConfig converts the file representation into a validated sim.Config.
func (c *Config) SimConfig() (sim.Config, error) {
	mode, err := sim.ParseMode(c.Mode)
	if err != nil {
		return sim.Config{}, err
	}
	law, err := physics.ParseLaw(c.ForceLaw)
	if err != nil {
		return sim.Config{}, fmt.Errorf("%w: %v", sim.ErrInvalidConfig, err)
	}

	out := sim.Config{
		Population: sim.PopulationConfig{
			InitialE:         c.Population.InitialE,
			InitialMP:        c.Population.InitialMP,
			MaxE:             c.Population.MaxE,
			MaxMP:            c.Population.MaxMP,
			Repulsion:        float32(c.Population.Repulsion),
			RequestRepulsion: float32(c.Population.RequestRepulsion),
			Attraction:       float32(c.Population.Attraction),
			MPSize:           float32(c.Population.MPSize),
			SpawnExtent:      float32(c.Population.SpawnExtent),
			NearExtent:       float32(c.Population.NearExtent),
			FallbackExtent:   float32(c.Population.FallbackExtent),
		},
		Bounds:         float32(c.Bounds),
		Law:            law,
		Mode:           mode,
		Workers:        c.Workers,
		GuardNonFinite: c.GuardNonFinite,
		Seed:           c.Seed,
	}
	if err := out.Validate(); err != nil {
		return sim.Config{}, err
	}
	return out, nil
}

// GetParams exposes the tunable strengths by name.
func (c *Config) GetParams() map[string]float64 {
	return map[string]float64{
		"repulsion":  c.Population.Repulsion,
		"attraction": c.Population.Attraction,
		"mp_size":    c.Population.MPSize,
	}
}

func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "repulsion":
		c.Population.Repulsion = value
	case "attraction":
		c.Population.Attraction = value
	case "mp_size":
		c.Population.MPSize = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
