package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/experiment"
	"github.com/san-kum/spheresim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run: a preset, a length and a list of commands
// keyed by frame.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Seed        *int64         `yaml:"seed"`
	Frames      int            `yaml:"frames"`
	Dt          float64        `yaml:"dt"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep queues Command before Frame is stepped. Count is read only
// by the batch commands; the single add and remove commands always change
// one particle.
type ScenarioStep struct {
	Frame   int    `yaml:"frame"`
	Command string `yaml:"command"`
	Count   int    `yaml:"count"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if _, err := scenario.Schedule(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Schedule resolves the step commands.
func (s *Scenario) Schedule() ([]experiment.Scheduled, error) {
	out := make([]experiment.Scheduled, 0, len(s.Steps))
	for i, step := range s.Steps {
		cmd, err := sim.ParseCommand(step.Command, step.Count)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Frame < 0 {
			return nil, fmt.Errorf("step %d: %w: negative frame %d", i+1, sim.ErrInvalidConfig, step.Frame)
		}
		out = append(out, experiment.Scheduled{Frame: step.Frame, Command: cmd})
	}
	return out, nil
}

// Config layers the scenario's preset, seed, frames and dt over base.
func (s *Scenario) Config(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		p := config.GetPreset(s.Preset)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", sim.ErrInvalidConfig, s.Preset)
		}
		cfg = p
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	if s.Frames > 0 {
		cfg.Frames = s.Frames
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	return cfg, nil
}

func (s *Scenario) Experiment(base *config.Config) (*experiment.Experiment, error) {
	cfg, err := s.Config(base)
	if err != nil {
		return nil, err
	}
	sc, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}
	schedule, err := s.Schedule()
	if err != nil {
		return nil, err
	}
	return experiment.New(experiment.Config{
		Name:     s.Name,
		Sim:      sc,
		Dt:       cfg.Dt,
		Frames:   cfg.Frames,
		Schedule: schedule,
	}), nil
}

func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config) (*experiment.Result, error) {
	exp, err := scenario.Experiment(base)
	if err != nil {
		return nil, err
	}
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// MonteCarloResult is one seed of a repeated scenario.
type MonteCarloResult struct {
	Seed     int64
	Final    sim.Counts
	Metrics  map[string]float64
	Rejected int
	Clamped  int
}

// Stable reports whether the run never hit the bounds or the non-finite
// guard.
func (r MonteCarloResult) Stable() bool {
	return r.Rejected == 0 && r.Clamped == 0
}

// RunMonteCarlo repeats a scenario with consecutive seeds starting at
// firstSeed.
func RunMonteCarlo(ctx context.Context, scenario *Scenario, base *config.Config, trials int, firstSeed int64) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, trials)
	for trial := 0; trial < trials; trial++ {
		seed := firstSeed + int64(trial)
		s := *scenario
		s.Seed = &seed

		res, err := RunScenario(ctx, &s, base)
		if err != nil {
			return results, fmt.Errorf("trial %d (seed %d): %w", trial, seed, err)
		}
		results = append(results, MonteCarloResult{
			Seed:     seed,
			Final:    res.Final.Counts,
			Metrics:  res.Metrics,
			Rejected: res.Rejected,
			Clamped:  res.Clamped,
		})
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable() {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
