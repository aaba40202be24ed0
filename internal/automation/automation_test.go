package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/sim"
)

const scenarioYAML = `
name: burst
description: add a batch then thin it out
seed: 5
frames: 20
dt: 0.02
steps:
  - frame: 0
    command: add_e_batch
    count: 100
  - frame: 10
    command: remove_e_batch
    count: 10
  - frame: 12
    command: add_mp
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Name != "burst" || s.Frames != 20 || len(s.Steps) != 3 {
		t.Errorf("unexpected scenario: %+v", s)
	}

	schedule, err := s.Schedule()
	if err != nil {
		t.Fatal(err)
	}
	if schedule[0].Command.Kind != sim.AddEBatch || schedule[0].Command.Count != 100 {
		t.Errorf("step 0 = %+v", schedule[0])
	}
	if schedule[2].Command.Kind != sim.AddMP || schedule[2].Frame != 12 {
		t.Errorf("step 2 = %+v", schedule[2])
	}
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown command", "steps:\n  - frame: 1\n    command: explode\n", sim.ErrUnknownCommand},
		{"negative frame", "steps:\n  - frame: -3\n    command: add_e\n", sim.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.yaml)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSingleCommandIgnoresCount(t *testing.T) {
	s, err := ParseScenario([]byte("frames: 1\nsteps:\n  - frame: 0\n    command: add_mp\n    count: 5\n"))
	if err != nil {
		t.Fatal(err)
	}
	schedule, err := s.Schedule()
	if err != nil {
		t.Fatal(err)
	}

	cfg := sim.DefaultConfig()
	cfg.Population.InitialE = 0
	cfg.Population.InitialMP = 0
	cfg.Seed = 3
	simulator, err := sim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	simulator.Enqueue(schedule[0].Command)
	if _, err := simulator.Step(0); err != nil {
		t.Fatal(err)
	}
	if got := simulator.Counts().MP; got != 1 {
		t.Errorf("MP count = %d, want 1", got)
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burst.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Seed == nil || *s.Seed != 5 {
		t.Errorf("seed = %v", s.Seed)
	}
}

func TestScenarioConfigLayering(t *testing.T) {
	s, _ := ParseScenario([]byte("preset: crowd\nframes: 7\n"))
	cfg, err := s.Config(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Population.InitialE != 500 || cfg.Frames != 7 {
		t.Errorf("layering failed: initial_e=%d frames=%d", cfg.Population.InitialE, cfg.Frames)
	}

	bad := &Scenario{Preset: "nope"}
	if _, err := bad.Config(config.DefaultConfig()); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	s, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	res, err := RunScenario(context.Background(), s, config.DefaultConfig())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Frames != 20 {
		t.Errorf("frames = %d", res.Frames)
	}
	if res.Final.Counts.E != 100 || res.Final.Counts.MP != 3 {
		t.Errorf("final counts = %v", res.Final.Counts)
	}
}

func TestRunMonteCarlo(t *testing.T) {
	s, _ := ParseScenario([]byte("frames: 5\n"))
	results, err := RunMonteCarlo(context.Background(), s, config.DefaultConfig(), 3, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if r.Seed != int64(100+i) {
			t.Errorf("trial %d seed = %d", i, r.Seed)
		}
	}
	stable, unstable := MonteCarloStats(results)
	if stable+unstable != 3 {
		t.Errorf("stats = %d/%d", stable, unstable)
	}
}
