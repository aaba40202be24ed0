package main

import (
	"testing"

	"github.com/san-kum/spheresim/internal/sim"
	"github.com/spf13/cobra"
)

func TestParseSchedule(t *testing.T) {
	got, err := parseSchedule([]string{"0:add_e", "30:add_e_batch:100", "60:reset"})
	if err != nil {
		t.Fatalf("parseSchedule: %v", err)
	}
	want := []struct {
		frame int
		cmd   sim.Command
	}{
		{0, sim.Command{Kind: sim.AddE}},
		{30, sim.Command{Kind: sim.AddEBatch, Count: 100}},
		{60, sim.Command{Kind: sim.Reset}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries", len(got))
	}
	for i, w := range want {
		if got[i].Frame != w.frame || got[i].Command != w.cmd {
			t.Errorf("entry %d = %+v, want %d %v", i, got[i], w.frame, w.cmd)
		}
	}

	for _, bad := range []string{"add_e", "x:add_e", "1:add_e:y", "1:explode", "1:a:2:3"} {
		if _, err := parseSchedule([]string{bad}); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestParseRange(t *testing.T) {
	got, err := parseRange("1:3:3")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("got %v", got)
	}
	for _, bad := range []string{"1:3", "a:3:3", "1:b:3", "1:3:c"} {
		if _, err := parseRange(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestLoadConfigLayering(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	simFlags(cmd)
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "")
	preset = "crowd"
	defer func() { preset = "" }()

	if err := cmd.ParseFlags([]string{"--mp", "3", "--seed", "9"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Population.InitialE != 500 {
		t.Errorf("preset not applied: initial_e = %d", cfg.Population.InitialE)
	}
	if cfg.Population.InitialMP != 3 || cfg.Seed != 9 {
		t.Errorf("flags not applied: mp=%d seed=%d", cfg.Population.InitialMP, cfg.Seed)
	}

	cmd = &cobra.Command{Use: "test"}
	simFlags(cmd)
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "")
	restore := clockSeed
	clockSeed = func() int64 { return 77 }
	defer func() { clockSeed = restore }()
	cfg, err = loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Seed != 77 {
		t.Errorf("unset seed = %d, want clock seed 77", cfg.Seed)
	}

	preset = "nope"
	if _, err := loadConfig(cmd); err == nil {
		t.Error("expected error for unknown preset")
	}
}
