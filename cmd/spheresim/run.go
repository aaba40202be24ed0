package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/san-kum/spheresim/internal/automation"
	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/experiment"
	"github.com/san-kum/spheresim/internal/optim"
	"github.com/san-kum/spheresim/internal/sim"
	"github.com/san-kum/spheresim/internal/storage"
	"github.com/san-kum/spheresim/internal/stream"
	"github.com/san-kum/spheresim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	sampleEvery int
	scheduled   []string
	noSave      bool

	addr     string
	tickRate time.Duration

	repulsionRange  string
	attractionRange string
	metricName      string
	maximize        bool

	trials    int
	firstSeed int64

	benchFrames  int
	benchWorkers int
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name := "run"
	if preset != "" {
		name = preset
	}
	if len(args) > 0 {
		name = args[0]
	}

	schedule, err := parseSchedule(scheduled)
	if err != nil {
		return err
	}
	sc, err := cfg.SimConfig()
	if err != nil {
		return err
	}

	exp := experiment.New(experiment.Config{
		Name:        name,
		Sim:         sc,
		Dt:          cfg.Dt,
		Frames:      cfg.Frames,
		SampleEvery: sampleEvery,
		Schedule:    schedule,
	})
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %s: %d frames...\n", name, cfg.Frames)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		logger.Warnf("interrupted after %d frames", result.Frames)
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	printResult(result)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printResult(r *experiment.Result) {
	fmt.Printf("frames: %d  final: %s\n", r.Frames, r.Final.Counts)
	fmt.Printf("commands: %d (changed %d)  clamped: %d  rejected: %d\n", r.Commands, r.Changed, r.Clamped, r.Rejected)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(r.Metrics) {
		fmt.Printf("  %-16s %.6f\n", name, r.Metrics[name])
	}
}

// parseSchedule reads frame:command[:count] entries.
func parseSchedule(entries []string) ([]experiment.Scheduled, error) {
	out := make([]experiment.Scheduled, 0, len(entries))
	for _, e := range entries {
		parts := strings.Split(e, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("bad schedule entry %q, want frame:command[:count]", e)
		}
		frame, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bad frame in %q: %w", e, err)
		}
		count := 0
		if len(parts) == 3 {
			if count, err = strconv.Atoi(parts[2]); err != nil {
				return nil, fmt.Errorf("bad count in %q: %w", e, err)
			}
		}
		c, err := sim.ParseCommand(parts[1], count)
		if err != nil {
			return nil, err
		}
		out = append(out, experiment.Scheduled{Frame: frame, Command: c})
	}
	return out, nil
}

func newSimulator(cfg *config.Config) (*sim.Simulator, error) {
	sc, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}
	return sim.New(sc)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	title := "spheresim"
	if preset != "" {
		title += " :: " + preset
	}
	return viz.Run(s, cfg.Dt, title)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := stream.NewServer(s, cfg.Dt, tickRate, logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	httpSrv := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Infof("serving %s on ws://%s/ws", s.Counts(), addr)
	runErr := make(chan error, 1)
	go func() { runErr <- srv.Run(ctx) }()

	select {
	case err := <-errc:
		stop()
		<-runErr
		return err
	case err := <-runErr:
		if errors.Is(err, context.Canceled) {
			logger.Infof("stopped at frame %d", s.FrameNumber())
			return nil
		}
		return err
	}
}

func bench(cmd *cobra.Command, args []string) error {
	sizes := [][2]int{{10, 2}, {100, 10}, {500, 50}, {1000, 100}}
	modes := []string{"sequential", "snapshot"}

	fmt.Printf("benchmarking %d frames per run\n\n", benchFrames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "E\tMP\tMODE\tFRAMES\tTIME\tFRAMES/SEC")

	for _, size := range sizes {
		for _, m := range modes {
			cfg := config.DefaultConfig()
			cfg.Seed = 42
			cfg.Mode = m
			cfg.Workers = benchWorkers
			cfg.Population.InitialE = size[0]
			cfg.Population.InitialMP = size[1]

			sc, err := cfg.SimConfig()
			if err != nil {
				return err
			}
			exp := experiment.New(experiment.Config{Sim: sc, Dt: cfg.Dt, Frames: benchFrames, SampleEvery: benchFrames})
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%v\t%.0f\n",
				size[0], size[1], m, result.Frames, elapsed, float64(result.Frames)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

// parseRange reads lo:hi:n.
func parseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("bad range %q, want lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, err
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, err
	}
	return optim.Linspace(lo, hi, n), nil
}

func sweep(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rep, err := parseRange(repulsionRange)
	if err != nil {
		return err
	}
	att, err := parseRange(attractionRange)
	if err != nil {
		return err
	}

	gs := optim.NewGridSearch([]string{"repulsion", "attraction"}, [][]float64{rep, att})
	if maximize {
		gs.Maximize()
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		sc, err := cfg.SimConfig()
		if err != nil {
			return nil, err
		}
		return experiment.New(experiment.Config{Name: "sweep", Sim: sc, Dt: cfg.Dt, Frames: cfg.Frames, SampleEvery: cfg.Frames}), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("sweeping %d x %d grid on %s...\n", len(rep), len(att), metricName)
	bestParams, best, results, err := gs.Search(ctx, build, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "REPULSION\tATTRACTION\t%s\n", strings.ToUpper(metricName))
	for _, t := range results {
		fmt.Fprintf(w, "%.3f\t%.3f\t%.6f\n", t.Params["repulsion"], t.Params["attraction"], t.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: repulsion=%.3f attraction=%.3f %s=%.6f\n",
		bestParams["repulsion"], bestParams["attraction"], metricName, best)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	name := scenario.Name
	if name == "" {
		name = "scenario"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if trials > 1 {
		results, err := automation.RunMonteCarlo(ctx, scenario, base, trials, firstSeed)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEED\tFINAL\tCLAMPED\tREJECTED\tSTABLE")
		for _, r := range results {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%v\n", r.Seed, r.Final, r.Clamped, r.Rejected, r.Stable())
		}
		if err := w.Flush(); err != nil {
			return err
		}
		stable, unstable := automation.MonteCarloStats(results)
		fmt.Printf("\n%d stable, %d unstable\n", stable, unstable)
		return nil
	}

	cfg, err := scenario.Config(base)
	if err != nil {
		return err
	}
	fmt.Printf("running scenario %s: %d frames, %d steps\n", name, cfg.Frames, len(scenario.Steps))
	result, err := automation.RunScenario(ctx, scenario, base)
	if err != nil {
		return err
	}
	printResult(result)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}
