package main

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/gui"
	"github.com/san-kum/spheresim/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string

	seed       int64
	dt         float64
	frames     int
	mode       string
	forceLaw   string
	workers    int
	initialE   int
	initialMP  int
	repulsion  float64
	attraction float64
	mpSize     float64
	noGuard    bool

	logger = logging.New(config.DefaultLogLevel)
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "spheresim",
		Short:        "interactive particle simulation of E and MP spheres",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetLevel(logging.ParseLevel(logLevel))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return gui.RunInteractive(cfg, logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spheresim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run [name]",
		Short: "run a headless simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	simFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "every", 1, "record a sample every n frames")
	runCmd.Flags().StringArrayVar(&scheduled, "at", nil, "schedule a command as frame:command[:count]")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal",
		RunE:  runLive,
	}
	simFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the simulation in a 3D window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return gui.Run(cfg, logger)
		},
	}
	simFlags(guiCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames over websocket and accept commands",
		RunE:  serve,
	}
	simFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().DurationVar(&tickRate, "rate", time.Second/30, "broadcast interval")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "columns", []string{"e", "mp", "mean_speed_e", "spread_e"}, "series columns to plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency, divergence and phase analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "spread_e", "series column to analyze")
	analyzeCmd.Flags().StringSliceVar(&phase, "phase", nil, "two columns to draw as a phase portrait")
	analyzeCmd.Flags().Float64Var(&perturbation, "perturb", 1e-3, "initial displacement for the divergence estimate (0 to skip)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export stored series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final frame or a phase portrait as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 800, "image size in pixels")
	exportSVGCmd.Flags().Float64Var(&svgExtent, "extent", 0, "half width of the view in world units (0 fits the data)")
	exportSVGCmd.Flags().StringSliceVar(&phase, "phase", nil, "draw two series columns as a phase portrait instead")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark frame throughput across population sizes",
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&benchFrames, "frames", 120, "frames per measurement")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", config.DefaultWorkers, "snapshot mode workers")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search repulsion and attraction against a metric",
		RunE:  sweep,
	}
	simFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&repulsionRange, "repulsion-range", "1:10:4", "lo:hi:n")
	sweepCmd.Flags().StringVar(&attractionRange, "attraction-range", "1:5:3", "lo:hi:n")
	sweepCmd.Flags().StringVar(&metricName, "metric", "spread_e", "metric to optimize")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "prefer the largest metric value")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().IntVar(&trials, "trials", 1, "repeat with consecutive seeds")
	scenarioCmd.Flags().Int64Var(&firstSeed, "first-seed", 1, "first seed for repeated trials")
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s E %-5d MP %-4d %s %s\n", name,
					p.Population.InitialE, p.Population.InitialMP, p.Mode, p.ForceLaw)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, serveCmd, listCmd, plotCmd, analyzeCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, benchCmd, sweepCmd, scenarioCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	f.IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	f.StringVar(&mode, "mode", "sequential", "update mode (sequential or snapshot)")
	f.StringVar(&forceLaw, "law", "inverse_square", "force law (inverse_square or legacy)")
	f.IntVar(&workers, "workers", config.DefaultWorkers, "snapshot mode workers")
	f.IntVar(&initialE, "e", 0, "initial E particles")
	f.IntVar(&initialMP, "mp", 0, "initial MP particles")
	f.Float64Var(&repulsion, "repulsion", 0, "E repulsion strength")
	f.Float64Var(&attraction, "attraction", 0, "MP attraction strength")
	f.Float64Var(&mpSize, "mp-size", 0, "MP render size")
	f.BoolVar(&noGuard, "no-guard", false, "disable the non-finite guard")
}

// clockSeed is swapped out by tests.
var clockSeed = func() int64 { return time.Now().UnixNano() }

// loadConfig layers the config file, the preset and explicitly set flags
// over the defaults, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		apply, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		apply(cfg)
	}

	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("frames") {
		cfg.Frames = frames
	}
	if f.Changed("mode") {
		cfg.Mode = mode
	}
	if f.Changed("law") {
		cfg.ForceLaw = forceLaw
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("e") {
		cfg.Population.InitialE = initialE
	}
	if f.Changed("mp") {
		cfg.Population.InitialMP = initialMP
	}
	if f.Changed("repulsion") {
		cfg.Population.Repulsion = repulsion
	}
	if f.Changed("attraction") {
		cfg.Population.Attraction = attraction
	}
	if f.Changed("mp-size") {
		cfg.Population.MPSize = mpSize
	}
	if f.Changed("no-guard") {
		cfg.GuardNonFinite = !noGuard
	}
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}

	if cfg.EnsureSeed(clockSeed) {
		logger.Infof("seed %d", cfg.Seed)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debugf("config: seed=%d dt=%g frames=%d mode=%s law=%s", cfg.Seed, cfg.Dt, cfg.Frames, cfg.Mode, cfg.ForceLaw)
	return cfg, nil
}
