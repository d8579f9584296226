package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/verletsim/internal/config"
	"github.com/san-kum/verletsim/internal/metrics"
	"github.com/san-kum/verletsim/internal/sim"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool
	logFile  string

	configFile string
	preset     string
	dt         float64
	duration   float64
	substeps   int
	spawn      int
	seed       int64
	width      float64
	height     float64
	gravity    float64
	radius     float64
	restitute  float64
	autoShake  bool
	overrides  []string

	runName    string
	theme      string
	record     bool
	plotFields []string
	anaFields  []string
	svgOut     string
	settleTol  float64
	writePath  string
	saveSteps  bool
	sweepSpecs []string
	metricName string
	maximize   bool
	refine     int
	numRuns    int
	counts     []int
	benchTicks int
	outPath    string
	braille    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "verletsim",
		Short:             "real-time verlet particle solver",
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return setupLogging(os.Stderr) },
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".verletsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store its frames",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (default: preset or \"run\")")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the solver in an interactive terminal view",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "ember", "colour theme")
	liveCmd.Flags().BoolVar(&record, "record", false, "store live frames as a run")
	liveCmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the view is open")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot frame fields of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotFields, "field", []string{"particles", "mean_temp", "kinetic_energy"}, "frame fields to plot")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the first field as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "statistics, trend and spectrum of a frame field",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringSliceVar(&anaFields, "field", []string{"kinetic_energy"}, "frame fields to analyze")
	analyzeCmd.Flags().Float64Var(&settleTol, "tol", 0.05, "relative tolerance for settle time")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or write one as a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&writePath, "write", "", "write the named preset to this YAML file")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addConfigFlags(scenarioCmd)
	scenarioCmd.Flags().BoolVar(&saveSteps, "save", false, "store every step as a run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search solver parameters against a metric",
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepSpecs, "param", nil, "parameter range name=lo:hi:n (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "mean_temp", "metric to optimize")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")
	sweepCmd.Flags().IntVar(&refine, "refine", 0, "refine the best point with up to n Nelder-Mead evaluations")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independent seeds in parallel and summarize metrics",
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of runs")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the solver over particle counts",
		RunE:  runBench,
	}
	addConfigFlags(benchCmd)
	benchCmd.Flags().IntSliceVar(&counts, "counts", []int{100, 500, 1000, 2000}, "particle counts")
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 120, "ticks per measurement")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "run headlessly and write the final particles as SVG",
		RunE:  runSnapshot,
	}
	addConfigFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "snapshot.svg", "output file")
	snapshotCmd.Flags().StringVar(&theme, "theme", "ember", "colour theme")
	snapshotCmd.Flags().BoolVar(&braille, "braille", false, "render through the braille canvas")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd,
		presetsCmd, scenarioCmd, sweepCmd, ensembleCmd, benchCmd, snapshotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addConfigFlags registers the flags that shape a simulation config.
func addConfigFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&dt, "dt", d.Run.Dt, "frame delta in seconds")
	f.Float64Var(&duration, "time", d.Run.Duration, "duration in seconds")
	f.IntVar(&substeps, "substeps", d.Run.Substeps, "solver substeps per frame")
	f.IntVar(&spawn, "spawn", d.Run.SpawnCount, "initial particle count")
	f.Int64Var(&seed, "seed", d.Solver.Seed, "random seed")
	f.Float64Var(&width, "width", float64(d.Solver.Width), "world width")
	f.Float64Var(&height, "height", float64(d.Solver.Height), "world height")
	f.Float64Var(&gravity, "gravity", float64(d.Solver.Gravity.Y), "downward gravity")
	f.Float64Var(&radius, "radius", float64(d.Solver.SpawnRadius), "spawn radius")
	f.Float64Var(&restitute, "restitution", float64(d.Solver.Restitution), "wall bounce restitution")
	f.BoolVar(&autoShake, "auto-shake", false, "shake in a random direction every frame")
	f.StringArrayVar(&overrides, "set", nil, "solver parameter override name=value (repeatable)")
}

// resolveConfig applies preset, then config file, then explicitly changed
// flags, then --set overrides.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("substeps") {
		cfg.Run.Substeps = substeps
	}
	if flags.Changed("spawn") {
		cfg.Run.SpawnCount = spawn
	}
	if flags.Changed("seed") {
		cfg.Solver.Seed = seed
	}
	if flags.Changed("width") {
		cfg.Solver.Width = float32(width)
	}
	if flags.Changed("height") {
		cfg.Solver.Height = float32(height)
	}
	if flags.Changed("gravity") {
		cfg.Solver.Gravity.Y = float32(gravity)
	}
	if flags.Changed("radius") {
		cfg.Solver.SpawnRadius = float32(radius)
	}
	if flags.Changed("restitution") {
		cfg.Solver.Restitution = float32(restitute)
	}
	if flags.Changed("auto-shake") {
		cfg.Run.Shake.AutoRandom = autoShake
	}

	for _, o := range overrides {
		name, value, err := parseAssignment(o)
		if err != nil {
			return nil, err
		}
		if err := cfg.Solver.SetParam(name, value); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseAssignment(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("expected name=value, got %q", s)
	}
	v, err := parseValue(raw)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(name), v, nil
}

// parseValue accepts numbers and true/false.
func parseValue(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if b, err := strconv.ParseBool(raw); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func setupLogging(w io.Writer) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", logLevel)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if logJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// newSimulator returns a driver collecting the configured metrics, or every
// registered metric when none are named.
func newSimulator(cfg *config.Config) (*sim.Simulator, error) {
	s := sim.New()
	if len(cfg.Metrics) == 0 {
		for _, m := range metrics.All(cfg.Solver) {
			s.AddMetric(m)
		}
		return s, nil
	}
	for _, name := range cfg.Metrics {
		m, err := metrics.New(name, cfg.Solver)
		if err != nil {
			return nil, err
		}
		s.AddMetric(m)
	}
	return s, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
