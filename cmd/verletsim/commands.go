package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/verletsim/internal/analysis"
	"github.com/san-kum/verletsim/internal/automation"
	"github.com/san-kum/verletsim/internal/config"
	"github.com/san-kum/verletsim/internal/export"
	"github.com/san-kum/verletsim/internal/optim"
	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/solver"
	"github.com/san-kum/verletsim/internal/storage"
	"github.com/san-kum/verletsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	name := runName
	if name == "" {
		name = preset
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	rec, err := st.Create(name)
	if err != nil {
		return err
	}

	s, err := newSimulator(cfg)
	if err != nil {
		rec.Close()
		return err
	}
	s.AddObserver(sim.Every(cfg.Run.RecordEvery, rec))

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %d particles for %.1fs...\n", cfg.Run.SpawnCount, cfg.Run.Duration)
	result, runErr := s.Run(ctx, cfg.Solver, cfg.Run)
	if result == nil {
		rec.Close()
		return runErr
	}
	if err := rec.Finish(storage.NewMetadata(name, cfg.Solver, cfg.Run, result)); err != nil {
		return err
	}

	if errors.Is(runErr, context.Canceled) {
		fmt.Println("interrupted, partial run saved")
	} else if runErr != nil {
		return runErr
	}

	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", rec.ID())
	fmt.Printf("ticks: %d\n", result.Ticks)
	fmt.Printf("grid: %dx%d (cell %.1f)\n", result.Grid.Cols, result.Grid.Rows, result.Grid.CellSize)
	printMetrics(os.Stdout, result.Metrics)
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// The view owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	if err := setupLogging(logOut); err != nil {
		return err
	}

	sol, err := solver.New(cfg.Solver, solver.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	sol.SpawnBatch(cfg.Run.SpawnCount)

	opts := []viz.Option{viz.WithTheme(theme)}
	var rec *storage.Recorder
	if record {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if rec, err = st.Create("live"); err != nil {
			return err
		}
		opts = append(opts, viz.WithObserver(sim.Every(cfg.Run.RecordEvery, rec)))
	}

	start := time.Now()
	final, err := tea.NewProgram(viz.NewModel(sol, cfg.Run, opts...), tea.WithAltScreen()).Run()
	if err != nil {
		if rec != nil {
			rec.Close()
		}
		return err
	}

	if rec != nil {
		m := final.(viz.Model)
		result := &sim.Result{
			Final:   sol.Stats(),
			Grid:    sol.Grid(),
			Ticks:   m.Ticks(),
			SimTime: m.SimTime(),
			Elapsed: time.Since(start),
			Seed:    sol.Config.Seed,
		}
		if err := rec.Finish(storage.NewMetadata("live", sol.Config, cfg.Run, result)); err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", rec.ID())
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tTICKS\tSIM TIME\tSUBSTEPS\tGRID\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%d\t%dx%d\t%.0fms\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.SimTime,
			run.Run.Substeps,
			run.Grid.Cols, run.Grid.Rows,
			run.ElapsedMS,
		)
	}
	return w.Flush()
}

// loadSeries reads one frame field of a stored run.
func loadSeries(st *storage.Store, runID, field string) ([]float64, []sim.Frame, error) {
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	result := sim.Result{Frames: frames}
	data := result.Series(field)
	if data == nil {
		return nil, nil, fmt.Errorf("unknown field %q (available: %s)", field, strings.Join(sim.FrameFields, ", "))
	}
	return data, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	for i, field := range plotFields {
		data, frames, err := loadSeries(st, runID, field)
		if err != nil {
			return err
		}
		if i == 0 {
			fmt.Printf("samples: %d\n\n", len(frames))
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(field+" vs tick"),
		)
		fmt.Println(graph)
		fmt.Println()

		if i == 0 && svgOut != "" {
			doc := export.SeriesToSVG(data, 800, 300, "#00ff88")
			if doc == "" {
				return fmt.Errorf("not enough samples for svg")
			}
			if err := os.WriteFile(svgOut, []byte(doc), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", svgOut)
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	fmt.Printf("analysis: %s\n", meta.ID)

	for _, field := range anaFields {
		data, frames, err := loadSeries(st, runID, field)
		if err != nil {
			return err
		}
		step := meta.Run.Dt * float64(max(meta.Run.RecordEvery, 1))
		if len(frames) > 1 {
			step = frames[1].Time - frames[0].Time
		}

		sum := analysis.Describe(data)
		slope, intercept := analysis.Trend(data, step)
		fmt.Printf("\n%s (%d samples)\n", field, sum.N)
		fmt.Printf("  mean: %.6f  std: %.6f\n", sum.Mean, sum.Std)
		fmt.Printf("  min: %.6f  max: %.6f\n", sum.Min, sum.Max)
		fmt.Printf("  trend: %.6f/s (intercept %.6f)\n", slope, intercept)
		tol := settleTol * (sum.Max - sum.Min)
		fmt.Printf("  settles within %.0f%% of range after %.3fs\n", settleTol*100, analysis.SettleTime(data, step, tol))

		spectrum := analysis.PowerSpectrum(data)
		if len(spectrum) > 2 {
			fmt.Println(asciigraph.Plot(spectrum[1:],
				asciigraph.Height(8),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum ("+field+")"),
			))
		}
		if p := analysis.DominantPeriod(data, step); p > 0 {
			fmt.Printf("  dominant period: %.3fs (%.3f hz)\n", p, 1/p)
		}
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, frames)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, frames)
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		if writePath == "" {
			return fmt.Errorf("--write is required with a preset name")
		}
		if err := config.Save(writePath, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", writePath)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.PresetDescription(name))
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	var simErr error
	newSim := func() *sim.Simulator {
		s, err := newSimulator(base)
		if err != nil {
			simErr = err
			return sim.New()
		}
		return s
	}
	results, runErr := automation.RunScenario(ctx, sc, base, newSim)
	if simErr != nil {
		return simErr
	}
	cfg, err := sc.Base(base)
	if err != nil {
		return err
	}

	var st *storage.Store
	if saveSteps {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTICKS\tSIM TIME\tPARTICLES\tMEAN TEMP\tRUN")
	for _, r := range results {
		if r.Result == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\n", r.Name)
			continue
		}
		id := "-"
		if st != nil {
			meta := storage.NewMetadata(sc.Name+"_"+r.Name, cfg.Solver, cfg.Run, r.Result)
			if id, err = st.Save(meta, r.Result.Frames); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%.2fs\t%.0f\t%.3f\t%s\n",
			r.Name, r.Result.Ticks, r.Result.SimTime,
			r.Result.Metrics["final_count"], r.Result.Metrics["mean_temp"], id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

// parseRange reads name=lo:hi:n.
func parseRange(arg string) (string, []float64, error) {
	name, rng, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, fmt.Errorf("expected name=lo:hi:n, got %q", arg)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("%s: expected lo:hi:n, got %q", name, rng)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("%s: invalid count %q", name, parts[2])
	}
	return strings.TrimSpace(name), optim.Linspace(lo, hi, n), nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepSpecs) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(sweepSpecs))
	ranges := make([][]float64, 0, len(sweepSpecs))
	for _, arg := range sweepSpecs {
		name, values, err := parseRange(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, stop := signalContext()
	defer stop()

	eval := optim.RunMetric(base, metricName, maximize)
	best, err := optim.NewGridSearch(names, ranges).Search(ctx, eval)
	if err != nil {
		return err
	}
	if refine > 0 && best.Evaluations > best.Failures {
		refined, err := optim.Refine(ctx, names, best.Params, eval, refine)
		if err != nil {
			return err
		}
		if refined.Value < best.Value {
			refined.Evaluations += best.Evaluations
			refined.Failures += best.Failures
			best = refined
		}
	}

	value := best.Value
	if maximize {
		value = -value
	}
	fmt.Printf("evaluations: %d (%d failed)\n", best.Evaluations, best.Failures)
	fmt.Printf("best %s: %.6f\n", metricName, value)
	for _, name := range names {
		fmt.Printf("  %s = %.6g\n", name, best.Params[name])
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := newSimulator(cfg); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	factory := func() *sim.Simulator {
		s, _ := newSimulator(cfg)
		return s
	}
	results, err := sim.NewEnsemble(factory, numRuns, cfg.Solver.Seed).Run(ctx, cfg.Solver, cfg.Run)
	if err != nil {
		return err
	}

	byMetric := make(map[string][]float64)
	for _, r := range results {
		for name, v := range r.Metrics {
			byMetric[name] = append(byMetric[name], v)
		}
	}
	names := make([]string, 0, len(byMetric))
	for name := range byMetric {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("ensemble of %d runs (seeds %d..%d)\n\n", len(results), cfg.Solver.Seed, cfg.Solver.Seed+int64(numRuns)-1)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD\tMIN\tMAX")
	for _, name := range names {
		s := analysis.Describe(byMetric[name])
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", name, s.Mean, s.Std, s.Min, s.Max)
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %d ticks, %d substeps\n\n", benchTicks, cfg.Run.Substeps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tTICKS\tTIME\tMS/TICK\tSFPS\tGRID\tCELL")
	for _, n := range counts {
		run := cfg.Run
		run.SpawnCount = n
		run.Duration = float64(benchTicks) * run.Dt
		run.RecordEvery = benchTicks

		result, err := sim.New().Run(context.Background(), cfg.Solver, run)
		if err != nil {
			return err
		}
		perTick := float64(result.Elapsed) / float64(time.Millisecond) / float64(max(result.Ticks, 1))
		sfps := 0.0
		if perTick > 0 {
			sfps = 1000 / perTick
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%.3f\t%.0f\t%dx%d\t%.1f\n",
			n, result.Ticks, result.Elapsed.Round(time.Microsecond), perTick, sfps,
			result.Grid.Cols, result.Grid.Rows, result.Grid.CellSize)
	}
	return w.Flush()
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sol, err := solver.New(cfg.Solver, solver.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	sol.SpawnBatch(cfg.Run.SpawnCount)

	ctx, stop := signalContext()
	defer stop()
	if _, err := sim.New().Drive(ctx, sol, cfg.Run); err != nil {
		return err
	}

	th := viz.GetTheme(theme)
	var doc string
	if braille {
		c := viz.NewCanvas(160, 60)
		v := viz.Fit(c, sol.Config.Width, sol.Config.Height)
		c.PlotParticles(v, sol.Particles())
		peak := float32(1)
		for _, p := range sol.Particles() {
			peak = max(peak, p.Temperature)
		}
		doc = export.CanvasToSVG(c, 4, peak, th)
	} else {
		doc = export.ParticlesToSVG(sol.Config, sol.Particles(), th)
	}
	if err := os.WriteFile(outPath, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d particles)\n", outPath, sol.Len())
	return nil
}
