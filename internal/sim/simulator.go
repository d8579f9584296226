package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/verletsim/internal/solver"
)

// Simulator drives a solver headlessly for a fixed number of ticks.
type Simulator struct {
	metrics   []Metric
	observers []Observer
	log       *slog.Logger
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       slog.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)       { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)   { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *slog.Logger) { s.log = l }
func (s *Simulator) Metrics() []Metric        { return s.metrics }

// Run builds a solver from cfg, spawns the initial batch and drives it.
func (s *Simulator) Run(ctx context.Context, cfg solver.Config, run Config) (*Result, error) {
	if err := run.Validate(); err != nil {
		return nil, err
	}
	sol, err := solver.New(cfg, solver.WithLogger(s.log), solver.WithCapacity(run.SpawnCount))
	if err != nil {
		return nil, err
	}
	if run.SpawnCount > 0 {
		sol.SpawnBatch(run.SpawnCount)
	}
	return s.Drive(ctx, sol, run)
}

// Drive advances an existing solver for run.Duration. On cancellation the
// partial result is returned along with ctx.Err().
func (s *Simulator) Drive(ctx context.Context, sol *solver.Solver, run Config) (*Result, error) {
	if err := run.Validate(); err != nil {
		return nil, err
	}

	ticks := run.Ticks()
	every := max(run.RecordEvery, 1)
	result := &Result{
		Frames:  make([]Frame, 0, ticks/every+1),
		Metrics: make(map[string]float64),
		Seed:    sol.Config.Seed,
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Info("run started", "ticks", ticks, "dt", run.Dt, "substeps", run.Substeps, "particles", sol.Len())
	start := time.Now()

	err := s.loop(ctx, sol, run, ticks, func(f Frame) error {
		for _, m := range s.metrics {
			m.Observe(f, sol.Particles())
		}
		if f.Tick%every == 0 || f.Tick == ticks-1 {
			result.Frames = append(result.Frames, f)
		}
		for _, o := range s.observers {
			if err := o.OnFrame(f); err != nil {
				return err
			}
		}
		result.Ticks++
		result.SimTime = f.Time
		return nil
	})

	result.Elapsed = time.Since(start)
	result.Final = sol.Stats()
	result.Grid = sol.Grid()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Info("run finished",
		"ticks", result.Ticks,
		"particles", sol.Len(),
		"elapsed", result.Elapsed,
		"cell_size", result.Grid.CellSize,
		"grid", fmt.Sprintf("%dx%d", result.Grid.Cols, result.Grid.Rows),
	)
	return result, err
}

// RunWithCallback drives sol until the duration elapses, the context ends
// or fn returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, sol *solver.Solver, run Config, fn func(Frame) bool) error {
	if err := run.Validate(); err != nil {
		return err
	}
	err := s.loop(ctx, sol, run, run.Ticks(), func(f Frame) error {
		if !fn(f) {
			return errStop
		}
		return nil
	})
	if err == errStop {
		return nil
	}
	return err
}

var errStop = errors.New("sim: stopped")

func (s *Simulator) loop(ctx context.Context, sol *solver.Solver, run Config, ticks int, emit func(Frame) error) error {
	rng := rand.New(rand.NewSource(sol.Config.Seed))
	t := 0.0
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		f := Step(sol, run, rng)
		t += f.Dt
		f.Tick = i
		f.Time = t

		if err := emit(f); err != nil {
			if err == errStop {
				return err
			}
			return &SimError{Tick: i, Time: t, Wrapped: err}
		}
	}
	return nil
}

// Step advances sol by one paced frame of run.Dt, applying auto-shake, and
// returns the frame record without tick or time.
func Step(sol *solver.Solver, run Config, rng *rand.Rand) Frame {
	return StepDelta(sol, run, rng, run.Dt)
}

// StepDelta is Step with a caller-measured frame delta. The delta is clamped
// by the pacing bounds; a non-positive one falls back to run.Dt.
func StepDelta(sol *solver.Solver, run Config, rng *rand.Rand, delta float64) Frame {
	if !(delta > 0) || math.IsInf(delta, 0) {
		delta = run.Dt
	}
	dt := run.Pacing.FrameDelta(delta)
	if run.Shake.AutoRandom {
		run.Shake.ApplyRandom(sol, rng)
	}

	start := time.Now()
	sol.UpdateWithSubsteps(float32(dt), run.Substeps)
	elapsed := time.Since(start)

	st := sol.Stats()
	sum := Summarize(sol.Particles(), dt/float64(max(run.Substeps, 1)))
	return Frame{
		Dt:             dt,
		Particles:      sum.Count,
		Spawned:        st.Spawned,
		Removed:        st.Removed,
		Culled:         st.Culled,
		Collisions:     st.Collisions,
		MaxPenetration: float64(st.MaxPenetration),
		MeanTemp:       sum.MeanTemp,
		MaxTemp:        sum.MaxTemp,
		KineticEnergy:  sum.KineticEnergy,
		StepMillis:     float64(elapsed) / float64(time.Millisecond),
	}
}

// Validate checks the run section.
func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w, got %g", ErrInvalidDt, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w, got %g", ErrInvalidDuration, c.Duration)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidSubsteps, c.Substeps)
	}
	return nil
}
