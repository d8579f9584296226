package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/verletsim/internal/solver"
	"github.com/san-kum/verletsim/internal/verlet"
	"github.com/san-kum/verletsim/internal/vmath"
)

func smallWorld() solver.Config {
	cfg := solver.DefaultConfig()
	cfg.Width, cfg.Height = 200, 150
	cfg.Seed = 3
	return cfg
}

func shortRun() Config {
	run := DefaultConfig()
	run.Duration = 1
	run.Substeps = 4
	run.SpawnCount = 20
	return run
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                          { return "count" }
func (c *countingMetric) Observe(f Frame, ps []verlet.Particle) { c.n++ }
func (c *countingMetric) Value() float64                        { return float64(c.n) }
func (c *countingMetric) Reset()                                { c.n = 0 }

type failingObserver struct{ at int }

func (o failingObserver) OnFrame(f Frame) error {
	if f.Tick == o.at {
		return errors.New("disk full")
	}
	return nil
}

func TestSimulatorRun(t *testing.T) {
	s := New()
	s.AddMetric(&countingMetric{})

	result, err := s.Run(context.Background(), smallWorld(), shortRun())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Ticks != 60 {
		t.Errorf("expected 60 ticks, got %d", result.Ticks)
	}
	if len(result.Frames) != 60 {
		t.Errorf("expected 60 frames, got %d", len(result.Frames))
	}
	if result.Metrics["count"] != 60 {
		t.Errorf("expected metric to see 60 frames, got %v", result.Metrics["count"])
	}
	last := result.Frames[len(result.Frames)-1]
	if last.Particles != 20 {
		t.Errorf("expected 20 particles, got %d", last.Particles)
	}
	if math.Abs(result.SimTime-1) > 1e-9 {
		t.Errorf("expected sim time 1, got %v", result.SimTime)
	}
	if result.Seed != 3 {
		t.Errorf("expected seed 3, got %d", result.Seed)
	}
	if result.Grid.CellSize != 4*solver.DefaultSpawnRadius {
		t.Errorf("unexpected grid %+v", result.Grid)
	}
}

func TestRecordEvery(t *testing.T) {
	run := shortRun()
	run.RecordEvery = 10

	result, err := New().Run(context.Background(), smallWorld(), run)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []int{0, 10, 20, 30, 40, 50, 59}
	if len(result.Frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(result.Frames))
	}
	for i, f := range result.Frames {
		if f.Tick != want[i] {
			t.Errorf("frame %d: tick %d, want %d", i, f.Tick, want[i])
		}
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, ErrInvalidDt},
		{"infinite dt", func(c *Config) { c.Dt = math.Inf(1) }, ErrInvalidDt},
		{"negative duration", func(c *Config) { c.Duration = -1 }, ErrInvalidDuration},
		{"no substeps", func(c *Config) { c.Substeps = 0 }, ErrInvalidSubsteps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := shortRun()
			tt.mutate(&run)
			if _, err := New().Run(context.Background(), smallWorld(), run); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunInvalidSolverConfig(t *testing.T) {
	cfg := smallWorld()
	cfg.Width = -1
	if _, err := New().Run(context.Background(), cfg, shortRun()); !errors.Is(err, solver.ErrInvalidBounds) {
		t.Errorf("got %v, want %v", err, solver.ErrInvalidBounds)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Run(ctx, smallWorld(), shortRun())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Ticks != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

func TestObserverErrorStopsRun(t *testing.T) {
	s := New()
	s.AddObserver(failingObserver{at: 5})

	result, err := s.Run(context.Background(), smallWorld(), shortRun())

	var simErr *SimError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimError, got %v", err)
	}
	if simErr.Tick != 5 {
		t.Errorf("expected failure at tick 5, got %d", simErr.Tick)
	}
	if result.Ticks != 5 {
		t.Errorf("expected 5 completed ticks, got %d", result.Ticks)
	}
}

func TestRunWithCallback(t *testing.T) {
	sol, err := solver.New(smallWorld())
	if err != nil {
		t.Fatal(err)
	}
	sol.SpawnBatch(10)

	seen := 0
	err = New().RunWithCallback(context.Background(), sol, shortRun(), func(f Frame) bool {
		seen++
		return f.Tick < 4
	})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if seen != 5 {
		t.Errorf("expected 5 frames, got %d", seen)
	}
}

func TestTicks(t *testing.T) {
	tests := []struct {
		dt, duration float64
		want         int
	}{
		{1.0 / 60, 1, 60},
		{0.1, 1, 10},
		{0.3, 1, 3},
		{0, 1, 0},
	}
	for _, tt := range tests {
		c := Config{Dt: tt.dt, Duration: tt.duration}
		if got := c.Ticks(); got != tt.want {
			t.Errorf("Ticks(dt=%v, duration=%v) = %d, want %d", tt.dt, tt.duration, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	a := verlet.New(vmath.V(1, 0), 5)
	a.Prev = vmath.V(0, 0)
	a.Temperature = 1
	b := verlet.New(vmath.V(10, 10), 5)
	b.Temperature = 3

	sum := Summarize([]verlet.Particle{a, b}, 0.5)

	if sum.Count != 2 || sum.MeanTemp != 2 || sum.MaxTemp != 3 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if math.Abs(sum.StdTemp-math.Sqrt2) > 1e-12 {
		t.Errorf("expected std sqrt(2), got %v", sum.StdTemp)
	}
	if sum.KineticEnergy != 2 {
		t.Errorf("expected kinetic energy 2, got %v", sum.KineticEnergy)
	}
}

func TestSummarizeSmall(t *testing.T) {
	if sum := Summarize(nil, 0.1); sum != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", sum)
	}
	p := verlet.New(vmath.V(1, 1), 2)
	p.Temperature = 4
	sum := Summarize([]verlet.Particle{p}, 0.1)
	if sum.MeanTemp != 4 || sum.StdTemp != 0 {
		t.Errorf("unexpected single summary %+v", sum)
	}
}

func TestFrameSeries(t *testing.T) {
	r := &Result{Frames: []Frame{{Particles: 1}, {Particles: 3}}}
	got := r.Series("particles")
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("unexpected series %v", got)
	}
	if r.Series("bogus") != nil {
		t.Error("expected nil for unknown field")
	}
	for _, name := range FrameFields {
		if _, ok := (Frame{}).Field(name); !ok {
			t.Errorf("field %q not readable", name)
		}
	}
}

func TestStepDelta(t *testing.T) {
	tests := []struct {
		name   string
		pacing Pacing
		delta  float64
		want   float64
	}{
		{"measured delta used", Pacing{}, 0.02, 0.02},
		{"non-positive falls back", Pacing{}, 0, DefaultDt},
		{"nan falls back", Pacing{}, math.NaN(), DefaultDt},
		{"capped by min sfps", Pacing{Min: 30, EnforceMin: true}, 1, 1.0 / 30},
		{"floored by max sfps", Pacing{Max: 120, EnforceMax: true}, 0.001, 1.0 / 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := solver.New(smallWorld())
			if err != nil {
				t.Fatal(err)
			}
			sol.SpawnBatch(5)
			run := DefaultConfig()
			run.Pacing = tt.pacing
			f := StepDelta(sol, run, rand.New(rand.NewSource(1)), tt.delta)
			if math.Abs(f.Dt-tt.want) > 1e-12 {
				t.Errorf("Dt = %v, want %v", f.Dt, tt.want)
			}
			if f.Particles != 5 {
				t.Errorf("particles = %d, want 5", f.Particles)
			}
		})
	}
}
