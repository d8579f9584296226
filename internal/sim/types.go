package sim

import (
	"time"

	"github.com/san-kum/verletsim/internal/grid"
	"github.com/san-kum/verletsim/internal/solver"
	"github.com/san-kum/verletsim/internal/verlet"
)

const (
	DefaultDt          = 1.0 / 60
	DefaultDuration    = 10.0
	DefaultSubsteps    = 8
	DefaultSpawnCount  = 100
	DefaultRecordEvery = 1
)

// Frame is the per-tick record kept by a run and written to frames.csv.
type Frame struct {
	Tick           int     `csv:"tick" json:"tick"`
	Time           float64 `csv:"time" json:"time"`
	Dt             float64 `csv:"dt" json:"dt"`
	Particles      int     `csv:"particles" json:"particles"`
	Spawned        int     `csv:"spawned" json:"spawned"`
	Removed        int     `csv:"removed" json:"removed"`
	Culled         int     `csv:"culled" json:"culled"`
	Collisions     int     `csv:"collisions" json:"collisions"`
	MaxPenetration float64 `csv:"max_penetration" json:"max_penetration"`
	MeanTemp       float64 `csv:"mean_temp" json:"mean_temp"`
	MaxTemp        float64 `csv:"max_temp" json:"max_temp"`
	KineticEnergy  float64 `csv:"kinetic_energy" json:"kinetic_energy"`
	StepMillis     float64 `csv:"step_ms" json:"step_ms"`
}

// Metric folds frames into a single number reported at the end of a run.
type Metric interface {
	Name() string
	Observe(f Frame, ps []verlet.Particle)
	Value() float64
	Reset()
}

// Observer sees every tick. A returned error aborts the run.
type Observer interface {
	OnFrame(f Frame) error
}

// Config holds the run section of a configuration file.
type Config struct {
	Dt          float64 `yaml:"dt" json:"dt"`
	Duration    float64 `yaml:"duration" json:"duration"`
	Substeps    int     `yaml:"substeps" json:"substeps"`
	SpawnCount  int     `yaml:"spawn_count" json:"spawn_count"`
	RecordEvery int     `yaml:"record_every" json:"record_every"`
	Pacing      Pacing  `yaml:"pacing" json:"pacing"`
	Shake       Shake   `yaml:"shake" json:"shake"`
}

func DefaultConfig() Config {
	return Config{
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Substeps:    DefaultSubsteps,
		SpawnCount:  DefaultSpawnCount,
		RecordEvery: DefaultRecordEvery,
		Pacing:      DefaultPacing(),
		Shake:       DefaultShake(),
	}
}

// Ticks is the number of frames needed to cover Duration.
func (c Config) Ticks() int {
	if c.Dt <= 0 {
		return 0
	}
	return int(c.Duration/c.Dt + 0.5)
}

type Result struct {
	Frames  []Frame            `json:"frames"`
	Metrics map[string]float64 `json:"metrics"`
	Final   solver.Stats       `json:"final"`
	Grid    grid.Info          `json:"grid"`
	Ticks   int                `json:"ticks"`
	SimTime float64            `json:"sim_time"`
	Elapsed time.Duration      `json:"elapsed"`
	Seed    int64              `json:"seed"`
}

// Series extracts one column of the recorded frames.
func (r *Result) Series(name string) []float64 {
	out := make([]float64, 0, len(r.Frames))
	for _, f := range r.Frames {
		v, ok := f.Field(name)
		if !ok {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// FrameFields lists the names accepted by Frame.Field.
var FrameFields = []string{
	"particles", "spawned", "removed", "culled", "collisions",
	"max_penetration", "mean_temp", "max_temp", "kinetic_energy", "step_ms", "dt",
}

func (f Frame) Field(name string) (float64, bool) {
	switch name {
	case "particles":
		return float64(f.Particles), true
	case "spawned":
		return float64(f.Spawned), true
	case "removed":
		return float64(f.Removed), true
	case "culled":
		return float64(f.Culled), true
	case "collisions":
		return float64(f.Collisions), true
	case "max_penetration":
		return f.MaxPenetration, true
	case "mean_temp":
		return f.MeanTemp, true
	case "max_temp":
		return f.MaxTemp, true
	case "kinetic_energy":
		return f.KineticEnergy, true
	case "step_ms":
		return f.StepMillis, true
	case "dt":
		return f.Dt, true
	}
	return 0, false
}
