package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/verletsim/internal/solver"
)

const (
	DefaultTargetSFPS     = 60.0
	DefaultShakeIntensity = 100000.0
	DefaultShakeDirection = 90.0
)

// Pacing controls simulation frames per second (SFPS). Target paces the
// live loop; Min and Max bound the delta handed to the solver.
type Pacing struct {
	Target        float64 `yaml:"target" json:"target"`
	EnforceTarget bool    `yaml:"enforce_target" json:"enforce_target"`
	Min           float64 `yaml:"min" json:"min"`
	EnforceMin    bool    `yaml:"enforce_min" json:"enforce_min"`
	Max           float64 `yaml:"max" json:"max"`
	EnforceMax    bool    `yaml:"enforce_max" json:"enforce_max"`
}

func DefaultPacing() Pacing {
	return Pacing{
		Target:        DefaultTargetSFPS,
		EnforceTarget: true,
		Min:           DefaultTargetSFPS,
		Max:           DefaultTargetSFPS,
	}
}

// FrameDelta clamps a measured frame delta: an enforced minimum SFPS caps
// it at 1/Min, an enforced maximum SFPS floors it at 1/Max.
func (p Pacing) FrameDelta(dt float64) float64 {
	if p.EnforceMin && p.Min > 0 {
		dt = math.Min(dt, 1/p.Min)
	}
	if p.EnforceMax && p.Max > 0 {
		dt = math.Max(dt, 1/p.Max)
	}
	return dt
}

// Interval is the wall-clock period of one paced frame, zero when unpaced.
func (p Pacing) Interval() time.Duration {
	if !p.EnforceTarget || p.Target <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / p.Target)
}

// Shake pushes every particle along Direction (degrees).
type Shake struct {
	Intensity  float64 `yaml:"intensity" json:"intensity"`
	Direction  float64 `yaml:"direction" json:"direction"`
	AutoRandom bool    `yaml:"auto_random" json:"auto_random"`
}

func DefaultShake() Shake {
	return Shake{Intensity: DefaultShakeIntensity, Direction: DefaultShakeDirection}
}

func (sh Shake) Apply(s *solver.Solver) {
	s.AccelerateAll(float32(sh.Intensity), float32(sh.Direction*math.Pi/180))
}

// ApplyRandom shakes in a direction drawn from rng.
func (sh Shake) ApplyRandom(s *solver.Solver, rng *rand.Rand) {
	sh.Direction = rng.Float64() * 360
	sh.Apply(s)
}
