package solver

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/verletsim/internal/vmath"
)

const (
	DefaultWidth         = 1280
	DefaultHeight        = 720
	DefaultGravity       = 1000.0
	DefaultSpawnRadius   = 5.0
	DefaultSafetyFactor  = 1.0
	DefaultSafetyIters   = 10
	DefaultBuoyancyPower = 2.0
	DefaultHeatTransfer  = 4.0
	DefaultHeatInjection = 8.0
	DefaultMaxParticles  = 5000
	MinSpawnRadius       = 1.0
	MaxSpawnRadius       = 50.0
	MaxSafetyFactor      = 2.0
	MaxSafetyIterations  = 100
	MaxExtent            = 1e6

	// HeatContactMargin scales a particle's radius into the wall distance
	// that still counts as touching for heat injection.
	HeatContactMargin = 1.05
)

// Side configures one wall of the simulation extent.
type Side struct {
	Constrain bool    `yaml:"constrain" json:"constrain"`
	Bounce    bool    `yaml:"bounce" json:"bounce"`
	Heat      bool    `yaml:"heat" json:"heat"`
	HeatLevel float32 `yaml:"heat_level" json:"heat_level"`
}

type Sides struct {
	Top    Side `yaml:"top" json:"top"`
	Bottom Side `yaml:"bottom" json:"bottom"`
	Left   Side `yaml:"left" json:"left"`
	Right  Side `yaml:"right" json:"right"`
}

// Config is the tunable surface of a Solver. Callers may write any field
// between ticks.
type Config struct {
	Width   float32    `yaml:"width" json:"width"`
	Height  float32    `yaml:"height" json:"height"`
	Gravity vmath.Vec2 `yaml:"gravity" json:"gravity"`
	Sides   Sides      `yaml:"sides" json:"sides"`

	Restitution   float32 `yaml:"restitution" json:"restitution"`
	HeatTransfer  float32 `yaml:"heat_transfer" json:"heat_transfer"`
	HeatLoss      float32 `yaml:"heat_loss" json:"heat_loss"`
	HeatInjection float32 `yaml:"heat_injection" json:"heat_injection"`
	Buoyancy      bool    `yaml:"buoyancy" json:"buoyancy"`
	BuoyancyPower float32 `yaml:"buoyancy_power" json:"buoyancy_power"`

	SpawnRadius           float32 `yaml:"spawn_radius" json:"spawn_radius"`
	SpawnSafetyFactor     float32 `yaml:"spawn_safety_factor" json:"spawn_safety_factor"`
	SpawnSafetyIterations int     `yaml:"spawn_safety_iterations" json:"spawn_safety_iterations"`
	StabilizeOnSpawn      bool    `yaml:"stabilize_on_spawn" json:"stabilize_on_spawn"`
	StabilizeOnOOB        bool    `yaml:"stabilize_on_oob" json:"stabilize_on_oob"`

	MinParticles int  `yaml:"min_particles" json:"min_particles"`
	MaxParticles int  `yaml:"max_particles" json:"max_particles"`
	EnforceMin   bool `yaml:"enforce_min" json:"enforce_min"`
	EnforceMax   bool `yaml:"enforce_max" json:"enforce_max"`

	Seed int64 `yaml:"seed" json:"seed"`
}

func DefaultConfig() Config {
	wall := Side{Constrain: true}
	return Config{
		Width:                 DefaultWidth,
		Height:                DefaultHeight,
		Gravity:               vmath.V(0, DefaultGravity),
		Sides:                 Sides{Top: wall, Bottom: wall, Left: wall, Right: wall},
		Restitution:           1,
		HeatTransfer:          DefaultHeatTransfer,
		HeatInjection:         DefaultHeatInjection,
		BuoyancyPower:         DefaultBuoyancyPower,
		SpawnRadius:           DefaultSpawnRadius,
		SpawnSafetyFactor:     DefaultSafetyFactor,
		SpawnSafetyIterations: DefaultSafetyIters,
		StabilizeOnOOB:        true,
		MaxParticles:          DefaultMaxParticles,
	}
}

// Validate reports every problem with c joined into one error. Ranges are
// written so that NaN fails them.
func (c Config) Validate() error {
	var errs []error
	if !extent(c.Width) || !extent(c.Height) {
		errs = append(errs, fmt.Errorf("%w: %gx%g", ErrInvalidBounds, c.Width, c.Height))
	}
	if !c.Gravity.IsFinite() {
		errs = append(errs, fmt.Errorf("%w: gravity %v", ErrInvalidBounds, c.Gravity))
	}
	if !inRange(c.SpawnRadius, MinSpawnRadius, MaxSpawnRadius) {
		errs = append(errs, fmt.Errorf("%w: %g not in [%g, %g]", ErrInvalidRadius, c.SpawnRadius, MinSpawnRadius, MaxSpawnRadius))
	}
	if !inRange(c.SpawnSafetyFactor, 0, MaxSafetyFactor) {
		errs = append(errs, fmt.Errorf("%w: factor %g", ErrInvalidSpawnSafety, c.SpawnSafetyFactor))
	}
	if c.SpawnSafetyIterations < 1 || c.SpawnSafetyIterations > MaxSafetyIterations {
		errs = append(errs, fmt.Errorf("%w: iterations %d", ErrInvalidSpawnSafety, c.SpawnSafetyIterations))
	}
	if c.MinParticles < 0 || c.MaxParticles < 0 {
		errs = append(errs, fmt.Errorf("%w: negative count", ErrInvalidPopulation))
	}
	if c.EnforceMin && c.EnforceMax && c.MinParticles > c.MaxParticles {
		errs = append(errs, fmt.Errorf("%w: min %d > max %d", ErrInvalidPopulation, c.MinParticles, c.MaxParticles))
	}
	if !nonNegative(c.Restitution) || !nonNegative(c.HeatTransfer) || !nonNegative(c.HeatLoss) || !nonNegative(c.HeatInjection) {
		errs = append(errs, ErrInvalidHeat)
	}
	if !finite(c.BuoyancyPower) {
		errs = append(errs, fmt.Errorf("%w: buoyancy power %g", ErrInvalidHeat, c.BuoyancyPower))
	}
	for _, s := range []Side{c.Sides.Top, c.Sides.Bottom, c.Sides.Left, c.Sides.Right} {
		if !finite(s.HeatLevel) {
			errs = append(errs, fmt.Errorf("%w: heat level %g", ErrInvalidHeat, s.HeatLevel))
			break
		}
	}
	return errors.Join(errs...)
}

func extent(f float32) bool {
	return f > 0 && f <= MaxExtent
}

func inRange(f, lo, hi float32) bool {
	return f >= lo && f <= hi
}

func nonNegative(f float32) bool {
	return f >= 0 && !math.IsInf(float64(f), 0)
}

func finite(f float32) bool {
	x := float64(f)
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

// Params returns every tunable as a named float; booleans are 0 or 1.
func (c *Config) Params() map[string]float64 {
	out := make(map[string]float64, 40)
	for name, p := range c.bindings() {
		out[name] = p.get()
	}
	return out
}

// ParamNames returns the sorted parameter names accepted by SetParam.
func (c *Config) ParamNames() []string {
	b := c.bindings()
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetParam assigns a named tunable. The change is rolled back if it leaves
// the config invalid.
func (c *Config) SetParam(name string, value float64) error {
	p, ok := c.bindings()[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("set %s: %w", name, ErrNonFinite)
	}
	old := *c
	p.set(value)
	if err := c.Validate(); err != nil {
		*c = old
		return fmt.Errorf("set %s=%g: %w", name, value, err)
	}
	return nil
}

type binding struct {
	get func() float64
	set func(float64)
}

func f32(p *float32) binding {
	return binding{
		get: func() float64 { return float64(*p) },
		set: func(v float64) { *p = float32(v) },
	}
}

func integer(p *int) binding {
	return binding{
		get: func() float64 { return float64(*p) },
		set: func(v float64) { *p = int(math.Round(math.Max(math.MinInt32, math.Min(v, math.MaxInt32)))) },
	}
}

func flag(p *bool) binding {
	return binding{
		get: func() float64 {
			if *p {
				return 1
			}
			return 0
		},
		set: func(v float64) { *p = v != 0 },
	}
}

func (c *Config) bindings() map[string]binding {
	b := map[string]binding{
		"width":                   f32(&c.Width),
		"height":                  f32(&c.Height),
		"gravity_x":               f32(&c.Gravity.X),
		"gravity_y":               f32(&c.Gravity.Y),
		"restitution":             f32(&c.Restitution),
		"heat_transfer":           f32(&c.HeatTransfer),
		"heat_loss":               f32(&c.HeatLoss),
		"heat_injection":          f32(&c.HeatInjection),
		"buoyancy":                flag(&c.Buoyancy),
		"buoyancy_power":          f32(&c.BuoyancyPower),
		"spawn_radius":            f32(&c.SpawnRadius),
		"spawn_safety_factor":     f32(&c.SpawnSafetyFactor),
		"spawn_safety_iterations": integer(&c.SpawnSafetyIterations),
		"stabilize_on_spawn":      flag(&c.StabilizeOnSpawn),
		"stabilize_on_oob":        flag(&c.StabilizeOnOOB),
		"min_particles":           integer(&c.MinParticles),
		"max_particles":           integer(&c.MaxParticles),
		"enforce_min":             flag(&c.EnforceMin),
		"enforce_max":             flag(&c.EnforceMax),
	}
	for prefix, s := range map[string]*Side{
		"top":    &c.Sides.Top,
		"bottom": &c.Sides.Bottom,
		"left":   &c.Sides.Left,
		"right":  &c.Sides.Right,
	} {
		b[prefix+".constrain"] = flag(&s.Constrain)
		b[prefix+".bounce"] = flag(&s.Bounce)
		b[prefix+".heat"] = flag(&s.Heat)
		b[prefix+".heat_level"] = f32(&s.HeatLevel)
	}
	return b
}
