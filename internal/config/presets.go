package config

import (
	"sort"

	"github.com/san-kum/verletsim/internal/vmath"
)

type preset struct {
	description string
	apply       func(*Config)
}

var presets = map[string]preset{
	"default": {
		description: "closed box, gravity down, 100 particles",
		apply:       func(*Config) {},
	},
	"convection": {
		description: "heated floor, cooled ceiling and buoyant particles",
		apply: func(c *Config) {
			c.Solver.Buoyancy = true
			c.Solver.BuoyancyPower = 2
			c.Solver.HeatLoss = 0.2
			c.Solver.HeatTransfer = 6
			c.Solver.HeatInjection = 10
			c.Solver.Sides.Bottom.Heat = true
			c.Solver.Sides.Bottom.HeatLevel = 3
			c.Solver.Sides.Top.Heat = true
			c.Solver.Sides.Top.HeatLevel = 0
			c.Solver.SpawnRadius = 4
			c.Run.SpawnCount = 800
			c.Run.Duration = 30
			c.Metrics = []string{"mean_temp", "temp_spread", "rise_fraction"}
		},
	},
	"rain": {
		description: "open floor with the population topped up every tick",
		apply: func(c *Config) {
			c.Solver.Sides.Bottom.Constrain = false
			c.Solver.EnforceMin = true
			c.Solver.MinParticles = 300
			c.Solver.StabilizeOnOOB = false
			c.Solver.SpawnRadius = 3
			c.Run.SpawnCount = 300
			c.Metrics = []string{"population", "culled", "spawned"}
		},
	},
	"pool": {
		description: "zero gravity, bouncing walls and a shake to start",
		apply: func(c *Config) {
			c.Solver.Gravity = vmath.Zero()
			for _, s := range []*bool{
				&c.Solver.Sides.Top.Bounce, &c.Solver.Sides.Bottom.Bounce,
				&c.Solver.Sides.Left.Bounce, &c.Solver.Sides.Right.Bounce,
			} {
				*s = true
			}
			c.Solver.Restitution = 0.95
			c.Solver.SpawnRadius = 8
			c.Run.SpawnCount = 60
			c.Run.Shake.AutoRandom = true
			c.Run.Shake.Intensity = 20000
			c.Metrics = []string{"kinetic_energy", "energy_jitter", "collisions"}
		},
	},
	"dense": {
		description: "thousands of small particles capped by the maximum",
		apply: func(c *Config) {
			c.Solver.SpawnRadius = 3
			c.Solver.EnforceMax = true
			c.Solver.MaxParticles = 4000
			c.Solver.SpawnSafetyFactor = 0.5
			c.Run.SpawnCount = 4000
			c.Metrics = []string{"max_penetration", "collisions", "step_ms"}
		},
	},
}

// GetPreset returns a fresh config for name, or nil if there is none.
func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func PresetDescription(name string) string {
	return presets[name].description
}
