package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/solver"
)

var builders = map[string]func(cfg solver.Config) sim.Metric{
	"population":      func(solver.Config) sim.Metric { return NewSeries("population", "particles", Mean) },
	"final_count":     func(solver.Config) sim.Metric { return NewSeries("final_count", "particles", Last) },
	"mean_temp":       func(solver.Config) sim.Metric { return NewSeries("mean_temp", "mean_temp", Mean) },
	"peak_temp":       func(solver.Config) sim.Metric { return NewSeries("peak_temp", "max_temp", Max) },
	"kinetic_energy":  func(solver.Config) sim.Metric { return NewSeries("kinetic_energy", "kinetic_energy", Mean) },
	"energy_jitter":   func(solver.Config) sim.Metric { return NewSeries("energy_jitter", "kinetic_energy", StdDev) },
	"max_penetration": func(solver.Config) sim.Metric { return NewSeries("max_penetration", "max_penetration", Max) },
	"culled":          func(solver.Config) sim.Metric { return NewSeries("culled", "culled", Sum) },
	"spawned":         func(solver.Config) sim.Metric { return NewSeries("spawned", "spawned", Sum) },
	"collisions":      func(solver.Config) sim.Metric { return NewSeries("collisions", "collisions", Mean) },
	"step_ms":         func(solver.Config) sim.Metric { return NewSeries("step_ms", "step_ms", Mean) },
	"temp_spread":     func(solver.Config) sim.Metric { return NewTemperatureSpread() },
	"rise_fraction": func(cfg solver.Config) sim.Metric {
		return NewRise(cfg.Height, cfg.Gravity.Y >= 0)
	},
}

// Names lists every metric New accepts.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func New(name string, cfg solver.Config) (sim.Metric, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", name)
	}
	return b(cfg), nil
}

// All builds one instance of every metric.
func All(cfg solver.Config) []sim.Metric {
	out := make([]sim.Metric, 0, len(builders))
	for _, name := range Names() {
		out = append(out, builders[name](cfg))
	}
	return out
}
